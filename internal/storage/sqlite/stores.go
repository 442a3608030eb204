package sqlite

// Stores bundles every SQLite-backed store behind one value. The service
// interfaces cut across tables (a review needs its submission and challenge),
// so the bundle is what gets handed to each service constructor.
type Stores struct {
	*ChallengeStore
	*SubmissionStore
	*ReviewStore
	*ProgressStore
	*UserStore
}

// NewStores creates all stores over a single database connection.
func NewStores(db *DB) *Stores {
	return &Stores{
		ChallengeStore:  NewChallengeStore(db),
		SubmissionStore: NewSubmissionStore(db),
		ReviewStore:     NewReviewStore(db),
		ProgressStore:   NewProgressStore(db),
		UserStore:       NewUserStore(db),
	}
}
