package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/challenge"
	"github.com/gil-sasi/code-mentor/internal/domain"
	"github.com/gil-sasi/code-mentor/internal/progress"
	"github.com/gil-sasi/code-mentor/internal/queue"
	"github.com/gil-sasi/code-mentor/internal/review"
	"github.com/gil-sasi/code-mentor/internal/submission"
)

// MentorHandler handles challenge, submission, review, and progress endpoints
type MentorHandler struct {
	challenges  *challenge.Service
	submissions *submission.Service
	reviews     *review.Service
	progress    *progress.Service
	dispatcher  queue.Dispatcher
}

// NewMentorHandler creates a new mentor handler
func NewMentorHandler(
	challenges *challenge.Service,
	submissions *submission.Service,
	reviews *review.Service,
	prog *progress.Service,
	dispatcher queue.Dispatcher,
) *MentorHandler {
	return &MentorHandler{
		challenges:  challenges,
		submissions: submissions,
		reviews:     reviews,
		progress:    prog,
		dispatcher:  dispatcher,
	}
}

// callerID resolves the acting user: the authenticated user if present,
// otherwise the anonymous sentinel.
func callerID(r *http.Request) string {
	if user, ok := UserFromContext(r.Context()); ok {
		return user.ID.String()
	}
	return domain.AnonymousUser
}

// ChallengeRequest is the request body for challenge generation
type ChallengeRequest struct {
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
	UserID     string `json:"userId,omitempty"`
}

// GenerateChallenge handles POST /mentor/challenge
func (h *MentorHandler) GenerateChallenge(w http.ResponseWriter, r *http.Request) {
	var req ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := req.UserID
	if user, ok := UserFromContext(r.Context()); ok {
		userID = user.ID.String()
	}

	ch, err := h.challenges.Generate(r.Context(),
		domain.Difficulty(req.Difficulty), domain.Category(req.Category), userID)
	if errors.Is(err, domain.ErrInvalidInput) {
		h.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "challenge generation failed")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"challenge": ch,
	})
}

// GetChallenge handles GET /mentor/challenges/{id}
func (h *MentorHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid challenge id")
		return
	}

	ch, err := h.challenges.Get(r.Context(), id)
	if errors.Is(err, domain.ErrChallengeNotFound) {
		h.jsonError(w, http.StatusNotFound, "challenge not found")
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load challenge")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"challenge": ch,
	})
}

// ListChallenges handles GET /mentor/challenges
func (h *MentorHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.challenges.List(r.Context(), callerID(r), 0)
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to list challenges")
		return
	}
	if challenges == nil {
		challenges = []*domain.Challenge{}
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"success":    true,
		"challenges": challenges,
	})
}

// SubmitRequest is the request body for code submission
type SubmitRequest struct {
	ChallengeID string `json:"challengeId"`
	Code        string `json:"code"`
	Language    string `json:"language"`
	Method      string `json:"submissionMethod"`
	GithubURL   string `json:"githubUrl,omitempty"`
	PastebinURL string `json:"pastebinUrl,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// SubmissionSummary is the submission shape returned by submit-code
type SubmissionSummary struct {
	ID          string `json:"id"`
	ChallengeID string `json:"challengeId"`
	SubmittedAt string `json:"submittedAt"`
	IsReviewed  bool   `json:"isReviewed"`
	Language    string `json:"language"`
	Method      string `json:"submissionMethod"`
}

// SubmitCode handles POST /mentor/submit-code
func (h *MentorHandler) SubmitCode(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	challengeID, err := uuid.Parse(req.ChallengeID)
	if err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid challenge id")
		return
	}

	sub := &domain.Submission{
		UserID:      callerID(r),
		ChallengeID: challengeID,
		Code:        req.Code,
		Language:    domain.Language(req.Language),
		Method:      domain.SubmissionMethod(req.Method),
		GithubURL:   req.GithubURL,
		PastebinURL: req.PastebinURL,
		Notes:       req.Notes,
	}

	created, err := h.submissions.Submit(r.Context(), sub)
	if err != nil {
		var dup *submission.DuplicateError
		switch {
		case errors.As(err, &dup):
			h.jsonResponse(w, http.StatusBadRequest, map[string]any{
				"success":              false,
				"error":                "you have already submitted code for this challenge",
				"existingSubmissionId": dup.ExistingID.String(),
			})
		case errors.Is(err, domain.ErrChallengeNotFound):
			h.jsonError(w, http.StatusNotFound, "challenge not found")
		case errors.Is(err, domain.ErrInvalidInput):
			h.jsonError(w, http.StatusBadRequest, err.Error())
		default:
			h.jsonError(w, http.StatusInternalServerError, "submission failed")
		}
		return
	}

	// Review generation is asynchronous; the client polls review-code.
	if err := h.dispatcher.Enqueue(r.Context(), queue.NewReviewJob(created.ID, created.UserID)); err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to queue review")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "code submitted, review in progress",
		"submission": SubmissionSummary{
			ID:          created.ID.String(),
			ChallengeID: created.ChallengeID.String(),
			SubmittedAt: created.SubmittedAt.Format(time.RFC3339),
			IsReviewed:  created.IsReviewed,
			Language:    string(created.Language),
			Method:      string(created.Method),
		},
	})
}

// ReviewRequest is the request body for review polling
type ReviewRequest struct {
	SubmissionID string `json:"submissionId"`
}

// ReviewCode handles POST /mentor/review-code
func (h *MentorHandler) ReviewCode(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	submissionID, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid submission id")
		return
	}

	rev, err := h.reviews.ForSubmission(r.Context(), submissionID)
	switch {
	case errors.Is(err, domain.ErrSubmissionNotFound):
		h.jsonError(w, http.StatusNotFound, "submission not found")
		return
	case errors.Is(err, domain.ErrReviewNotFound):
		h.jsonResponse(w, http.StatusOK, map[string]any{
			"success": false,
			"status":  "pending",
			"message": "review is not ready yet",
		})
		return
	case err != nil:
		h.jsonError(w, http.StatusInternalServerError, "failed to load review")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"review":  rev,
	})
}

// GetSubmission handles GET /mentor/submissions/{id}
func (h *MentorHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid submission id")
		return
	}

	sub, err := h.submissions.Get(r.Context(), id)
	if errors.Is(err, domain.ErrSubmissionNotFound) {
		h.jsonError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load submission")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"success":    true,
		"submission": sub,
	})
}

// GetProgress handles GET /mentor/progress
func (h *MentorHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.jsonError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	prog, err := h.progress.Get(r.Context(), user.ID.String())
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to compute progress")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"success":  true,
		"progress": prog,
	})
}

// WeeklyGoalRequest is the request body for updating the weekly goal
type WeeklyGoalRequest struct {
	WeeklyGoal int `json:"weeklyGoal"`
}

// UpdateProgress handles POST /mentor/progress
func (h *MentorHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.jsonError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req WeeklyGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prog, err := h.progress.SetWeeklyGoal(r.Context(), user.ID.String(), req.WeeklyGoal)
	if errors.Is(err, domain.ErrInvalidInput) {
		h.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to update progress")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"success":  true,
		"progress": prog,
	})
}

func (h *MentorHandler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *MentorHandler) jsonError(w http.ResponseWriter, status int, message string) {
	JSONError(w, status, message)
}
