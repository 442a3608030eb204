package sqlite

import (
	"github.com/gil-sasi/code-mentor/internal/auth"
	"github.com/gil-sasi/code-mentor/internal/challenge"
	"github.com/gil-sasi/code-mentor/internal/progress"
	"github.com/gil-sasi/code-mentor/internal/review"
	"github.com/gil-sasi/code-mentor/internal/submission"
)

// Ensure the SQLite stores implement the service storage interfaces.
var (
	_ challenge.Store  = (*Stores)(nil)
	_ submission.Store = (*Stores)(nil)
	_ review.Store     = (*Stores)(nil)
	_ progress.Store   = (*Stores)(nil)
	_ auth.Store       = (*Stores)(nil)
)
