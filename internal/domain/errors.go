package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by stores and
// services to communicate domain-specific error conditions.
// -----------------------------------------------------------------------------

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidPassword   = errors.New("invalid password")
)

// Auth session errors
var (
	ErrAuthSessionNotFound = errors.New("auth session not found")
	ErrAuthSessionExpired  = errors.New("auth session expired")
)

// Challenge errors
var (
	ErrChallengeNotFound = errors.New("challenge not found")
)

// Submission errors
var (
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrDuplicateSubmission  = errors.New("submission already exists for this challenge")
)

// Review errors
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review already exists for this submission")
)

// Progress errors
var (
	ErrProgressNotFound = errors.New("progress not found")
)

// General errors
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInternalError = errors.New("internal error")
)
