package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxCodeLength is the upper bound on submitted code text.
const MaxCodeLength = 50000

// Language represents the language of a code submission
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageReact      Language = "react"
	LanguageHTML       Language = "html"
	LanguageCSS        Language = "css"
	LanguageOther      Language = "other"
)

// Valid reports whether l is a known submission language
func (l Language) Valid() bool {
	switch l {
	case LanguageJavaScript, LanguageTypeScript, LanguageReact,
		LanguageHTML, LanguageCSS, LanguageOther:
		return true
	}
	return false
}

// SubmissionMethod represents how the code was provided
type SubmissionMethod string

const (
	MethodDirect   SubmissionMethod = "direct" // pasted code text
	MethodGithub   SubmissionMethod = "github"
	MethodPastebin SubmissionMethod = "pastebin"
)

// Valid reports whether m is a known submission method
func (m SubmissionMethod) Valid() bool {
	switch m {
	case MethodDirect, MethodGithub, MethodPastebin:
		return true
	}
	return false
}

// Submission represents a user's code offered as a solution to a challenge.
// At most one submission exists per (user, challenge) pair. A submission is
// mutated exactly once, when it is marked reviewed.
type Submission struct {
	ID          uuid.UUID        `json:"id"`
	UserID      string           `json:"userId"`
	ChallengeID uuid.UUID        `json:"challengeId"`
	Code        string           `json:"code"`
	Language    Language         `json:"language"`
	Method      SubmissionMethod `json:"submissionMethod"`
	GithubURL   string           `json:"githubUrl,omitempty"`
	PastebinURL string           `json:"pastebinUrl,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	SubmittedAt time.Time        `json:"submittedAt"`
	IsReviewed  bool             `json:"isReviewed"`
	ReviewID    *uuid.UUID       `json:"reviewId,omitempty"`
}

// Validate checks required fields and method-specific URL requirements.
func (s *Submission) Validate() error {
	if s.ChallengeID == uuid.Nil {
		return fmt.Errorf("%w: challengeId is required", ErrInvalidInput)
	}
	if s.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	if len(s.Code) > MaxCodeLength {
		return fmt.Errorf("%w: code exceeds %d characters", ErrInvalidInput, MaxCodeLength)
	}
	if !s.Language.Valid() {
		return fmt.Errorf("%w: invalid language %q", ErrInvalidInput, s.Language)
	}
	if !s.Method.Valid() {
		return fmt.Errorf("%w: invalid submission method %q", ErrInvalidInput, s.Method)
	}
	if s.Method == MethodGithub && s.GithubURL == "" {
		return fmt.Errorf("%w: githubUrl is required for github submissions", ErrInvalidInput)
	}
	if s.Method == MethodPastebin && s.PastebinURL == "" {
		return fmt.Errorf("%w: pastebinUrl is required for pastebin submissions", ErrInvalidInput)
	}
	return nil
}
