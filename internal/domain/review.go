package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReviewFormatVersion is the current structured review format.
const ReviewFormatVersion = 1

// ResourceType classifies a recommended learning resource
type ResourceType string

const (
	ResourceArticle       ResourceType = "article"
	ResourceVideo         ResourceType = "video"
	ResourceTutorial      ResourceType = "tutorial"
	ResourceDocumentation ResourceType = "documentation"
)

// Valid reports whether t is a known resource type
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceArticle, ResourceVideo, ResourceTutorial, ResourceDocumentation:
		return true
	}
	return false
}

// Resource is a recommended learning resource attached to a review
type Resource struct {
	Title string       `json:"title"`
	URL   string       `json:"url"`
	Type  ResourceType `json:"type"`
}

// Feedback holds the four structured feedback lists of a review
type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Bugs         []string `json:"bugs"`
	Suggestions  []string `json:"suggestions"`
}

// CodeQuality holds per-dimension quality sub-scores, each 0-10
type CodeQuality struct {
	Readability   int `json:"readability"`
	Structure     int `json:"structure"`
	Efficiency    int `json:"efficiency"`
	BestPractices int `json:"bestPractices"`
}

// Review represents scored, structured feedback on a submission.
// Exactly one review is ever created per submission; reviews are immutable.
type Review struct {
	ID            uuid.UUID   `json:"id"`
	SubmissionID  uuid.UUID   `json:"submissionId"`
	UserID        string      `json:"userId"`
	ChallengeID   uuid.UUID   `json:"challengeId"`
	OverallScore  int         `json:"overallScore"`
	Feedback      Feedback    `json:"feedback"`
	CodeQuality   CodeQuality `json:"codeQuality"`
	CareerTips    []string    `json:"careerTips"`
	NextSteps     []string    `json:"nextSteps"`
	Resources     []Resource  `json:"resources"`
	ReviewedAt    time.Time   `json:"reviewedAt"`
	Model         string      `json:"model"`
	FormatVersion int         `json:"formatVersion"`
}

// Validate checks score bounds and that the feedback lists are usable.
func (r *Review) Validate() error {
	if r.OverallScore < 0 || r.OverallScore > 10 {
		return fmt.Errorf("%w: overall score %d out of range", ErrInvalidInput, r.OverallScore)
	}
	for name, score := range map[string]int{
		"readability":   r.CodeQuality.Readability,
		"structure":     r.CodeQuality.Structure,
		"efficiency":    r.CodeQuality.Efficiency,
		"bestPractices": r.CodeQuality.BestPractices,
	} {
		if score < 0 || score > 10 {
			return fmt.Errorf("%w: %s score %d out of range", ErrInvalidInput, name, score)
		}
	}
	if len(r.Feedback.Strengths) == 0 {
		return fmt.Errorf("%w: review requires at least one strength", ErrInvalidInput)
	}
	if len(r.Feedback.Improvements) == 0 {
		return fmt.Errorf("%w: review requires at least one improvement", ErrInvalidInput)
	}
	for _, res := range r.Resources {
		if !res.Type.Valid() {
			return fmt.Errorf("%w: invalid resource type %q", ErrInvalidInput, res.Type)
		}
	}
	return nil
}
