package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
	"github.com/gil-sasi/code-mentor/internal/llm"
)

// Service produces code reviews, preferring an external provider and
// falling back to the heuristic scorer on any failure.
type Service struct {
	store    Store
	provider llm.Provider // nil means heuristic-only reviews
	scorer   *HeuristicScorer
	logger   *slog.Logger
}

// NewService creates a new review service
func NewService(store Store, provider llm.Provider, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		provider: provider,
		scorer:   NewHeuristicScorer(),
		logger:   logger,
	}
}

// ForSubmission returns the review for a submission if one exists.
// Returns domain.ErrReviewNotFound while the review is still pending.
func (s *Service) ForSubmission(ctx context.Context, submissionID uuid.UUID) (*domain.Review, error) {
	if _, err := s.store.GetSubmission(ctx, submissionID); err != nil {
		return nil, err
	}
	return s.store.GetReviewBySubmission(ctx, submissionID)
}

// Generate creates the review for a submission. It is the worker entry
// point for queued review jobs and is safe to call repeatedly: once a
// submission is reviewed, the existing review is returned unchanged.
func (s *Service) Generate(ctx context.Context, submissionID uuid.UUID) (*domain.Review, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if sub.IsReviewed {
		return s.store.GetReviewBySubmission(ctx, submissionID)
	}

	ch, err := s.store.GetChallenge(ctx, sub.ChallengeID)
	if err != nil {
		return nil, err
	}

	r := s.build(ctx, ch, sub)
	r.ID = uuid.New()
	r.SubmissionID = sub.ID
	r.UserID = sub.UserID
	r.ChallengeID = ch.ID
	r.ReviewedAt = time.Now().UTC()

	if err := s.store.CreateReview(ctx, r); err != nil {
		// A concurrent generation attempt won the unique-constraint race
		if errors.Is(err, domain.ErrDuplicateReview) {
			return s.store.GetReviewBySubmission(ctx, submissionID)
		}
		return nil, fmt.Errorf("persist review: %w", err)
	}

	claimed, err := s.store.MarkSubmissionReviewed(ctx, sub.ID, r.ID)
	if err != nil {
		return nil, fmt.Errorf("mark submission reviewed: %w", err)
	}
	if !claimed {
		s.logger.Warn("submission already marked reviewed after review insert",
			"submission_id", sub.ID, "review_id", r.ID)
	}

	return r, nil
}

// generatedReview is the JSON contract demanded from the provider
type generatedReview struct {
	OverallScore int `json:"overallScore"`
	Feedback     struct {
		Strengths    []string `json:"strengths"`
		Improvements []string `json:"improvements"`
		Bugs         []string `json:"bugs"`
		Suggestions  []string `json:"suggestions"`
	} `json:"feedback"`
	CodeQuality struct {
		Readability   int `json:"readability"`
		Structure     int `json:"structure"`
		Efficiency    int `json:"efficiency"`
		BestPractices int `json:"bestPractices"`
	} `json:"codeQuality"`
	CareerTips []string `json:"careerTips"`
	NextSteps  []string `json:"nextSteps"`
	Resources  []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Type  string `json:"type"`
	} `json:"resources"`
}

// build tries the provider first and falls back to the heuristic scorer.
func (s *Service) build(ctx context.Context, ch *domain.Challenge, sub *domain.Submission) *domain.Review {
	if s.provider != nil {
		r, err := s.fromProvider(ctx, ch, sub)
		if err == nil {
			return r
		}
		s.logger.Warn("review generation fell back to heuristic scorer",
			"provider", s.provider.Name(),
			"submission_id", sub.ID,
			"error", err)
	}

	return s.scorer.Score(ch.Difficulty, sub.Code)
}

func (s *Service) fromProvider(ctx context.Context, ch *domain.Challenge, sub *domain.Submission) (*domain.Review, error) {
	resp, err := s.provider.Generate(ctx, &llm.Request{
		System:      reviewSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildReviewPrompt(ch, sub)}},
		MaxTokens:   3072,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("provider call: %w", err)
	}

	raw, ok := llm.ExtractJSON(resp.Content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in provider response")
	}

	var gen generatedReview
	if err := json.Unmarshal([]byte(raw), &gen); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	r := &domain.Review{
		OverallScore: gen.OverallScore,
		Feedback: domain.Feedback{
			Strengths:    gen.Feedback.Strengths,
			Improvements: gen.Feedback.Improvements,
			Bugs:         gen.Feedback.Bugs,
			Suggestions:  gen.Feedback.Suggestions,
		},
		CodeQuality: domain.CodeQuality{
			Readability:   gen.CodeQuality.Readability,
			Structure:     gen.CodeQuality.Structure,
			Efficiency:    gen.CodeQuality.Efficiency,
			BestPractices: gen.CodeQuality.BestPractices,
		},
		CareerTips:    gen.CareerTips,
		NextSteps:     gen.NextSteps,
		Model:         s.provider.Name(),
		FormatVersion: domain.ReviewFormatVersion,
	}
	for _, res := range gen.Resources {
		r.Resources = append(r.Resources, domain.Resource{
			Title: res.Title,
			URL:   res.URL,
			Type:  domain.ResourceType(res.Type),
		})
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("provider response invalid: %w", err)
	}

	return r, nil
}
