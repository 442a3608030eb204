package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
	"github.com/gil-sasi/code-mentor/internal/llm"
)

// Service generates coding challenges, preferring an external provider and
// falling back to the static template table on any failure.
type Service struct {
	store    Store
	provider llm.Provider // nil means template-only generation
	logger   *slog.Logger
}

// NewService creates a new challenge service
func NewService(store Store, provider llm.Provider, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		provider: provider,
		logger:   logger,
	}
}

// generatedChallenge is the JSON contract demanded from the provider
type generatedChallenge struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Requirements  []string `json:"requirements"`
	Hints         []string `json:"hints"`
	Technologies  []string `json:"technologies"`
	EstimatedTime int      `json:"estimatedTime"`
	ExampleCode   *string  `json:"exampleCode"`
}

// Generate produces a new challenge for the given difficulty and category
// and persists it. Provider failures are absorbed by the template fallback,
// so the only caller-visible errors are invalid input and storage failures.
func (s *Service) Generate(ctx context.Context, difficulty domain.Difficulty, category domain.Category, userID string) (*domain.Challenge, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: invalid difficulty %q", domain.ErrInvalidInput, difficulty)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: invalid category %q", domain.ErrInvalidInput, category)
	}
	if userID == "" {
		userID = domain.AnonymousUser
	}

	ch := s.build(ctx, difficulty, category)
	ch.ID = uuid.New()
	ch.Difficulty = difficulty
	ch.Category = category
	ch.CreatedAt = time.Now().UTC()
	ch.UserID = userID
	ch.IsActive = true

	if err := ch.Validate(); err != nil {
		return nil, fmt.Errorf("built challenge invalid: %w", err)
	}

	if err := s.store.CreateChallenge(ctx, ch); err != nil {
		return nil, fmt.Errorf("persist challenge: %w", err)
	}

	return ch, nil
}

// Get returns a challenge by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	return s.store.GetChallenge(ctx, id)
}

// List returns the most recent challenges for a user
func (s *Service) List(ctx context.Context, userID string, limit int) ([]*domain.Challenge, error) {
	if userID == "" {
		userID = domain.AnonymousUser
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListChallenges(ctx, userID, limit)
}

// build tries the provider first and falls back to the template table.
func (s *Service) build(ctx context.Context, difficulty domain.Difficulty, category domain.Category) *domain.Challenge {
	if s.provider != nil {
		ch, err := s.fromProvider(ctx, difficulty, category)
		if err == nil {
			return ch
		}
		s.logger.Warn("challenge generation fell back to template",
			"provider", s.provider.Name(),
			"difficulty", difficulty,
			"category", category,
			"error", err)
	}

	return s.fromTemplate(difficulty, category)
}

func (s *Service) fromProvider(ctx context.Context, difficulty domain.Difficulty, category domain.Category) (*domain.Challenge, error) {
	resp, err := s.provider.Generate(ctx, &llm.Request{
		System:      challengeSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildChallengePrompt(difficulty, category)}},
		MaxTokens:   2048,
		Temperature: 0.8,
	})
	if err != nil {
		return nil, fmt.Errorf("provider call: %w", err)
	}

	raw, ok := llm.ExtractJSON(resp.Content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in provider response")
	}

	var gen generatedChallenge
	if err := json.Unmarshal([]byte(raw), &gen); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	if gen.Title == "" || gen.Description == "" || len(gen.Requirements) == 0 ||
		len(gen.Hints) == 0 || len(gen.Technologies) == 0 {
		return nil, fmt.Errorf("provider response missing required fields")
	}
	if gen.EstimatedTime <= 0 {
		gen.EstimatedTime = 30
	}

	exampleCode := ""
	if gen.ExampleCode != nil {
		exampleCode = *gen.ExampleCode
	}

	return &domain.Challenge{
		Title:         gen.Title,
		Description:   gen.Description,
		Requirements:  gen.Requirements,
		Hints:         gen.Hints,
		Technologies:  gen.Technologies,
		EstimatedTime: gen.EstimatedTime,
		ExampleCode:   exampleCode,
	}, nil
}

func (s *Service) fromTemplate(difficulty domain.Difficulty, category domain.Category) *domain.Challenge {
	tpl, ok := templateFor(difficulty, category)
	if !ok {
		// enum validation makes this unreachable; keep a safe shape anyway
		tpl = templates[domain.DifficultyBeginner][domain.CategoryGeneral]
	}

	return &domain.Challenge{
		Title:         tpl.Title,
		Description:   tpl.Description,
		Requirements:  append([]string(nil), tpl.Requirements...),
		Hints:         append([]string(nil), tpl.Hints...),
		Technologies:  append([]string(nil), tpl.Technologies...),
		EstimatedTime: tpl.EstimatedTime,
		ExampleCode:   tpl.ExampleCode,
	}
}
