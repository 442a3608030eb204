package challenge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
	"github.com/gil-sasi/code-mentor/internal/llm"
)

type fakeStore struct {
	challenges map[uuid.UUID]*domain.Challenge
	createErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{challenges: make(map[uuid.UUID]*domain.Challenge)}
}

func (s *fakeStore) CreateChallenge(ctx context.Context, ch *domain.Challenge) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.challenges[ch.ID] = ch
	return nil
}

func (s *fakeStore) GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	ch, ok := s.challenges[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	return ch, nil
}

func (s *fakeStore) ListChallenges(ctx context.Context, userID string, limit int) ([]*domain.Challenge, error) {
	var out []*domain.Challenge
	for _, ch := range s.challenges {
		if ch.UserID == userID {
			out = append(out, ch)
		}
	}
	return out, nil
}

type stubProvider struct {
	content string
	err     error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Content: p.content, FinishReason: "stop"}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTemplates_OnePerPair(t *testing.T) {
	for _, d := range domain.Difficulties() {
		byCategory, ok := templates[d]
		if !ok {
			t.Fatalf("no templates for difficulty %s", d)
		}
		if len(byCategory) != len(domain.Categories()) {
			t.Errorf("difficulty %s has %d templates, want %d", d, len(byCategory), len(domain.Categories()))
		}
		for _, c := range domain.Categories() {
			if _, ok := templateFor(d, c); !ok {
				t.Errorf("missing template for (%s, %s)", d, c)
			}
		}
	}
}

func TestService_Generate_FallbackAllPairs(t *testing.T) {
	// With no provider configured, every (difficulty, category) pair must
	// yield a complete, schema-valid challenge.
	store := newFakeStore()
	svc := NewService(store, nil, testLogger())

	for _, d := range domain.Difficulties() {
		for _, c := range domain.Categories() {
			t.Run(string(d)+"/"+string(c), func(t *testing.T) {
				ch, err := svc.Generate(context.Background(), d, c, "user-1")
				if err != nil {
					t.Fatalf("Generate() error = %v", err)
				}
				if err := ch.Validate(); err != nil {
					t.Errorf("generated challenge invalid: %v", err)
				}
				if ch.Difficulty != d || ch.Category != c {
					t.Errorf("got (%s, %s), want (%s, %s)", ch.Difficulty, ch.Category, d, c)
				}
				if ch.ID == uuid.Nil {
					t.Error("challenge ID not assigned")
				}
				if !ch.IsActive {
					t.Error("challenge should be active")
				}
				if _, ok := store.challenges[ch.ID]; !ok {
					t.Error("challenge not persisted")
				}
			})
		}
	}
}

func TestService_Generate_InvalidInput(t *testing.T) {
	svc := NewService(newFakeStore(), nil, testLogger())

	tests := []struct {
		name       string
		difficulty domain.Difficulty
		category   domain.Category
	}{
		{"invalid difficulty", "expert", domain.CategoryReact},
		{"invalid category", domain.DifficultyBeginner, "golang"},
		{"both invalid", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.difficulty, tt.category, "user-1")
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("Generate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestService_Generate_FromProvider(t *testing.T) {
	provider := &stubProvider{
		content: "```json\n" + `{
			"title": "Generated Challenge",
			"description": "A challenge from the provider.",
			"requirements": ["do the thing"],
			"hints": ["think about it"],
			"technologies": ["JavaScript"],
			"estimatedTime": 25,
			"exampleCode": null
		}` + "\n```",
	}
	store := newFakeStore()
	svc := NewService(store, provider, testLogger())

	ch, err := svc.Generate(context.Background(), domain.DifficultyBeginner, domain.CategoryJavaScript, "user-1")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if ch.Title != "Generated Challenge" {
		t.Errorf("Title = %q, want Generated Challenge", ch.Title)
	}
	if ch.EstimatedTime != 25 {
		t.Errorf("EstimatedTime = %d, want 25", ch.EstimatedTime)
	}
	if ch.ExampleCode != "" {
		t.Errorf("ExampleCode = %q, want empty for null", ch.ExampleCode)
	}
}

func TestService_Generate_ProviderFailureFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
	}{
		{"provider error", &stubProvider{err: fmt.Errorf("API error (status 500): boom")}},
		{"non-JSON response", &stubProvider{content: "I cannot generate a challenge right now."}},
		{"incomplete JSON shape", &stubProvider{content: `{"title": "only a title"}`}},
		{"empty hints", &stubProvider{content: `{"title": "t", "description": "d", "requirements": ["r"], "hints": [], "technologies": ["js"], "estimatedTime": 10}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newFakeStore(), tt.provider, testLogger())

			ch, err := svc.Generate(context.Background(), domain.DifficultyIntermediate, domain.CategoryReact, "user-1")
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if err := ch.Validate(); err != nil {
				t.Errorf("fallback challenge invalid: %v", err)
			}

			// Fallback content comes from the template table
			tpl, _ := templateFor(domain.DifficultyIntermediate, domain.CategoryReact)
			if ch.Title != tpl.Title {
				t.Errorf("Title = %q, want template title %q", ch.Title, tpl.Title)
			}
		})
	}
}

func TestService_Generate_AnonymousDefault(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, testLogger())

	ch, err := svc.Generate(context.Background(), domain.DifficultyBeginner, domain.CategoryCSS, "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if ch.UserID != domain.AnonymousUser {
		t.Errorf("UserID = %q, want %q", ch.UserID, domain.AnonymousUser)
	}
}

func TestService_Generate_StoreError(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("disk full")
	svc := NewService(store, nil, testLogger())

	_, err := svc.Generate(context.Background(), domain.DifficultyBeginner, domain.CategoryReact, "user-1")
	if err == nil {
		t.Fatal("Generate() expected error when persistence fails")
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc := NewService(newFakeStore(), nil, testLogger())

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Errorf("Get() error = %v, want ErrChallengeNotFound", err)
	}
}
