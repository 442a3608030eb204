package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Difficulty represents challenge difficulty level
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties returns all difficulty levels in ascending order
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}
}

// Valid reports whether d is a known difficulty
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Category represents a challenge topic area
type Category string

const (
	CategoryReact      Category = "react"
	CategoryJavaScript Category = "javascript"
	CategoryCSS        Category = "css"
	CategoryTypeScript Category = "typescript"
	CategoryNextJS     Category = "nextjs"
	CategoryNode       Category = "node"
	CategoryGeneral    Category = "general"
)

// Categories returns all challenge categories
func Categories() []Category {
	return []Category{
		CategoryReact, CategoryJavaScript, CategoryCSS, CategoryTypeScript,
		CategoryNextJS, CategoryNode, CategoryGeneral,
	}
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryReact, CategoryJavaScript, CategoryCSS, CategoryTypeScript,
		CategoryNextJS, CategoryNode, CategoryGeneral:
		return true
	}
	return false
}

// AnonymousUser is the sentinel user ID for unauthenticated submissions.
const AnonymousUser = "anonymous"

// Challenge represents a generated or templated coding exercise.
// Challenges are immutable once created and are never deleted.
type Challenge struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Difficulty    Difficulty `json:"difficulty"`
	Category      Category   `json:"category"`
	Requirements  []string   `json:"requirements"`
	Hints         []string   `json:"hints"`
	Technologies  []string   `json:"technologies"`
	EstimatedTime int        `json:"estimatedTime"` // minutes
	ExampleCode   string     `json:"exampleCode,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UserID        string     `json:"userId,omitempty"` // owning user, empty if none
	IsActive      bool       `json:"isActive"`
}

// Validate checks that the challenge is complete and schema-valid.
// A challenge returned to a caller is always either fully valid or rejected.
func (c *Challenge) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: challenge title is required", ErrInvalidInput)
	}
	if c.Description == "" {
		return fmt.Errorf("%w: challenge description is required", ErrInvalidInput)
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("%w: invalid difficulty %q", ErrInvalidInput, c.Difficulty)
	}
	if !c.Category.Valid() {
		return fmt.Errorf("%w: invalid category %q", ErrInvalidInput, c.Category)
	}
	if len(c.Requirements) == 0 {
		return fmt.Errorf("%w: challenge requires at least one requirement", ErrInvalidInput)
	}
	if len(c.Hints) == 0 {
		return fmt.Errorf("%w: challenge requires at least one hint", ErrInvalidInput)
	}
	if len(c.Technologies) == 0 {
		return fmt.Errorf("%w: challenge requires at least one technology", ErrInvalidInput)
	}
	if c.EstimatedTime <= 0 {
		return fmt.Errorf("%w: estimated time must be positive", ErrInvalidInput)
	}
	return nil
}
