// Package bug defines the bug records checked for duplicates.
package bug

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/testdesk/backend/internal/document"
)

// Severity levels
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Workflow states
const (
	StatusNew      = "new"
	StatusOpen     = "open"
	StatusResolved = "resolved"
	StatusClosed   = "closed"
)

// Bug is a defect reported against a project.
type Bug struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	// Filled in by duplicate detection.
	SimilarBugs     []SimilarBug `json:"similar_bugs,omitempty"`
	SimilarityScore float64      `json:"similarity_score,omitempty"`
}

// SimilarBug references another bug that looks like a duplicate.
type SimilarBug struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Severity   string    `json:"severity"`
	Status     string    `json:"status"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the fields required to store a bug.
func (b *Bug) Validate() error {
	if strings.TrimSpace(b.ProjectID) == "" {
		return errors.New("project_id is required")
	}
	if strings.TrimSpace(b.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

// ApplyDefaults fills in severity and status when they are missing.
func (b *Bug) ApplyDefaults() {
	if b.Severity == "" {
		b.Severity = SeverityMedium
	}
	if b.Status == "" {
		b.Status = StatusNew
	}
}

// Document returns the comparable text of the bug.
func (b *Bug) Document() document.Document {
	return document.New(b.Title, b.Description)
}

// Reference describes b as a match scoring score, rounded to three decimals.
func (b *Bug) Reference(score float64) SimilarBug {
	return SimilarBug{
		ID:         b.ID,
		Title:      b.Title,
		Severity:   b.Severity,
		Status:     b.Status,
		Similarity: math.Round(score*1000) / 1000,
		CreatedAt:  b.CreatedAt,
	}
}

// SetSimilar records the duplicate candidates and the best score among them.
func (b *Bug) SetSimilar(similar []SimilarBug) {
	b.SimilarBugs = similar
	b.SimilarityScore = 0
	for _, s := range similar {
		if s.Similarity > b.SimilarityScore {
			b.SimilarityScore = s.Similarity
		}
	}
}
