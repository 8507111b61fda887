package triage

import (
	"time"

	"github.com/google/uuid"
)

// Acuity levels, least to most acute.
const (
	AcuityRoutine  = "ROUTINE"
	AcuityUrgent   = "URGENT"
	AcuityEmergent = "EMERGENT"
)

// Assessment is the result of running the symptom rules.
type Assessment struct {
	Acuity           string   `json:"acuity"`
	Advice           string   `json:"advice"`
	RulesMatched     []string `json:"rules_matched"`
	RecommendedSteps []string `json:"recommended_steps"`
}

// Doc maps to the kb_docs table.
type Doc struct {
	ID        uuid.UUID `db:"id" json:"-"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"`
	Snippet   string    `db:"snippet" json:"snippet"`
	Tags      []string  `db:"tags" json:"tags"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Result is one scored knowledge base hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}
