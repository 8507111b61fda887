package triage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/medkit/medkit/internal/registry"
)

const defaultSearchLimit = 3

// Service implements the symptom triage rules and the knowledge base search.
type Service struct {
	docs DocRepository
}

func NewService(docs DocRepository) *Service {
	return &Service{docs: docs}
}

// Assess runs the fixed rule set over a normalized symptom list.
//
// The rules are deliberately small and deterministic: chest pain with
// diaphoresis is emergent; chest pain or dyspnea alone is urgent; everything
// else is routine self-care.
func Assess(symptoms []string) (*Assessment, error) {
	if len(symptoms) == 0 {
		return nil, registry.InvalidArgsf("symptoms must be a non-empty list")
	}

	set := make(map[string]bool, len(symptoms))
	for _, s := range symptoms {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			set[s] = true
		}
	}
	if len(set) == 0 {
		return nil, registry.InvalidArgsf("symptoms must be a non-empty list")
	}

	chestPain := set["chest pain"]
	diaphoresis := set["diaphoresis"] || set["sweating"]
	dyspnea := set["shortness of breath"] || set["dyspnea"]

	switch {
	case chestPain && diaphoresis:
		return &Assessment{
			Acuity:           AcuityEmergent,
			Advice:           "Call emergency services",
			RulesMatched:     []string{"chest pain", "diaphoresis"},
			RecommendedSteps: []string{"ECG", "Troponin", "Aspirin if not contraindicated"},
		}, nil
	case chestPain || dyspnea:
		rules := []string{}
		if chestPain {
			rules = append(rules, "chest pain")
		}
		if dyspnea {
			rules = append(rules, "shortness of breath")
		}
		return &Assessment{
			Acuity:           AcuityUrgent,
			Advice:           "Seek urgent evaluation",
			RulesMatched:     rules,
			RecommendedSteps: []string{"ECG", "Vitals", "Pulse oximetry"},
		}, nil
	default:
		return &Assessment{
			Acuity:           AcuityRoutine,
			Advice:           "Self-care and monitoring; seek care if symptoms worsen",
			RulesMatched:     []string{},
			RecommendedSteps: []string{},
		}, nil
	}
}

// Search scores knowledge base documents against a query. Title matches
// weigh most, then tags, then snippet text. Ties break on title.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, registry.InvalidArgsf("query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load kb docs: %w", err)
	}

	var results []Result
	for _, d := range docs {
		score := scoreDoc(d, query)
		if score <= 0 {
			continue
		}
		results = append(results, Result{
			Title:   d.Title,
			URL:     d.URL,
			Snippet: d.Snippet,
			Score:   score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Title < results[j].Title
	})
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}

func scoreDoc(d *Doc, query string) float64 {
	terms := strings.Fields(query)
	title := strings.ToLower(d.Title)
	snippet := strings.ToLower(d.Snippet)

	var score float64
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += 3
		}
		for _, tag := range d.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				score += 2
				break
			}
		}
		if strings.Contains(snippet, term) {
			score += 1
		}
	}
	return score
}
