package questionbank

import (
	"fmt"
	"sort"
	"strconv"

	"archetype-bot/internal/domain"
)

// Bank is the immutable, globally ordered question sequence. It is built once
// at startup and read-only afterwards.
type Bank struct {
	questions  []domain.Question
	categories []string
}

// Build flattens a category -> question-id-list mapping into a bank sorted
// ascending by numeric id. Identifiers need not be contiguous but must parse
// as integers. Errors wrap domain.ErrMalformedQuestionData.
func Build(raw map[string][]string) (*Bank, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty category mapping", domain.ErrMalformedQuestionData)
	}

	bank := &Bank{
		questions:  make([]domain.Question, 0, len(raw)*4),
		categories: make([]string, 0, len(raw)),
	}
	for category, ids := range raw {
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: category %q has no questions", domain.ErrMalformedQuestionData, category)
		}
		bank.categories = append(bank.categories, category)
		for _, rawID := range ids {
			id, err := strconv.Atoi(rawID)
			if err != nil {
				return nil, fmt.Errorf("%w: question id %q in category %q is not numeric", domain.ErrMalformedQuestionData, rawID, category)
			}
			bank.questions = append(bank.questions, domain.Question{ID: id, Category: category})
		}
	}

	sort.Slice(bank.questions, func(i, j int) bool {
		return bank.questions[i].ID < bank.questions[j].ID
	})
	sort.Strings(bank.categories)
	return bank, nil
}

// Len reports the total question count.
func (b *Bank) Len() int {
	return len(b.questions)
}

// At returns the question at position i (0-based).
func (b *Bank) At(i int) domain.Question {
	return b.questions[i]
}

// Categories returns the closed category set in ascending name order. The
// returned slice is a copy.
func (b *Bank) Categories() []string {
	out := make([]string, len(b.categories))
	copy(out, b.categories)
	return out
}
