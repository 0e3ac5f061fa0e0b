// Package bank loads and serves the fixed question set.
package bank

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/okalkan/diziquiz/internal/model"
)

// ErrOutOfRange reports access beyond the bank's length.
var ErrOutOfRange = errors.New("question index out of range")

//go:embed questions.json
var defaultQuestions []byte

// Bank is an immutable ordered set of quiz questions.
type Bank struct {
	questions []model.Question
}

// Load reads questions from the given JSON file. An empty path loads the
// built-in question set.
func Load(path string) (*Bank, error) {
	data := defaultQuestions
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read questions: %w", err)
		}
		data = fileData
	}
	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	if err := validate(questions); err != nil {
		return nil, err
	}
	return &Bank{questions: questions}, nil
}

func validate(questions []model.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question set is empty")
	}
	seen := make(map[int]struct{}, len(questions))
	for i, q := range questions {
		if q.Text == "" {
			return fmt.Errorf("question %d has no text", i)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d has fewer than 2 options", i)
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return fmt.Errorf("question %d has invalid correct index %d", i, q.Correct)
		}
		if _, ok := seen[q.ID]; ok {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// Get returns the question at the given index.
func (b *Bank) Get(i int) (model.Question, error) {
	if i < 0 || i >= len(b.questions) {
		return model.Question{}, ErrOutOfRange
	}
	return b.questions[i], nil
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Questions returns a copy of the full question list.
func (b *Bank) Questions() []model.Question {
	out := make([]model.Question, len(b.questions))
	copy(out, b.questions)
	return out
}
