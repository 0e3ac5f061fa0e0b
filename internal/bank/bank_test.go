package bank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedQuestions(t *testing.T) {
	b, err := Load("")
	if err != nil {
		t.Fatalf("load embedded questions: %v", err)
	}
	if b.Len() < 2 {
		t.Fatalf("expected at least 2 questions, got %d", b.Len())
	}
	q, err := b.Get(0)
	if err != nil {
		t.Fatalf("get first question: %v", err)
	}
	if q.Text == "" || len(q.Options) < 2 {
		t.Fatalf("unexpected first question: %+v", q)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.json")
	data := `[{"id": 1, "question": "2+2?", "options": ["3", "4"], "correct": 1}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write questions file: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("load questions: %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 question, got %d", b.Len())
	}
	q, err := b.Get(0)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if q.Correct != 1 || q.Options[1] != "4" {
		t.Fatalf("unexpected question: %+v", q)
	}
}

func TestLoadRejectsInvalidSets(t *testing.T) {
	cases := map[string]string{
		"empty set":       `[]`,
		"single option":   `[{"id": 1, "question": "q", "options": ["a"], "correct": 0}]`,
		"correct too big": `[{"id": 1, "question": "q", "options": ["a", "b"], "correct": 2}]`,
		"negative index":  `[{"id": 1, "question": "q", "options": ["a", "b"], "correct": -1}]`,
		"duplicate id":    `[{"id": 1, "question": "q", "options": ["a", "b"], "correct": 0}, {"id": 1, "question": "r", "options": ["a", "b"], "correct": 1}]`,
		"missing text":    `[{"id": 1, "options": ["a", "b"], "correct": 0}]`,
	}
	dir := t.TempDir()
	for name, data := range cases {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write questions file: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected load error", name)
		}
	}
}

func TestGetOutOfRange(t *testing.T) {
	b, err := Load("")
	if err != nil {
		t.Fatalf("load embedded questions: %v", err)
	}
	if _, err := b.Get(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for -1, got %v", err)
	}
	if _, err := b.Get(b.Len()); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for len, got %v", err)
	}
}

func TestQuestionsReturnsCopy(t *testing.T) {
	b, err := Load("")
	if err != nil {
		t.Fatalf("load embedded questions: %v", err)
	}
	qs := b.Questions()
	qs[0].Text = "mutated"
	q, err := b.Get(0)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if q.Text == "mutated" {
		t.Fatalf("bank mutated through Questions copy")
	}
}
