// Package session drives a single quiz run.
package session

import (
	"errors"
	"math"
	"time"

	"github.com/okalkan/diziquiz/internal/model"
)

// Phase is the state of the current question or the whole run.
type Phase int

// Session phases. A question starts Unanswered, locks to Answered on the
// first selection or on timeout, and the run ends in Complete after the
// last question.
const (
	PhaseUnanswered Phase = iota
	PhaseAnswered
	PhaseComplete
)

// NoAnswer marks a question that was never answered (timeout).
const NoAnswer = -1

var (
	// ErrNoQuestions reports an attempt to start a run without questions.
	ErrNoQuestions = errors.New("question set is empty")
	// ErrBadTimer reports a non-positive per-question time budget.
	ErrBadTimer = errors.New("timer must be positive")
	// ErrOutOfRange reports an option index outside the current question.
	ErrOutOfRange = errors.New("option index out of range")
	// ErrNotAnswered reports an advance before the current question is locked.
	ErrNotAnswered = errors.New("current question is not answered")
	// ErrComplete reports an operation on a finished run.
	ErrComplete = errors.New("session is complete")
)

// Engine is the in-memory state machine for one quiz run. It is driven
// from a single goroutine (the UI update loop) and holds no locks.
type Engine struct {
	questions    []model.Question
	timerSeconds int

	current       int
	score         int
	selected      int
	answers       []int
	timeRemaining int
	phase         Phase

	startedAt time.Time
	result    model.Result
}

// New starts a run over the given questions with a fixed per-question
// time budget in seconds.
func New(questions []model.Question, timerSeconds int) (*Engine, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if timerSeconds <= 0 {
		return nil, ErrBadTimer
	}
	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = NoAnswer
	}
	return &Engine{
		questions:     questions,
		timerSeconds:  timerSeconds,
		selected:      NoAnswer,
		answers:       answers,
		timeRemaining: timerSeconds,
		startedAt:     time.Now(),
	}, nil
}

// Select locks in an answer for the current question. The first valid
// selection is final: further calls before the next question are no-ops.
func (e *Engine) Select(option int) error {
	switch e.phase {
	case PhaseComplete:
		return ErrComplete
	case PhaseAnswered:
		// Idempotent lock: the answer cannot be changed.
		return nil
	}
	question := e.questions[e.current]
	if option < 0 || option >= len(question.Options) {
		return ErrOutOfRange
	}
	e.selected = option
	e.answers[e.current] = option
	if option == question.Correct {
		e.score++
	}
	e.phase = PhaseAnswered
	return nil
}

// Tick consumes one second of the current question's budget. When the
// budget runs out the question counts as unanswered and incorrect and the
// run advances on its own. Tick reports whether this call timed out the
// question. Outside the Unanswered phase it does nothing.
func (e *Engine) Tick() bool {
	if e.phase != PhaseUnanswered {
		return false
	}
	e.timeRemaining--
	if e.timeRemaining > 0 {
		return false
	}
	e.timeRemaining = 0
	e.phase = PhaseAnswered
	e.advance()
	return true
}

// Advance moves past an answered question. It is only valid once the
// current question is locked; unanswered questions advance solely through
// timer expiry.
func (e *Engine) Advance() error {
	switch e.phase {
	case PhaseComplete:
		return ErrComplete
	case PhaseUnanswered:
		return ErrNotAnswered
	}
	e.advance()
	return nil
}

func (e *Engine) advance() {
	if e.current == len(e.questions)-1 {
		e.complete()
		return
	}
	e.current++
	e.selected = NoAnswer
	e.timeRemaining = e.timerSeconds
	e.phase = PhaseUnanswered
}

func (e *Engine) complete() {
	total := len(e.questions)
	e.phase = PhaseComplete
	e.result = model.Result{
		Score:           e.score,
		Total:           total,
		Percentage:      Percentage(e.score, total),
		DurationSeconds: int(math.Round(time.Since(e.startedAt).Seconds())),
	}
}

// Percentage converts a score into a 0-100 integer, rounding half away
// from zero.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Result returns the final outcome once the run is complete.
func (e *Engine) Result() (model.Result, bool) {
	if e.phase != PhaseComplete {
		return model.Result{}, false
	}
	return e.result, true
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Index returns the current question index.
func (e *Engine) Index() int {
	return e.current
}

// Total returns the number of questions in the run.
func (e *Engine) Total() int {
	return len(e.questions)
}

// Score returns the running score.
func (e *Engine) Score() int {
	return e.score
}

// TimeRemaining returns the seconds left for the current question.
func (e *Engine) TimeRemaining() int {
	return e.timeRemaining
}

// Selected returns the locked answer for the current question, or
// NoAnswer while the question is open.
func (e *Engine) Selected() int {
	return e.selected
}

// Question returns the current question.
func (e *Engine) Question() model.Question {
	return e.questions[e.current]
}

// Answers returns a copy of the per-question answer slots. Timed-out
// questions keep the NoAnswer marker.
func (e *Engine) Answers() []int {
	out := make([]int, len(e.answers))
	copy(out, e.answers)
	return out
}
