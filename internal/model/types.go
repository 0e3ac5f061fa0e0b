// Package model defines shared data structures.
package model

import "time"

// Config defines runtime quiz settings.
type Config struct {
	TimerSeconds  int
	QuestionsPath string
	Backend       string
	Username      string
}

// Question is a single multiple-choice question.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

// Attempt records the outcome of one completed quiz run.
type Attempt struct {
	ID              string    `json:"id"`
	Score           int       `json:"score"`
	TotalQuestions  int       `json:"totalQuestions"`
	Percentage      int       `json:"percentage"`
	Date            time.Time `json:"date"`
	DurationSeconds int       `json:"duration,omitempty"`
}

// LeaderboardEntry aggregates all attempts of one user.
type LeaderboardEntry struct {
	Username     string    `json:"username"`
	BestScore    int       `json:"bestScore"`
	TotalQuizzes int       `json:"totalQuizzes"`
	AverageScore float64   `json:"averageScore"`
	LastPlayDate time.Time `json:"lastPlayDate"`
}

// Identity is the locally stored active user record.
type Identity struct {
	Username  string    `json:"username"`
	LoginDate time.Time `json:"loginDate"`
}

// Result is the terminal outcome of a quiz session.
type Result struct {
	Score           int
	Total           int
	Percentage      int
	DurationSeconds int
}

// Stats summarizes the stored attempt history.
type Stats struct {
	TotalAttempts     int
	BestScore         *Attempt
	AveragePercentage int
	RecentAttempts    []Attempt
}
