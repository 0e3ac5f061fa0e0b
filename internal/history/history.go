// Package history persists quiz attempts and the derived leaderboard.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/okalkan/diziquiz/internal/kv"
	"github.com/okalkan/diziquiz/internal/model"
)

// maxHistory caps the stored attempt list.
const maxHistory = 50

// recentCount is the number of attempts surfaced in Stats.
const recentCount = 5

// Store records completed attempts and maintains per-user aggregates.
// All read-modify-write sequences are serialized so re-entrant UI
// triggers cannot lose updates.
type Store struct {
	kv kv.Store
	mu sync.Mutex

	lastID int64
}

// New constructs an attempt store over the key-value backend.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

// RecordAttempt appends a completed run to the history (newest first,
// capped at 50) and folds it into the user's leaderboard entry. A corrupt
// or missing stored document degrades to empty rather than blocking the
// write.
func (s *Store) RecordAttempt(ctx context.Context, username string, res model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	attempt := model.Attempt{
		ID:              s.nextID(now),
		Score:           res.Score,
		TotalQuestions:  res.Total,
		Percentage:      res.Percentage,
		Date:            now,
		DurationSeconds: res.DurationSeconds,
	}

	attempts := s.loadAttempts(ctx)
	attempts = append([]model.Attempt{attempt}, attempts...)
	if len(attempts) > maxHistory {
		attempts = attempts[:maxHistory]
	}
	if err := s.save(ctx, kv.KeyQuizHistory, attempts); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	entries := s.loadLeaderboard(ctx)
	entries = upsertEntry(entries, username, res, now)
	if err := s.save(ctx, kv.KeyLeaderboard, entries); err != nil {
		return fmt.Errorf("failed to save leaderboard: %w", err)
	}
	return nil
}

// Attempt IDs are creation timestamps in milliseconds, bumped when two
// runs land in the same millisecond so they stay monotonic.
func (s *Store) nextID(now time.Time) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func upsertEntry(entries []model.LeaderboardEntry, username string, res model.Result, now time.Time) []model.LeaderboardEntry {
	for i, entry := range entries {
		if entry.Username != username {
			continue
		}
		oldCount := entry.TotalQuizzes
		entries[i].BestScore = max(entry.BestScore, res.Score)
		entries[i].TotalQuizzes = oldCount + 1
		entries[i].AverageScore = (entry.AverageScore*float64(oldCount) + float64(res.Percentage)) / float64(oldCount+1)
		entries[i].LastPlayDate = now
		return entries
	}
	return append(entries, model.LeaderboardEntry{
		Username:     username,
		BestScore:    res.Score,
		TotalQuizzes: 1,
		AverageScore: float64(res.Percentage),
		LastPlayDate: now,
	})
}

// History returns stored attempts, newest first. A missing key yields an
// empty list.
func (s *Store) History(ctx context.Context) ([]model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history(ctx)
}

func (s *Store) history(ctx context.Context) ([]model.Attempt, error) {
	data, err := s.kv.Get(ctx, kv.KeyQuizHistory)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	var attempts []model.Attempt
	if err := json.Unmarshal(data, &attempts); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return attempts, nil
}

// Stats derives aggregate numbers from the stored history. An empty
// history yields the zero value.
func (s *Store) Stats(ctx context.Context) (model.Stats, error) {
	attempts, err := s.History(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	if len(attempts) == 0 {
		return model.Stats{}, nil
	}

	best := attempts[0]
	sum := 0
	for _, a := range attempts {
		sum += a.Percentage
		// Ties keep the first-encountered (most recent) attempt.
		if a.Percentage > best.Percentage {
			best = a
		}
	}
	recent := attempts
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	return model.Stats{
		TotalAttempts:     len(attempts),
		BestScore:         &best,
		AveragePercentage: int(math.Round(float64(sum) / float64(len(attempts)))),
		RecentAttempts:    recent,
	}, nil
}

// Leaderboard returns all entries sorted by best score, then average
// score, then username for a deterministic order.
func (s *Store) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.kv.Get(ctx, kv.KeyLeaderboard)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BestScore != entries[j].BestScore {
			return entries[i].BestScore > entries[j].BestScore
		}
		if entries[i].AverageScore != entries[j].AverageScore {
			return entries[i].AverageScore > entries[j].AverageScore
		}
		return entries[i].Username < entries[j].Username
	})
	return entries, nil
}

// ClearHistory deletes the stored attempt list. The leaderboard is a
// separate key and is deliberately left untouched.
func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, kv.KeyQuizHistory); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// ClearLeaderboard deletes all leaderboard entries.
func (s *Store) ClearLeaderboard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, kv.KeyLeaderboard); err != nil {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}
	return nil
}

func (s *Store) loadAttempts(ctx context.Context) []model.Attempt {
	attempts, err := s.history(ctx)
	if err != nil {
		return nil
	}
	return attempts
}

func (s *Store) loadLeaderboard(ctx context.Context) []model.LeaderboardEntry {
	data, err := s.kv.Get(ctx, kv.KeyLeaderboard)
	if err != nil {
		return nil
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

func (s *Store) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, data)
}
