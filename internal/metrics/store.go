// Package metrics persists per-call LLM execution records for usage
// tracking.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ExecutionMetric records metadata for a single LLM call.
type ExecutionMetric struct {
	Task            string
	Model           string
	PromptChars     int
	CompletionChars int
	LatencyMS       int64
	Timestamp       time.Time
}

// Recorder accepts execution metrics. Satisfied by *Store.
type Recorder interface {
	Record(ctx context.Context, m ExecutionMetric) error
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric. A zero timestamp is filled with the current time.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO execution_metrics
		(task, model, prompt_chars, completion_chars, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.Task, m.Model, m.PromptChars, m.CompletionChars, m.LatencyMS, ts)
	if err != nil {
		return fmt.Errorf("failed to record execution metric: %w", err)
	}
	return nil
}

// DailyUsage represents call totals for a single day.
type DailyUsage struct {
	Date            string `json:"date"`
	Calls           int    `json:"calls"`
	PromptChars     int    `json:"promptChars"`
	CompletionChars int    `json:"completionChars"`
}

// GetDailyUsage aggregates usage for the last N days, oldest day first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `SELECT date(timestamp),
		COUNT(*), SUM(prompt_chars), SUM(completion_chars)
		FROM execution_metrics
		WHERE timestamp >= ?
		GROUP BY date(timestamp)
		ORDER BY date(timestamp)`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Calls, &u.PromptChars, &u.CompletionChars); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage row: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily usage rows: %w", err)
	}
	return results, nil
}

// Cleanup removes records older than the given number of days and returns
// how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM execution_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up execution metrics: %w", err)
	}
	return res.RowsAffected()
}
