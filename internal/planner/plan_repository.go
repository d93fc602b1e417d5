package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PlanRepository is a database-backed repository for meal plan records.
//
// The orchestrator is the only writer after creation. Both terminal
// transitions are guarded with `AND status = 'pending'` so a record can
// complete at most once even if a retry endpoint races a running task.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

const planColumns = `id, user_id, auth_uid, start_date, end_date, meal_types,
	dietary_preferences, dietary_restrictions, cuisine_types, complexity_levels,
	status, plan_data, error_detail, created_at, completed_at`

// Insert stores a new plan record.
func (r *PlanRepository) Insert(ctx context.Context, rec *PlanRecord) error {
	mealTypes, err := marshalList(rec.MealTypes)
	if err != nil {
		return err
	}
	preferences, err := marshalList(rec.DietaryPreferences)
	if err != nil {
		return err
	}
	restrictions, err := marshalList(rec.DietaryRestrictions)
	if err != nil {
		return err
	}
	cuisines, err := marshalList(rec.CuisineTypes)
	if err != nil {
		return err
	}
	complexity, err := marshalList(rec.ComplexityLevels)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO meal_plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, NULL)`,
		rec.ID, rec.UserID, rec.AuthUID, rec.StartDate, rec.EndDate,
		mealTypes, preferences, restrictions, cuisines, complexity,
		rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return nil
}

// GetByID retrieves a plan record by its ID. Returns nil, nil if not found.
func (r *PlanRepository) GetByID(ctx context.Context, id string) (*PlanRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM meal_plans WHERE id = ?`, id)
	rec, err := scanPlan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan by ID: %w", err)
	}
	return rec, nil
}

// ListByUser retrieves all plan records for a user, newest first.
func (r *PlanRepository) ListByUser(ctx context.Context, userID string) ([]PlanRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM meal_plans WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	defer rows.Close()
	return collectPlans(rows)
}

// ListRecentCompleted retrieves the N most recent completed plans for a
// user, used as variety context when building prompts.
func (r *PlanRepository) ListRecentCompleted(ctx context.Context, userID string, limit int) ([]PlanRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM meal_plans
		WHERE user_id = ? AND status = ?
		ORDER BY created_at DESC LIMIT ?`,
		userID, StatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed meal plans: %w", err)
	}
	defer rows.Close()
	return collectPlans(rows)
}

// Complete transitions a pending record to completed with its plan data.
// Returns false if the record was not in pending state.
func (r *PlanRepository) Complete(ctx context.Context, id string, data *PlanData, at time.Time) (bool, error) {
	planJSON, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("failed to marshal plan data: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE meal_plans SET status = ?, plan_data = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		StatusCompleted, string(planJSON), at, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to complete meal plan: %w", err)
	}
	return rowsAffected(res)
}

// Fail transitions a pending record to error with the failure detail.
// Returns false if the record was not in pending state.
func (r *PlanRepository) Fail(ctx context.Context, id string, detail string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meal_plans SET status = ?, error_detail = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		StatusError, detail, at, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark meal plan as error: %w", err)
	}
	return rowsAffected(res)
}

// ResetForRetry transitions an errored record back to pending, clearing
// the previous outcome. Returns false if the record was not in error state.
func (r *PlanRepository) ResetForRetry(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meal_plans SET status = ?, plan_data = NULL, error_detail = NULL, completed_at = NULL
		WHERE id = ? AND status = ?`,
		StatusPending, id, StatusError)
	if err != nil {
		return false, fmt.Errorf("failed to reset meal plan for retry: %w", err)
	}
	return rowsAffected(res)
}

// Delete removes a plan record owned by the given user.
func (r *PlanRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM meal_plans WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete meal plan: %w", err)
	}
	return rowsAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*PlanRecord, error) {
	var rec PlanRecord
	var mealTypes, preferences, restrictions, cuisines, complexity string
	var planData, errorDetail sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.AuthUID, &rec.StartDate, &rec.EndDate,
		&mealTypes, &preferences, &restrictions, &cuisines, &complexity,
		&rec.Status, &planData, &errorDetail, &rec.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalLists(map[*[]string]string{
		&rec.MealTypes:           mealTypes,
		&rec.DietaryPreferences:  preferences,
		&rec.DietaryRestrictions: restrictions,
		&rec.CuisineTypes:        cuisines,
		&rec.ComplexityLevels:    complexity,
	}); err != nil {
		return nil, err
	}

	if planData.Valid && planData.String != "" {
		var data PlanData
		if err := json.Unmarshal([]byte(planData.String), &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan data: %w", err)
		}
		rec.PlanData = &data
	}
	if errorDetail.Valid {
		rec.ErrorDetail = errorDetail.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}
	return &rec, nil
}

func collectPlans(rows *sql.Rows) ([]PlanRecord, error) {
	var records []PlanRecord
	for rows.Next() {
		rec, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal plan rows: %w", err)
	}
	return records, nil
}

func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to marshal list: %w", err)
	}
	return string(data), nil
}

func unmarshalLists(fields map[*[]string]string) error {
	for dest, raw := range fields {
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), dest); err != nil {
			return fmt.Errorf("failed to unmarshal list column: %w", err)
		}
	}
	return nil
}
