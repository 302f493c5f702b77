package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("report not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns the user's reports, newest first.
func (r *Repository) List(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, target, payload, created_at, updated_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]Report, 0)
	for rows.Next() {
		var report Report
		if err := rows.Scan(&report.ID, &report.UserID, &report.Title, &report.Target, &report.Payload, &report.CreatedAt, &report.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}

	return reports, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Report, error) {
	var report Report
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, target, payload, created_at, updated_at
		FROM reports
		WHERE id = $1
	`, id).Scan(&report.ID, &report.UserID, &report.Title, &report.Target, &report.Payload, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrNotFound
		}
		return Report{}, fmt.Errorf("query report: %w", err)
	}

	return report, nil
}

func (r *Repository) Create(ctx context.Context, userID string, input ReportInput) (Report, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Report{}, fmt.Errorf("generate report id: %w", err)
	}

	now := time.Now().UTC()
	report := Report{
		ID:        id.String(),
		UserID:    userID,
		Title:     input.Title,
		Target:    input.Target,
		Payload:   input.Payload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reports (id, user_id, title, target, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, report.ID, report.UserID, report.Title, report.Target, []byte(report.Payload), now)
	if err != nil {
		return Report{}, fmt.Errorf("insert report: %w", err)
	}

	return report, nil
}

// Delete removes the report only when it belongs to userID.
func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM reports
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleted report rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
