package database

import (
	"context"
	"database/sql"
	"fmt"

	"shift_report_bot/internal/domain/report"
)

var _ report.SummaryRepository = (*PostgresShiftSummaryRepository)(nil)

type PostgresShiftSummaryRepository struct {
	db *sql.DB
}

func NewPostgresShiftSummaryRepository(db *sql.DB) *PostgresShiftSummaryRepository {
	return &PostgresShiftSummaryRepository{db: db}
}

func (r *PostgresShiftSummaryRepository) SaveShiftSummary(ctx context.Context, s *report.ShiftSummary) error {
	query := `INSERT INTO shift_summaries (user_id, place, visitors, revenue, reported_at)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, s.UserID, s.Place, s.Visitors, s.Revenue, s.ReportedAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("error saving shift summary: %w", err)
	}
	return nil
}
