package report

import (
	"context"
	"fmt"
	"time"

	"shift_report_bot/internal/domain/workflow"
)

// ShiftSummary keeps the numeric takeaways of a closed shift for later statistics.
type ShiftSummary struct {
	ID         int64
	UserID     int64
	Place      string
	Visitors   int64
	Revenue    int64
	ReportedAt time.Time
}

// SummaryRepository stores shift summaries.
type SummaryRepository interface {
	SaveShiftSummary(ctx context.Context, s *ShiftSummary) error
}

// SummaryFromAnswers extracts a ShiftSummary from a finished shift closing.
func SummaryFromAnswers(userID int64, answers workflow.Answers, at time.Time) (*ShiftSummary, error) {
	s := &ShiftSummary{UserID: userID, Place: answers["place"].Text, ReportedAt: at}
	var err error
	if s.Visitors, err = answers["visitors"].Int(); err != nil {
		return nil, fmt.Errorf("parsing visitors: %w", err)
	}
	if s.Revenue, err = answers["revenue"].Int(); err != nil {
		return nil, fmt.Errorf("parsing revenue: %w", err)
	}
	return s, nil
}
