package report

import (
	"context"

	"school-attendance/backend/internal/repository/postgres/report"
)

type Report interface {
	GetStats(ctx context.Context, filter report.Filter) (report.Stats, error)
	GetDailySummary(ctx context.Context, day string, classID *int) (report.DailySummary, error)
	GetMonthlyTrend(ctx context.Context, filter report.Filter) ([]report.MonthlyTrendRow, error)
	GetStudentReport(ctx context.Context, studentID int, filter report.Filter) (report.StudentReport, error)
	GetClassReport(ctx context.Context, classID int, filter report.Filter) ([]report.ClassReportRow, error)
}
