package report

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/pkg/calendar"
	"school-attendance/backend/internal/pkg/repository/postgresql"
	"school-attendance/backend/internal/repository/postgres"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database

	location *time.Location
}

func NewRepository(database *postgresql.Database, location *time.Location) *Repository {
	return &Repository{Database: database, location: location}
}

func rangeWhere(filter Filter) string {
	where := ""
	if filter.ClassID != nil {
		where += fmt.Sprintf(" AND s.class_id = %d", *filter.ClassID)
	}
	if filter.DateFrom != nil {
		where += fmt.Sprintf(" AND a.attendance_day >= '%s'", filter.DateFrom.String())
	}
	if filter.DateTo != nil {
		where += fmt.Sprintf(" AND a.attendance_day <= '%s'", filter.DateTo.String())
	}
	if filter.Month != nil {
		where += fmt.Sprintf(" AND to_char(a.attendance_day, 'YYYY-MM') = '%s'", *filter.Month)
	}
	return where
}

func fillPercents(s *Stats) {
	s.Total = s.Present + s.Excused + s.Sick + s.Absent
	if s.Total == 0 {
		return
	}
	total := float64(s.Total)
	s.PresentPercent = float64(s.Present) * 100 / total
	s.ExcusedPercent = float64(s.Excused) * 100 / total
	s.SickPercent = float64(s.Sick) * 100 / total
	s.AbsentPercent = float64(s.Absent) * 100 / total
}

// GetStats aggregates recorded attendance by status over the filter range.
func (r Repository) GetStats(ctx context.Context, filter Filter) (Stats, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return Stats{}, err
	}

	query := fmt.Sprintf(`
		SELECT
			count(*) FILTER (WHERE a.status = 'present'),
			count(*) FILTER (WHERE a.status = 'excused'),
			count(*) FILTER (WHERE a.status = 'sick'),
			count(*) FILTER (WHERE a.status = 'absent')
		FROM attendance a
		JOIN student s ON s.id = a.student_id AND s.deleted_at IS NULL
		WHERE a.deleted_at IS NULL %s
	`, rangeWhere(filter))

	var stats Stats
	if err = r.QueryRowContext(ctx, query).Scan(
		&stats.Present, &stats.Excused, &stats.Sick, &stats.Absent); err != nil {
		return Stats{}, web.NewRequestError(errors.Wrap(err, "scanning attendance stats"), http.StatusInternalServerError)
	}
	fillPercents(&stats)

	return stats, nil
}

// GetDailySummary reports one calendar day, counting enrolled students with
// no row at all as not_recorded.
func (r Repository) GetDailySummary(ctx context.Context, day string, classID *int) (DailySummary, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return DailySummary{}, err
	}

	if day == "" {
		day = calendar.Today(r.location).String()
	}

	classWhere := ""
	if classID != nil {
		classWhere = fmt.Sprintf(" AND s.class_id = %d", *classID)
	}

	query := fmt.Sprintf(`
		SELECT
			count(s.id),
			count(a.id) FILTER (WHERE a.status = 'present'),
			count(a.id) FILTER (WHERE a.status = 'excused'),
			count(a.id) FILTER (WHERE a.status = 'sick'),
			count(a.id) FILTER (WHERE a.status = 'absent')
		FROM student s
		LEFT JOIN attendance a
			ON a.student_id = s.id
			AND a.attendance_day = ?
			AND a.deleted_at IS NULL
		WHERE s.deleted_at IS NULL %s
	`, classWhere)

	summary := DailySummary{Day: day}
	if err = r.QueryRowContext(ctx, query, day).Scan(
		&summary.Students,
		&summary.Present, &summary.Excused, &summary.Sick, &summary.Absent); err != nil {
		return DailySummary{}, web.NewRequestError(errors.Wrap(err, "scanning daily summary"), http.StatusInternalServerError)
	}
	summary.NotRecorded = summary.Students - summary.Present - summary.Excused - summary.Sick - summary.Absent

	return summary, nil
}

// GetMonthlyTrend groups recorded attendance per month over the filter range.
func (r Repository) GetMonthlyTrend(ctx context.Context, filter Filter) ([]MonthlyTrendRow, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			to_char(a.attendance_day, 'YYYY-MM') AS month,
			count(*) FILTER (WHERE a.status = 'present'),
			count(*) FILTER (WHERE a.status = 'excused'),
			count(*) FILTER (WHERE a.status = 'sick'),
			count(*) FILTER (WHERE a.status = 'absent')
		FROM attendance a
		JOIN student s ON s.id = a.student_id AND s.deleted_at IS NULL
		WHERE a.deleted_at IS NULL %s
		GROUP BY month
		ORDER BY month
	`, rangeWhere(filter))

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting monthly trend"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []MonthlyTrendRow
	for rows.Next() {
		var row MonthlyTrendRow
		if err = rows.Scan(&row.Month, &row.Present, &row.Excused, &row.Sick, &row.Absent); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning monthly trend"), http.StatusBadRequest)
		}
		list = append(list, row)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading monthly trend"), http.StatusInternalServerError)
	}

	return list, nil
}

// GetStudentReport builds one student's attendance report card over the range.
func (r Repository) GetStudentReport(ctx context.Context, studentID int, filter Filter) (StudentReport, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return StudentReport{}, err
	}

	var report StudentReport

	headQuery := `
		SELECT
			s.id,
			u.full_name,
			coalesce(u.nis, ''),
			coalesce(c.name, '')
		FROM student s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN class c ON c.id = s.class_id
		WHERE s.deleted_at IS NULL AND s.id = ?
	`
	err = r.QueryRowContext(ctx, headQuery, studentID).Scan(
		&report.StudentID, &report.FullName, &report.NIS, &report.ClassName)
	if errors.Is(err, sql.ErrNoRows) {
		return StudentReport{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return StudentReport{}, web.NewRequestError(errors.Wrap(err, "selecting student"), http.StatusInternalServerError)
	}

	rowsQuery := fmt.Sprintf(`
		SELECT
			to_char(a.attendance_day, 'YYYY-MM-DD'),
			a.status,
			to_char(a.check_in_time, 'HH24:MI'),
			to_char(a.check_out_time, 'HH24:MI'),
			a.note
		FROM attendance a
		JOIN student s ON s.id = a.student_id
		WHERE a.deleted_at IS NULL AND a.student_id = %d %s
		ORDER BY a.attendance_day
	`, studentID, rangeWhere(filter))

	rows, err := r.QueryContext(ctx, rowsQuery)
	if err != nil {
		return StudentReport{}, web.NewRequestError(errors.Wrap(err, "selecting student report"), http.StatusInternalServerError)
	}
	defer rows.Close()

	for rows.Next() {
		var row StudentReportRow
		if err = rows.Scan(&row.Day, &row.Status, &row.CheckInTime, &row.CheckOutTime, &row.Note); err != nil {
			return StudentReport{}, web.NewRequestError(errors.Wrap(err, "scanning student report"), http.StatusBadRequest)
		}
		report.Rows = append(report.Rows, row)

		switch row.Status {
		case "present":
			report.Stats.Present++
		case "excused":
			report.Stats.Excused++
		case "sick":
			report.Stats.Sick++
		case "absent":
			report.Stats.Absent++
		}
	}
	if err = rows.Err(); err != nil {
		return StudentReport{}, web.NewRequestError(errors.Wrap(err, "reading student report"), http.StatusInternalServerError)
	}
	fillPercents(&report.Stats)

	return report, nil
}

// GetClassReport lists per-student totals for one class over the range.
func (r Repository) GetClassReport(ctx context.Context, classID int, filter Filter) ([]ClassReportRow, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, err
	}

	filter.ClassID = &classID

	query := fmt.Sprintf(`
		SELECT
			s.id,
			u.full_name,
			coalesce(u.nis, ''),
			count(a.id) FILTER (WHERE a.status = 'present'),
			count(a.id) FILTER (WHERE a.status = 'excused'),
			count(a.id) FILTER (WHERE a.status = 'sick'),
			count(a.id) FILTER (WHERE a.status = 'absent')
		FROM student s
		JOIN users u ON u.id = s.user_id AND u.deleted_at IS NULL
		LEFT JOIN attendance a
			ON a.student_id = s.id
			AND a.deleted_at IS NULL %s
		WHERE s.deleted_at IS NULL AND s.class_id = %d
		GROUP BY s.id, u.full_name, u.nis
		ORDER BY u.full_name
	`, dayRangeOn(filter), classID)

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting class report"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []ClassReportRow
	for rows.Next() {
		var row ClassReportRow
		if err = rows.Scan(
			&row.StudentID, &row.FullName, &row.NIS,
			&row.Present, &row.Excused, &row.Sick, &row.Absent); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning class report"), http.StatusBadRequest)
		}
		total := row.Present + row.Excused + row.Sick + row.Absent
		if total > 0 {
			row.PresentPercent = float64(row.Present) * 100 / float64(total)
		}
		list = append(list, row)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading class report"), http.StatusInternalServerError)
	}

	return list, nil
}

// dayRangeOn renders the date filters as extra LEFT JOIN conditions so rows
// outside the range drop out of the counts without dropping the student.
func dayRangeOn(filter Filter) string {
	on := ""
	if filter.DateFrom != nil {
		on += fmt.Sprintf(" AND a.attendance_day >= '%s'", filter.DateFrom.String())
	}
	if filter.DateTo != nil {
		on += fmt.Sprintf(" AND a.attendance_day <= '%s'", filter.DateTo.String())
	}
	if filter.Month != nil {
		on += fmt.Sprintf(" AND to_char(a.attendance_day, 'YYYY-MM') = '%s'", *filter.Month)
	}
	return on
}
