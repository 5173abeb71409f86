package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/entity"
	"school-attendance/backend/internal/pkg/calendar"
	"school-attendance/backend/internal/pkg/repository/postgresql"
	"school-attendance/backend/internal/repository/postgres"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Repository is the attendance ledger: the single owner of the
// per-student-per-day record and its state machine. Uniqueness and write
// ordering are enforced by the database, not in-process locks, so several
// server instances can run against the same store.
type Repository struct {
	*postgresql.Database
	location *time.Location
}

func NewRepository(database *postgresql.Database, location *time.Location) *Repository {
	return &Repository{Database: database, location: location}
}

// CheckIn creates the day's record for the student with status present.
// A second check-in the same day is an error, not a no-op: the conditional
// insert loses against any existing row, whoever created it.
func (r Repository) CheckIn(ctx context.Context, studentID int, at time.Time) (Record, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return Record{}, err
	}

	day := calendar.DayOf(at, r.location)

	row := checkInRow{
		StudentID:     studentID,
		AttendanceDay: day.String(),
		CheckInTime:   at,
		Status:        entity.StatusPresent,
		CreatedAt:     time.Now(),
		CreatedBy:     claims.UserId,
	}

	_, err = r.NewInsert().
		Model(&row).
		On("CONFLICT (student_id, attendance_day) WHERE deleted_at IS NULL DO NOTHING").
		Returning("id").
		Exec(ctx, &row.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, web.NewRequestError(postgres.ErrDuplicateCheckIn, http.StatusConflict)
	}
	if err != nil {
		return Record{}, web.NewRequestError(errors.Wrap(err, "creating attendance on check-in"), http.StatusBadRequest)
	}

	return Record{
		ID:          row.ID,
		StudentID:   studentID,
		Day:         &day,
		Status:      entity.StatusPresent,
		CheckInTime: &at,
	}, nil
}

// CheckOut closes the day's record. It requires an open check-in: a record
// for at's day with check_in_time set and check_out_time still null.
func (r Repository) CheckOut(ctx context.Context, studentID int, at time.Time) (Record, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return Record{}, err
	}

	day := calendar.DayOf(at, r.location)

	q := r.NewUpdate().
		Table("attendance").
		Where("deleted_at IS NULL AND student_id = ? AND attendance_day = ?", studentID, day.String()).
		Where("check_in_time IS NOT NULL AND check_out_time IS NULL AND check_in_time <= ?", at).
		Set("check_out_time = ?", at).
		Set("updated_at = ?", time.Now()).
		Set("updated_by = ?", claims.UserId)

	result, err := q.Exec(ctx)
	if err != nil {
		return Record{}, web.NewRequestError(errors.Wrap(err, "updating attendance on check-out"), http.StatusBadRequest)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return Record{}, web.NewRequestError(errors.Wrap(err, "checking check-out result"), http.StatusInternalServerError)
	}
	if rows == 0 {
		return Record{}, r.classifyCheckOutFailure(ctx, studentID, day, at)
	}

	return r.getByDay(ctx, studentID, day)
}

// classifyCheckOutFailure decides which error kind a rejected check-out
// update maps to by re-reading the row the guard saw.
func (r Repository) classifyCheckOutFailure(ctx context.Context, studentID int, day date.Date, at time.Time) error {
	rec, err := r.getByDay(ctx, studentID, day)
	if errors.Is(err, postgres.ErrNotFound) {
		return web.NewRequestError(postgres.ErrNoCheckInFound, http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	return classifyCheckOut(rec, at)
}

// classifyCheckOut inspects the row the guard rejected. No open check-in and
// a closed day both read as "nothing to check out of"; an at before the
// check-in is a time ordering error; anything else lost a write race.
func classifyCheckOut(rec Record, at time.Time) error {
	if rec.CheckInTime == nil || rec.CheckOutTime != nil {
		return web.NewRequestError(postgres.ErrNoCheckInFound, http.StatusNotFound)
	}
	if at.Before(*rec.CheckInTime) {
		return web.NewRequestError(postgres.ErrInvalidTimeOrder, http.StatusBadRequest)
	}

	return web.NewRequestError(postgres.ErrConflict, http.StatusConflict)
}

// SetStatus overwrites status, note and recorded_by on an existing record.
// Check-in and check-out times are never touched here. Authorization
// (homeroom teacher of the student's class, or admin) is the controller's
// job via the class directory; the ledger only records who did it.
func (r Repository) SetStatus(ctx context.Context, request SetStatusRequest) (Record, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return Record{}, err
	}

	if err := r.ValidateStruct(&request, "ID", "Status"); err != nil {
		return Record{}, err
	}

	if !entity.ValidStatus(*request.Status) {
		return Record{}, web.NewRequestError(errors.Errorf("unknown attendance status %q", *request.Status), http.StatusBadRequest)
	}

	q := r.NewUpdate().
		Table("attendance").
		Where("deleted_at IS NULL AND id = ?", request.ID).
		Set("status = ?", *request.Status).
		Set("recorded_by = ?", claims.UserId).
		Set("updated_at = ?", time.Now()).
		Set("updated_by = ?", claims.UserId)
	if request.Note != nil {
		q.Set("note = ?", *request.Note)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return Record{}, web.NewRequestError(errors.Wrap(err, "updating attendance status"), http.StatusBadRequest)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return Record{}, web.NewRequestError(errors.Wrap(err, "checking status update result"), http.StatusInternalServerError)
	}
	if rows == 0 {
		return Record{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}

	return r.GetById(ctx, request.ID)
}

// Materialize creates or overwrites the record for (studentID, day) with the
// given status. The leave workflow calls this inside its own transaction so
// verification and materialization commit together. Times are preserved when
// the row already exists. The conflict target is the live-row index, so a
// soft-deleted record never blocks materialization: a fresh row is written
// instead.
func Materialize(ctx context.Context, db bun.IDB, studentID int, day, status string, verifierID int) error {
	query := `
		INSERT INTO attendance (student_id, attendance_day, status, recorded_by, created_at, created_by)
		VALUES (?, ?, ?, ?, now(), ?)
		ON CONFLICT (student_id, attendance_day) WHERE deleted_at IS NULL
		DO UPDATE SET
			status = EXCLUDED.status,
			recorded_by = EXCLUDED.recorded_by,
			updated_at = now(),
			updated_by = EXCLUDED.created_by
	`

	_, err := db.ExecContext(ctx, query, studentID, day, status, verifierID, verifierID)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "materializing attendance record"), http.StatusBadRequest)
	}

	return nil
}

// GetOrMaterialize returns the existing record for (studentID, day) or a
// synthesized absent record. The synthesized record is never persisted; an
// unrecorded day is absent by definition, not by batch job.
func (r Repository) GetOrMaterialize(ctx context.Context, studentID int, day date.Date) (Record, error) {
	rec, err := r.getByDay(ctx, studentID, day)
	if errors.Is(err, postgres.ErrNotFound) {
		return Record{
			StudentID: studentID,
			Day:       &day,
			Status:    entity.StatusAbsent,
		}, nil
	}
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

// TodayByStudent is GetOrMaterialize for the current school day.
func (r Repository) TodayByStudent(ctx context.Context, studentID int) (Record, error) {
	return r.GetOrMaterialize(ctx, studentID, calendar.Today(r.location))
}

func (r Repository) GetById(ctx context.Context, id int) (Record, error) {
	query := `
		SELECT
			a.id,
			a.student_id,
			a.attendance_day,
			a.status,
			a.check_in_time,
			a.check_out_time,
			a.note,
			a.recorded_by
		FROM attendance a
		WHERE a.deleted_at IS NULL AND a.id = ?
	`

	var (
		rec       Record
		dayString string
	)
	err := r.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.StudentID,
		&dayString,
		&rec.Status,
		&rec.CheckInTime,
		&rec.CheckOutTime,
		&rec.Note,
		&rec.RecordedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return Record{}, web.NewRequestError(errors.Wrap(err, "selecting attendance record"), http.StatusBadRequest)
	}

	day, err := date.ParseDate(dayString)
	if err != nil {
		return Record{}, web.NewRequestError(errors.Wrap(err, "converting attendance_day to date.Date"), http.StatusBadRequest)
	}
	rec.Day = &day

	return rec, nil
}

func (r Repository) getByDay(ctx context.Context, studentID int, day date.Date) (Record, error) {
	query := `
		SELECT
			a.id,
			a.student_id,
			a.attendance_day,
			a.status,
			a.check_in_time,
			a.check_out_time,
			a.note,
			a.recorded_by
		FROM attendance a
		WHERE a.deleted_at IS NULL AND a.student_id = ? AND a.attendance_day = ?
	`

	var (
		rec       Record
		dayString string
	)
	err := r.QueryRowContext(ctx, query, studentID, day.String()).Scan(
		&rec.ID,
		&rec.StudentID,
		&dayString,
		&rec.Status,
		&rec.CheckInTime,
		&rec.CheckOutTime,
		&rec.Note,
		&rec.RecordedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return Record{}, web.NewRequestError(errors.Wrap(err, "selecting attendance record"), http.StatusBadRequest)
	}

	parsed, err := date.ParseDate(dayString)
	if err != nil {
		return Record{}, web.NewRequestError(errors.Wrap(err, "converting attendance_day to date.Date"), http.StatusBadRequest)
	}
	rec.Day = &parsed

	return rec, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, 0, err
	}

	whereQuery := `
		WHERE
			a.deleted_at IS NULL
	`

	if filter.Search != nil {
		search := strings.Replace(*filter.Search, "'", "''", -1)
		whereQuery += fmt.Sprintf(` AND (u.full_name ilike '%s' OR u.nis ilike '%s')`, "%"+search+"%", "%"+search+"%")
	}
	if filter.ClassID != nil {
		whereQuery += fmt.Sprintf(` AND s.class_id = %d`, *filter.ClassID)
	}
	if filter.StudentID != nil {
		whereQuery += fmt.Sprintf(` AND a.student_id = %d`, *filter.StudentID)
	}
	if filter.Status != nil {
		if !entity.ValidStatus(*filter.Status) {
			return nil, 0, web.NewRequestError(errors.Errorf("unknown attendance status %q", *filter.Status), http.StatusBadRequest)
		}
		whereQuery += fmt.Sprintf(` AND a.status = '%s'`, *filter.Status)
	}
	if filter.DateFrom != nil {
		from, err := time.Parse("2006-01-02", *filter.DateFrom)
		if err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "date_from parse"), http.StatusBadRequest)
		}
		whereQuery += fmt.Sprintf(` AND a.attendance_day >= '%s'`, from.Format("2006-01-02"))
	}
	if filter.DateTo != nil {
		to, err := time.Parse("2006-01-02", *filter.DateTo)
		if err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "date_to parse"), http.StatusBadRequest)
		}
		whereQuery += fmt.Sprintf(` AND a.attendance_day <= '%s'`, to.Format("2006-01-02"))
	}

	orderQuery := "ORDER BY a.attendance_day desc, a.created_at desc"

	var limitQuery, offsetQuery string

	if filter.Page != nil && filter.Limit != nil {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}
	if filter.Limit != nil {
		limitQuery = fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}
	if filter.Offset != nil {
		offsetQuery = fmt.Sprintf(" OFFSET %d", *filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT
			a.id,
			a.student_id,
			u.full_name,
			u.nis,
			s.class_id,
			c.name,
			a.attendance_day,
			a.status,
			a.check_in_time,
			a.check_out_time,
			a.note,
			a.recorded_by
		FROM attendance a
		LEFT JOIN student s ON a.student_id = s.id
		LEFT JOIN users u ON s.user_id = u.id
		LEFT JOIN class c ON s.class_id = c.id
		%s %s %s %s
	`, whereQuery, orderQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting attendance list"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []GetListResponse

	for rows.Next() {
		var detail GetListResponse
		var dayString string

		if err = rows.Scan(
			&detail.ID,
			&detail.StudentID,
			&detail.StudentName,
			&detail.NIS,
			&detail.ClassID,
			&detail.ClassName,
			&dayString,
			&detail.Status,
			&detail.CheckInTime,
			&detail.CheckOutTime,
			&detail.Note,
			&detail.RecordedBy); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning attendance list"), http.StatusBadRequest)
		}

		day, err := date.ParseDate(dayString)
		if err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "converting attendance_day to date.Date"), http.StatusBadRequest)
		}
		detail.Day = &day

		list = append(list, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "reading attendance list"), http.StatusInternalServerError)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(a.id)
		FROM attendance a
		LEFT JOIN student s ON a.student_id = s.id
		LEFT JOIN users u ON s.user_id = u.id
		LEFT JOIN class c ON s.class_id = c.id
		%s
	`, whereQuery)

	count := 0
	if err = r.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning attendance count"), http.StatusInternalServerError)
	}

	return list, count, nil
}

// HistoryByStudent lists a student's records, newest first, optionally
// bounded by a date range.
func (r Repository) HistoryByStudent(ctx context.Context, studentID int, dateFrom, dateTo *string) ([]Record, error) {
	filter := Filter{StudentID: &studentID, DateFrom: dateFrom, DateTo: dateTo}

	list, _, err := r.GetList(ctx, filter)
	if err != nil {
		return nil, err
	}

	history := make([]Record, 0, len(list))
	for _, row := range list {
		rec := Record{
			ID:           row.ID,
			Day:          row.Day,
			CheckInTime:  row.CheckInTime,
			CheckOutTime: row.CheckOutTime,
			Note:         row.Note,
			RecordedBy:   row.RecordedBy,
		}
		if row.StudentID != nil {
			rec.StudentID = *row.StudentID
		}
		if row.Status != nil {
			rec.Status = *row.Status
		}
		history = append(history, rec)
	}

	return history, nil
}

// ClassByDate lists every student of a class for one day. Students without a
// record come back as absent with a zero record id; the rows are computed,
// never written back.
func (r Repository) ClassByDate(ctx context.Context, classID int, day date.Date) ([]ClassDayRow, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			COALESCE(a.id, 0),
			s.id,
			u.full_name,
			u.nis,
			COALESCE(a.status, 'absent'),
			a.check_in_time,
			a.check_out_time,
			a.note
		FROM student s
		LEFT JOIN users u ON s.user_id = u.id
		LEFT JOIN attendance a
			ON a.student_id = s.id AND a.attendance_day = ? AND a.deleted_at IS NULL
		WHERE s.deleted_at IS NULL AND s.class_id = ?
		ORDER BY u.full_name
	`

	rows, err := r.QueryContext(ctx, query, day.String(), classID)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting class attendance"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []ClassDayRow

	for rows.Next() {
		var row ClassDayRow
		if err = rows.Scan(
			&row.RecordID,
			&row.StudentID,
			&row.StudentName,
			&row.NIS,
			&row.Status,
			&row.CheckInTime,
			&row.CheckOutTime,
			&row.Note); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning class attendance"), http.StatusBadRequest)
		}
		list = append(list, row)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading class attendance"), http.StatusInternalServerError)
	}

	return list, nil
}

func (r Repository) Delete(ctx context.Context, id int) error {
	return r.DeleteRow(ctx, "attendance", id)
}
