package leave

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/entity"
	"school-attendance/backend/internal/pkg/calendar"
	"school-attendance/backend/internal/pkg/repository/postgresql"
	"school-attendance/backend/internal/repository/postgres"
	"school-attendance/backend/internal/repository/postgres/attendance"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Repository is the leave workflow: it owns request submission, amendment,
// withdrawal and the one-way verification that drives the attendance ledger.
type Repository struct {
	*postgresql.Database
	location *time.Location
}

func NewRepository(database *postgresql.Database, location *time.Location) *Repository {
	return &Repository{Database: database, location: location}
}

// Submit files a request in pending state. The day must not be in the past
// of the school's calendar, and the partial unique index on pending rows
// rejects a second pending request for the same (student, day).
func (r Repository) Submit(ctx context.Context, request SubmitRequest) (Request, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return Request{}, err
	}

	if err := r.ValidateStruct(&request, "StudentID", "LeaveDay", "Kind", "Reason"); err != nil {
		return Request{}, err
	}

	if !entity.ValidKind(*request.Kind) {
		return Request{}, web.NewRequestError(errors.Errorf("unknown leave kind %q", *request.Kind), http.StatusBadRequest)
	}

	day, err := date.ParseDate(*request.LeaveDay)
	if err != nil {
		return Request{}, web.NewRequestError(errors.Wrap(err, "parsing leave day"), http.StatusBadRequest)
	}

	if calendar.BeforeToday(day, r.location) {
		return Request{}, web.NewRequestError(postgres.ErrPastDate, http.StatusBadRequest)
	}

	row := submitRow{
		StudentID: *request.StudentID,
		LeaveDay:  day.String(),
		Kind:      *request.Kind,
		Reason:    *request.Reason,
		Status:    entity.VerificationPending,
		CreatedAt: time.Now(),
		CreatedBy: claims.UserId,
	}

	_, err = r.NewInsert().
		Model(&row).
		On("CONFLICT (student_id, leave_day) WHERE status = 'pending' AND deleted_at IS NULL DO NOTHING").
		Returning("id").
		Exec(ctx, &row.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, web.NewRequestError(postgres.ErrDuplicatePending, http.StatusConflict)
	}
	if err != nil {
		return Request{}, web.NewRequestError(errors.Wrap(err, "creating leave request"), http.StatusBadRequest)
	}

	return Request{
		ID:        row.ID,
		StudentID: row.StudentID,
		Day:       &day,
		Kind:      row.Kind,
		Reason:    row.Reason,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
	}, nil
}

// Amend replaces the reason. Only the owning student may amend, and only
// while the request is still pending.
func (r Repository) Amend(ctx context.Context, request AmendRequest, actingStudentID int) error {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return err
	}

	if err := r.ValidateStruct(&request, "ID", "Reason"); err != nil {
		return err
	}

	q := r.NewUpdate().
		Table("leave_request").
		Where("deleted_at IS NULL AND id = ? AND student_id = ? AND status = ?",
			request.ID, actingStudentID, entity.VerificationPending).
		Set("reason = ?", *request.Reason).
		Set("updated_at = ?", time.Now()).
		Set("updated_by = ?", claims.UserId)

	result, err := q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating leave request"), http.StatusBadRequest)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "checking amend result"), http.StatusInternalServerError)
	}
	if rows == 0 {
		return r.classifyMutationFailure(ctx, request.ID, actingStudentID)
	}

	return nil
}

// Withdraw removes a pending request. Same ownership and pending
// preconditions as Amend.
func (r Repository) Withdraw(ctx context.Context, id, actingStudentID int) error {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return err
	}

	q := r.NewUpdate().
		Table("leave_request").
		Where("deleted_at IS NULL AND id = ? AND student_id = ? AND status = ?",
			id, actingStudentID, entity.VerificationPending).
		Set("deleted_at = ?", time.Now()).
		Set("deleted_by = ?", claims.UserId)

	result, err := q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "withdrawing leave request"), http.StatusBadRequest)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "checking withdraw result"), http.StatusInternalServerError)
	}
	if rows == 0 {
		return r.classifyMutationFailure(ctx, id, actingStudentID)
	}

	return nil
}

// classifyMutationFailure maps a rejected owner mutation to the error kind
// the guard actually tripped on.
func (r Repository) classifyMutationFailure(ctx context.Context, id, actingStudentID int) error {
	var studentID int
	var status string

	err := r.QueryRowContext(ctx,
		`SELECT student_id, status FROM leave_request WHERE deleted_at IS NULL AND id = ?`, id).
		Scan(&studentID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "selecting leave request"), http.StatusBadRequest)
	}

	if studentID != actingStudentID {
		return web.NewRequestError(postgres.ErrNotOwner, http.StatusForbidden)
	}
	if status != entity.VerificationPending {
		return web.NewRequestError(postgres.ErrNotPending, http.StatusConflict)
	}

	return web.NewRequestError(postgres.ErrConflict, http.StatusConflict)
}

// Verify applies the one-way approved/rejected transition and, on approval,
// materializes the attendance record for (student, day) with the status the
// request's kind maps to. Both writes happen in one transaction: a verified
// request without its attendance record is a correctness bug, not a degraded
// mode. Re-verification loses against the status guard and gets ErrNotPending.
func (r Repository) Verify(ctx context.Context, request VerifyRequest) (Request, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return Request{}, err
	}

	if err := r.ValidateStruct(&request, "ID", "Decision"); err != nil {
		return Request{}, err
	}

	decision := *request.Decision
	if decision != entity.VerificationApproved && decision != entity.VerificationRejected {
		return Request{}, web.NewRequestError(errors.Errorf("unknown decision %q", decision), http.StatusBadRequest)
	}

	var verified Request

	err = r.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var (
			studentID int
			dayString string
			kind      string
			reason    string
			status    string
			createdAt time.Time
		)

		// Row lock so concurrent verifiers serialize here.
		err := tx.QueryRowContext(ctx, `
			SELECT student_id, leave_day, kind, reason, status, created_at
			FROM leave_request
			WHERE deleted_at IS NULL AND id = ?
			FOR UPDATE
		`, request.ID).Scan(&studentID, &dayString, &kind, &reason, &status, &createdAt)
		if errors.Is(err, sql.ErrNoRows) {
			return web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
		}
		if err != nil {
			return web.NewRequestError(errors.Wrap(err, "selecting leave request"), http.StatusBadRequest)
		}

		if claims.Role != auth.RoleAdmin {
			var isHomeroom bool
			err = tx.QueryRowContext(ctx, `
				SELECT EXISTS (
					SELECT 1
					FROM student s
					JOIN class c ON c.id = s.class_id
					WHERE s.deleted_at IS NULL AND s.id = ? AND c.homeroom_teacher_id = ?
				)
			`, studentID, claims.UserId).Scan(&isHomeroom)
			if err != nil {
				return web.NewRequestError(errors.Wrap(err, "checking homeroom teacher"), http.StatusBadRequest)
			}
			if !isHomeroom {
				return web.NewRequestError(postgres.ErrUnauthorized, http.StatusForbidden)
			}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE leave_request
			SET status = ?, verified_by = ?, updated_at = now(), updated_by = ?
			WHERE deleted_at IS NULL AND id = ? AND status = ?
		`, decision, claims.UserId, claims.UserId, request.ID, entity.VerificationPending)
		if err != nil {
			return web.NewRequestError(errors.Wrap(err, "updating verification status"), http.StatusBadRequest)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return web.NewRequestError(errors.Wrap(err, "checking verification result"), http.StatusInternalServerError)
		}
		if rows == 0 {
			return web.NewRequestError(postgres.ErrNotPending, http.StatusConflict)
		}

		if decision == entity.VerificationApproved {
			if err := attendance.Materialize(ctx, tx, studentID, dayString, entity.StatusForKind(kind), claims.UserId); err != nil {
				return err
			}
		}

		day, err := date.ParseDate(dayString)
		if err != nil {
			return web.NewRequestError(errors.Wrap(err, "converting leave_day to date.Date"), http.StatusBadRequest)
		}

		verifiedBy := claims.UserId
		verified = Request{
			ID:         request.ID,
			StudentID:  studentID,
			Day:        &day,
			Kind:       kind,
			Reason:     reason,
			Status:     decision,
			VerifiedBy: &verifiedBy,
			CreatedAt:  createdAt,
		}

		return nil
	})
	if err != nil {
		return Request{}, err
	}

	return verified, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, 0, err
	}

	whereQuery := `
		WHERE
			l.deleted_at IS NULL
	`

	if filter.StudentID != nil {
		whereQuery += fmt.Sprintf(` AND l.student_id = %d`, *filter.StudentID)
	}
	if filter.Status != nil {
		status := strings.Replace(*filter.Status, "'", "''", -1)
		whereQuery += fmt.Sprintf(` AND l.status = '%s'`, status)
	}

	orderQuery := "ORDER BY l.created_at desc"

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
			l.id,
			l.student_id,
			u.full_name,
			u.nis,
			s.class_id,
			c.name,
			l.leave_day,
			l.kind,
			l.reason,
			l.status,
			l.verified_by,
			l.created_at
		FROM leave_request l
		LEFT JOIN student s ON l.student_id = s.id
		LEFT JOIN users u ON s.user_id = u.id
		LEFT JOIN class c ON s.class_id = c.id
		%s %s %s %s
	`, whereQuery, orderQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting leave requests"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []GetListResponse

	for rows.Next() {
		detail, err := scanListRow(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "reading leave requests"), http.StatusInternalServerError)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(l.id)
		FROM leave_request l
		LEFT JOIN student s ON l.student_id = s.id
		LEFT JOIN users u ON s.user_id = u.id
		LEFT JOIN class c ON s.class_id = c.id
		%s
	`, whereQuery)

	count := 0
	if err = r.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning leave request count"), http.StatusInternalServerError)
	}

	return list, count, nil
}

// GetPending lists requests still awaiting verification. With a teacherID it
// narrows to students of classes that teacher is homeroom teacher of; admins
// pass nil and see everything.
func (r Repository) GetPending(ctx context.Context, teacherID *int) ([]GetListResponse, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, err
	}

	whereQuery := fmt.Sprintf(`
		WHERE
			l.deleted_at IS NULL AND l.status = '%s'
	`, entity.VerificationPending)

	if teacherID != nil {
		whereQuery += fmt.Sprintf(` AND c.homeroom_teacher_id = %d`, *teacherID)
	}

	query := fmt.Sprintf(`
		SELECT
			l.id,
			l.student_id,
			u.full_name,
			u.nis,
			s.class_id,
			c.name,
			l.leave_day,
			l.kind,
			l.reason,
			l.status,
			l.verified_by,
			l.created_at
		FROM leave_request l
		LEFT JOIN student s ON l.student_id = s.id
		LEFT JOIN users u ON s.user_id = u.id
		LEFT JOIN class c ON s.class_id = c.id
		%s
		ORDER BY l.leave_day, l.created_at
	`, whereQuery)

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting pending leave requests"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []GetListResponse

	for rows.Next() {
		detail, err := scanListRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading pending leave requests"), http.StatusInternalServerError)
	}

	return list, nil
}

func (r Repository) GetDetailById(ctx context.Context, id int) (GetListResponse, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return GetListResponse{}, err
	}

	query := `
		SELECT
			l.id,
			l.student_id,
			u.full_name,
			u.nis,
			s.class_id,
			c.name,
			l.leave_day,
			l.kind,
			l.reason,
			l.status,
			l.verified_by,
			l.created_at
		FROM leave_request l
		LEFT JOIN student s ON l.student_id = s.id
		LEFT JOIN users u ON s.user_id = u.id
		LEFT JOIN class c ON s.class_id = c.id
		WHERE l.deleted_at IS NULL AND l.id = ?
	`

	rows, err := r.QueryContext(ctx, query, id)
	if err != nil {
		return GetListResponse{}, web.NewRequestError(errors.Wrap(err, "selecting leave request detail"), http.StatusBadRequest)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return GetListResponse{}, web.NewRequestError(errors.Wrap(err, "reading leave request detail"), http.StatusInternalServerError)
		}
		return GetListResponse{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}

	return scanListRow(rows)
}

func scanListRow(rows *sql.Rows) (GetListResponse, error) {
	var detail GetListResponse
	var dayString string

	if err := rows.Scan(
		&detail.ID,
		&detail.StudentID,
		&detail.StudentName,
		&detail.NIS,
		&detail.ClassID,
		&detail.ClassName,
		&dayString,
		&detail.Kind,
		&detail.Reason,
		&detail.Status,
		&detail.VerifiedBy,
		&detail.CreatedAt); err != nil {
		return GetListResponse{}, web.NewRequestError(errors.Wrap(err, "scanning leave request"), http.StatusBadRequest)
	}

	day, err := date.ParseDate(dayString)
	if err != nil {
		return GetListResponse{}, web.NewRequestError(errors.Wrap(err, "converting leave_day to date.Date"), http.StatusBadRequest)
	}
	detail.Day = &day

	return detail, nil
}
