package class

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/pkg/repository/postgresql"
	"school-attendance/backend/internal/repository/postgres"

	"github.com/pkg/errors"
)

// Repository is the class directory: class records, homeroom assignment and
// the lookup contracts the attendance core consumes.
type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, 0, err
	}

	whereQuery := `
		WHERE
			c.deleted_at IS NULL
	`

	if filter.Search != nil {
		search := strings.Replace(*filter.Search, "'", "''", -1)
		whereQuery += fmt.Sprintf(` AND c.name ilike '%s'`, "%"+search+"%")
	}
	if filter.Grade != nil {
		whereQuery += fmt.Sprintf(` AND c.grade = %d`, *filter.Grade)
	}

	orderQuery := "ORDER BY c.grade, c.name"

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
			c.id,
			c.name,
			c.grade,
			c.homeroom_teacher_id,
			u.full_name,
			(SELECT count(s.id) FROM student s WHERE s.class_id = c.id AND s.deleted_at IS NULL)
		FROM class c
		LEFT JOIN users u ON c.homeroom_teacher_id = u.id
		%s %s %s %s
	`, whereQuery, orderQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting classes"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []GetListResponse

	for rows.Next() {
		var detail GetListResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.Name,
			&detail.Grade,
			&detail.HomeroomTeacherID,
			&detail.HomeroomTeacher,
			&detail.StudentCount); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning class list"), http.StatusBadRequest)
		}

		list = append(list, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "reading class list"), http.StatusInternalServerError)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(c.id)
		FROM class c
		%s
	`, whereQuery)

	count := 0
	if err = r.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning class count"), http.StatusInternalServerError)
	}

	return list, count, nil
}

func (r Repository) GetDetailById(ctx context.Context, id int) (GetDetailByIdResponse, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return GetDetailByIdResponse{}, err
	}

	query := `
		SELECT
			c.id,
			c.name,
			c.grade,
			c.homeroom_teacher_id,
			u.full_name,
			(SELECT count(s.id) FROM student s WHERE s.class_id = c.id AND s.deleted_at IS NULL)
		FROM class c
		LEFT JOIN users u ON c.homeroom_teacher_id = u.id
		WHERE c.deleted_at IS NULL AND c.id = ?
	`

	var detail GetDetailByIdResponse

	err = r.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.Name,
		&detail.Grade,
		&detail.HomeroomTeacherID,
		&detail.HomeroomTeacher,
		&detail.StudentCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetDetailByIdResponse{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return GetDetailByIdResponse{}, web.NewRequestError(errors.Wrap(err, "selecting class detail"), http.StatusBadRequest)
	}

	return detail, nil
}

func (r Repository) Create(ctx context.Context, request CreateRequest) (CreateResponse, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return CreateResponse{}, err
	}

	if err := r.ValidateStruct(&request, "Name", "Grade"); err != nil {
		return CreateResponse{}, err
	}

	if request.HomeroomTeacherID != nil {
		if err := r.requireTeacher(ctx, *request.HomeroomTeacherID); err != nil {
			return CreateResponse{}, err
		}
	}

	response := CreateResponse{
		Name:              request.Name,
		Grade:             request.Grade,
		HomeroomTeacherID: request.HomeroomTeacherID,
		CreatedAt:         time.Now(),
		CreatedBy:         claims.UserId,
	}

	_, err = r.NewInsert().Model(&response).Returning("id").Exec(ctx, &response.ID)
	if err != nil {
		return CreateResponse{}, web.NewRequestError(errors.Wrap(err, "creating class"), http.StatusBadRequest)
	}

	return response, nil
}

func (r Repository) UpdateColumns(ctx context.Context, request UpdateRequest) error {
	if err := r.ValidateStruct(&request, "ID"); err != nil {
		return err
	}

	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	q := r.NewUpdate().Table("class").Where("deleted_at IS NULL AND id = ?", request.ID)

	if request.Name != nil {
		q.Set("name = ?", *request.Name)
	}
	if request.Grade != nil {
		q.Set("grade = ?", *request.Grade)
	}
	if request.HomeroomTeacherID != nil {
		if err := r.requireTeacher(ctx, *request.HomeroomTeacherID); err != nil {
			return err
		}
		q.Set("homeroom_teacher_id = ?", *request.HomeroomTeacherID)
	}
	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	_, err = q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating class"), http.StatusBadRequest)
	}

	return nil
}

// AssignHomeroom sets or clears a class's homeroom teacher.
func (r Repository) AssignHomeroom(ctx context.Context, request AssignHomeroomRequest) error {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	if err := r.ValidateStruct(&request, "ClassID"); err != nil {
		return err
	}

	if request.TeacherID != nil {
		if err := r.requireTeacher(ctx, *request.TeacherID); err != nil {
			return err
		}
	}

	q := r.NewUpdate().
		Table("class").
		Where("deleted_at IS NULL AND id = ?", request.ClassID).
		Set("homeroom_teacher_id = ?", request.TeacherID).
		Set("updated_at = ?", time.Now()).
		Set("updated_by = ?", claims.UserId)

	result, err := q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "assigning homeroom teacher"), http.StatusBadRequest)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "checking homeroom assignment"), http.StatusInternalServerError)
	}
	if rows == 0 {
		return web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}

	return nil
}

// GetByTeacher lists the classes a teacher is homeroom teacher of.
func (r Repository) GetByTeacher(ctx context.Context, teacherID int) ([]GetListResponse, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			c.id,
			c.name,
			c.grade,
			c.homeroom_teacher_id,
			u.full_name,
			(SELECT count(s.id) FROM student s WHERE s.class_id = c.id AND s.deleted_at IS NULL)
		FROM class c
		LEFT JOIN users u ON c.homeroom_teacher_id = u.id
		WHERE c.deleted_at IS NULL AND c.homeroom_teacher_id = ?
		ORDER BY c.grade, c.name
	`

	rows, err := r.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting classes by teacher"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []GetListResponse

	for rows.Next() {
		var detail GetListResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.Name,
			&detail.Grade,
			&detail.HomeroomTeacherID,
			&detail.HomeroomTeacher,
			&detail.StudentCount); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning classes by teacher"), http.StatusBadRequest)
		}
		list = append(list, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading classes by teacher"), http.StatusInternalServerError)
	}

	return list, nil
}

// IsHomeroomTeacherOf reports whether the teacher is homeroom teacher of the
// student's class. Consumed by the attendance and leave controllers for
// authorization decisions.
func (r Repository) IsHomeroomTeacherOf(ctx context.Context, teacherID, studentID int) (bool, error) {
	var ok bool

	err := r.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM student s
			JOIN class c ON c.id = s.class_id
			WHERE s.deleted_at IS NULL AND s.id = ? AND c.homeroom_teacher_id = ?
		)
	`, studentID, teacherID).Scan(&ok)
	if err != nil {
		return false, web.NewRequestError(errors.Wrap(err, "checking homeroom teacher"), http.StatusBadRequest)
	}

	return ok, nil
}

// ClassOf returns the class a student belongs to.
func (r Repository) ClassOf(ctx context.Context, studentID int) (int, error) {
	var classID int

	err := r.QueryRowContext(ctx, `
		SELECT class_id FROM student WHERE deleted_at IS NULL AND id = ?
	`, studentID).Scan(&classID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return 0, web.NewRequestError(errors.Wrap(err, "selecting student class"), http.StatusBadRequest)
	}

	return classID, nil
}

func (r Repository) Delete(ctx context.Context, id int) error {
	return r.DeleteRow(ctx, "class", id)
}

func (r Repository) requireTeacher(ctx context.Context, userID int) error {
	var role string

	err := r.QueryRowContext(ctx, `
		SELECT role FROM users WHERE deleted_at IS NULL AND id = ?
	`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return web.NewRequestError(errors.Errorf("no user with id %d", userID), http.StatusBadRequest)
	}
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "selecting homeroom candidate"), http.StatusBadRequest)
	}

	if role != auth.RoleTeacher {
		return web.NewRequestError(errors.Errorf("user %d is not a teacher", userID), http.StatusBadRequest)
	}

	return nil
}
