package user

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
	"school-attendance/backend/internal/pkg/repository/postgresql"
	"school-attendance/backend/internal/repository/postgres"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// GetByIdentifier resolves a sign-in identifier against every role-specific
// login field: NIS (students), NIP (teachers), email or username.
func (r Repository) GetByIdentifier(ctx context.Context, identifier string) (entity.User, error) {
	var detail entity.User

	err := r.NewSelect().Model(&detail).
		Where("deleted_at IS NULL").
		Where("nis = ? OR nip = ? OR email = ? OR username = ?",
			identifier, identifier, identifier, identifier).
		Scan(ctx)
	if err != nil {
		return entity.User{}, &web.Error{
			Err:    errors.New("user not found"),
			Status: http.StatusUnauthorized,
		}
	}

	return detail, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, 0, err
	}

	whereQuery := `
		WHERE
			u.deleted_at IS NULL
	`

	if filter.Search != nil {
		search := strings.Replace(*filter.Search, "'", "''", -1)
		whereQuery += fmt.Sprintf(` AND (u.full_name ilike '%s' OR u.nis ilike '%s' OR u.nip ilike '%s')`,
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if filter.Role != nil {
		role := strings.ToUpper(*filter.Role)
		if role != auth.RoleAdmin && role != auth.RoleTeacher && role != auth.RoleStudent {
			return nil, 0, web.NewRequestError(errors.Errorf("unknown role %q", *filter.Role), http.StatusBadRequest)
		}
		whereQuery += fmt.Sprintf(` AND u.role = '%s'`, role)
	}

	orderQuery := "ORDER BY u.created_at desc"

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
			u.id,
			u.role,
			u.full_name,
			u.email,
			u.username,
			u.nis,
			u.nip
		FROM users u
		%s %s %s %s
	`, whereQuery, orderQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting users"), http.StatusBadRequest)
	}
	defer rows.Close()

	var list []GetListResponse

	for rows.Next() {
		var detail GetListResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.Role,
			&detail.FullName,
			&detail.Email,
			&detail.Username,
			&detail.NIS,
			&detail.NIP); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning user list"), http.StatusBadRequest)
		}

		list = append(list, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "reading user list"), http.StatusInternalServerError)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(u.id)
		FROM users u
		%s
	`, whereQuery)

	count := 0
	if err = r.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning user count"), http.StatusBadRequest)
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
			u.id,
			u.role,
			u.full_name,
			u.email,
			u.username,
			u.nis,
			u.nip,
			s.id,
			s.class_id,
			c.name
		FROM users u
		LEFT JOIN student s ON s.user_id = u.id AND s.deleted_at IS NULL
		LEFT JOIN class c ON c.id = s.class_id
		WHERE u.deleted_at IS NULL AND u.id = ?
	`

	var detail GetDetailByIdResponse

	err = r.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.Role,
		&detail.FullName,
		&detail.Email,
		&detail.Username,
		&detail.NIS,
		&detail.NIP,
		&detail.StudentID,
		&detail.ClassID,
		&detail.ClassName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetDetailByIdResponse{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return GetDetailByIdResponse{}, web.NewRequestError(errors.Wrap(err, "selecting user detail"), http.StatusBadRequest)
	}

	return detail, nil
}

// Create inserts the user and, for students, the student row pointing at the
// class. Both inserts share one transaction so a student never exists
// without a class membership.
func (r Repository) Create(ctx context.Context, request CreateRequest) (CreateResponse, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return CreateResponse{}, err
	}

	if err := r.ValidateStruct(&request, "Role", "FullName", "Password"); err != nil {
		return CreateResponse{}, err
	}

	role := strings.ToUpper(*request.Role)
	switch role {
	case auth.RoleStudent:
		if err := r.ValidateStruct(&request, "NIS", "ClassID"); err != nil {
			return CreateResponse{}, err
		}
	case auth.RoleTeacher:
		if err := r.ValidateStruct(&request, "NIP"); err != nil {
			return CreateResponse{}, err
		}
	case auth.RoleAdmin:
		if request.Email == nil && request.Username == nil {
			return CreateResponse{}, web.NewRequestError(errors.New("admin needs an email or username"), http.StatusBadRequest)
		}
	default:
		return CreateResponse{}, web.NewRequestError(errors.New("incorrect role. role should be ADMIN, TEACHER or STUDENT"), http.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
	if err != nil {
		return CreateResponse{}, web.NewRequestError(errors.Wrap(err, "hashing password"), http.StatusInternalServerError)
	}
	hashedPassword := string(hash)

	response := CreateResponse{
		Role:      &role,
		FullName:  request.FullName,
		Email:     request.Email,
		Username:  request.Username,
		NIS:       request.NIS,
		NIP:       request.NIP,
		Password:  &hashedPassword,
		CreatedAt: time.Now(),
		CreatedBy: claims.UserId,
	}

	err = r.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&response).Returning("id").Exec(ctx, &response.ID); err != nil {
			return web.NewRequestError(errors.Wrap(err, "creating user"), http.StatusBadRequest)
		}

		if role == auth.RoleStudent {
			var studentID int
			_, err := tx.ExecContext(ctx, `
				INSERT INTO student (user_id, class_id, created_at, created_by)
				VALUES (?, ?, now(), ?)
			`, response.ID, *request.ClassID, claims.UserId)
			if err != nil {
				return web.NewRequestError(errors.Wrap(err, "creating student record"), http.StatusBadRequest)
			}
			if err := tx.QueryRowContext(ctx,
				`SELECT id FROM student WHERE user_id = ? AND deleted_at IS NULL`, response.ID).
				Scan(&studentID); err != nil {
				return web.NewRequestError(errors.Wrap(err, "selecting student id"), http.StatusBadRequest)
			}
			response.StudentID = &studentID
		}

		return nil
	})
	if err != nil {
		return CreateResponse{}, err
	}

	response.Password = nil

	return response, nil
}

func (r Repository) UpdateColumns(ctx context.Context, request UpdateRequest) error {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	if err := r.ValidateStruct(&request, "ID"); err != nil {
		return err
	}

	q := r.NewUpdate().Table("users").Where("deleted_at IS NULL AND id = ?", request.ID)

	if request.FullName != nil {
		q.Set("full_name = ?", *request.FullName)
	}
	if request.Email != nil {
		q.Set("email = ?", *request.Email)
	}
	if request.Username != nil {
		q.Set("username = ?", *request.Username)
	}
	if request.NIS != nil {
		q.Set("nis = ?", *request.NIS)
	}
	if request.NIP != nil {
		q.Set("nip = ?", *request.NIP)
	}
	if request.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
		if err != nil {
			return web.NewRequestError(errors.Wrap(err, "hashing password"), http.StatusInternalServerError)
		}
		q.Set("password = ?", string(hash))
	}
	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	_, err = q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating user"), http.StatusBadRequest)
	}

	if request.ClassID != nil {
		_, err = r.NewUpdate().
			Table("student").
			Where("deleted_at IS NULL AND user_id = ?", request.ID).
			Set("class_id = ?", *request.ClassID).
			Set("updated_at = ?", time.Now()).
			Set("updated_by = ?", claims.UserId).
			Exec(ctx)
		if err != nil {
			return web.NewRequestError(errors.Wrap(err, "updating student class"), http.StatusBadRequest)
		}
	}

	return nil
}

// GetStudents lists students, optionally narrowed to a class.
func (r Repository) GetStudents(ctx context.Context, classID *int) ([]StudentRow, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, err
	}

	whereQuery := `
		WHERE
			s.deleted_at IS NULL AND u.deleted_at IS NULL
	`
	if classID != nil {
		whereQuery += fmt.Sprintf(` AND s.class_id = %d`, *classID)
	}

	query := fmt.Sprintf(`
		SELECT
			s.id,
			u.id,
			u.full_name,
			u.nis,
			s.class_id,
			c.name
		FROM student s
		JOIN users u ON u.id = s.user_id
		LEFT JOIN class c ON c.id = s.class_id
		%s
		ORDER BY c.grade, c.name, u.full_name
	`, whereQuery)

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting students"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []StudentRow

	for rows.Next() {
		var row StudentRow
		if err = rows.Scan(
			&row.StudentID,
			&row.UserID,
			&row.FullName,
			&row.NIS,
			&row.ClassID,
			&row.ClassName); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning students"), http.StatusBadRequest)
		}
		list = append(list, row)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading students"), http.StatusInternalServerError)
	}

	return list, nil
}

func (r Repository) GetTeachers(ctx context.Context) ([]TeacherRow, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			u.id,
			u.full_name,
			u.nip,
			u.email
		FROM users u
		WHERE u.deleted_at IS NULL AND u.role = '%s'
		ORDER BY u.full_name
	`, auth.RoleTeacher)

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting teachers"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []TeacherRow

	for rows.Next() {
		var row TeacherRow
		if err = rows.Scan(&row.UserID, &row.FullName, &row.NIP, &row.Email); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning teachers"), http.StatusBadRequest)
		}
		list = append(list, row)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading teachers"), http.StatusInternalServerError)
	}

	return list, nil
}

// StudentIDByUserID maps an authenticated student user to their student id.
func (r Repository) StudentIDByUserID(ctx context.Context, userID int) (int, error) {
	var studentID int

	err := r.QueryRowContext(ctx, `
		SELECT id FROM student WHERE deleted_at IS NULL AND user_id = ?
	`, userID).Scan(&studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return 0, web.NewRequestError(errors.Wrap(err, "selecting student by user"), http.StatusBadRequest)
	}

	return studentID, nil
}

func (r Repository) Delete(ctx context.Context, id int) error {
	return r.DeleteRow(ctx, "users", id)
}
