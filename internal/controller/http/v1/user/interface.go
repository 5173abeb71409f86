package user

import (
	"context"

	"school-attendance/backend/internal/repository/postgres/user"
)

type User interface {
	GetList(ctx context.Context, filter user.Filter) ([]user.GetListResponse, int, error)
	GetDetailById(ctx context.Context, id int) (user.GetDetailByIdResponse, error)
	Create(ctx context.Context, request user.CreateRequest) (user.CreateResponse, error)
	UpdateColumns(ctx context.Context, request user.UpdateRequest) error
	Delete(ctx context.Context, id int) error
	GetStudents(ctx context.Context, classID *int) ([]user.StudentRow, error)
	GetTeachers(ctx context.Context) ([]user.TeacherRow, error)
}
