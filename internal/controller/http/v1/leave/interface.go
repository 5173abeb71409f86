package leave

import (
	"context"

	"school-attendance/backend/internal/repository/postgres/leave"
)

type Leave interface {
	Submit(ctx context.Context, request leave.SubmitRequest) (leave.Request, error)
	Amend(ctx context.Context, request leave.AmendRequest, actingStudentID int) error
	Withdraw(ctx context.Context, id, actingStudentID int) error
	Verify(ctx context.Context, request leave.VerifyRequest) (leave.Request, error)
	GetList(ctx context.Context, filter leave.Filter) ([]leave.GetListResponse, int, error)
	GetPending(ctx context.Context, teacherID *int) ([]leave.GetListResponse, error)
	GetDetailById(ctx context.Context, id int) (leave.GetListResponse, error)
}

type User interface {
	StudentIDByUserID(ctx context.Context, userID int) (int, error)
}
