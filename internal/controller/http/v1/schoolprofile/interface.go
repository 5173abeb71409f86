package schoolprofile

import (
	"context"

	"school-attendance/backend/internal/repository/postgres/schoolprofile"
)

type SchoolProfile interface {
	UpdateAll(ctx context.Context, request schoolprofile.UpdateRequest) error
	GetInfo(ctx context.Context) (schoolprofile.GetInfoResponse, error)
	GetSchedule(ctx context.Context) (schoolprofile.GetScheduleResponse, error)
}
