package attendance

import (
	"context"
	"time"

	"school-attendance/backend/internal/repository/postgres/attendance"

	"github.com/Azure/go-autorest/autorest/date"
)

type Attendance interface {
	CheckIn(ctx context.Context, studentID int, at time.Time) (attendance.Record, error)
	CheckOut(ctx context.Context, studentID int, at time.Time) (attendance.Record, error)
	SetStatus(ctx context.Context, request attendance.SetStatusRequest) (attendance.Record, error)
	GetOrMaterialize(ctx context.Context, studentID int, day date.Date) (attendance.Record, error)
	TodayByStudent(ctx context.Context, studentID int) (attendance.Record, error)
	GetById(ctx context.Context, id int) (attendance.Record, error)
	GetList(ctx context.Context, filter attendance.Filter) ([]attendance.GetListResponse, int, error)
	HistoryByStudent(ctx context.Context, studentID int, dateFrom, dateTo *string) ([]attendance.Record, error)
	ClassByDate(ctx context.Context, classID int, day date.Date) ([]attendance.ClassDayRow, error)
	Delete(ctx context.Context, id int) error
}

type User interface {
	StudentIDByUserID(ctx context.Context, userID int) (int, error)
}

type Class interface {
	IsHomeroomTeacherOf(ctx context.Context, teacherID, studentID int) (bool, error)
}
