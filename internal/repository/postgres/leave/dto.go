package leave

import (
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/uptrace/bun"
)

type Filter struct {
	Limit     *int
	Offset    *int
	Page      *int
	StudentID *int
	Status    *string
}

// Request is the workflow's view of one leave/sickness request.
type Request struct {
	ID         int        `json:"id"`
	StudentID  int        `json:"student_id"`
	Day        *date.Date `json:"leave_day"`
	Kind       string     `json:"kind"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	VerifiedBy *int       `json:"verified_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type SubmitRequest struct {
	StudentID *int    `json:"student_id" form:"student_id"`
	LeaveDay  *string `json:"leave_day" form:"leave_day"`
	Kind      *string `json:"kind" form:"kind"`
	Reason    *string `json:"reason" form:"reason"`
}

type AmendRequest struct {
	ID     int     `json:"id" form:"id"`
	Reason *string `json:"reason" form:"reason"`
}

type VerifyRequest struct {
	ID       int     `json:"id" form:"id"`
	Decision *string `json:"decision" form:"decision"`
}

type submitRow struct {
	bun.BaseModel `bun:"table:leave_request"`

	ID        int       `json:"id" bun:"-"`
	StudentID int       `json:"student_id" bun:"student_id"`
	LeaveDay  string    `json:"leave_day" bun:"leave_day"`
	Kind      string    `json:"kind" bun:"kind"`
	Reason    string    `json:"reason" bun:"reason"`
	Status    string    `json:"status" bun:"status"`
	CreatedAt time.Time `json:"-" bun:"created_at"`
	CreatedBy int       `json:"-" bun:"created_by"`
}

type GetListResponse struct {
	ID          int        `json:"id"`
	StudentID   *int       `json:"student_id"`
	StudentName *string    `json:"student_name"`
	NIS         *string    `json:"nis"`
	ClassID     *int       `json:"class_id"`
	ClassName   *string    `json:"class_name"`
	Day         *date.Date `json:"leave_day"`
	Kind        *string    `json:"kind"`
	Reason      *string    `json:"reason"`
	Status      *string    `json:"status"`
	VerifiedBy  *int       `json:"verified_by,omitempty"`
	CreatedAt   *time.Time `json:"created_at"`
}
