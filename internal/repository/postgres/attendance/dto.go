package attendance

import (
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/uptrace/bun"
)

type Filter struct {
	Limit     *int
	Offset    *int
	Page      *int
	Search    *string
	ClassID   *int
	StudentID *int
	Status    *string
	DateFrom  *string
	DateTo    *string
}

// Record is the ledger's view of one student-day. A synthesized absent
// record carries a zero ID and nil timestamps.
type Record struct {
	ID           int        `json:"id"`
	StudentID    int        `json:"student_id"`
	Day          *date.Date `json:"attendance_day"`
	Status       string     `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Note         *string    `json:"note,omitempty"`
	RecordedBy   *int       `json:"recorded_by,omitempty"`
}

type CheckInRequest struct {
	StudentID *int `json:"student_id" form:"student_id"`
}

type CheckOutRequest struct {
	StudentID *int `json:"student_id" form:"student_id"`
}

type checkInRow struct {
	bun.BaseModel `bun:"table:attendance"`

	ID            int       `json:"id" bun:"-"`
	StudentID     int       `json:"student_id" bun:"student_id"`
	AttendanceDay string    `json:"attendance_day" bun:"attendance_day"`
	CheckInTime   time.Time `json:"check_in_time" bun:"check_in_time"`
	Status        string    `json:"status" bun:"status"`
	CreatedAt     time.Time `json:"-" bun:"created_at"`
	CreatedBy     int       `json:"-" bun:"created_by"`
}

type SetStatusRequest struct {
	ID     int     `json:"id" form:"id"`
	Status *string `json:"status" form:"status"`
	Note   *string `json:"note" form:"note"`
}

type GetListResponse struct {
	ID           int        `json:"id"`
	StudentID    *int       `json:"student_id"`
	StudentName  *string    `json:"student_name"`
	NIS          *string    `json:"nis"`
	ClassID      *int       `json:"class_id"`
	ClassName    *string    `json:"class_name"`
	Day          *date.Date `json:"attendance_day"`
	Status       *string    `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Note         *string    `json:"note,omitempty"`
	RecordedBy   *int       `json:"recorded_by,omitempty"`
}

// ClassDayRow lists one student of a class on a given day. Students with no
// record for the day come back with status absent and a zero record id.
type ClassDayRow struct {
	RecordID     int        `json:"record_id"`
	StudentID    int        `json:"student_id"`
	StudentName  *string    `json:"student_name"`
	NIS          *string    `json:"nis"`
	Status       string     `json:"status"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Note         *string    `json:"note,omitempty"`
}
