package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Attendance statuses. A day with no record counts as absent.
const (
	StatusPresent = "present"
	StatusExcused = "excused"
	StatusSick    = "sick"
	StatusAbsent  = "absent"
)

// ValidStatus reports whether s is one of the four attendance statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusExcused, StatusSick, StatusAbsent:
		return true
	}
	return false
}

// Attendance is the per-student-per-day record. The database enforces at
// most one row per (student_id, attendance_day).
type Attendance struct {
	bun.BaseModel `bun:"table:attendance"`

	BasicEntity
	StudentID     *int       `json:"student_id" bun:"student_id"`
	AttendanceDay *string    `json:"attendance_day" bun:"attendance_day"`
	CheckInTime   *time.Time `json:"check_in_time" bun:"check_in_time"`
	CheckOutTime  *time.Time `json:"check_out_time" bun:"check_out_time"`
	Status        *string    `json:"status"   bun:"status"`
	Note          *string    `json:"note"     bun:"note"`
	RecordedBy    *int       `json:"recorded_by" bun:"recorded_by"`
}
