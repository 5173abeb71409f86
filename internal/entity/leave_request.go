package entity

import (
	"github.com/uptrace/bun"
)

// Verification lifecycle of a leave request. The transition out of pending
// happens exactly once.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Leave kinds. The kind is an explicit classification set at submission;
// the free-text reason is never parsed to derive it.
const (
	KindLeave = "leave"
	KindSick  = "sick"
)

// ValidKind reports whether k is a known leave kind.
func ValidKind(k string) bool {
	return k == KindLeave || k == KindSick
}

// StatusForKind maps a leave kind to the attendance status materialized on
// approval.
func StatusForKind(kind string) string {
	if kind == KindSick {
		return StatusSick
	}
	return StatusExcused
}

type LeaveRequest struct {
	bun.BaseModel `bun:"table:leave_request"`

	BasicEntity
	StudentID  *int    `json:"student_id" bun:"student_id"`
	LeaveDay   *string `json:"leave_day"  bun:"leave_day"`
	Kind       *string `json:"kind"       bun:"kind"`
	Reason     *string `json:"reason"     bun:"reason"`
	Status     *string `json:"status"     bun:"status"`
	VerifiedBy *int    `json:"verified_by" bun:"verified_by"`
}
