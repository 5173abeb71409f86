package entity

import (
	"mime/multipart"

	"github.com/uptrace/bun"
)

// SchoolProfile carries the school-wide settings reporting relies on:
// school day bounds and the late threshold for check-ins.
type SchoolProfile struct {
	bun.BaseModel `bun:"table:school_profile"`

	BasicEntity
	SchoolName string                `json:"school_name" bun:"school_name"`
	Logo       *multipart.FileHeader `json:"logo" bun:"-"`
	LogoUrl    string                `json:"logo_url" bun:"logo_url"`
	StartTime  string                `json:"start_time" bun:"start_time"`
	EndTime    string                `json:"end_time" bun:"end_time"`
	LateTime   string                `json:"late_time" bun:"late_time"`
}
