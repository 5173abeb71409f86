package schoolprofile

import (
	"mime/multipart"

	"github.com/uptrace/bun"
)

type UpdateRequest struct {
	ID         int                   `json:"id" form:"id"`
	SchoolName string                `json:"school_name" form:"school_name"`
	Logo       *multipart.FileHeader `json:"logo" form:"logo"`
	LogoUrl    *string               `json:"-" form:"-"`
	Address    string                `json:"address" form:"address"`
	StartTime  string                `json:"start_time" form:"start_time"`
	EndTime    string                `json:"end_time" form:"end_time"`
	LateTime   string                `json:"late_time" form:"late_time"`
}

type GetInfoResponse struct {
	bun.BaseModel `bun:"table:school_profile"`

	ID         int    `json:"id"`
	SchoolName string `json:"school_name"`
	LogoUrl    string `json:"logo_url" bun:"logo_url"`
	Address    string `json:"address"`
	StartTime  string `json:"start_time" bun:"start_time"`
	EndTime    string `json:"end_time" bun:"end_time"`
	LateTime   string `json:"late_time" bun:"late_time"`
}

type GetScheduleResponse struct {
	bun.BaseModel `bun:"table:school_profile"`

	StartTime string `json:"start_time" bun:"start_time"`
	EndTime   string `json:"end_time" bun:"end_time"`
	LateTime  string `json:"late_time" bun:"late_time"`
}
