package entity

import (
	"github.com/uptrace/bun"
)

type Class struct {
	bun.BaseModel `bun:"table:class"`

	BasicEntity
	Name              *string `json:"name"     bun:"name"`
	Grade             *int    `json:"grade"    bun:"grade"`
	HomeroomTeacherID *int    `json:"homeroom_teacher_id" bun:"homeroom_teacher_id"`
}
