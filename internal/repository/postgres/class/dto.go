package class

import (
	"time"

	"github.com/uptrace/bun"
)

type Filter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
	Grade  *int
}

type GetListResponse struct {
	ID                int     `json:"id"`
	Name              *string `json:"name"`
	Grade             *int    `json:"grade"`
	HomeroomTeacherID *int    `json:"homeroom_teacher_id"`
	HomeroomTeacher   *string `json:"homeroom_teacher"`
	StudentCount      int     `json:"student_count"`
}

type GetDetailByIdResponse struct {
	ID                int     `json:"id"`
	Name              *string `json:"name"`
	Grade             *int    `json:"grade"`
	HomeroomTeacherID *int    `json:"homeroom_teacher_id"`
	HomeroomTeacher   *string `json:"homeroom_teacher"`
	StudentCount      int     `json:"student_count"`
}

type CreateRequest struct {
	Name              *string `json:"name" form:"name"`
	Grade             *int    `json:"grade" form:"grade"`
	HomeroomTeacherID *int    `json:"homeroom_teacher_id" form:"homeroom_teacher_id"`
}

type CreateResponse struct {
	bun.BaseModel `bun:"table:class"`

	ID                int       `json:"id" bun:"-"`
	Name              *string   `json:"name" bun:"name"`
	Grade             *int      `json:"grade" bun:"grade"`
	HomeroomTeacherID *int      `json:"homeroom_teacher_id" bun:"homeroom_teacher_id"`
	CreatedAt         time.Time `json:"-" bun:"created_at"`
	CreatedBy         int       `json:"-" bun:"created_by"`
}

type UpdateRequest struct {
	ID                int     `json:"id" form:"id"`
	Name              *string `json:"name" form:"name"`
	Grade             *int    `json:"grade" form:"grade"`
	HomeroomTeacherID *int    `json:"homeroom_teacher_id" form:"homeroom_teacher_id"`
}

type AssignHomeroomRequest struct {
	ClassID   int  `json:"class_id" form:"class_id"`
	TeacherID *int `json:"teacher_id" form:"teacher_id"`
}
