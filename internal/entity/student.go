package entity

import (
	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:student"`

	BasicEntity
	UserID  *int `json:"user_id"  bun:"user_id"`
	ClassID *int `json:"class_id" bun:"class_id"`
}
