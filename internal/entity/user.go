package entity

import (
	"github.com/uptrace/bun"
)

// User is the shared identity record. The role tag decides which of the
// role-specific fields are populated: students carry a NIS, teachers a NIP,
// admins an email or username.
type User struct {
	bun.BaseModel `bun:"table:users"`

	BasicEntity
	Role     *string `json:"role"       bun:"role"`
	FullName *string `json:"full_name"  bun:"full_name"`
	Email    *string `json:"email"      bun:"email"`
	Username *string `json:"username"   bun:"username"`
	NIS      *string `json:"nis"        bun:"nis"`
	NIP      *string `json:"nip"        bun:"nip"`
	Password *string `json:"password"   bun:"password"`
}
