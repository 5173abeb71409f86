package user

import (
	"time"

	"github.com/uptrace/bun"
)

type Filter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
	Role   *string
}

// SignInRequest carries a role-dependent identifier: NIS for students, NIP
// or email for teachers, email or username for admins.
type SignInRequest struct {
	Identifier string `json:"identifier" form:"identifier"`
	Password   string `json:"password" form:"password"`
}

type AuthClaims struct {
	ID   int
	Role string
	Type string
}

type RefreshTokenRequest struct {
	AccessToken  string `json:"access_token" form:"access_token"`
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type GetListResponse struct {
	ID       int     `json:"id"`
	Role     *string `json:"role"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
	NIS      *string `json:"nis"`
	NIP      *string `json:"nip"`
}

type GetDetailByIdResponse struct {
	ID        int     `json:"id"`
	Role      *string `json:"role"`
	FullName  *string `json:"full_name"`
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	NIS       *string `json:"nis"`
	NIP       *string `json:"nip"`
	StudentID *int    `json:"student_id,omitempty"`
	ClassID   *int    `json:"class_id,omitempty"`
	ClassName *string `json:"class_name,omitempty"`
}

type CreateRequest struct {
	Role     *string `json:"role" form:"role"`
	FullName *string `json:"full_name" form:"full_name"`
	Email    *string `json:"email" form:"email"`
	Username *string `json:"username" form:"username"`
	NIS      *string `json:"nis" form:"nis"`
	NIP      *string `json:"nip" form:"nip"`
	Password *string `json:"password" form:"password"`
	ClassID  *int    `json:"class_id" form:"class_id"`
}

type CreateResponse struct {
	bun.BaseModel `bun:"table:users"`

	ID        int       `json:"id" bun:"-"`
	Role      *string   `json:"role" bun:"role"`
	FullName  *string   `json:"full_name" bun:"full_name"`
	Email     *string   `json:"email" bun:"email"`
	Username  *string   `json:"username" bun:"username"`
	NIS       *string   `json:"nis" bun:"nis"`
	NIP       *string   `json:"nip" bun:"nip"`
	Password  *string   `json:"-" bun:"password"`
	StudentID *int      `json:"student_id,omitempty" bun:"-"`
	CreatedAt time.Time `json:"-" bun:"created_at"`
	CreatedBy int       `json:"-" bun:"created_by"`
}

type UpdateRequest struct {
	ID       int     `json:"id" form:"id"`
	FullName *string `json:"full_name" form:"full_name"`
	Email    *string `json:"email" form:"email"`
	Username *string `json:"username" form:"username"`
	NIS      *string `json:"nis" form:"nis"`
	NIP      *string `json:"nip" form:"nip"`
	Password *string `json:"password" form:"password"`
	ClassID  *int    `json:"class_id" form:"class_id"`
}

// StudentRow is one student with the identity fields reporting and the QR
// card service need.
type StudentRow struct {
	StudentID int     `json:"student_id"`
	UserID    int     `json:"user_id"`
	FullName  *string `json:"full_name"`
	NIS       *string `json:"nis"`
	ClassID   *int    `json:"class_id"`
	ClassName *string `json:"class_name"`
}

type TeacherRow struct {
	UserID   int     `json:"user_id"`
	FullName *string `json:"full_name"`
	NIP      *string `json:"nip"`
	Email    *string `json:"email"`
}
