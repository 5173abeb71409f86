package auth

import (
	"context"

	"school-attendance/backend/internal/entity"
	"school-attendance/backend/internal/repository/postgres/user"
)

type User interface {
	GetByIdentifier(ctx context.Context, identifier string) (entity.User, error)
	GetDetailById(ctx context.Context, id int) (user.GetDetailByIdResponse, error)
}
