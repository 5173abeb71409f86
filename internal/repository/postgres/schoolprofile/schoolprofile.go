package schoolprofile

import (
	"context"
	"net/http"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) UpdateAll(ctx context.Context, request UpdateRequest) error {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	if err := r.ValidateStruct(&request, "SchoolName", "StartTime", "EndTime"); err != nil {
		return err
	}

	lateTime := request.LateTime
	if lateTime == "" {
		lateTime = request.StartTime
	}

	q := r.NewUpdate().Table("school_profile").Where("deleted_at IS NULL AND id = ?", request.ID)
	q.Set("school_name = ?", request.SchoolName)
	q.Set("address = ?", request.Address)
	q.Set("start_time = ?", request.StartTime)
	q.Set("end_time = ?", request.EndTime)
	q.Set("late_time = ?", lateTime)
	if request.LogoUrl != nil {
		q.Set("logo_url = ?", *request.LogoUrl)
	}
	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	_, err = q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating school_profile"), http.StatusBadRequest)
	}

	return nil
}

func (r Repository) GetInfo(ctx context.Context) (GetInfoResponse, error) {
	var detail GetInfoResponse
	err := r.NewSelect().
		Model(&detail).
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return GetInfoResponse{}, &web.Error{
			Err:    errors.New("school profile not found"),
			Status: http.StatusNotFound,
		}
	}
	return detail, nil
}

// GetSchedule returns the configured school day times used to decide
// late check-ins on attendance listings.
func (r Repository) GetSchedule(ctx context.Context) (GetScheduleResponse, error) {
	var detail GetScheduleResponse
	err := r.NewSelect().
		Model(&detail).
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return GetScheduleResponse{}, &web.Error{
			Err:    errors.New("school schedule not found"),
			Status: http.StatusNotFound,
		}
	}
	return detail, nil
}
