package schoolprofile

import (
	"net/http"
	"reflect"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/repository/postgres/schoolprofile"
	"school-attendance/backend/internal/service"
)

type Controller struct {
	profile SchoolProfile
}

func NewController(profile SchoolProfile) *Controller {
	return &Controller{profile}
}

func (uc Controller) GetInfo(c *web.Context) error {
	response, err := uc.profile.GetInfo(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetSchedule(c *web.Context) error {
	response, err := uc.profile.GetSchedule(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) UpdateAll(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request schoolprofile.UpdateRequest

	if err := c.BindFunc(&request, "SchoolName", "StartTime", "EndTime"); err != nil {
		return c.RespondError(err)
	}

	request.ID = id

	if request.Logo != nil {
		uploadedPath, err := service.Upload(request.Logo, "logo")
		if err != nil {
			return c.RespondError(web.NewRequestError(err, http.StatusBadRequest))
		}
		resizedPath, err := service.ResizeLogo(uploadedPath)
		if err != nil {
			return c.RespondError(web.NewRequestError(err, http.StatusBadRequest))
		}
		request.LogoUrl = &resizedPath
	}

	err := uc.profile.UpdateAll(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}
