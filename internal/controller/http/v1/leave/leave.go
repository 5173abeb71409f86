package leave

import (
	"errors"
	"net/http"
	"reflect"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/repository/postgres/leave"
)

type Controller struct {
	leave Leave
	user  User
}

func NewController(leave Leave, user User) *Controller {
	return &Controller{leave, user}
}

func (uc Controller) actingStudentID(c *web.Context, requested *int) (int, error) {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return 0, err
	}

	if claims.Role == auth.RoleStudent {
		return uc.user.StudentIDByUserID(c.Ctx, claims.UserId)
	}

	if requested == nil {
		return 0, web.NewRequestError(errors.New("student_id is required"), http.StatusBadRequest)
	}

	return *requested, nil
}

func (uc Controller) Submit(c *web.Context) error {
	var request leave.SubmitRequest
	if err := c.BindFunc(&request, "LeaveDay", "Kind", "Reason"); err != nil {
		return c.RespondError(err)
	}

	studentID, err := uc.actingStudentID(c, request.StudentID)
	if err != nil {
		return c.RespondError(err)
	}
	request.StudentID = &studentID

	response, err := uc.leave.Submit(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Amend(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request leave.AmendRequest
	if err := c.BindFunc(&request, "Reason"); err != nil {
		return c.RespondError(err)
	}
	request.ID = id

	studentID, err := uc.actingStudentID(c, nil)
	if err != nil {
		return c.RespondError(err)
	}

	if err := uc.leave.Amend(c.Ctx, request, studentID); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Withdraw(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	studentID, err := uc.actingStudentID(c, nil)
	if err != nil {
		return c.RespondError(err)
	}

	if err := uc.leave.Withdraw(c.Ctx, id, studentID); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Verify(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request leave.VerifyRequest
	if err := c.BindFunc(&request, "Decision"); err != nil {
		return c.RespondError(err)
	}
	request.ID = id

	response, err := uc.leave.Verify(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetList(c *web.Context) error {
	var filter leave.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if studentID, ok := c.GetQueryFunc(reflect.Int, "student_id").(*int); ok {
		filter.StudentID = studentID
	}
	if status, ok := c.GetQueryFunc(reflect.String, "status").(*string); ok {
		filter.Status = status
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	// Students only ever see their own requests.
	if claims.Role == auth.RoleStudent {
		studentID, err := uc.user.StudentIDByUserID(c.Ctx, claims.UserId)
		if err != nil {
			return c.RespondError(err)
		}
		filter.StudentID = &studentID
	}

	list, count, err := uc.leave.GetList(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   count,
		},
		"status": true,
	}, http.StatusOK)
}

// GetPending lists requests awaiting a decision. Teachers see only the
// classes they run.
func (uc Controller) GetPending(c *web.Context) error {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	var teacherID *int
	if claims.Role == auth.RoleTeacher {
		teacherID = &claims.UserId
	}

	list, err := uc.leave.GetPending(c.Ctx, teacherID)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.leave.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}
