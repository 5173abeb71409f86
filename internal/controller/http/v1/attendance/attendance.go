package attendance

import (
	"errors"
	"net/http"
	"reflect"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/repository/postgres/attendance"

	"github.com/Azure/go-autorest/autorest/date"
)

type Controller struct {
	attendance Attendance
	user       User
	class      Class
}

func NewController(attendance Attendance, user User, class Class) *Controller {
	return &Controller{attendance, user, class}
}

// resolveStudentID picks the acting student. Students always act as
// themselves, staff must name the student in the request body.
func (uc Controller) resolveStudentID(c *web.Context, requested *int) (int, error) {
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

func (uc Controller) CheckIn(c *web.Context) error {
	var request attendance.CheckInRequest
	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	studentID, err := uc.resolveStudentID(c, request.StudentID)
	if err != nil {
		return c.RespondError(err)
	}

	response, err := uc.attendance.CheckIn(c.Ctx, studentID, time.Now())
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) CheckOut(c *web.Context) error {
	var request attendance.CheckOutRequest
	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	studentID, err := uc.resolveStudentID(c, request.StudentID)
	if err != nil {
		return c.RespondError(err)
	}

	response, err := uc.attendance.CheckOut(c.Ctx, studentID, time.Now())
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Today(c *web.Context) error {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	studentID, err := uc.user.StudentIDByUserID(c.Ctx, claims.UserId)
	if err != nil {
		return c.RespondError(err)
	}

	response, err := uc.attendance.TodayByStudent(c.Ctx, studentID)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

// SetStatus lets an admin or the student's homeroom teacher correct a
// recorded day.
func (uc Controller) SetStatus(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request attendance.SetStatusRequest
	if err := c.BindFunc(&request, "Status"); err != nil {
		return c.RespondError(err)
	}
	request.ID = id

	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	if claims.Role != auth.RoleAdmin {
		record, err := uc.attendance.GetById(c.Ctx, id)
		if err != nil {
			return c.RespondError(err)
		}
		ok, err := uc.class.IsHomeroomTeacherOf(c.Ctx, claims.UserId, record.StudentID)
		if err != nil {
			return c.RespondError(err)
		}
		if !ok {
			return c.RespondError(web.NewRequestError(errors.New("only the homeroom teacher may correct this record"), http.StatusForbidden))
		}
	}

	response, err := uc.attendance.SetStatus(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetList(c *web.Context) error {
	var filter attendance.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if search, ok := c.GetQueryFunc(reflect.String, "search").(*string); ok {
		filter.Search = search
	}
	if classID, ok := c.GetQueryFunc(reflect.Int, "class_id").(*int); ok {
		filter.ClassID = classID
	}
	if studentID, ok := c.GetQueryFunc(reflect.Int, "student_id").(*int); ok {
		filter.StudentID = studentID
	}
	if status, ok := c.GetQueryFunc(reflect.String, "status").(*string); ok {
		filter.Status = status
	}
	if dateFrom, ok := c.GetQueryFunc(reflect.String, "date_from").(*string); ok {
		filter.DateFrom = dateFrom
	}
	if dateTo, ok := c.GetQueryFunc(reflect.String, "date_to").(*string); ok {
		filter.DateTo = dateTo
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := uc.attendance.GetList(c.Ctx, filter)
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

func (uc Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.attendance.GetById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

// History returns a student's own attendance rows, or any student's for staff.
func (uc Controller) History(c *web.Context) error {
	var requested *int
	if studentID, ok := c.GetQueryFunc(reflect.Int, "student_id").(*int); ok {
		requested = studentID
	}
	var dateFrom, dateTo *string
	if v, ok := c.GetQueryFunc(reflect.String, "date_from").(*string); ok {
		dateFrom = v
	}
	if v, ok := c.GetQueryFunc(reflect.String, "date_to").(*string); ok {
		dateTo = v
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	studentID, err := uc.resolveStudentID(c, requested)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.attendance.HistoryByStudent(c.Ctx, studentID, dateFrom, dateTo)
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

// GetStudentDay resolves one student-day, answering absent for days with
// no recorded row.
func (uc Controller) GetStudentDay(c *web.Context) error {
	studentID := c.GetParam(reflect.Int, "student_id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	dayStr := c.Query("date")
	if dayStr == "" {
		return c.RespondError(web.NewRequestError(errors.New("date parameter is required"), http.StatusBadRequest))
	}
	day, err := date.ParseDate(dayStr)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.New("invalid date format"), http.StatusBadRequest))
	}

	response, err := uc.attendance.GetOrMaterialize(c.Ctx, studentID, day)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) ClassByDate(c *web.Context) error {
	classID := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	dayStr := c.Query("date")
	if dayStr == "" {
		return c.RespondError(web.NewRequestError(errors.New("date parameter is required"), http.StatusBadRequest))
	}
	day, err := date.ParseDate(dayStr)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.New("invalid date format"), http.StatusBadRequest))
	}

	list, err := uc.attendance.ClassByDate(c.Ctx, classID, day)
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

func (uc Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	err := uc.attendance.Delete(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}
