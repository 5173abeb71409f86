package user

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/repository/postgres/user"
	"school-attendance/backend/internal/service"
)

type Controller struct {
	user User
}

func NewController(user User) *Controller {
	return &Controller{user}
}

// user

func (uc Controller) GetUserList(c *web.Context) error {
	var filter user.Filter

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
	if role, ok := c.GetQueryFunc(reflect.String, "role").(*string); ok {
		filter.Role = role
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := uc.user.GetList(c.Ctx, filter)
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

func (uc Controller) GetUserDetailById(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.user.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) CreateUser(c *web.Context) error {
	var request user.CreateRequest
	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.user.Create(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"created_data": response,
		"status":       true,
	}, http.StatusOK)
}

func (uc Controller) UpdateUserColumns(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request user.UpdateRequest

	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	request.ID = id

	err := uc.user.UpdateColumns(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) DeleteUser(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	err := uc.user.Delete(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetStudentList(c *web.Context) error {
	var classID *int
	if v, ok := c.GetQueryFunc(reflect.Int, "class_id").(*int); ok {
		classID = v
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, err := uc.user.GetStudents(c.Ctx, classID)
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

func (uc Controller) GetTeacherList(c *web.Context) error {
	list, err := uc.user.GetTeachers(c.Ctx)
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

// ExportStudentRoster streams the roster as an xlsx download.
func (uc Controller) ExportStudentRoster(c *web.Context) error {
	var classID *int
	if v, ok := c.GetQueryFunc(reflect.Int, "class_id").(*int); ok {
		classID = v
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, err := uc.user.GetStudents(c.Ctx, classID)
	if err != nil {
		return c.RespondError(err)
	}

	students := make([]service.Student, 0, len(list))
	for _, row := range list {
		entry := service.Student{}
		if row.NIS != nil {
			entry.NIS = *row.NIS
		}
		if row.FullName != nil {
			entry.FullName = *row.FullName
		}
		if row.ClassName != nil {
			entry.ClassName = *row.ClassName
		}
		students = append(students, entry)
	}

	fileName := filepath.Join(os.TempDir(), "student_roster.xlsx")
	if err := service.WriteStudentRoster(students, fileName); err != nil {
		return c.RespondError(err)
	}

	return serveFile(c, fileName, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "student_roster.xlsx")
}

// GetQrCodeByNIS serves one student's QR code image.
func (uc Controller) GetQrCodeByNIS(c *web.Context) error {
	nis := c.Query("nis")
	if nis == "" {
		return c.RespondError(web.NewRequestError(errors.New("nis parameter is required"), http.StatusBadRequest))
	}

	filePath, err := service.StudentQrCode(nis)
	if err != nil {
		return c.RespondError(err)
	}

	return serveFile(c, filePath, "image/png", filepath.Base(filePath))
}

// GetQrCardSheet serves a printable PDF of student cards with QR codes.
func (uc Controller) GetQrCardSheet(c *web.Context) error {
	var classID *int
	if v, ok := c.GetQueryFunc(reflect.Int, "class_id").(*int); ok {
		classID = v
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, err := uc.user.GetStudents(c.Ctx, classID)
	if err != nil {
		return c.RespondError(err)
	}

	cards := make([]service.Card, 0, len(list))
	for _, row := range list {
		if row.NIS == nil {
			continue
		}
		card := service.Card{NIS: *row.NIS}
		if row.FullName != nil {
			card.FullName = *row.FullName
		}
		if row.ClassName != nil {
			card.ClassName = *row.ClassName
		}
		cards = append(cards, card)
	}

	pdfPath, err := service.StudentCardSheet(cards, "student_cards.pdf")
	if err != nil {
		return c.RespondError(err)
	}

	return serveFile(c, pdfPath, "application/pdf", "student_cards.pdf")
}

func serveFile(c *web.Context, filePath, contentType, downloadName string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return c.RespondError(err)
	}
	defer file.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename=\""+downloadName+"\"")
	c.Status(http.StatusOK)
	if _, err = io.Copy(c.Writer, file); err != nil {
		return c.RespondError(err)
	}

	return nil
}
