package attendance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	attendancerepo "school-attendance/backend/internal/repository/postgres/attendance"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAttendance struct {
	checkInStudentID int
	setStatusCalled  bool
	record           attendancerepo.Record
}

func (s *stubAttendance) CheckIn(ctx context.Context, studentID int, at time.Time) (attendancerepo.Record, error) {
	s.checkInStudentID = studentID
	return attendancerepo.Record{ID: 1, StudentID: studentID, Status: "present"}, nil
}

func (s *stubAttendance) CheckOut(ctx context.Context, studentID int, at time.Time) (attendancerepo.Record, error) {
	return attendancerepo.Record{ID: 1, StudentID: studentID, Status: "present"}, nil
}

func (s *stubAttendance) SetStatus(ctx context.Context, request attendancerepo.SetStatusRequest) (attendancerepo.Record, error) {
	s.setStatusCalled = true
	return s.record, nil
}

func (s *stubAttendance) GetOrMaterialize(ctx context.Context, studentID int, day date.Date) (attendancerepo.Record, error) {
	return attendancerepo.Record{StudentID: studentID, Day: &day, Status: "absent"}, nil
}

func (s *stubAttendance) TodayByStudent(ctx context.Context, studentID int) (attendancerepo.Record, error) {
	return attendancerepo.Record{StudentID: studentID, Status: "absent"}, nil
}

func (s *stubAttendance) GetById(ctx context.Context, id int) (attendancerepo.Record, error) {
	return s.record, nil
}

func (s *stubAttendance) GetList(ctx context.Context, filter attendancerepo.Filter) ([]attendancerepo.GetListResponse, int, error) {
	return nil, 0, nil
}

func (s *stubAttendance) HistoryByStudent(ctx context.Context, studentID int, dateFrom, dateTo *string) ([]attendancerepo.Record, error) {
	return nil, nil
}

func (s *stubAttendance) ClassByDate(ctx context.Context, classID int, day date.Date) ([]attendancerepo.ClassDayRow, error) {
	return nil, nil
}

func (s *stubAttendance) Delete(ctx context.Context, id int) error { return nil }

type stubUser struct {
	studentID int
}

func (s stubUser) StudentIDByUserID(ctx context.Context, userID int) (int, error) {
	return s.studentID, nil
}

type stubClass struct {
	homeroom bool
}

func (s stubClass) IsHomeroomTeacherOf(ctx context.Context, teacherID, studentID int) (bool, error) {
	return s.homeroom, nil
}

func withClaims(claims auth.Claims) web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(c *web.Context) error {
			c.Ctx = context.WithValue(c.Ctx, auth.Key, claims)
			return handler(c)
		}
	}
}

func TestCheckInResolvesOwnStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubAttendance{}
	uc := NewController(store, stubUser{studentID: 7}, stubClass{})

	app := web.NewApp()
	app.Post("/check-in", uc.CheckIn, withClaims(auth.Claims{UserId: 3, Role: auth.RoleStudent}))

	req := httptest.NewRequest(http.MethodPost, "/check-in", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, store.checkInStudentID)
	assert.Contains(t, w.Body.String(), `"status":true`)
}

func TestCheckInStaffRequiresStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubAttendance{}
	uc := NewController(store, stubUser{}, stubClass{})

	app := web.NewApp()
	app.Post("/check-in", uc.CheckIn, withClaims(auth.Claims{UserId: 1, Role: auth.RoleTeacher}))

	req := httptest.NewRequest(http.MethodPost, "/check-in", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetStatusRejectsForeignHomeroom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubAttendance{record: attendancerepo.Record{ID: 5, StudentID: 9, Status: "present"}}
	uc := NewController(store, stubUser{}, stubClass{homeroom: false})

	app := web.NewApp()
	app.Patch("/attendance/:id/status", uc.SetStatus, withClaims(auth.Claims{UserId: 2, Role: auth.RoleTeacher}))

	req := httptest.NewRequest(http.MethodPatch, "/attendance/5/status", strings.NewReader(`{"status":"excused"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, store.setStatusCalled)
}

func TestSetStatusAllowsHomeroomTeacher(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubAttendance{record: attendancerepo.Record{ID: 5, StudentID: 9, Status: "present"}}
	uc := NewController(store, stubUser{}, stubClass{homeroom: true})

	app := web.NewApp()
	app.Patch("/attendance/:id/status", uc.SetStatus, withClaims(auth.Claims{UserId: 2, Role: auth.RoleTeacher}))

	req := httptest.NewRequest(http.MethodPatch, "/attendance/5/status", strings.NewReader(`{"status":"excused"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.setStatusCalled)
}
