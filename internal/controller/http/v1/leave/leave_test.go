package leave

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	leaverepo "school-attendance/backend/internal/repository/postgres/leave"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLeave struct {
	submitted        *leaverepo.SubmitRequest
	pendingTeacherID *int
}

func (s *stubLeave) Submit(ctx context.Context, request leaverepo.SubmitRequest) (leaverepo.Request, error) {
	s.submitted = &request
	return leaverepo.Request{ID: 1, StudentID: *request.StudentID, Status: "pending"}, nil
}

func (s *stubLeave) Amend(ctx context.Context, request leaverepo.AmendRequest, actingStudentID int) error {
	return nil
}

func (s *stubLeave) Withdraw(ctx context.Context, id, actingStudentID int) error { return nil }

func (s *stubLeave) Verify(ctx context.Context, request leaverepo.VerifyRequest) (leaverepo.Request, error) {
	return leaverepo.Request{ID: request.ID, Status: "approved"}, nil
}

func (s *stubLeave) GetList(ctx context.Context, filter leaverepo.Filter) ([]leaverepo.GetListResponse, int, error) {
	return nil, 0, nil
}

func (s *stubLeave) GetPending(ctx context.Context, teacherID *int) ([]leaverepo.GetListResponse, error) {
	s.pendingTeacherID = teacherID
	return nil, nil
}

func (s *stubLeave) GetDetailById(ctx context.Context, id int) (leaverepo.GetListResponse, error) {
	return leaverepo.GetListResponse{ID: id}, nil
}

type stubUser struct {
	studentID int
}

func (s stubUser) StudentIDByUserID(ctx context.Context, userID int) (int, error) {
	return s.studentID, nil
}

func withClaims(claims auth.Claims) web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(c *web.Context) error {
			c.Ctx = context.WithValue(c.Ctx, auth.Key, claims)
			return handler(c)
		}
	}
}

func TestSubmitUsesOwnStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubLeave{}
	uc := NewController(store, stubUser{studentID: 11})

	app := web.NewApp()
	app.Post("/leave/submit", uc.Submit, withClaims(auth.Claims{UserId: 4, Role: auth.RoleStudent}))

	body := `{"leave_day":"2026-09-01","kind":"sick","reason":"flu","student_id":99}`
	req := httptest.NewRequest(http.MethodPost, "/leave/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.submitted)

	// The body's student_id must not let a student submit for someone else.
	assert.Equal(t, 11, *store.submitted.StudentID)
}

func TestSubmitRequiresKind(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubLeave{}
	uc := NewController(store, stubUser{studentID: 11})

	app := web.NewApp()
	app.Post("/leave/submit", uc.Submit, withClaims(auth.Claims{UserId: 4, Role: auth.RoleStudent}))

	body := `{"leave_day":"2026-09-01","reason":"flu"}`
	req := httptest.NewRequest(http.MethodPost, "/leave/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, store.submitted)
}

func TestGetPendingScopesTeachers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubLeave{}
	uc := NewController(store, stubUser{})

	app := web.NewApp()
	app.Get("/leave/pending", uc.GetPending, withClaims(auth.Claims{UserId: 6, Role: auth.RoleTeacher}))

	req := httptest.NewRequest(http.MethodGet, "/leave/pending", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.pendingTeacherID)
	assert.Equal(t, 6, *store.pendingTeacherID)
}

func TestGetPendingUnscopedForAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubLeave{}
	uc := NewController(store, stubUser{})

	app := web.NewApp()
	app.Get("/leave/pending", uc.GetPending, withClaims(auth.Claims{UserId: 1, Role: auth.RoleAdmin}))

	req := httptest.NewRequest(http.MethodGet, "/leave/pending", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, store.pendingTeacherID)
}
