package leave

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"net/http"
	"testing"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/entity"
	"school-attendance/backend/internal/pkg/calendar"
	"school-attendance/backend/internal/pkg/repository/postgresql"
	"school-attendance/backend/internal/repository/postgres"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

type stubResult struct {
	columns  []string
	values   [][]driver.Value
	err      error
	affected int64
}

type stubConn struct {
	queries *[]string
	results *[]stubResult
}

func (c stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare not supported") }
func (c stubConn) Close() error                        { return nil }
func (c stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("begin not supported") }

func (c stubConn) pop(query string) stubResult {
	*c.queries = append(*c.queries, query)
	if len(*c.results) == 0 {
		return stubResult{affected: 1}
	}
	res := (*c.results)[0]
	*c.results = (*c.results)[1:]
	return res
}

func (c stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	return &stubRows{result: c.pop(query)}, nil
}

func (c stubConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	return driver.RowsAffected(c.pop(query).affected), nil
}

type stubRows struct {
	result stubResult
	next   int
}

func (r *stubRows) Columns() []string { return r.result.columns }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.next < len(r.result.values) {
		copy(dest, r.result.values[r.next])
		r.next++
		return nil
	}
	if r.result.err != nil {
		return r.result.err
	}
	return io.EOF
}

type stubConnector struct {
	conn stubConn
}

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, errors.New("open not supported") }

func stubDB(results ...stubResult) (*postgresql.Database, *[]string) {
	queries := &[]string{}
	sqldb := sql.OpenDB(stubConnector{conn: stubConn{queries: queries, results: &results}})
	return &postgresql.Database{DB: bun.NewDB(sqldb, pgdialect.New())}, queries
}

func claimsContext(role string, userID int) context.Context {
	return context.WithValue(context.Background(), auth.Key, auth.Claims{UserId: userID, Role: role})
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var webErr *web.Error
	require.True(t, errors.As(err, &webErr))
	require.Equal(t, status, webErr.Status)
}

func submitRequest(studentID int, day, kind, reason string) SubmitRequest {
	return SubmitRequest{StudentID: &studentID, LeaveDay: &day, Kind: &kind, Reason: &reason}
}

func TestSubmitRejectsPastDay(t *testing.T) {
	r := NewRepository(&postgresql.Database{}, time.UTC)

	_, err := r.Submit(claimsContext(auth.RoleStudent, 9), submitRequest(4, "2020-01-10", entity.KindSick, "flu"))
	require.True(t, errors.Is(err, postgres.ErrPastDate))
	requireStatus(t, err, http.StatusBadRequest)
}

func TestSubmitRejectsUnknownKind(t *testing.T) {
	r := NewRepository(&postgresql.Database{}, time.UTC)
	day := calendar.Today(time.UTC).String()

	_, err := r.Submit(claimsContext(auth.RoleStudent, 9), submitRequest(4, day, "holiday", "trip"))
	require.False(t, errors.Is(err, postgres.ErrPastDate))
	requireStatus(t, err, http.StatusBadRequest)
}

func TestSubmitDuplicatePending(t *testing.T) {
	// The conditional insert returns no row when a live pending request for
	// the same (student, day) already exists.
	db, queries := stubDB(stubResult{columns: []string{"id"}})
	r := NewRepository(db, time.UTC)
	day := calendar.Today(time.UTC).String()

	_, err := r.Submit(claimsContext(auth.RoleStudent, 9), submitRequest(4, day, entity.KindLeave, "family matter"))
	require.True(t, errors.Is(err, postgres.ErrDuplicatePending))
	requireStatus(t, err, http.StatusConflict)

	require.Len(t, *queries, 1)
	require.Contains(t, (*queries)[0], "ON CONFLICT (student_id, leave_day) WHERE status = 'pending' AND deleted_at IS NULL DO NOTHING")
}

func TestVerifyRejectsUnknownDecision(t *testing.T) {
	r := NewRepository(&postgresql.Database{}, time.UTC)
	decision := "maybe"

	_, err := r.Verify(claimsContext(auth.RoleAdmin, 1), VerifyRequest{ID: 3, Decision: &decision})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestAmendRequiresClaims(t *testing.T) {
	r := NewRepository(&postgresql.Database{}, time.UTC)
	reason := "family matter"

	err := r.Amend(context.Background(), AmendRequest{ID: 3, Reason: &reason}, 11)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAmendStampsActingUser(t *testing.T) {
	db, queries := stubDB(stubResult{affected: 1})
	r := NewRepository(db, time.UTC)
	reason := "family matter"

	err := r.Amend(claimsContext(auth.RoleStudent, 21), AmendRequest{ID: 3, Reason: &reason}, 11)
	require.NoError(t, err)

	require.Len(t, *queries, 1)
	require.Contains(t, (*queries)[0], "updated_by = 21")
}

func TestWithdrawRequiresClaims(t *testing.T) {
	r := NewRepository(&postgresql.Database{}, time.UTC)

	err := r.Withdraw(context.Background(), 3, 11)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestWithdrawStampsActingUser(t *testing.T) {
	db, queries := stubDB(stubResult{affected: 1})
	r := NewRepository(db, time.UTC)

	err := r.Withdraw(claimsContext(auth.RoleStudent, 21), 3, 11)
	require.NoError(t, err)

	require.Len(t, *queries, 1)
	require.Contains(t, (*queries)[0], "deleted_by = 21")
}

func TestGetListSurfacesRowError(t *testing.T) {
	db, _ := stubDB(stubResult{columns: make([]string, 12), err: errors.New("connection reset")})
	r := NewRepository(db, time.UTC)

	_, _, err := r.GetList(claimsContext(auth.RoleAdmin, 1), Filter{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
}
