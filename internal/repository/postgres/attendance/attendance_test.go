package attendance

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
	"school-attendance/backend/internal/pkg/repository/postgresql"
	"school-attendance/backend/internal/repository/postgres"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// stubResult is one canned answer for the fake driver: the rows a query
// returns, an optional mid-stream error, and the affected count for execs.
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

func TestCheckInRequiresClaims(t *testing.T) {
	r := NewRepository(&postgresql.Database{}, time.UTC)

	_, err := r.CheckIn(context.Background(), 1, time.Now())
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestCheckInDuplicateDay(t *testing.T) {
	// The conditional insert returns no row when the day is already taken.
	db, queries := stubDB(stubResult{columns: []string{"id"}})
	r := NewRepository(db, time.UTC)

	_, err := r.CheckIn(claimsContext(auth.RoleStudent, 3), 7, time.Now())
	require.True(t, errors.Is(err, postgres.ErrDuplicateCheckIn))
	requireStatus(t, err, http.StatusConflict)

	require.Len(t, *queries, 1)
	require.Contains(t, (*queries)[0], "ON CONFLICT (student_id, attendance_day) WHERE deleted_at IS NULL DO NOTHING")
}

func TestCheckOutWithoutRecord(t *testing.T) {
	db, _ := stubDB(
		stubResult{affected: 0},
		stubResult{columns: make([]string, 8)},
	)
	r := NewRepository(db, time.UTC)

	_, err := r.CheckOut(claimsContext(auth.RoleStudent, 3), 7, time.Now())
	require.True(t, errors.Is(err, postgres.ErrNoCheckInFound))
	requireStatus(t, err, http.StatusNotFound)
}

func TestClassifyCheckOutWithoutOpenCheckIn(t *testing.T) {
	in := time.Date(2026, 3, 2, 7, 10, 0, 0, time.UTC)
	out := in.Add(6 * time.Hour)

	err := classifyCheckOut(Record{}, out)
	require.True(t, errors.Is(err, postgres.ErrNoCheckInFound))

	err = classifyCheckOut(Record{CheckInTime: &in, CheckOutTime: &out}, out)
	require.True(t, errors.Is(err, postgres.ErrNoCheckInFound))
}

func TestClassifyCheckOutBeforeCheckIn(t *testing.T) {
	in := time.Date(2026, 3, 2, 7, 10, 0, 0, time.UTC)

	err := classifyCheckOut(Record{CheckInTime: &in}, in.Add(-time.Minute))
	require.True(t, errors.Is(err, postgres.ErrInvalidTimeOrder))
	requireStatus(t, err, http.StatusBadRequest)
}

func TestClassifyCheckOutLostRace(t *testing.T) {
	in := time.Date(2026, 3, 2, 7, 10, 0, 0, time.UTC)

	err := classifyCheckOut(Record{CheckInTime: &in}, in.Add(6*time.Hour))
	require.True(t, errors.Is(err, postgres.ErrConflict))
	requireStatus(t, err, http.StatusConflict)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	r := NewRepository(&postgresql.Database{}, time.UTC)
	status := "vacation"

	_, err := r.SetStatus(claimsContext(auth.RoleAdmin, 1), SetStatusRequest{ID: 5, Status: &status})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestMaterializeTargetsLiveRows(t *testing.T) {
	db, queries := stubDB(stubResult{affected: 1})

	err := Materialize(context.Background(), db.DB, 7, "2026-03-02", "excused", 2)
	require.NoError(t, err)

	require.Len(t, *queries, 1)
	require.Contains(t, (*queries)[0], "ON CONFLICT (student_id, attendance_day) WHERE deleted_at IS NULL")
	require.Contains(t, (*queries)[0], "DO UPDATE")
}

func TestGetListSurfacesRowError(t *testing.T) {
	db, _ := stubDB(stubResult{columns: make([]string, 12), err: errors.New("connection reset")})
	r := NewRepository(db, time.UTC)

	_, _, err := r.GetList(claimsContext(auth.RoleAdmin, 1), Filter{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
}
