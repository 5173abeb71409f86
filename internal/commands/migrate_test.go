package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemeIndexesAreSequential(t *testing.T) {
	for i, s := range scheme {
		require.Equal(t, i+1, s.Index, s.Description)
	}
}

// Attendance uniqueness must ignore soft-deleted rows: a removed record may
// not block a later check-in or a materialized approval for the same day.
func TestAttendanceUniquenessSkipsDeletedRows(t *testing.T) {
	var table, index string
	for _, s := range scheme {
		if strings.Contains(s.Query, "CREATE TABLE IF NOT EXISTS attendance (") {
			table = s.Query
		}
		if strings.Contains(s.Query, "attendance_student_day_live") {
			index = s.Query
		}
	}

	require.NotEmpty(t, table)
	require.NotContains(t, table, "UNIQUE")
	require.NotEmpty(t, index)
	require.Contains(t, index, "ON attendance (student_id, attendance_day)")
	require.Contains(t, index, "WHERE deleted_at IS NULL")
}

func TestPendingLeaveUniquenessSkipsDeletedRows(t *testing.T) {
	var index string
	for _, s := range scheme {
		if strings.Contains(s.Query, "leave_request_pending_unique") {
			index = s.Query
		}
	}

	require.NotEmpty(t, index)
	require.Contains(t, index, "ON leave_request (student_id, leave_day)")
	require.Contains(t, index, "WHERE status = 'pending' AND deleted_at IS NULL")
}
