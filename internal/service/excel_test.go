package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteStudentRoster(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "roster.xlsx")

	students := []Student{
		{NIS: "2024001", FullName: "Siti Rahma", ClassName: "7A"},
		{NIS: "2024002", FullName: "Budi Santoso", ClassName: "7B"},
	}
	require.NoError(t, WriteStudentRoster(students, fileName))

	f, err := excelize.OpenFile(fileName)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "NIS", header)

	nis, err := f.GetCellValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024001", nis)

	name, err := f.GetCellValue("Sheet1", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", name)
}

func TestWriteAttendanceReport(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "report.xlsx")

	rows := []ReportRow{
		{NIS: "2024001", FullName: "Siti Rahma", Present: 18, Excused: 1, Sick: 0, Absent: 1},
	}
	require.NoError(t, WriteAttendanceReport("Attendance report, class 7A", rows, fileName))

	f, err := excelize.OpenFile(fileName)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Attendance report, class 7A", title)

	present, err := f.GetCellValue("Sheet1", "C3")
	require.NoError(t, err)
	assert.Equal(t, "18", present)
}
