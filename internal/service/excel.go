package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type Student struct {
	NIS       string
	FullName  string
	ClassName string
}

type ReportRow struct {
	NIS      string
	FullName string
	Present  int
	Excused  int
	Sick     int
	Absent   int
}

// WriteStudentRoster writes one row per student to an xlsx file.
func WriteStudentRoster(students []Student, fileName string) error {
	f := excelize.NewFile()
	sheet := "Sheet1"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"NIS", "Full Name", "Class"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
	}

	rowNum := 2
	for _, entry := range students {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), entry.NIS)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), entry.FullName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), entry.ClassName)
		rowNum++
	}

	if err := f.SaveAs(fileName); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

// WriteAttendanceReport writes per-student attendance totals to an xlsx file.
func WriteAttendanceReport(title string, rows []ReportRow, fileName string) error {
	f := excelize.NewFile()
	sheet := "Sheet1"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", title)

	headers := []string{"NIS", "Full Name", "Present", "Excused", "Sick", "Absent"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c2", 'A'+i)
		f.SetCellValue(sheet, cell, header)
	}

	rowNum := 3
	for _, entry := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), entry.NIS)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), entry.FullName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), entry.Present)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), entry.Excused)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNum), entry.Sick)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", rowNum), entry.Absent)
		rowNum++
	}

	if err := f.SaveAs(fileName); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}
