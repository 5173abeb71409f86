package report

import "github.com/Azure/go-autorest/autorest/date"

type Filter struct {
	ClassID  *int
	DateFrom *date.Date
	DateTo   *date.Date
	Month    *string
}

type StatusCounts struct {
	Present int `json:"present"`
	Excused int `json:"excused"`
	Sick    int `json:"sick"`
	Absent  int `json:"absent"`
}

type Stats struct {
	StatusCounts
	Total          int     `json:"total"`
	PresentPercent float64 `json:"present_percent"`
	ExcusedPercent float64 `json:"excused_percent"`
	SickPercent    float64 `json:"sick_percent"`
	AbsentPercent  float64 `json:"absent_percent"`
}

type DailySummary struct {
	Day string `json:"day"`
	StatusCounts
	NotRecorded int `json:"not_recorded"`
	Students    int `json:"students"`
}

type MonthlyTrendRow struct {
	Month string `json:"month"`
	StatusCounts
}

type StudentReport struct {
	StudentID int    `json:"student_id"`
	FullName  string `json:"full_name"`
	NIS       string `json:"nis"`
	ClassName string `json:"class_name"`
	Stats     Stats  `json:"stats"`
	Rows      []StudentReportRow
}

type StudentReportRow struct {
	Day          string  `json:"day"`
	Status       string  `json:"status"`
	CheckInTime  *string `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time"`
	Note         *string `json:"note"`
}

type ClassReportRow struct {
	StudentID int    `json:"student_id"`
	FullName  string `json:"full_name"`
	NIS       string `json:"nis"`
	StatusCounts
	PresentPercent float64 `json:"present_percent"`
}
