package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/repository/postgres/report"
	"school-attendance/backend/internal/service"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/redis/go-redis/v9"
)

// Summaries change as students check in, so the cache is short lived.
const summaryCacheTTL = 5 * time.Minute

type Controller struct {
	report Report
	cache  *redis.Client
}

func NewController(report Report, cache *redis.Client) *Controller {
	return &Controller{report: report, cache: cache}
}

func (uc Controller) parseFilter(c *web.Context) (report.Filter, error) {
	var filter report.Filter

	if classID, ok := c.GetQueryFunc(reflect.Int, "class_id").(*int); ok {
		filter.ClassID = classID
	}
	if month, ok := c.GetQueryFunc(reflect.String, "month").(*string); ok {
		filter.Month = month
	}
	if err := c.ValidQuery(); err != nil {
		return report.Filter{}, err
	}

	if from := c.Query("date_from"); from != "" {
		parsed, err := date.ParseDate(from)
		if err != nil {
			return report.Filter{}, web.NewRequestError(errors.New("invalid date_from format"), http.StatusBadRequest)
		}
		filter.DateFrom = &parsed
	}
	if to := c.Query("date_to"); to != "" {
		parsed, err := date.ParseDate(to)
		if err != nil {
			return report.Filter{}, web.NewRequestError(errors.New("invalid date_to format"), http.StatusBadRequest)
		}
		filter.DateTo = &parsed
	}

	return filter, nil
}

func (uc Controller) GetStats(c *web.Context) error {
	filter, err := uc.parseFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	response, err := uc.report.GetStats(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

// GetDailySummary answers from redis when a fresh summary for the same
// day and class is cached.
func (uc Controller) GetDailySummary(c *web.Context) error {
	var classID *int
	if v, ok := c.GetQueryFunc(reflect.Int, "class_id").(*int); ok {
		classID = v
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	day := c.Query("date")

	cacheKey := fmt.Sprintf("report:daily:%s:%d", day, derefOrZero(classID))
	if uc.cache != nil {
		if cached, err := uc.cache.Get(c.Ctx, cacheKey).Result(); err == nil {
			var summary report.DailySummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return c.Respond(map[string]interface{}{
					"data":   summary,
					"status": true,
				}, http.StatusOK)
			}
		}
	}

	response, err := uc.report.GetDailySummary(c.Ctx, day, classID)
	if err != nil {
		return c.RespondError(err)
	}

	if uc.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			uc.cache.Set(c.Ctx, cacheKey, payload, summaryCacheTTL)
		}
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetMonthlyTrend(c *web.Context) error {
	filter, err := uc.parseFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.report.GetMonthlyTrend(c.Ctx, filter)
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

func (uc Controller) GetStudentReport(c *web.Context) error {
	studentID := c.GetParam(reflect.Int, "student_id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	filter, err := uc.parseFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	response, err := uc.report.GetStudentReport(c.Ctx, studentID, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetClassReport(c *web.Context) error {
	classID := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	filter, err := uc.parseFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.report.GetClassReport(c.Ctx, classID, filter)
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

// ExportClassReport streams the per-student totals as an xlsx download.
func (uc Controller) ExportClassReport(c *web.Context) error {
	classID := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	filter, err := uc.parseFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.report.GetClassReport(c.Ctx, classID, filter)
	if err != nil {
		return c.RespondError(err)
	}

	rows := make([]service.ReportRow, 0, len(list))
	for _, row := range list {
		rows = append(rows, service.ReportRow{
			NIS:      row.NIS,
			FullName: row.FullName,
			Present:  row.Present,
			Excused:  row.Excused,
			Sick:     row.Sick,
			Absent:   row.Absent,
		})
	}

	title := fmt.Sprintf("Attendance report, class %d", classID)
	fileName := filepath.Join(os.TempDir(), fmt.Sprintf("class_%d_report.xlsx", classID))
	if err := service.WriteAttendanceReport(title, rows, fileName); err != nil {
		return c.RespondError(err)
	}

	file, err := os.Open(fileName)
	if err != nil {
		return c.RespondError(err)
	}
	defer file.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"class_%d_report.xlsx\"", classID))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		return c.RespondError(err)
	}

	return nil
}

func derefOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
