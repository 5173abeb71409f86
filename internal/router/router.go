package router

import (
	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/controller/http/v1/file"
	"school-attendance/backend/internal/middleware"
	"school-attendance/backend/internal/pkg/repository/postgresql"
	"school-attendance/backend/internal/repository/postgres/attendance"
	"school-attendance/backend/internal/repository/postgres/class"
	"school-attendance/backend/internal/repository/postgres/leave"
	"school-attendance/backend/internal/repository/postgres/report"
	"school-attendance/backend/internal/repository/postgres/schoolprofile"
	"school-attendance/backend/internal/repository/postgres/user"
	"time"

	"github.com/redis/go-redis/v9"

	attendance_controller "school-attendance/backend/internal/controller/http/v1/attendance"
	auth_controller "school-attendance/backend/internal/controller/http/v1/auth"
	class_controller "school-attendance/backend/internal/controller/http/v1/class"
	leave_controller "school-attendance/backend/internal/controller/http/v1/leave"
	report_controller "school-attendance/backend/internal/controller/http/v1/report"
	schoolprofile_controller "school-attendance/backend/internal/controller/http/v1/schoolprofile"
	user_controller "school-attendance/backend/internal/controller/http/v1/user"
)

type Router struct {
	*web.App
	postgresDB         *postgresql.Database
	redisDB            *redis.Client
	port               string
	auth               *auth.Auth
	privateKeyPath     string
	fileServerBasePath string
	location           *time.Location
}

func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	redisDB *redis.Client,
	port string,
	auth *auth.Auth,
	privateKeyPath string,
	fileServerBasePath string,
	location *time.Location,
) *Router {
	return &Router{
		app,
		postgresDB,
		redisDB,
		port,
		auth,
		privateKeyPath,
		fileServerBasePath,
		location,
	}
}

func (r Router) Init() error {

	r.HandleMethodNotAllowed = true
	r.Use(middleware.CORSMiddleware())

	// - postgresql
	userPostgres := user.NewRepository(r.postgresDB)
	classPostgres := class.NewRepository(r.postgresDB)
	attendancePostgres := attendance.NewRepository(r.postgresDB, r.location)
	leavePostgres := leave.NewRepository(r.postgresDB, r.location)
	reportPostgres := report.NewRepository(r.postgresDB, r.location)
	schoolProfilePostgres := schoolprofile.NewRepository(r.postgresDB)

	// controller
	authController := auth_controller.NewController(userPostgres, r.privateKeyPath)
	userController := user_controller.NewController(userPostgres)
	classController := class_controller.NewController(classPostgres)
	attendanceController := attendance_controller.NewController(attendancePostgres, userPostgres, classPostgres)
	leaveController := leave_controller.NewController(leavePostgres, userPostgres)
	reportController := report_controller.NewController(reportPostgres, r.redisDB)
	schoolProfileController := schoolprofile_controller.NewController(schoolProfilePostgres)

	fileC := file.NewController(r.App, r.fileServerBasePath)

	// #auth
	r.Post("/api/v1/sign-in", authController.SignIn)
	r.Post("/api/v1/refresh-token", authController.RefreshToken)
	r.Get("/api/v1/me", authController.Me, middleware.Authenticate(r.auth))

	r.GET("/media/*filepath", fileC.File)
	r.HEAD("/media/*filepath", fileC.File)

	// #user
	r.Get("/api/v1/user/list", userController.GetUserList, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/user/students", userController.GetStudentList, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/user/teachers", userController.GetTeacherList, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/user/qrcode", userController.GetQrCodeByNIS, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/user/qrcards", userController.GetQrCardSheet, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/user/export_roster", userController.ExportStudentRoster, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/user/:id", userController.GetUserDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Post("/api/v1/user/create", userController.CreateUser, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Patch("/api/v1/user/:id", userController.UpdateUserColumns, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/user/:id", userController.DeleteUser, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #class
	r.Get("/api/v1/class/list", classController.GetList, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/class/mine", classController.GetMine, middleware.Authenticate(r.auth, auth.RoleTeacher))
	r.Get("/api/v1/class/:id", classController.GetDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Post("/api/v1/class/create", classController.Create, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Patch("/api/v1/class/:id", classController.UpdateColumns, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Patch("/api/v1/class/:id/homeroom", classController.AssignHomeroom, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/class/:id", classController.Delete, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #attendance
	r.Post("/api/v1/attendance/check-in", attendanceController.CheckIn, middleware.Authenticate(r.auth))
	r.Patch("/api/v1/attendance/check-out", attendanceController.CheckOut, middleware.Authenticate(r.auth))
	r.Get("/api/v1/attendance/today", attendanceController.Today, middleware.Authenticate(r.auth, auth.RoleStudent))
	r.Get("/api/v1/attendance/history", attendanceController.History, middleware.Authenticate(r.auth))
	r.Get("/api/v1/attendance/list", attendanceController.GetList, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/attendance/student/:student_id/day", attendanceController.GetStudentDay, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/attendance/class/:id", attendanceController.ClassByDate, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/attendance/:id", attendanceController.GetDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Patch("/api/v1/attendance/:id/status", attendanceController.SetStatus, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Delete("/api/v1/attendance/:id", attendanceController.Delete, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #leave
	r.Post("/api/v1/leave/submit", leaveController.Submit, middleware.Authenticate(r.auth))
	r.Patch("/api/v1/leave/:id", leaveController.Amend, middleware.Authenticate(r.auth, auth.RoleStudent))
	r.Delete("/api/v1/leave/:id", leaveController.Withdraw, middleware.Authenticate(r.auth, auth.RoleStudent))
	r.Patch("/api/v1/leave/:id/verify", leaveController.Verify, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/leave/list", leaveController.GetList, middleware.Authenticate(r.auth))
	r.Get("/api/v1/leave/pending", leaveController.GetPending, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/leave/:id", leaveController.GetDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))

	// #report
	r.Get("/api/v1/report/stats", reportController.GetStats, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/report/daily", reportController.GetDailySummary, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/report/trend", reportController.GetMonthlyTrend, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/report/student/:student_id", reportController.GetStudentReport, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/report/class/:id", reportController.GetClassReport, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))
	r.Get("/api/v1/report/class/:id/export", reportController.ExportClassReport, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleTeacher))

	// #school profile
	r.Get("/api/v1/school/info", schoolProfileController.GetInfo, middleware.Authenticate(r.auth))
	r.Get("/api/v1/school/schedule", schoolProfileController.GetSchedule, middleware.Authenticate(r.auth))
	r.Put("/api/v1/school/:id", schoolProfileController.UpdateAll, middleware.Authenticate(r.auth, auth.RoleAdmin))

	return r.Run(r.port)
}
