package http

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"task-assign.com/task-assign/internal/auth"
	middleware "task-assign.com/task-assign/internal/http/middlewares"
	"task-assign.com/task-assign/internal/metrics"
)

type Options struct {
	RateLimitPerMinute int
	Tokens             *auth.TokenManager
	AuthRequired       bool
}

func Register(e *echo.Echo, tasks *TaskHandler, users *UserHandler, opts Options) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s id=%s", v.Method, v.URIPath, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(echomw.CORS())
	e.Use(middleware.Metrics())
	e.Use(middleware.RateLimiter(opts.RateLimitPerMinute, time.Minute))

	acting := middleware.ActingUser(opts.Tokens, opts.AuthRequired)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.POST("/auth/signup", users.Signup)
	e.POST("/auth/login", users.Login)
	e.GET("/users", users.ListUsers, acting)
	e.GET("/users/:userId/assignments", tasks.Assignments, acting)

	e.POST("/tasks", tasks.CreateTask, acting)
	e.GET("/tasks/work/:userId", tasks.WorkQueue, acting)
	e.GET("/tasks/urgent/:userId", tasks.UrgentQueue, acting)
	e.GET("/tasks/reminder/:userId", tasks.ReminderQueue, acting)
	e.GET("/tasks/completed/:userId", tasks.CompletedList, acting)
	e.GET("/tasks/:taskId/assignees", tasks.Assignees, acting)
	e.PUT("/tasks/:taskId/complete/:userId", tasks.CompleteTask, acting)
	e.PUT("/tasks/:taskId/stop-reminder/:userId", tasks.StopReminder, acting)
}
