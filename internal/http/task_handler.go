package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-assign.com/task-assign/internal/data_models"
	apperrors "task-assign.com/task-assign/internal/errors"
	middleware "task-assign.com/task-assign/internal/http/middlewares"
	"task-assign.com/task-assign/internal/http/validators"
	"task-assign.com/task-assign/internal/services"
)

type TaskHandler struct {
	tasks   *services.TaskService
	queries *services.QueryService
	ledger  *services.AssignmentService
	users   *services.UserService
}

func NewTaskHandler(
	tasks *services.TaskService,
	queries *services.QueryService,
	ledger *services.AssignmentService,
	users *services.UserService,
) *TaskHandler {
	return &TaskHandler{
		tasks:   tasks,
		queries: queries,
		ledger:  ledger,
		users:   users,
	}
}

func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}
	if err := middleware.RequireActingUser(c, req.AssignedBy); err != nil {
		return err
	}

	ctx := c.Request().Context()

	task, assignees, err := h.tasks.CreateTask(ctx, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedBy:  req.AssignedBy,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		HasReminder: req.HasReminder,
		IsUrgent:    req.IsUrgent,
	})
	if err != nil {
		return err
	}

	view := dto.NewTaskView(*task, h.users.Names(ctx, []uint64{task.AssignedBy}))
	view.AssignedTo = assignees
	return c.JSON(http.StatusCreated, view)
}

func (h *TaskHandler) WorkQueue(c echo.Context) error {
	return h.list(c, h.queries.WorkQueue)
}

func (h *TaskHandler) UrgentQueue(c echo.Context) error {
	return h.list(c, h.queries.UrgentQueue)
}

func (h *TaskHandler) ReminderQueue(c echo.Context) error {
	return h.list(c, h.queries.ReminderQueue)
}

func (h *TaskHandler) CompletedList(c echo.Context) error {
	return h.list(c, h.queries.CompletedList)
}

type queueFunc func(ctx context.Context, userID uint64) ([]dto.TaskView, error)

// list keeps the empty list in the body when the read fails, next to the error.
func (h *TaskHandler) list(c echo.Context, query queueFunc) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}

	tasks, err := query(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(apperrors.StatusCode(err), echo.Map{
			"error": apperrors.Message(err),
			"kind":  apperrors.KindOf(err),
			"tasks": tasks,
		})
	}

	return c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CompleteTask(c echo.Context) error {
	taskID, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}

	if err := h.tasks.CompleteTask(c.Request().Context(), taskID, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"task_id":      taskID,
		"completed":    true,
		"completed_by": userID,
	})
}

func (h *TaskHandler) StopReminder(c echo.Context) error {
	taskID, err := idParam(c, "taskId")
	if err != nil {
		return err
	}
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}

	var req dto.StopReminderRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}

	if err := h.tasks.StopReminder(c.Request().Context(), taskID, userID, req.Completed); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"task_id":      taskID,
		"has_reminder": false,
	})
}

func (h *TaskHandler) Assignees(c echo.Context) error {
	taskID, err := idParam(c, "taskId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	userIDs, err := h.ledger.AssignmentsFor(ctx, taskID)
	if err != nil {
		return err
	}

	names := h.users.Names(ctx, userIDs)
	assignees := make([]dto.Assignee, 0, len(userIDs))
	for _, id := range userIDs {
		a := dto.Assignee{ID: id}
		if name, ok := names[id]; ok {
			a.Name = &name
		}
		assignees = append(assignees, a)
	}

	return c.JSON(http.StatusOK, dto.AssigneesResponse{TaskID: taskID, Assignees: assignees})
}

func (h *TaskHandler) Assignments(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}

	taskIDs, err := h.ledger.TasksFor(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if taskIDs == nil {
		taskIDs = []uint64{}
	}

	return c.JSON(http.StatusOK, dto.AssignmentsResponse{UserID: userID, TaskIDs: taskIDs})
}
