package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-assign.com/task-assign/internal/auth"
	apperrors "task-assign.com/task-assign/internal/errors"
	"task-assign.com/task-assign/internal/events"
	model "task-assign.com/task-assign/internal/models"
	repository "task-assign.com/task-assign/internal/repositories"
)

// recordingSink collects enqueued events instead of dispatching them
type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingSink) Enqueue(e events.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return true
}

func (r *recordingSink) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	userRepo *repository.UserRepository
	users    *UserService
	ledger   *AssignmentService
	tasks    *TaskService
	queries  *QueryService
	sink     *recordingSink
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	ledger := NewAssignmentService(repository.NewAssignmentRepository(db), userRepo)
	users := NewUserService(userRepo, auth.NewPasswordHasher(bcrypt.MinCost), nil, nil)
	sink := &recordingSink{}

	return &testEnv{
		db:       db,
		userRepo: userRepo,
		users:    users,
		ledger:   ledger,
		tasks:    NewTaskService(db, taskRepo, userRepo, ledger, sink),
		queries:  NewQueryService(taskRepo, ledger, users),
		sink:     sink,
	}
}

// seedUsers signs up users named after their position, so the first user has
// id 1 and name "user 1".
func (env *testEnv) seedUsers(t *testing.T, n int) []uint64 {
	t.Helper()

	ids := make([]uint64, 0, n)
	for i := 1; i <= n; i++ {
		u, err := env.users.Signup(context.Background(), fmt.Sprintf("user %d", i), fmt.Sprintf("user%d@example.com", i), "password")
		if err != nil {
			t.Fatalf("failed to seed user %d: %v", i, err)
		}
		ids = append(ids, u.ID)
	}
	return ids
}

func (env *testEnv) createTask(t *testing.T, in CreateTaskInput) *model.Task {
	t.Helper()

	task, _, err := env.tasks.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("failed to create task %q: %v", in.Title, err)
	}
	return task
}

func (env *testEnv) loadTask(t *testing.T, id uint64) model.Task {
	t.Helper()

	var task model.Task
	if err := env.db.First(&task, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to load task %d: %v", id, err)
	}
	return task
}

func strPtr(s string) *string { return &s }

func sameIDs(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCreateTask_AssignsEachUserOnce(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 3)

	task, assignees, err := env.tasks.CreateTask(context.Background(), CreateTaskInput{
		Title:      "Ship report",
		AssignedBy: u[0],
		AssignedTo: []uint64{u[1], u[2], u[1], u[2]},
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if !sameIDs(assignees, []uint64{u[1], u[2]}) {
		t.Errorf("expected returned assignees %v, got %v", []uint64{u[1], u[2]}, assignees)
	}

	got, err := env.ledger.AssignmentsFor(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("AssignmentsFor() error = %v", err)
	}
	if !sameIDs(got, []uint64{u[1], u[2]}) {
		t.Errorf("expected assignments %v, got %v", []uint64{u[1], u[2]}, got)
	}

	stored := env.loadTask(t, task.ID)
	if stored.Completed || stored.CompletedBy != nil || stored.CompletedAt != nil {
		t.Errorf("new task should be open, got %+v", stored)
	}
	if stored.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestCreateTask_ValidationPersistsNothing(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 2)

	tests := []struct {
		name string
		in   CreateTaskInput
		want error
	}{
		{
			name: "empty assignees",
			in:   CreateTaskInput{Title: "t", AssignedBy: u[0]},
			want: apperrors.ErrAssigneesRequired,
		},
		{
			name: "blank title",
			in:   CreateTaskInput{Title: "   ", AssignedBy: u[0], AssignedTo: []uint64{u[1]}},
			want: apperrors.ErrTitleRequired,
		},
		{
			name: "bad due date",
			in:   CreateTaskInput{Title: "t", AssignedBy: u[0], AssignedTo: []uint64{u[1]}, DueDate: strPtr("next tuesday")},
			want: apperrors.ErrInvalidDueDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.tasks.CreateTask(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if apperrors.KindOf(err) != apperrors.KindValidation {
				t.Errorf("expected validation kind, got %s", apperrors.KindOf(err))
			}
		})
	}

	assertEmptyTables(t, env)
}

func TestCreateTask_UnknownUsersRollBack(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 2)

	_, _, err := env.tasks.CreateTask(context.Background(), CreateTaskInput{
		Title: "t", AssignedBy: 99, AssignedTo: []uint64{u[1]},
	})
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("unknown assigned_by: expected validation error, got %v", err)
	}

	// the task row is inserted before the bad assignee is detected
	_, _, err = env.tasks.CreateTask(context.Background(), CreateTaskInput{
		Title: "t", AssignedBy: u[0], AssignedTo: []uint64{u[1], 77},
	})
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("unknown assignee: expected validation error, got %v", err)
	}

	assertEmptyTables(t, env)
}

func assertEmptyTables(t *testing.T, env *testEnv) {
	t.Helper()

	var tasks, assignments int64
	env.db.Model(&model.Task{}).Count(&tasks)
	env.db.Model(&model.TaskAssignment{}).Count(&assignments)
	if tasks != 0 || assignments != 0 {
		t.Errorf("expected no rows, got %d tasks and %d assignments", tasks, assignments)
	}
}

func TestCreateTask_DueDateKeepsCalendarDay(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 2)

	for _, raw := range []string{"2024-05-01", "2024-05-01T18:30:00+02:00", "2024-05-01T23:30:00-05:00", "2024-05-01T00:30:00+09:00"} {
		task := env.createTask(t, CreateTaskInput{
			Title: raw, AssignedBy: u[0], AssignedTo: []uint64{u[1]}, DueDate: strPtr(raw),
		})
		stored := env.loadTask(t, task.ID)
		if stored.DueDate == nil || stored.DueDate.UTC().Format(model.DateLayout) != "2024-05-01" {
			t.Errorf("%s: expected due date 2024-05-01, got %v", raw, stored.DueDate)
		}
	}
}

func TestCompleteTask_FirstWriteWins(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 3)
	ctx := context.Background()

	task := env.createTask(t, CreateTaskInput{Title: "t", AssignedBy: u[0], AssignedTo: []uint64{u[1], u[2]}})

	if err := env.tasks.CompleteTask(ctx, task.ID, u[1]); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
	first := env.loadTask(t, task.ID)

	err := env.tasks.CompleteTask(ctx, task.ID, u[2])
	if !errors.Is(err, apperrors.ErrTaskAlreadyCompleted) {
		t.Fatalf("expected ErrTaskAlreadyCompleted, got %v", err)
	}
	if apperrors.KindOf(err) != apperrors.KindState {
		t.Errorf("expected state kind, got %s", apperrors.KindOf(err))
	}

	second := env.loadTask(t, task.ID)
	if *second.CompletedBy != u[1] {
		t.Errorf("expected completed_by %d, got %d", u[1], *second.CompletedBy)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("completed_at changed from %v to %v", first.CompletedAt, second.CompletedAt)
	}
}

func TestCompleteTask_ConcurrentCompletions(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 5)

	task := env.createTask(t, CreateTaskInput{Title: "race", AssignedBy: u[0], AssignedTo: u[1:]})

	var wg sync.WaitGroup
	errs := make(chan error, len(u)-1)
	for _, userID := range u[1:] {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			errs <- env.tasks.CompleteTask(context.Background(), task.ID, userID)
		}(userID)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrTaskAlreadyCompleted):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one successful completion, got %d", succeeded)
	}
}

func TestCompleteTask_Errors(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 3)
	ctx := context.Background()

	task := env.createTask(t, CreateTaskInput{Title: "t", AssignedBy: u[0], AssignedTo: []uint64{u[1]}})

	if err := env.tasks.CompleteTask(ctx, 404, u[1]); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("unknown task: expected ErrTaskNotFound, got %v", err)
	}
	if err := env.tasks.CompleteTask(ctx, task.ID, 404); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("unknown user: expected ErrUserNotFound, got %v", err)
	}
	if err := env.tasks.CompleteTask(ctx, task.ID, u[2]); !errors.Is(err, apperrors.ErrNotAssigned) {
		t.Errorf("unassigned user: expected ErrNotAssigned, got %v", err)
	}
	if env.loadTask(t, task.ID).Completed {
		t.Error("failed completions must not change the task")
	}
}

func TestStopReminder_OnlyClearsFlag(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 2)
	ctx := context.Background()

	task := env.createTask(t, CreateTaskInput{Title: "t", AssignedBy: u[0], AssignedTo: []uint64{u[1]}, HasReminder: true})

	for i := 0; i < 2; i++ {
		if err := env.tasks.StopReminder(ctx, task.ID, u[1], false); err != nil {
			t.Fatalf("StopReminder() call %d error = %v", i+1, err)
		}
		stored := env.loadTask(t, task.ID)
		if stored.HasReminder {
			t.Errorf("call %d: expected has_reminder cleared", i+1)
		}
		if stored.Completed {
			t.Errorf("call %d: task must stay open", i+1)
		}
	}
}

func TestStopReminder_EventsOnlyWhenCleared(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 2)
	ctx := context.Background()

	silent := env.createTask(t, CreateTaskInput{Title: "silent", AssignedBy: u[0], AssignedTo: []uint64{u[1]}})
	loud := env.createTask(t, CreateTaskInput{Title: "loud", AssignedBy: u[0], AssignedTo: []uint64{u[1]}, HasReminder: true})

	for i := 0; i < 3; i++ {
		if err := env.tasks.StopReminder(ctx, silent.ID, u[1], false); err != nil {
			t.Fatalf("StopReminder(silent) call %d error = %v", i+1, err)
		}
		if err := env.tasks.StopReminder(ctx, loud.ID, u[1], false); err != nil {
			t.Fatalf("StopReminder(loud) call %d error = %v", i+1, err)
		}
	}

	stopped := 0
	for _, e := range env.sink.events {
		if e.Type != events.ReminderStopped {
			continue
		}
		stopped++
		if e.TaskID != loud.ID {
			t.Errorf("unexpected reminder_stopped for task %d", e.TaskID)
		}
	}
	if stopped != 1 {
		t.Errorf("expected exactly one reminder_stopped event, got %d (%v)", stopped, env.sink.types())
	}
}

func TestStopReminder_AlsoComplete(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 3)
	ctx := context.Background()

	task := env.createTask(t, CreateTaskInput{Title: "t", AssignedBy: u[0], AssignedTo: []uint64{u[1], u[2]}, HasReminder: true})

	if err := env.tasks.StopReminder(ctx, task.ID, u[1], true); err != nil {
		t.Fatalf("StopReminder() error = %v", err)
	}
	stored := env.loadTask(t, task.ID)
	if stored.HasReminder || !stored.Completed || *stored.CompletedBy != u[1] || stored.CompletedAt == nil {
		t.Fatalf("expected reminder stopped and task completed by %d, got %+v", u[1], stored)
	}

	types := env.sink.types()
	want := []events.Type{events.TaskCreated, events.ReminderStopped, events.TaskCompleted}
	if len(types) != len(want) {
		t.Fatalf("expected events %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], types[i])
		}
	}
}

func TestStopReminder_AlreadyCompletedKeepsAttribution(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 3)
	ctx := context.Background()

	task := env.createTask(t, CreateTaskInput{Title: "t", AssignedBy: u[0], AssignedTo: []uint64{u[1], u[2]}, HasReminder: true})
	if err := env.tasks.CompleteTask(ctx, task.ID, u[1]); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
	before := env.loadTask(t, task.ID)

	if err := env.tasks.StopReminder(ctx, task.ID, u[2], true); err != nil {
		t.Fatalf("StopReminder() on completed task error = %v", err)
	}

	after := env.loadTask(t, task.ID)
	if after.HasReminder {
		t.Error("expected has_reminder cleared")
	}
	if *after.CompletedBy != u[1] || !after.CompletedAt.Equal(*before.CompletedAt) {
		t.Errorf("completion attribution changed: before %v/%v after %v/%v",
			*before.CompletedBy, before.CompletedAt, *after.CompletedBy, after.CompletedAt)
	}
}

func TestStopReminder_UnknownTask(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 1)

	err := env.tasks.StopReminder(context.Background(), 12, u[0], false)
	if !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestAssign_RequiresUsers(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ledger.Assign(context.Background(), 1, []uint64{0, 0}, time.Now())
	if !errors.Is(err, apperrors.ErrAssigneesRequired) {
		t.Errorf("expected ErrAssigneesRequired, got %v", err)
	}
}

func TestTasksFor(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUsers(t, 3)

	a := env.createTask(t, CreateTaskInput{Title: "a", AssignedBy: u[0], AssignedTo: []uint64{u[1]}})
	b := env.createTask(t, CreateTaskInput{Title: "b", AssignedBy: u[0], AssignedTo: []uint64{u[1], u[2]}})

	got, err := env.ledger.TasksFor(context.Background(), u[1])
	if err != nil {
		t.Fatalf("TasksFor() error = %v", err)
	}
	if !sameIDs(got, []uint64{a.ID, b.ID}) {
		t.Errorf("expected %v, got %v", []uint64{a.ID, b.ID}, got)
	}

	got, _ = env.ledger.TasksFor(context.Background(), u[0])
	if len(got) != 0 {
		t.Errorf("creator should have no assignments, got %v", got)
	}
}
