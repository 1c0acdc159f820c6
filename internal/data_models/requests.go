package dto

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	AssignedTo  []uint64 `json:"assigned_to"`
	AssignedBy  uint64   `json:"assigned_by"`
	DueDate     *string  `json:"due_date"`
	HasReminder bool     `json:"has_reminder"`
	IsUrgent    bool     `json:"is_urgent"`
}

type StopReminderRequest struct {
	Completed bool `json:"completed"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}
