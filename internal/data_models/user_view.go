package dto

import model "task-assign.com/task-assign/internal/models"

type UserView struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewUserView(u model.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}

type LoginResponse struct {
	User  UserView `json:"user"`
	Token string   `json:"token,omitempty"`
}

type Assignee struct {
	ID   uint64  `json:"id"`
	Name *string `json:"name"`
}

type AssigneesResponse struct {
	TaskID    uint64     `json:"task_id"`
	Assignees []Assignee `json:"assignees"`
}

type AssignmentsResponse struct {
	UserID  uint64   `json:"user_id"`
	TaskIDs []uint64 `json:"task_ids"`
}
