package dto

import "time"

// CreateTaskRequest carries the caller-supplied task fields; id and
// timestamps are assigned server-side. Date and Time are the canonical
// stored forms and are validated as such at the boundary.
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"max=1000"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string `json:"time" binding:"required,datetime=15:04"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest is a partial update: nil = leave unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Date        *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time        *string `json:"time" binding:"omitempty,datetime=15:04"`
	Completed   *bool   `json:"completed"`
}

type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Human-readable renderings, presentation-only.
	DisplayDate string `json:"displayDate"`
	DisplayTime string `json:"displayTime"`
}

type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
}
