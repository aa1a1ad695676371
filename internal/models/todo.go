package models

import "time"

// Todo is a task owned by exactly one user. OwnerID is fixed at creation.
type Todo struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:varchar(2000)"`
	Completed   bool      `json:"completed" gorm:"not null;default:false"`
	OwnerID     uint      `json:"-" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTodoInput is the body of a create request.
type CreateTodoInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	Completed   bool    `json:"completed"`
}

// UpdateTodoInput is a partial update; nil fields are left untouched. A
// description that is blank after trimming clears the stored description.
type UpdateTodoInput struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	Completed   *bool   `json:"completed"`
}
