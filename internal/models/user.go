package models

import "time"

// User is an account that owns todos. The password is only ever stored as a
// bcrypt hash and never serialized.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Todos     []Todo    `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserInput is the body of a registration request.
type CreateUserInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"password"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=100"`
	Password *string `json:"password" validate:"omitnil,password"`
}

// UserWithToken is returned by login and by the "me" endpoint.
type UserWithToken struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}
