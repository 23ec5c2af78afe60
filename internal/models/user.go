package models

import (
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsPremium    bool      `json:"isPremium"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserProfile is the public projection of a User returned by the API.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsPremium bool      `json:"isPremium"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsPremium: u.IsPremium,
		CreatedAt: u.CreatedAt,
	}
}
