package dto

import "time"

type RegisterDTO struct {
	Username string `json:"username" binding:"required" validate:"min=6,max=20"`
	Password string `json:"password" binding:"required" validate:"min=6,max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type CredentialDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserDTO struct {
	UserID             uint64     `json:"user_id"`
	Username           *string    `json:"username,omitempty"`
	Email              *string    `json:"email,omitempty"`
	Plan               string     `json:"plan"`
	PhotosPerDay       int        `json:"photosPerDay"`
	IsPremium          bool       `json:"isPremium"`
	SubscriptionStatus string     `json:"subscriptionStatus"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
}

type LoginResultDTO struct {
	Token string   `json:"token"`
	User  *UserDTO `json:"user"`
}
