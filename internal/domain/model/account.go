package model

import (
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleUser
}

func ValidStatus(status string) bool {
	return status == StatusPending || status == StatusApproved || status == StatusRejected
}

type Account struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	HashedPassword  string     `json:"-"` // Not exposed
	Name            string     `json:"name"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	StatusChangedAt *time.Time `json:"status_changed_at"`
	CreatedAt       time.Time  `json:"created_at"`
}
