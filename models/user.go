package models

import "time"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminUser is the site owner's account. There is no public signup; the row is
// seeded from ADMIN_EMAIL / ADMIN_PASSWORD at startup.
type AdminUser struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	HashedPassword []byte    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
