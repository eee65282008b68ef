package models

import "time"

// DefaultAuthority is the only role handed out at registration.
const DefaultAuthority = "ROLE_USER"

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Authority string    `json:"authority" gorm:"not null;default:ROLE_USER"`
}
