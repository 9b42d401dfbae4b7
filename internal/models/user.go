// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered account. The session token lives directly on
// the user row: a user holds at most one valid token at a time, and each
// login overwrites the previous one.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	HashedPassword string    `gorm:"not null" json:"-"`
	SessionID      *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Posts          []Post    `gorm:"foreignKey:OwnerID" json:"posts,omitempty"`
}
