package models

import "time"

// User is the authenticated principal. Credentials live with the external auth service.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Nickname  string    `json:"nickname" gorm:"type:varchar(50)"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
