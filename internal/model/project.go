package model

import (
	"time"

	"github.com/google/uuid"
)

// Project groups tasks for a single user. Projects are never shared
// between users; every read and write is scoped by UserID.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user.
//  Name      – display name, required.
//  Color     – optional UI color, nullable.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Project struct {
	ID        uuid.UUID `json:"id"`         // projects.id
	UserID    uuid.UUID `json:"user_id"`    // projects.user_id
	Name      string    `json:"name"`       // projects.name
	Color     *string   `json:"color"`      // projects.color (nullable)
	CreatedAt time.Time `json:"created_at"` // projects.created_at
	UpdatedAt time.Time `json:"updated_at"` // projects.updated_at
}
