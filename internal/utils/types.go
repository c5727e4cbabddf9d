package utils

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey;not null;unique" json:"id"`
	FirstName string    `gorm:"not null" json:"firstName"`
	LastName  string    `gorm:"not null" json:"lastName"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       *string   `json:"bio"`
	Interests *string   `json:"interests"`
	Avatar    *string   `json:"avatar"`
	Role      *string   `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Notes []Note `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Priority values accepted for Note.Priority.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const DefaultWorkspace = "default"

type Note struct {
	ID         string                      `gorm:"primaryKey;not null;unique" json:"id"`
	UserID     string                      `gorm:"not null;index" json:"userId"`
	Title      string                      `gorm:"not null" json:"title"`
	Content    *string                     `gorm:"type:text" json:"content"`
	Category   *string                     `json:"category"`
	Tags       datatypes.JSONSlice[string] `gorm:"not null" json:"tags"`
	Priority   *string                     `json:"priority"`
	DueDate    *time.Time                  `json:"dueDate"`
	IsPinned   bool                        `gorm:"not null" json:"isPinned"`
	IsArchived bool                        `gorm:"not null" json:"isArchived"`
	Workspace  string                      `gorm:"not null;index" json:"workspace"`
	CreatedAt  time.Time                   `json:"createdAt"`
	UpdatedAt  time.Time                   `json:"updatedAt"`
}

// AfterFind keeps the wire form of an empty tag list as [] rather than null.
func (n *Note) AfterFind(*gorm.DB) error {
	if n.Tags == nil {
		n.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}
