package models

import (
	"time"

	"gorm.io/gorm"
)

// Complaint statuses. A complaint starts Pending and may be moved to any
// status by an admin; there is no transition graph and no terminal state.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// WasteTypes lists the accepted complaint categories
var WasteTypes = []string{
	"Plastic",
	"Organic",
	"Paper",
	"Metal",
	"Glass",
	"Electronic",
	"Other",
}

// MaxDescriptionLength caps the complaint description
const MaxDescriptionLength = 500

// Complaint represents a citizen-submitted waste report
type Complaint struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"userId"`         // owner, set once at creation
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"` // loaded for admin reads only
	WasteType   string         `gorm:"not null" json:"wasteType"`
	Description string         `gorm:"not null;size:500" json:"description"`
	Location    string         `gorm:"not null" json:"location"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	ImagePath   *string        `json:"image"`
	Status      string         `gorm:"not null;default:'Pending'" json:"status"`
	AdminNotes  string         `gorm:"not null;default:''" json:"adminNotes"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Complaint model
func (Complaint) TableName() string {
	return "complaints"
}

// IsValidWasteType reports whether the given category is one of the
// accepted waste types
func IsValidWasteType(wasteType string) bool {
	for _, wt := range WasteTypes {
		if wt == wasteType {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether the given status is one of the three
// complaint statuses
func IsValidStatus(status string) bool {
	return status == StatusPending || status == StatusInProgress || status == StatusCompleted
}
