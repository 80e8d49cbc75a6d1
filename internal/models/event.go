package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusConfirmed, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

type Event struct {
	ID         string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	ChildName  string          `gorm:"size:150;not null" json:"childName"`
	Age        int             `gorm:"not null" json:"age"`
	ClientID   string          `gorm:"type:varchar(36);index;not null" json:"clientId"`
	Client     *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client,omitempty"`
	EventDate  time.Time       `gorm:"type:date;index;not null" json:"eventDate"`
	StartTime  string          `gorm:"size:5;not null" json:"startTime"` // HH:MM
	EndTime    string          `gorm:"size:5;not null" json:"endTime"`
	GuestCount int             `gorm:"not null" json:"guestCount"`
	TotalValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalValue"`
	Status     EventStatus     `gorm:"size:20;not null;default:pending" json:"status"`
	Notes      *string         `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
