package models

import (
	"time"

	"gorm.io/gorm"
)

type Client struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Email     *string   `gorm:"size:150" json:"email"`
	Phone     *string   `gorm:"size:40" json:"phone"`
	Address   *string   `gorm:"size:255" json:"address"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
