// Package domain contains core types for the vendor directory.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Vendor is a supplier known to the buyer organization. Vendors are plain
// directory entries; they hold no credentials and never log in.
type Vendor struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Email     string       `gorm:"type:text;not null" json:"email"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Vendor) TableName() string { return "vendors" }
