// Package models defines the persisted entities. The schema itself is
// managed by SQL migrations in internal/storage; these structs only map the
// existing tables for GORM.
package models

import (
	"time"

	"ledgerly/internal/core"
)

// User is the account owner. The password hash never leaves the server.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	Transactions []Transaction `gorm:"foreignKey:UserID" json:"-"`
	Settings     *UserSettings `gorm:"foreignKey:UserID" json:"-"`
}

// Category is a shared label applied to outgoing transactions. Categories
// are soft-deleted via IsActive so historical rows keep their names.
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Transaction is a single income or outgoing entry owned by one user.
// CategoryID is null for income and for rows whose category was removed.
// Amounts are stored in integer minor units to avoid float rounding.
type Transaction struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	CategoryID    *uint          `json:"category_id,omitempty"`
	Name          string         `gorm:"not null" json:"name"`
	Type          core.Direction `gorm:"not null" json:"type"`
	AmountInCents int64          `gorm:"not null" json:"amount_in_cents"`
	OccurredOn    time.Time      `gorm:"not null;index" json:"occurred_on"`
	Note          string         `json:"note"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// CategoryName returns the category label for display, forcing income and
// uncategorized rows to "N/A" / "Uncategorized" respectively at call sites.
func (t Transaction) CategoryName() string {
	if t.Type == core.DirectionIncome || t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// UserSettings holds per-user configuration, one row per user. Rows are
// created lazily on first access with the first of the current month as the
// cycle anchor.
type UserSettings struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CycleStartDate time.Time `gorm:"not null" json:"cycle_start_date"`
	CurrencyCode   string    `gorm:"not null;default:USD" json:"currency_code"`
}

// CycleDay returns the anchor day-of-month derived from the stored cycle
// start date, defaulting to 1 when unset.
func (s UserSettings) CycleDay() int {
	if s.CycleStartDate.IsZero() {
		return 1
	}
	return s.CycleStartDate.Day()
}

func (User) TableName() string         { return "users" }
func (Category) TableName() string     { return "categories" }
func (Transaction) TableName() string  { return "transactions" }
func (UserSettings) TableName() string { return "user_settings" }
