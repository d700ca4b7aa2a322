package models

import (
	"database/sql"
	"time"
)

// User represents an application user (thin; auth is a collaborator)
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// LanguageConsent is the durable per-user record of language consent.
// preferred_locale is only meaningful when consent_given is true.
type LanguageConsent struct {
	ID              int            `db:"id" json:"id"`
	UserID          int            `db:"user_id" json:"user_id"`
	ConsentGiven    bool           `db:"consent_given" json:"consent_given"`
	PreferredLocale sql.NullString `db:"preferred_locale" json:"preferred_locale"`
	LocaleSource    sql.NullString `db:"locale_source" json:"locale_source"`
	ConsentData     sql.NullString `db:"consent_data" json:"consent_data"` // JSON
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
