package model

import "time"

// User is a caregiver account in the agency portal. The user store is owned
// by the portal's registration flows; this service only reads it.
// Emails are written lower-cased by the main registration path, but older
// import paths stored them as-entered, so lookups must tolerate both.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
