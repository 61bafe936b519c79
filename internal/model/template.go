package model

import "time"

// DocumentTemplate is a reusable onboarding document definition (W-4,
// handbook acknowledgement, etc.). Templates carry both a local id and the
// e-signature provider's template id; not every write path recorded the
// provider id, which is why resolution falls back to the exact title.
type DocumentTemplate struct {
	ID                 string    `json:"id"`
	ProviderTemplateID string    `json:"provider_template_id"`
	Title              string    `json:"title"`
	Active             bool      `json:"active"`
	ExpiryDays         int       `json:"expiry_days"`
	CreatedAt          time.Time `json:"created_at"`
}
