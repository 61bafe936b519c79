package repository

import (
	"context"

	"signsync/internal/model"
)

// TemplateRepository reads the document-template store. Both lookups filter
// on the active flag; retired templates never match inbound events.
type TemplateRepository interface {
	// FindActiveByProviderID returns the active template with the given
	// e-signature provider template id. Returns sql.ErrNoRows when none matches.
	FindActiveByProviderID(ctx context.Context, providerID string) (*model.DocumentTemplate, error)

	// FindActiveByTitle returns the active template with the exact given title.
	// Fallback for integration paths that never recorded the provider id.
	// Returns sql.ErrNoRows when none matches.
	FindActiveByTitle(ctx context.Context, title string) (*model.DocumentTemplate, error)
}
