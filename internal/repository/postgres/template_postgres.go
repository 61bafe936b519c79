package postgres

import (
	"context"
	"database/sql"

	"signsync/internal/model"
	"signsync/internal/repository"
)

// TemplatePostgres is a PostgreSQL implementation of repository.TemplateRepository.
type TemplatePostgres struct {
	db *sql.DB
}

// NewTemplatePostgres creates a new TemplatePostgres repository.
func NewTemplatePostgres(db *sql.DB) *TemplatePostgres {
	return &TemplatePostgres{db: db}
}

var _ repository.TemplateRepository = (*TemplatePostgres)(nil)

const templateColumns = `id, provider_template_id, title, active, expiry_days, created_at`

// FindActiveByProviderID fetches the active template with the given provider template id.
func (r *TemplatePostgres) FindActiveByProviderID(ctx context.Context, providerID string) (*model.DocumentTemplate, error) {
	const q = `
		SELECT ` + templateColumns + `
		FROM document_templates
		WHERE provider_template_id = $1 AND active
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, q, providerID))
}

// FindActiveByTitle fetches the active template with the exact given title.
func (r *TemplatePostgres) FindActiveByTitle(ctx context.Context, title string) (*model.DocumentTemplate, error) {
	const q = `
		SELECT ` + templateColumns + `
		FROM document_templates
		WHERE title = $1 AND active
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, q, title))
}

func (r *TemplatePostgres) scanOne(row *sql.Row) (*model.DocumentTemplate, error) {
	var t model.DocumentTemplate
	if err := row.Scan(
		&t.ID,
		&t.ProviderTemplateID,
		&t.Title,
		&t.Active,
		&t.ExpiryDays,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
