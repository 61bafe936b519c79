package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"signsync/internal/logging"
	"signsync/internal/model"
	"signsync/internal/repository"
)

// Subject is a webhook payload resolved onto local identities: the caregiver
// the submission belongs to and the template it was signed against.
type Subject struct {
	User     *model.User
	Template *model.DocumentTemplate
}

// SubjectResolver maps payload identity fields onto the local user and
// template stores. "Not found" is an expected outcome reported via ok=false;
// only storage faults return an error.
type SubjectResolver interface {
	Resolve(ctx context.Context, email, providerTemplateID, templateName string) (*Subject, bool, error)
}

type subjectResolver struct {
	users     repository.UserRepository
	templates repository.TemplateRepository
}

// NewSubjectResolver constructs a SubjectResolver over the given stores.
func NewSubjectResolver(users repository.UserRepository, templates repository.TemplateRepository) SubjectResolver {
	return &subjectResolver{users: users, templates: templates}
}

// Resolve looks up the user by lower-cased email first and retries with the
// original casing; the registration path lower-cases emails but older import
// paths stored them as-entered. The template is looked up by provider id and
// falls back to its exact title, both filtered on the active flag.
func (r *subjectResolver) Resolve(ctx context.Context, email, providerTemplateID, templateName string) (*Subject, bool, error) {
	user, err := r.resolveUser(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		logging.Warn("subject_user_not_found", map[string]any{
			"email":                email,
			"provider_template_id": providerTemplateID,
			"template_name":        templateName,
		})
		return nil, false, nil
	}

	tmpl, err := r.resolveTemplate(ctx, providerTemplateID, templateName)
	if err != nil {
		return nil, false, err
	}
	if tmpl == nil {
		logging.Warn("subject_template_not_found", map[string]any{
			"email":                email,
			"user_id":              user.ID,
			"provider_template_id": providerTemplateID,
			"template_name":        templateName,
		})
		return nil, false, nil
	}

	return &Subject{User: user, Template: tmpl}, true, nil
}

func (r *subjectResolver) resolveUser(ctx context.Context, email string) (*model.User, error) {
	lower := strings.ToLower(email)

	user, err := r.users.FindByEmail(ctx, lower)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	if lower == email {
		return nil, nil
	}
	user, err = r.users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return nil, fmt.Errorf("user lookup: %w", err)
}

func (r *subjectResolver) resolveTemplate(ctx context.Context, providerID, name string) (*model.DocumentTemplate, error) {
	if providerID != "" {
		tmpl, err := r.templates.FindActiveByProviderID(ctx, providerID)
		if err == nil {
			return tmpl, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template lookup by provider id: %w", err)
		}
	}

	if name == "" {
		return nil, nil
	}
	tmpl, err := r.templates.FindActiveByTitle(ctx, name)
	if err == nil {
		return tmpl, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return nil, fmt.Errorf("template lookup by title: %w", err)
}
