package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/codedrop-dev/codedrop/internal/domain"
	errs "github.com/codedrop-dev/codedrop/internal/errors"
)

type PolicyStorage interface {
	GlobalPolicy(ctx context.Context) (domain.Policy, error)
	// UpdateGlobalPolicy applies a partial update: nil fields keep their
	// prior value.
	UpdateGlobalPolicy(ctx context.Context, autoDelete *bool, hours *int) error
	// CodePolicy reads the policy stamped on the batch rows.
	// errs.ErrCodeNotFound when no rows match.
	CodePolicy(ctx context.Context, code string) (domain.Policy, error)
	// UpdateCodePolicy updates every row sharing the code; partial-field
	// semantics as above. errs.ErrCodeNotFound when no rows match.
	UpdateCodePolicy(ctx context.Context, code string, autoDelete *bool, hours *int) error
}

// Policies manages the global default auto-delete policy and per-batch
// overrides. TTL hours are validated here, before any mutation.
type Policies struct {
	storage PolicyStorage
}

func NewPolicies(storage PolicyStorage) *Policies {
	return &Policies{storage: storage}
}

func (p *Policies) Global(ctx context.Context) (domain.Policy, error) {
	return p.storage.GlobalPolicy(ctx)
}

func (p *Policies) SetGlobal(ctx context.Context, autoDelete *bool, hours *int) error {
	if err := validateHours(hours); err != nil {
		return err
	}
	if autoDelete == nil && hours == nil {
		return nil
	}
	return p.storage.UpdateGlobalPolicy(ctx, autoDelete, hours)
}

// ForCode resolves the batch's current policy, falling back to the
// global default when the code has no committed rows.
func (p *Policies) ForCode(ctx context.Context, code string) (domain.Policy, error) {
	policy, err := p.storage.CodePolicy(ctx, code)
	if errors.Is(err, errs.ErrCodeNotFound) {
		return p.storage.GlobalPolicy(ctx)
	}
	return policy, err
}

func (p *Policies) SetForCode(ctx context.Context, code string, autoDelete *bool, hours *int) error {
	if err := validateHours(hours); err != nil {
		return err
	}
	if autoDelete == nil && hours == nil {
		return nil
	}
	return p.storage.UpdateCodePolicy(ctx, code, autoDelete, hours)
}

func validateHours(hours *int) error {
	if hours == nil {
		return nil
	}
	if *hours < domain.MinDeleteAfterHours || *hours > domain.MaxDeleteAfterHours {
		return &errs.ValidationError{Message: fmt.Sprintf(
			"delete_after_hours must be between %d and %d", domain.MinDeleteAfterHours, domain.MaxDeleteAfterHours)}
	}
	return nil
}
