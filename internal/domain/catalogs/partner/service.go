package partner

import (
	"context"
	"fmt"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/tx"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain"
	"dairyledger/pkg/logger"
)

// Service provides business logic for the partner catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new partner service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Upsert creates a partner or updates an existing one, keyed by unique name.
// On update the contact, balance and role are overwritten; this mirrors
// master-data maintenance where the form always submits the full record.
func (s *Service) Upsert(ctx context.Context, name, contact string, balance types.Money, role Role) (*Partner, error) {
	p := NewPartner(name, contact, balance, role)
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByName(ctx, name)
		if err != nil {
			if apperror.IsNotFound(err) {
				return s.repo.Create(ctx, p)
			}
			return err
		}

		existing.Contact = contact
		existing.CreditBalance = balance
		existing.Role = role
		existing.Reactivate()
		if err := s.repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("update partner: %w", err)
		}
		p = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "partner upserted", "id", p.ID, "name", p.Name, "role", p.Role)
	return p, nil
}

// GetByID retrieves a partner by ID.
func (s *Service) GetByID(ctx context.Context, partnerID id.ID) (*Partner, error) {
	return s.repo.GetByID(ctx, partnerID)
}

// GetByName retrieves a partner by its unique name.
func (s *Service) GetByName(ctx context.Context, name string) (*Partner, error) {
	return s.repo.GetByName(ctx, name)
}

// GetBalance returns the partner's current credit balance, zero if the
// partner does not exist.
func (s *Service) GetBalance(ctx context.Context, partnerID id.ID) (types.Money, error) {
	p, err := s.repo.GetByID(ctx, partnerID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return types.Zero(), nil
		}
		return types.Zero(), err
	}
	return p.CreditBalance, nil
}

// ListByRole retrieves active customers or suppliers.
func (s *Service) ListByRole(ctx context.Context, role Role, filter domain.ListFilter) (domain.ListResult[*Partner], error) {
	return s.repo.ListByRole(ctx, role, filter)
}

// Deactivate soft-deletes a partner.
func (s *Service) Deactivate(ctx context.Context, partnerID id.ID) error {
	return s.repo.Deactivate(ctx, partnerID)
}
