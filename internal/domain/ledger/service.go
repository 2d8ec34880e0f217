package ledger

import (
	"context"
	"fmt"
	"time"

	"dairyledger/internal/core/apperror"
	"dairyledger/internal/core/entity"
	"dairyledger/internal/core/id"
	"dairyledger/internal/core/tx"
	"dairyledger/internal/core/types"
	"dairyledger/internal/domain/catalogs/partner"
	"dairyledger/internal/domain/catalogs/product"
	"dairyledger/internal/domain/registers/dailystock"
	"dairyledger/pkg/logger"
)

// RecordItem is one requested line. Either ProductID or ProductName must be
// set; a name that matches no product creates one on the fly with UnitPrice
// as its base price.
type RecordItem struct {
	ProductID   id.ID
	ProductName string
	Quantity    types.Quantity
	UnitPrice   types.Money
}

// RecordRequest describes a sale or purchase to record.
//
// PreviousCredit and UpdatedCredit are persisted verbatim: the ledger trusts
// the composing caller (see UpdatedCredit for the canonical arithmetic).
type RecordRequest struct {
	Date time.Time
	Kind Kind

	// Partner reference: ID wins; otherwise the name is resolved and, if
	// unknown, a partner with the kind's role is created.
	PartnerID   id.ID
	PartnerName string
	Contact     string

	Items []RecordItem

	CashSettled    types.Money
	PreviousCredit types.Money
	UpdatedCredit  types.Money

	Notes string
}

// Service provides the transaction ledger operations.
// Record is the single write path: header, items, movements, snapshots,
// running stock and the partner balance commit or roll back together.
type Service struct {
	repo      Repository
	stock     *dailystock.Service
	products  product.Repository
	partners  partner.Repository
	numerator Numerator
	txManager tx.Manager
}

// Numerator issues document numbers. Satisfied by *numerator.Service.
type Numerator interface {
	NextNumber(ctx context.Context, prefix string, period time.Time) (string, error)
}

// NewService creates a new ledger service.
func NewService(
	repo Repository,
	stock *dailystock.Service,
	products product.Repository,
	partners partner.Repository,
	num Numerator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		stock:     stock,
		products:  products,
		partners:  partners,
		numerator: num,
		txManager: txManager,
	}
}

// Record validates, resolves references and persists one transaction with all
// of its side effects in a single database transaction:
//
//  1. header and items
//  2. one stock movement per item (purchases positive, sales negative)
//  3. the (date, product) daily snapshot, created or accumulated
//  4. the product's running stock
//  5. the partner's credit balance
//
// Items are applied in line order; each product row is locked before its
// stock is read so concurrent writers serialize per product. Any failure
// rolls back every effect.
func (s *Service) Record(ctx context.Context, req RecordRequest) (*Transaction, error) {
	if !req.Kind.valid() {
		return nil, apperror.NewValidation("invalid transaction kind").
			WithDetail("field", "kind").
			WithDetail("value", string(req.Kind))
	}
	if len(req.Items) == 0 {
		return nil, apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}
	for i, item := range req.Items {
		if !item.Quantity.IsPositive() {
			return nil, apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	// Reference resolution happens outside the write transaction: created
	// catalog rows survive a rolled-back ledger write, which is harmless
	// (master data, not facts).
	p, err := s.resolvePartner(ctx, req)
	if err != nil {
		return nil, err
	}

	t := NewTransaction(req.Date, p.ID, req.Kind)
	t.Notes = req.Notes
	t.CashSettled = req.CashSettled
	t.PreviousCredit = req.PreviousCredit
	t.UpdatedCredit = req.UpdatedCredit

	for _, item := range req.Items {
		prod, err := s.resolveProduct(ctx, item)
		if err != nil {
			return nil, err
		}
		t.AddItem(prod.ID, item.Quantity, item.UnitPrice)
	}

	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.NextNumber(ctx, "TXN", t.Date)
	if err != nil {
		return nil, fmt.Errorf("assign number: %w", err)
	}
	t.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, t); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if err := s.repo.SaveItems(ctx, t.ID, t.Items); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}

		for _, item := range t.Items {
			if err := s.applyItem(ctx, t, item); err != nil {
				return err
			}
		}

		if err := s.partners.UpdateCreditBalance(ctx, t.PartnerID, t.UpdatedCredit); err != nil {
			return fmt.Errorf("update credit balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transaction recorded",
		"number", t.Number,
		"kind", string(t.Kind),
		"partner_id", t.PartnerID,
		"items", len(t.Items),
		"total", t.TotalAmount.String(),
	)

	return t, nil
}

// applyItem records the stock effects of one line: movement row, daily
// snapshot and running stock, all under the product's row lock.
func (s *Service) applyItem(ctx context.Context, t *Transaction, item Item) error {
	prod, err := s.products.GetForUpdate(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("lock product %s: %w", item.ProductID, err)
	}

	delta := t.Kind.SignedChange(item.Quantity)
	preStock := prod.CurrentStock
	postStock := preStock + delta

	movement := entity.NewStockMovement(
		t.Date, prod.ID, delta, &t.ID, t.Kind.MovementType(),
		fmt.Sprintf("%s %s", t.Kind, t.Number),
	)
	if err := s.stock.Append(ctx, []entity.StockMovement{movement}); err != nil {
		return err
	}
	if err := s.stock.Apply(ctx, t.Date, prod.ID, t.Kind.MovementType(), item.Quantity, preStock, postStock); err != nil {
		return err
	}
	if err := s.products.UpdateStock(ctx, prod.ID, postStock); err != nil {
		return fmt.Errorf("update stock for %s: %w", prod.ID, err)
	}
	return nil
}

func (s *Service) resolvePartner(ctx context.Context, req RecordRequest) (*partner.Partner, error) {
	role := req.Kind.RequiredRole()

	var (
		p   *partner.Partner
		err error
	)
	switch {
	case !id.IsNil(req.PartnerID):
		p, err = s.partners.GetByID(ctx, req.PartnerID)
		if err != nil {
			return nil, err
		}
	case req.PartnerName != "":
		p, err = s.partners.GetByName(ctx, req.PartnerName)
		if apperror.IsNotFound(err) {
			p = partner.NewPartner(req.PartnerName, req.Contact, types.Zero(), role)
			if err := s.partners.Create(ctx, p); err != nil {
				return nil, fmt.Errorf("create partner: %w", err)
			}
			logger.Info(ctx, "partner auto-created", "name", p.Name, "role", string(role))
			return p, nil
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperror.NewValidation("partner is required").
			WithDetail("field", "partnerId")
	}

	if !p.Active {
		return nil, apperror.NewValidation("partner is inactive").
			WithDetail("partner", p.Name)
	}
	if p.Role != role {
		return nil, apperror.NewRoleMismatch(p.Name, string(p.Role), string(req.Kind))
	}
	return p, nil
}

func (s *Service) resolveProduct(ctx context.Context, item RecordItem) (*product.Product, error) {
	if !id.IsNil(item.ProductID) {
		return s.products.GetByID(ctx, item.ProductID)
	}
	if item.ProductName == "" {
		return nil, apperror.NewValidation("product is required").
			WithDetail("field", "items")
	}

	prod, err := s.products.GetByName(ctx, item.ProductName)
	if apperror.IsNotFound(err) {
		prod = product.NewProduct(item.ProductName, item.UnitPrice)
		if err := s.products.Create(ctx, prod); err != nil {
			return nil, fmt.Errorf("create product: %w", err)
		}
		logger.Info(ctx, "product auto-created", "name", prod.Name)
		return prod, nil
	}
	if err != nil {
		return nil, err
	}
	return prod, nil
}

// GetByID retrieves a transaction with its items.
func (s *Service) GetByID(ctx context.Context, txID id.ID) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, txID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

// ListByDate retrieves transactions for a business date with items attached.
// The timestamp is truncated to the civil date, matching how headers are keyed.
func (s *Service) ListByDate(ctx context.Context, date time.Time, kind *Kind) ([]*Transaction, error) {
	list, err := s.repo.ListByDate(ctx, entity.BusinessDate(date), kind)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		items, err := s.repo.GetItems(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Items = items
	}
	return list, nil
}

// MarkSynced flips the synced flag for pushed transactions.
func (s *Service) MarkSynced(ctx context.Context, ids []id.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.MarkSynced(ctx, ids)
}

// ListUnsynced retrieves transactions awaiting remote push.
func (s *Service) ListUnsynced(ctx context.Context, limit int) ([]*Transaction, error) {
	return s.repo.ListUnsynced(ctx, limit)
}
