package sales

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// WriteLocker serializes writers that share one substrate across processes.
type WriteLocker interface {
	Obtain(ctx context.Context) (release func(), err error)
}

// Option configures a Service.
type Option func(*Service)

// WithWriteLocker makes every mutation also hold l.
func WithWriteLocker(l WriteLocker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// Service validates submissions and runs them against a Storage. Each
// mutation, including the reads its validation depends on, runs as one
// critical section; reads may run concurrently with each other.
type Service struct {
	storage Storage
	logger  *zap.Logger
	mu      sync.RWMutex
	locker  WriteLocker
}

// Snapshot is a consistent copy of the ledger and its aggregates.
type Snapshot struct {
	Sales     []Sale     `json:"sales"`
	Payments  []Payment  `json:"payments"`
	Customers []Customer `json:"customers"`
	Report    Report     `json:"report"`
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
		defer logger.Sync() // flushes buffer, if any
	}

	s := &Service{
		storage: storage,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) lock(ctx context.Context) (func(), error) {
	s.mu.Lock()
	if s.locker == nil {
		return s.mu.Unlock, nil
	}
	release, err := s.locker.Obtain(ctx)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to obtain write lock", zap.Error(err))
		return nil, err
	}
	return func() {
		release()
		s.mu.Unlock()
	}, nil
}

// ListSales returns every sale in stored order.
func (s *Service) ListSales() []Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storage.ListSales()
}

// ListPayments returns every payment in stored order.
func (s *Service) ListPayments() []Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storage.ListPayments()
}

// RecentSales returns every sale with its balance, most recent first.
func (s *Service) RecentSales() []SaleDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := s.storage.ListPayments()
	sales := SortByDateDesc(s.storage.ListSales())
	details := make([]SaleDetail, 0, len(sales))
	for _, sale := range sales {
		details = append(details, DescribeSale(sale, payments))
	}
	return details
}

// SaleDetail returns one sale with its payments.
// Returns ErrNotFound if the sale does not exist.
func (s *Service) SaleDetail(id int) (SaleDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := findSale(s.storage.ListSales(), id)
	if !ok {
		return SaleDetail{}, ErrNotFound
	}
	return DescribeSale(sale, s.storage.ListPayments()), nil
}

// SubmitSale validates in and stores it as a new sale.
func (s *Service) SubmitSale(ctx context.Context, in SaleInput) (Sale, error) {
	if msgs := ValidateSale(in); len(msgs) > 0 {
		s.logger.Warn("sale rejected", zap.String("buyer_name", in.BuyerName), zap.Strings("errors", msgs))
		return Sale{}, &ValidationError{Messages: msgs}
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return Sale{}, err
	}
	defer unlock()

	sale, err := s.storage.CreateSale(in.sale())
	if err != nil {
		s.logger.Error("failed to save sale", zap.String("buyer_name", in.BuyerName), zap.Error(err))
		return Sale{}, err
	}

	s.logger.Info("sale created", zap.Int("sale_id", sale.ID), zap.Any("sale", sale))
	return sale, nil
}

// UpdateSale applies u to an existing sale. The merged sale must pass the
// same rules as a new one, and its total may not drop below what has
// already been paid against it.
func (s *Service) UpdateSale(ctx context.Context, id int, u SaleUpdate) (Sale, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return Sale{}, err
	}
	defer unlock()

	sales, payments, err := s.readLedger()
	if err != nil {
		return Sale{}, err
	}
	current, ok := findSale(sales, id)
	if !ok {
		return Sale{}, ErrNotFound
	}
	merged := u.merge(current)
	msgs := ValidateSale(merged)
	if paid := SaleBalance(current, payments).PaidTotal; merged.TotalAmount.LessThan(paid) {
		msgs = append(msgs, fmt.Sprintf("total amount cannot be less than the amount already paid (min %s)", paid.StringFixed(2)))
	}
	if len(msgs) > 0 {
		s.logger.Warn("sale update rejected", zap.Int("sale_id", id), zap.Strings("errors", msgs))
		return Sale{}, &ValidationError{Messages: msgs}
	}

	sale, err := s.storage.UpdateSale(id, u.patch())
	if err != nil {
		s.logger.Error("failed to update sale", zap.Int("sale_id", id), zap.Error(err))
		return Sale{}, err
	}

	s.logger.Info("sale updated", zap.Int("sale_id", sale.ID))
	return sale, nil
}

// DeleteSale removes a sale and its payments. Unknown IDs are ignored.
func (s *Service) DeleteSale(ctx context.Context, id int) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.storage.DeleteSale(id); err != nil {
		s.logger.Error("failed to delete sale", zap.Int("sale_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("sale deleted", zap.Int("sale_id", id))
	return nil
}

// SubmitPayment validates in against the current balance of its sale and
// stores it. Returns ErrNotFound if the sale does not exist.
func (s *Service) SubmitPayment(ctx context.Context, in PaymentInput) (Payment, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return Payment{}, err
	}
	defer unlock()

	sales, payments, err := s.readLedger()
	if err != nil {
		return Payment{}, err
	}
	sale, ok := findSale(sales, in.SaleID)
	if !ok {
		return Payment{}, ErrNotFound
	}

	balance := SaleBalance(sale, payments)
	if msgs := ValidatePayment(in, balance.Outstanding); len(msgs) > 0 {
		s.logger.Warn("payment rejected",
			zap.Int("sale_id", in.SaleID),
			zap.String("outstanding", balance.Outstanding.StringFixed(2)),
			zap.Strings("errors", msgs),
		)
		return Payment{}, &ValidationError{Messages: msgs}
	}

	payment, err := s.storage.CreatePayment(in.payment())
	if err != nil {
		s.logger.Error("failed to save payment", zap.Int("sale_id", in.SaleID), zap.Error(err))
		return Payment{}, err
	}

	s.logger.Info("payment created", zap.Int("payment_id", payment.ID), zap.Int("sale_id", payment.SaleID), zap.Any("payment", payment))
	return payment, nil
}

// DeletePayment removes a payment. Unknown IDs are ignored.
func (s *Service) DeletePayment(ctx context.Context, id int) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.storage.DeletePayment(id); err != nil {
		s.logger.Error("failed to delete payment", zap.Int("payment_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("payment deleted", zap.Int("payment_id", id))
	return nil
}

// Customers returns the per-customer summary.
func (s *Service) Customers() []Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CustomerSummary(s.storage.ListSales(), s.storage.ListPayments())
}

// CustomerSales returns the sales of one customer with their balances.
func (s *Service) CustomerSales(name string) []SaleDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CustomerSales(name, s.storage.ListSales(), s.storage.ListPayments())
}

// Report returns the global summary.
func (s *Service) Report() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return GlobalReport(s.storage.ListSales(), s.storage.ListPayments())
}

// Orphans returns payments whose sale no longer exists.
func (s *Service) Orphans() []Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orphans := OrphanPayments(s.storage.ListSales(), s.storage.ListPayments())
	if len(orphans) > 0 {
		s.logger.Warn("orphan payments found", zap.Int("count", len(orphans)))
	}
	return orphans
}

// Snapshot reads both collections once and derives every aggregate from
// that same read.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := s.storage.ListSales()
	payments := s.storage.ListPayments()
	return Snapshot{
		Sales:     sales,
		Payments:  payments,
		Customers: CustomerSummary(sales, payments),
		Report:    GlobalReport(sales, payments),
	}
}

// readLedger loads both collections for a mutation. Unlike the list calls
// it fails on substrate read errors, so rules are never checked against
// data that only looks empty.
func (s *Service) readLedger() ([]Sale, []Payment, error) {
	sales, err := s.storage.ReadSales()
	if err != nil {
		s.logger.Error("failed to read sales", zap.Error(err))
		return nil, nil, err
	}
	payments, err := s.storage.ReadPayments()
	if err != nil {
		s.logger.Error("failed to read payments", zap.Error(err))
		return nil, nil, err
	}
	return sales, payments, nil
}

func findSale(sales []Sale, id int) (Sale, bool) {
	for _, sale := range sales {
		if sale.ID == id {
			return sale, true
		}
	}
	return Sale{}, false
}
