package sales

import (
	"encoding/json"
	"errors"
	"fmt"

	"api_fiado/internal/kv"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

const (
	salesKey    = "sales"
	paymentsKey = "payments"
)

// Storage is the ledger store: durable CRUD over the sale and payment
// collections. It does not check business rules; callers validate first.
type Storage interface {
	ListSales() []Sale
	// ReadSales and ReadPayments are ListSales and ListPayments without the
	// empty fallback: substrate read failures are returned.
	ReadSales() ([]Sale, error)
	ReadPayments() ([]Payment, error)
	CreateSale(sale Sale) (Sale, error)
	UpdateSale(id int, patch SalePatch) (Sale, error)
	DeleteSale(id int) error
	ListPayments() []Payment
	CreatePayment(payment Payment) (Payment, error)
	DeletePayment(id int) error
}

// KVStorage keeps each collection as a single JSON blob in a key-value
// substrate and rewrites the whole blob on every mutation.
type KVStorage struct {
	kv     kv.Substrate
	ids    *IDAllocator
	logger *zap.Logger
}

// NewKVStorage creates a ledger store over s.
func NewKVStorage(s kv.Substrate, logger *zap.Logger) *KVStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := &KVStorage{
		kv:     s,
		ids:    NewIDAllocator(s),
		logger: logger,
	}
	st.ids.floor = st.highestID
	return st
}

// load decodes the collection stored under key. A missing blob is an empty
// collection, and so is a malformed one (logged at warn level). Only
// substrate I/O failures are returned.
func load[T any](s *KVStorage, key string) ([]T, error) {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	items := []T{}
	if !ok {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("stored collection is malformed, reading it as empty", zap.String("key", key), zap.Error(err))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func encode(key string, items interface{}) (kv.Entry, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return kv.Entry{}, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return kv.Entry{Key: key, Value: string(b)}, nil
}

func (s *KVStorage) save(key string, items interface{}) error {
	e, err := encode(key, items)
	if err != nil {
		return err
	}
	if err := s.kv.Set(e.Key, e.Value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// ListSales returns every stored sale in insertion order. It never fails:
// unreadable storage yields an empty slice.
func (s *KVStorage) ListSales() []Sale {
	sales, err := load[Sale](s, salesKey)
	if err != nil {
		s.logger.Error("failed to list sales", zap.Error(err))
		return []Sale{}
	}
	return sales
}

// ListPayments returns every stored payment in insertion order, with the
// same resilience as ListSales.
func (s *KVStorage) ListPayments() []Payment {
	payments, err := load[Payment](s, paymentsKey)
	if err != nil {
		s.logger.Error("failed to list payments", zap.Error(err))
		return []Payment{}
	}
	return payments
}

// ReadSales returns every stored sale, or the substrate read error.
// A malformed blob still reads as empty.
func (s *KVStorage) ReadSales() ([]Sale, error) {
	return load[Sale](s, salesKey)
}

// ReadPayments returns every stored payment, or the substrate read error.
func (s *KVStorage) ReadPayments() ([]Payment, error) {
	return load[Payment](s, paymentsKey)
}

// CreateSale assigns a fresh ID to sale, appends it and persists the
// collection. Any ID already set on sale is ignored.
func (s *KVStorage) CreateSale(sale Sale) (Sale, error) {
	sales, err := load[Sale](s, salesKey)
	if err != nil {
		return Sale{}, err
	}
	id, err := s.ids.NextID()
	if err != nil {
		return Sale{}, err
	}
	sale.ID = id
	if err := s.save(salesKey, append(sales, sale)); err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// UpdateSale merges patch onto the sale with the given ID.
// Returns ErrNotFound if no such sale exists.
func (s *KVStorage) UpdateSale(id int, patch SalePatch) (Sale, error) {
	sales, err := load[Sale](s, salesKey)
	if err != nil {
		return Sale{}, err
	}
	for i := range sales {
		if sales[i].ID != id {
			continue
		}
		sales[i] = patch.apply(sales[i])
		if err := s.save(salesKey, sales); err != nil {
			return Sale{}, err
		}
		return sales[i], nil
	}
	return Sale{}, ErrNotFound
}

// DeleteSale removes the sale with the given ID together with every
// payment referencing it. Both collections are written in one batch when
// the substrate supports it. Deleting an unknown ID is a no-op.
func (s *KVStorage) DeleteSale(id int) error {
	sales, err := load[Sale](s, salesKey)
	if err != nil {
		return err
	}
	payments, err := load[Payment](s, paymentsKey)
	if err != nil {
		return err
	}

	keptSales := make([]Sale, 0, len(sales))
	for _, sale := range sales {
		if sale.ID != id {
			keptSales = append(keptSales, sale)
		}
	}
	keptPayments := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.SaleID != id {
			keptPayments = append(keptPayments, p)
		}
	}

	var entries []kv.Entry
	if len(keptSales) != len(sales) {
		e, err := encode(salesKey, keptSales)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if len(keptPayments) != len(payments) {
		e, err := encode(paymentsKey, keptPayments)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil
	}
	if err := kv.SetAll(s.kv, entries...); err != nil {
		return fmt.Errorf("failed to delete sale %d: %w", id, err)
	}
	return nil
}

// CreatePayment assigns a fresh ID to payment, appends it and persists the
// collection. The referenced sale is not checked here.
func (s *KVStorage) CreatePayment(payment Payment) (Payment, error) {
	payments, err := load[Payment](s, paymentsKey)
	if err != nil {
		return Payment{}, err
	}
	id, err := s.ids.NextID()
	if err != nil {
		return Payment{}, err
	}
	payment.ID = id
	if err := s.save(paymentsKey, append(payments, payment)); err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// DeletePayment removes the payment with the given ID. Deleting an unknown
// ID is a no-op.
func (s *KVStorage) DeletePayment(id int) error {
	payments, err := load[Payment](s, paymentsKey)
	if err != nil {
		return err
	}
	kept := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(payments) {
		return nil
	}
	return s.save(paymentsKey, kept)
}

// highestID is the largest ID used by any stored sale or payment.
func (s *KVStorage) highestID() int {
	highest := 0
	for _, sale := range s.ListSales() {
		highest = max(highest, sale.ID)
	}
	for _, p := range s.ListPayments() {
		highest = max(highest, p.ID)
	}
	return highest
}
