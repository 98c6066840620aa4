// Package memory implementa los puertos de repository en memoria: pruebas de casos de uso y
// ejecución local sin base de datos. RunTx serializa las transacciones y restaura el estado si fn falla.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

type data struct {
	companies     map[string]entity.Company
	modules       map[string]entity.CompanyModule // companyID/module
	users         map[string]entity.User
	products      map[string]entity.Product
	customers     map[string]entity.Customer
	leads         map[string]entity.Lead
	quotes        map[string]entity.Quote
	orders        map[string]entity.Order
	history       map[string][]entity.OrderStatusChange
	standing      map[string]entity.StandingOrder
	generations   map[string]entity.StandingOrderGeneration
	terms         map[string]entity.CreditTerms
	entries       map[string]entity.CreditLedgerEntry
	entrySeq      map[string]int // orden de inserción
	notifications map[string]entity.Notification
	invoices      map[string]entity.Invoice
	payments      map[string]entity.Payment
	documents     map[string]entity.Document // orderID/kind
	seq           int
}

func newData() *data {
	return &data{
		companies:     map[string]entity.Company{},
		modules:       map[string]entity.CompanyModule{},
		users:         map[string]entity.User{},
		products:      map[string]entity.Product{},
		customers:     map[string]entity.Customer{},
		leads:         map[string]entity.Lead{},
		quotes:        map[string]entity.Quote{},
		orders:        map[string]entity.Order{},
		history:       map[string][]entity.OrderStatusChange{},
		standing:      map[string]entity.StandingOrder{},
		generations:   map[string]entity.StandingOrderGeneration{},
		terms:         map[string]entity.CreditTerms{},
		entries:       map[string]entity.CreditLedgerEntry{},
		entrySeq:      map[string]int{},
		notifications: map[string]entity.Notification{},
		invoices:      map[string]entity.Invoice{},
		payments:      map[string]entity.Payment{},
		documents:     map[string]entity.Document{},
	}
}

// clone copia los mapas; las entidades se guardan por valor y sus slices se copian al escribir.
func (d *data) clone() *data {
	c := &data{
		companies:     maps.Clone(d.companies),
		modules:       maps.Clone(d.modules),
		users:         maps.Clone(d.users),
		products:      maps.Clone(d.products),
		customers:     maps.Clone(d.customers),
		leads:         maps.Clone(d.leads),
		quotes:        maps.Clone(d.quotes),
		orders:        maps.Clone(d.orders),
		history:       make(map[string][]entity.OrderStatusChange, len(d.history)),
		standing:      maps.Clone(d.standing),
		generations:   maps.Clone(d.generations),
		terms:         maps.Clone(d.terms),
		entries:       maps.Clone(d.entries),
		entrySeq:      maps.Clone(d.entrySeq),
		notifications: maps.Clone(d.notifications),
		invoices:      maps.Clone(d.invoices),
		payments:      maps.Clone(d.payments),
		documents:     maps.Clone(d.documents),
		seq:           d.seq,
	}
	for k, v := range d.history {
		c.history[k] = append([]entity.OrderStatusChange(nil), v...)
	}
	return c
}

// DB base en memoria compartida por todos los repositorios.
type DB struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	d    *data
}

// NewDB crea una base vacía.
func NewDB() *DB {
	return &DB{d: newData()}
}

// Store repositorios sobre db.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Companies:      &companyRepo{db},
		Users:          &userRepo{db},
		Products:       &productRepo{db},
		Customers:      &customerRepo{db},
		Leads:          &leadRepo{db},
		Quotes:         &quoteRepo{db},
		Orders:         &orderRepo{db},
		StandingOrders: &standingRepo{db},
		Credit:         &creditRepo{db},
		Notifications:  &notificationRepo{db},
		Invoices:       &invoiceRepo{db},
		Payments:       &paymentRepo{db},
		Documents:      &documentRepo{db},
	}
}

// Analytics consultas del tablero sobre db.
func (db *DB) Analytics() repository.AnalyticsRepository {
	return &analyticsRepo{db}
}

// RunTx implementa repository.TxRunner: una transacción a la vez; si fn falla se restaura el estado previo.
func (db *DB) RunTx(_ context.Context, fn func(tx repository.Store) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	snapshot := db.d.clone()
	db.mu.RUnlock()

	if err := fn(db.Store()); err != nil {
		db.mu.Lock()
		db.d = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *DB) read(fn func(d *data)) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn(db.d)
}

func (db *DB) write(fn func(d *data) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.d)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func ptr[T any](v T) *T { return &v }
