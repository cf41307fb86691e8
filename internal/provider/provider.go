// Package provider defines the payment providers the gateway forwards
// payments to. Provider wire formats live behind the Provider interface.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrUnknownProvider is returned by Registry.Get for unregistered names.
var ErrUnknownProvider = errors.New("unknown provider")

// Request is what the ledger hands a provider to start a payment.
type Request struct {
	TransactionID string
	MerchantUID   string
	Amount        decimal.Decimal
	Type          string
	Phone         string
	Email         string
}

// Result says how a provider answered an initiation.
type Result int

const (
	// ResultOk means the provider captured the payment.
	ResultOk Result = iota
	// ResultErr means the provider declined the payment.
	ResultErr
	// ResultPending means the outcome arrives later through a callback.
	ResultPending
)

func (r Result) String() string {
	switch r {
	case ResultOk:
		return "ok"
	case ResultErr:
		return "err"
	case ResultPending:
		return "pending"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Outcome is a provider's answer. Reference is the provider's own id for the
// payment; Reason is set when the payment was declined.
type Outcome struct {
	Result    Result
	Reference string
	Reason    string
}

// Ok builds a captured outcome.
func Ok(ref string) Outcome { return Outcome{Result: ResultOk, Reference: ref} }

// Err builds a declined outcome.
func Err(ref, reason string) Outcome { return Outcome{Result: ResultErr, Reference: ref, Reason: reason} }

// Pending builds an outcome that waits for a callback.
func Pending(ref string) Outcome { return Outcome{Result: ResultPending, Reference: ref} }

// Provider initiates payments with one external payment rail.
//
// Initiate returns an error only when the provider could not be reached or
// answered unintelligibly. A declined payment is an Err outcome, not an error.
type Provider interface {
	Name() string
	Initiate(ctx context.Context, req Request) (Outcome, error)
}

// Registry looks up providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry holding ps.
func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any provider with the same name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider called name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names lists the registered providers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
