package tx

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Type identifies a request type
type Type string

const (
	TypeManageOffer    Type = "ManageOffer"
	TypeCheckSaleState Type = "CheckSaleState"
	TypeCreateSale     Type = "CreateSale"
)

// Request is a ledger request. Preflight validates the request on its own;
// Apply runs it against the ledger through ctx.
type Request interface {
	RequestType() Type
	// Source is the account submitting the request, empty for requests
	// issued by the node itself.
	Source() string
	Preflight() Result
	Apply(ctx *ApplyContext) Result
}

// ErrUnknownRequestType is returned when a request type is unknown
var ErrUnknownRequestType = errors.New("unknown request type")

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]func() Request)
)

// Register adds the factory for a request type. It is meant to be called
// from init functions and panics on duplicates.
func Register(t Type, factory func() Request) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[t]; exists {
		panic(fmt.Sprintf("request type %s registered twice", t))
	}
	registry[t] = factory
}

// NewFromType creates an empty request of the given type
func NewFromType(t Type) (Request, error) {
	registryMu.RLock()
	factory, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequestType, t)
	}
	return factory(), nil
}

// RegisteredTypes returns every registered request type, sorted.
func RegisteredTypes() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// FromJSON creates a Request from a JSON object
func FromJSON(data []byte) (Request, error) {
	var raw struct {
		RequestType Type `json:"RequestType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	req, err := NewFromType(raw.RequestType)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("decode %s: %w", raw.RequestType, err)
	}
	return req, nil
}
