package delivery

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront/internal/apperror"
)

type Center struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CarparkOption struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Agent struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
}

// Options is the public listing of every selectable delivery option.
type Options struct {
	Centers  []Center        `json:"centers"`
	Carparks []CarparkOption `json:"carparks"`
	Agents   []Agent         `json:"agents"`
}

// Registry is the static table of delivery options. It is built once at
// startup and only read afterwards.
type Registry struct {
	options  Options
	centers  map[string]Center
	carparks map[string]CarparkOption
	agents   map[string]Agent
}

func NewRegistry(centers []Center, carparks []CarparkOption, agents []Agent) *Registry {
	r := &Registry{
		options:  Options{Centers: centers, Carparks: carparks, Agents: agents},
		centers:  make(map[string]Center, len(centers)),
		carparks: make(map[string]CarparkOption, len(carparks)),
		agents:   make(map[string]Agent, len(agents)),
	}
	for _, c := range centers {
		r.centers[c.ID] = c
	}
	for _, c := range carparks {
		r.carparks[c.ID] = c
	}
	for _, a := range agents {
		r.agents[a.ID] = a
	}
	return r
}

func DefaultRegistry() *Registry {
	return NewRegistry(
		[]Center{
			{ID: "center-01", Name: "Central Pickup Counter"},
			{ID: "center-02", Name: "Riverside Pickup Point"},
		},
		[]CarparkOption{
			{ID: "carpark-a", Name: "Carpark A", Price: decimal.RequireFromString("0.50")},
			{ID: "carpark-b", Name: "Carpark B", Price: decimal.RequireFromString("1.00")},
		},
		[]Agent{
			{ID: "agent-express", Name: "Express Courier", EstimatedPrice: decimal.RequireFromString("1.50")},
			{ID: "agent-standard", Name: "Standard Post", EstimatedPrice: decimal.RequireFromString("0.80")},
		},
	)
}

func (r *Registry) Options() Options {
	return r.options
}

func unknownOption(what, id string) error {
	return apperror.New(apperror.KindUnknownDeliveryOption, fmt.Sprintf("unknown %s %q", what, id))
}

// Surcharge returns the fixed delivery price for sel. Pickup is free but the
// center must still exist.
func (r *Registry) Surcharge(sel Selection) (decimal.Decimal, error) {
	switch s := sel.(type) {
	case Pickup:
		if _, ok := r.centers[s.CenterID]; !ok {
			return decimal.Zero, unknownOption("pickup center", s.CenterID)
		}
		return decimal.Zero, nil
	case Carpark:
		c, ok := r.carparks[s.CarparkID]
		if !ok {
			return decimal.Zero, unknownOption("carpark", s.CarparkID)
		}
		return c.Price, nil
	case HomeDelivery:
		a, ok := r.agents[s.AgentID]
		if !ok {
			return decimal.Zero, unknownOption("delivery agent", s.AgentID)
		}
		return a.EstimatedPrice, nil
	default:
		return decimal.Zero, apperror.New(apperror.KindUnknownDeliveryOption, "no delivery option selected")
	}
}
