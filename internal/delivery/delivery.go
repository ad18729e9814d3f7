package delivery

import (
	"fmt"
	"strings"

	"github.com/wichananm65/storefront/internal/apperror"
)

type Type string

const (
	TypePickup  Type = "pickup"
	TypeCarpark Type = "carpark"
	TypeHome    Type = "home"
)

func ParseType(raw string) (Type, bool) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case TypePickup, TypeCarpark, TypeHome:
		return t, true
	default:
		return "", false
	}
}

// Selection is one of Pickup, Carpark or HomeDelivery.
type Selection interface {
	Type() Type
	selection()
}

type Pickup struct {
	CenterID string
}

type Carpark struct {
	CarparkID string
}

type HomeDelivery struct {
	AgentID    string
	Address    string
	City       string
	PostalCode string
}

func (Pickup) Type() Type       { return TypePickup }
func (Carpark) Type() Type      { return TypeCarpark }
func (HomeDelivery) Type() Type { return TypeHome }

func (Pickup) selection()       {}
func (Carpark) selection()      {}
func (HomeDelivery) selection() {}

// Contact is who the order is for.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Info is the flat, stored form of a selection plus its contact block. It is
// what clients send and what an Order keeps.
type Info struct {
	CenterID   string `json:"centerId,omitempty"`
	CarparkID  string `json:"carparkId,omitempty"`
	AgentID    string `json:"agentId,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`

	Contact Contact `json:"contact"`
}

// Selection picks the fields relevant to t. Fields belonging to other
// delivery types are ignored.
func (i Info) Selection(t Type) (Selection, error) {
	switch t {
	case TypePickup:
		return Pickup{CenterID: strings.TrimSpace(i.CenterID)}, nil
	case TypeCarpark:
		return Carpark{CarparkID: strings.TrimSpace(i.CarparkID)}, nil
	case TypeHome:
		return HomeDelivery{
			AgentID:    strings.TrimSpace(i.AgentID),
			Address:    strings.TrimSpace(i.Address),
			City:       strings.TrimSpace(i.City),
			PostalCode: strings.TrimSpace(i.PostalCode),
		}, nil
	default:
		return nil, apperror.Invalid([]apperror.Issue{{
			Field:   "deliveryType",
			Message: fmt.Sprintf("unsupported delivery type %q", t),
		}})
	}
}

// NewInfo flattens sel and contact into the stored shape.
func NewInfo(sel Selection, contact Contact) Info {
	info := Info{Contact: contact}
	switch s := sel.(type) {
	case Pickup:
		info.CenterID = s.CenterID
	case Carpark:
		info.CarparkID = s.CarparkID
	case HomeDelivery:
		info.AgentID = s.AgentID
		info.Address = s.Address
		info.City = s.City
		info.PostalCode = s.PostalCode
	}
	return info
}
