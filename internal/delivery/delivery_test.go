package delivery

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/storefront/internal/apperror"
)

func TestParseType(t *testing.T) {
	for raw, want := range map[string]Type{"pickup": TypePickup, " Carpark ": TypeCarpark, "HOME": TypeHome} {
		got, ok := ParseType(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got)
	}

	_, ok := ParseType("drone")
	assert.False(t, ok)
}

func TestSurcharge(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name     string
		sel      Selection
		want     string
		wantKind apperror.Kind
	}{
		{name: "pickup is free", sel: Pickup{CenterID: "center-01"}, want: "0"},
		{name: "carpark fixed price", sel: Carpark{CarparkID: "carpark-b"}, want: "1"},
		{name: "agent estimated price", sel: HomeDelivery{AgentID: "agent-express"}, want: "1.5"},
		{name: "unknown center", sel: Pickup{CenterID: "nowhere"}, wantKind: apperror.KindUnknownDeliveryOption},
		{name: "unknown carpark", sel: Carpark{CarparkID: "carpark-z"}, wantKind: apperror.KindUnknownDeliveryOption},
		{name: "unknown agent", sel: HomeDelivery{AgentID: "agent-x"}, wantKind: apperror.KindUnknownDeliveryOption},
		{name: "nil selection", sel: nil, wantKind: apperror.KindUnknownDeliveryOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Surcharge(tt.sel)
			if tt.wantKind != apperror.KindUnknown {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperror.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestInfo_RoundTripsSelection(t *testing.T) {
	contact := Contact{Name: "Ann", Email: "ann@example.com"}
	sel := HomeDelivery{AgentID: "agent-standard", Address: "12 Long Road", City: "Bangkok", PostalCode: "10110"}

	info := NewInfo(sel, contact)
	got, err := info.Selection(TypeHome)
	require.NoError(t, err)
	assert.Equal(t, sel, got)
	assert.Equal(t, contact, info.Contact)

	pickup, err := Info{CenterID: " center-02 ", Address: "ignored"}.Selection(TypePickup)
	require.NoError(t, err)
	assert.Equal(t, Pickup{CenterID: "center-02"}, pickup)

	_, err = info.Selection(Type("drone"))
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}

func TestHandler_ListsOptions(t *testing.T) {
	app := fiber.New()
	NewHandler(DefaultRegistry()).RegisterPublicRoutes(app)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/delivery-options", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var opts Options
	require.NoError(t, json.NewDecoder(res.Body).Decode(&opts))
	assert.Len(t, opts.Centers, 2)
	assert.Len(t, opts.Carparks, 2)
	assert.Len(t, opts.Agents, 2)
}
