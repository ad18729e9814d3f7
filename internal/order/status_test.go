package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled, StatusFailed}

func TestCanTransitionTo(t *testing.T) {
	legal := map[[2]Status]bool{
		{StatusProcessing, StatusShipped}:   true,
		{StatusProcessing, StatusCancelled}: true,
		{StatusProcessing, StatusFailed}:    true,
		{StatusShipped, StatusDelivered}:    true,
		{StatusShipped, StatusCancelled}:    true,
		{StatusDelivered, StatusCompleted}:  true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[[2]Status{from, to}]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range allStatuses {
		want := s == StatusCompleted || s == StatusCancelled || s == StatusFailed
		assert.Equal(t, want, s.IsTerminal(), s)
	}
	assert.False(t, Status("lost").IsTerminal())
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" Shipped ")
	assert.True(t, ok)
	assert.Equal(t, StatusShipped, s)

	_, ok = ParseStatus("refunded")
	assert.False(t, ok)
}
