package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceSample_Available(t *testing.T) {
	s := PriceSample{
		{Venue: "A", Price: 1800, OK: true},
		{Venue: "B"},
		{Venue: "C", Price: 1790, OK: true},
	}
	assert.Equal(t, 2, s.Available())
	assert.Equal(t, 0, PriceSample{}.Available())
}
