package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCalculator(t *testing.T) {
	calc := Default()

	m := calc(100)
	assert.InDelta(t, 250.0, m.Biomass, 1e-9)
	assert.InDelta(t, 8.75, m.Feed, 1e-9)
	assert.InDelta(t, 2.625, m.Protein, 1e-9)
	assert.InDelta(t, 6.125, m.Filler, 1e-9)

	// Protein and filler partition the ration exactly.
	assert.InDelta(t, m.Feed, m.Protein+m.Filler, 1e-9)

	assert.Zero(t, calc(0), "no shrimp, no feed")
}
