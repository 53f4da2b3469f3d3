// Package feed defines the feed computation boundary. The numeric formula
// is supplied externally; sessions accept any Calculator.
package feed

// Metrics are the values derived from a shrimp count, in grams.
type Metrics struct {
	Biomass float64
	Feed    float64
	Protein float64
	Filler  float64
}

// Calculator derives feed metrics from a shrimp count. Implementations
// must be pure: same count, same metrics.
type Calculator func(count int) Metrics

// Default returns the formula deployed on the kiosk: a fixed per-animal
// weight with a 30/70 protein/filler split of the feed ration.
func Default() Calculator {
	const (
		gramsPerShrimp = 2.5
		feedRatio      = 0.035
		proteinShare   = 0.3
	)
	return func(count int) Metrics {
		biomass := float64(count) * gramsPerShrimp
		ration := biomass * feedRatio
		return Metrics{
			Biomass: biomass,
			Feed:    ration,
			Protein: ration * proteinShare,
			Filler:  ration * (1 - proteinShare),
		}
	}
}
