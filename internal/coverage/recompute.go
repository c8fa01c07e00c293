package coverage

import (
	"github.com/abhisek/bookwise/internal/store"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

// Recompute refreshes every derived field on a coverage record from its
// base counters and facet set. Derived fields are never written
// directly anywhere else, so reloading a record and recomputing always
// reproduces the same values.
func Recompute(cov *store.IdeaCoverage) {
	covered := len(cov.CoveredFacets)
	cov.CoveragePercentage = float64(covered) / float64(taxonomy.FacetCount) * 100
	cov.IsFullyCovered = covered == taxonomy.FacetCount

	if cov.TotalSeen == 0 {
		cov.CurrentAccuracy = 0
	} else {
		cov.CurrentAccuracy = float64(cov.TotalCorrect) / float64(cov.TotalSeen) * 100
	}
}
