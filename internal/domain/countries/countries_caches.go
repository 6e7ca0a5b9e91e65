package countries

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/FACorreiaa/loci-travelbot-api/internal/types"
	"github.com/FACorreiaa/loci-travelbot-api/pkg/memo"
	"github.com/FACorreiaa/loci-travelbot-api/pkg/observability"
)

const allCountriesKey = "all"

// Caches holds the four process-lifetime cache tiers. One instance is shared
// by the catalog and summary services; tests build a fresh one each.
type Caches struct {
	Countries *memo.Cache[[]types.Country]
	Summaries *memo.Cache[types.CountrySummary]
	Capitals  *memo.Cache[types.CapitalCoordinate]
	SunTimes  *memo.Cache[types.SunTimes]
}

func NewCaches(metrics *observability.Metrics, logger *slog.Logger) *Caches {
	return &Caches{
		Countries: memo.New[[]types.Country]("countries", metrics, logger),
		Summaries: memo.New[types.CountrySummary]("summaries", metrics, logger),
		Capitals:  memo.New[types.CapitalCoordinate]("capitals", metrics, logger),
		SunTimes:  memo.New[types.SunTimes]("sun_times", metrics, logger),
	}
}

// sunTimesKey keys on the exact bit patterns, so only bit-identical
// coordinates share an entry.
func sunTimesKey(lat, lng float64) string {
	return fmt.Sprintf("%016x:%016x", math.Float64bits(lat), math.Float64bits(lng))
}
