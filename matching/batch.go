package matching

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rentalhub/backend/models"
)

// PropertyMatch pairs a property with its match result for ranking.
type PropertyMatch struct {
	Property models.Property `json:"property"`
	MatchResult
}

// ScoreProperties scores every property against the tenant's preferences
// concurrently and returns them ordered by descending match score. The
// scorer itself is pure, so the only coordination needed is the index-slot
// writes below.
func (s *Scorer) ScoreProperties(ctx context.Context, prefs models.Preferences, properties []models.Property) ([]PropertyMatch, error) {
	out := make([]PropertyMatch, len(properties))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, p := range properties {
		i, p := i, p
		g.Go(func() error {
			out[i] = PropertyMatch{
				Property:    p,
				MatchResult: s.Score(prefs, p, p.Building),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})
	return out, nil
}
