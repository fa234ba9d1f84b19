package matching

import (
	"context"
	"testing"

	"github.com/rentalhub/backend/models"
)

func testScorer() *Scorer {
	return NewScorer(DefaultWeights())
}

func TestScoreFullMatch(t *testing.T) {
	prefs := models.Preferences{
		MinPrice:  1000,
		MaxPrice:  2000,
		Bedrooms:  []int{1, 2},
		PetPolicy: true,
	}
	prop := models.Property{
		Price:     1800,
		Bedrooms:  2,
		PetPolicy: true,
	}

	res := testScorer().Score(prefs, prop, nil)
	if res.MatchScore != 100 {
		t.Fatalf("expected score 100, got %v", res.MatchScore)
	}

	stated := 0
	for _, c := range res.MatchCategories {
		if c.HasPreference {
			stated++
			if c.Score != c.MaxScore {
				t.Errorf("category %s: expected full score, got %v/%v", c.Category, c.Score, c.MaxScore)
			}
		}
	}
	if stated != 3 {
		t.Errorf("expected 3 stated categories, got %d", stated)
	}
}

func TestScoreNoMatch(t *testing.T) {
	prefs := models.Preferences{
		MinPrice:  1000,
		MaxPrice:  2000,
		Bedrooms:  []int{1, 2},
		PetPolicy: true,
	}
	prop := models.Property{
		Price:     2500,
		Bedrooms:  3,
		PetPolicy: false,
	}

	res := testScorer().Score(prefs, prop, nil)
	if res.MatchScore != 0 {
		t.Fatalf("expected score 0, got %v", res.MatchScore)
	}
}

func TestScoreNoPreferences(t *testing.T) {
	res := testScorer().Score(models.Preferences{}, models.Property{Price: 1500, Bedrooms: 2}, nil)
	if res.MatchScore != 0 {
		t.Fatalf("expected score 0 with no stated preferences, got %v", res.MatchScore)
	}
	for _, c := range res.MatchCategories {
		if c.HasPreference {
			t.Errorf("category %s unexpectedly has a preference", c.Category)
		}
		if c.MaxScore != 0 || c.Score != 0 {
			t.Errorf("category %s should contribute zero weight, got %v/%v", c.Category, c.Score, c.MaxScore)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	prefs := models.Preferences{
		MinPrice:      500,
		MaxPrice:      900,
		PropertyTypes: []string{"flat", "studio"},
		Amenities:     []string{"gym", "pool", "sauna"},
		PetPolicy:     true,
		IsConcierge:   true,
	}
	props := []models.Property{
		{},
		{Price: 700, PropertyType: "flat", Amenities: []string{"gym"}, PetPolicy: true},
		{Price: 5000, PropertyType: "castle"},
	}
	for _, p := range props {
		res := testScorer().Score(prefs, p, &models.Building{IsConcierge: true})
		if res.MatchScore < 0 || res.MatchScore > 100 {
			t.Errorf("score out of bounds: %v", res.MatchScore)
		}
	}
}

func TestRangeScoringMonotonic(t *testing.T) {
	prefs := models.Preferences{MinPrice: 1000, MaxPrice: 2000}
	s := testScorer()

	prev := -1.0
	// Walking away from the range must never increase the score.
	for _, price := range []int{2000, 2100, 2200, 2300, 2500, 3000} {
		res := s.Score(prefs, models.Property{Price: price}, nil)
		if prev >= 0 && res.MatchScore > prev {
			t.Errorf("price %d scored %v, higher than closer value's %v", price, res.MatchScore, prev)
		}
		prev = res.MatchScore
	}
}

func TestRangePartialMatch(t *testing.T) {
	prefs := models.Preferences{MinPrice: 1000, MaxPrice: 2000}
	// 2100 is within the tolerance band (25% of the 1000 span), so the
	// price category should land strictly between zero and full.
	res := testScorer().Score(prefs, models.Property{Price: 2100}, nil)
	if res.MatchScore <= 0 || res.MatchScore >= 100 {
		t.Fatalf("expected partial score, got %v", res.MatchScore)
	}
}

func TestSetCategoryPartialOverlap(t *testing.T) {
	prefs := models.Preferences{Amenities: []string{"gym", "pool"}}
	prop := models.Property{Amenities: []string{"gym", "parking"}}

	res := testScorer().Score(prefs, prop, nil)
	if res.MatchScore != 50 {
		t.Fatalf("expected 50 for half overlap, got %v", res.MatchScore)
	}
}

func TestNormalizationBeforeComparison(t *testing.T) {
	prefs := models.Preferences{PropertyTypes: []string{"  Flat "}}
	prop := models.Property{PropertyType: "FLAT"}

	res := testScorer().Score(prefs, prop, nil)
	if res.MatchScore != 100 {
		t.Fatalf("expected normalized values to match, got %v", res.MatchScore)
	}
}

func TestMissingPropertyFieldScoresZero(t *testing.T) {
	prefs := models.Preferences{MinSquareMeters: 40, MaxSquareMeters: 80}
	// No square meters recorded on the property.
	res := testScorer().Score(prefs, models.Property{Price: 1200}, nil)
	if res.MatchScore != 0 {
		t.Fatalf("expected 0 for missing field with stated preference, got %v", res.MatchScore)
	}
}

func TestBedroomsOutsideSetScoresZero(t *testing.T) {
	prefs := models.Preferences{Bedrooms: []int{1, 2}}
	res := testScorer().Score(prefs, models.Property{Bedrooms: 3}, nil)
	if res.MatchScore != 0 {
		t.Fatalf("expected 0 for bedrooms not in set, got %v", res.MatchScore)
	}
}

func TestBuildingCategories(t *testing.T) {
	prefs := models.Preferences{
		PreferredMetroStations: []string{"Angel", "Old Street"},
		BuildingTypes:          []string{"co-living"},
		SmokingArea:            true,
	}
	bld := models.Building{
		MetroStations: []string{"angel"},
		BuildingType:  "Co-Living",
		SmokingArea:   true,
	}

	res := testScorer().Score(prefs, models.Property{}, &bld)
	w := DefaultWeights()
	want := 100 * (0.5*w.MetroStations + w.BuildingType + w.SmokingArea) /
		(w.MetroStations + w.BuildingType + w.SmokingArea)
	if diff := res.MatchScore - want; diff > 0.1 || diff < -0.1 {
		t.Fatalf("expected score near %v, got %v", want, res.MatchScore)
	}
}

func TestCategorySortOrder(t *testing.T) {
	prefs := models.Preferences{
		MinPrice:      1000,
		MaxPrice:      2000,
		Bedrooms:      []int{2},
		Amenities:     []string{"gym", "pool", "sauna", "parking"},
		PropertyTypes: []string{"flat"},
	}
	prop := models.Property{
		Price:        1500,                      // full
		Bedrooms:     3,                         // none
		Amenities:    []string{"gym", "sauna"},  // partial (50%)
		PropertyType: "house",                   // none
	}

	res := testScorer().Score(prefs, prop, nil)

	tierOf := func(c MatchCategory) int {
		if c.MaxScore <= 0 {
			return 2
		}
		r := c.Score / c.MaxScore
		switch {
		case r >= 0.8:
			return 0
		case r > 0:
			return 1
		default:
			return 2
		}
	}

	lastTier := -1
	lastWeight := 0.0
	for i, c := range res.MatchCategories {
		tier := tierOf(c)
		if tier < lastTier {
			t.Fatalf("category %s at index %d in tier %d after tier %d", c.Category, i, tier, lastTier)
		}
		if tier == lastTier && c.MaxScore > lastWeight {
			t.Fatalf("category %s breaks descending weight order within tier %d", c.Category, tier)
		}
		lastTier = tier
		lastWeight = c.MaxScore
	}

	if first := res.MatchCategories[0]; first.Category != "price" {
		t.Errorf("expected the full price match first, got %s", first.Category)
	}
}

func TestOutdoorCategoryRequiresAllRequestedFlags(t *testing.T) {
	prefs := models.Preferences{Balcony: true, Terrace: true}

	full := testScorer().Score(prefs, models.Property{Balcony: true, Terrace: true}, nil)
	if full.MatchScore != 100 {
		t.Errorf("expected 100 when all flags present, got %v", full.MatchScore)
	}

	partial := testScorer().Score(prefs, models.Property{Balcony: true}, nil)
	if partial.MatchScore != 0 {
		t.Errorf("expected 0 when a requested flag is missing, got %v", partial.MatchScore)
	}
}

func TestScorePropertiesRanked(t *testing.T) {
	prefs := models.Preferences{
		MinPrice: 1000,
		MaxPrice: 2000,
		Bedrooms: []int{2},
	}
	props := []models.Property{
		{Title: "bad", Price: 5000, Bedrooms: 5},
		{Title: "good", Price: 1500, Bedrooms: 2},
		{Title: "mid", Price: 1500, Bedrooms: 3},
	}

	matches, err := testScorer().ScoreProperties(context.Background(), prefs, props)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 results, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].MatchScore > matches[i-1].MatchScore {
			t.Fatalf("results not sorted by descending score: %v then %v", matches[i-1].MatchScore, matches[i].MatchScore)
		}
	}
	if matches[0].Property.Title != "good" {
		t.Errorf("expected the in-range 2-bed first, got %s", matches[0].Property.Title)
	}
}
