package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/rentalhub/backend/models"
)

// MatchCategory is one scored dimension of the comparison between a tenant's
// preferences and a property. MaxScore is zero when the tenant stated no
// preference for the category, which excludes it from the percentage base.
type MatchCategory struct {
	Category      string  `json:"category"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"max_score"`
	HasPreference bool    `json:"has_preference"`
}

type MatchResult struct {
	MatchScore      float64         `json:"match_score"`
	MatchCategories []MatchCategory `json:"match_categories"`
}

// rangeTolerance is the fraction of the preferred range span over which a
// value outside the range decays linearly to zero.
const rangeTolerance = 0.25

// fullMatchRatio separates the "matched" presentation tier from "partial".
const fullMatchRatio = 0.8

type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score compares one tenant's preferences against one property and its
// building. It is a pure function and safe for concurrent use. A nil building
// simply scores zero on every building-level category the tenant cares about.
func (s *Scorer) Score(prefs models.Preferences, prop models.Property, bld *models.Building) MatchResult {
	var b models.Building
	if bld != nil {
		b = *bld
	} else if prop.Building != nil {
		b = *prop.Building
	}

	propAmenities := append(append([]string{}, prop.Amenities...), b.Amenities...)

	cats := []MatchCategory{
		setCategory("metro_stations", s.weights.MetroStations, prefs.PreferredMetroStations, b.MetroStations),
		setCategory("essentials", s.weights.Essentials, prefs.PreferredEssentials, b.Essentials),
		setCategory("commute_times", s.weights.CommuteTimes, prefs.PreferredCommuteTimes, b.CommuteTimes),
		rangeCategory("price", s.weights.Price, prefs.MinPrice, prefs.MaxPrice, prop.Price),
		membershipCategoryInt("bedrooms", s.weights.Bedrooms, prefs.Bedrooms, prop.Bedrooms),
		membershipCategoryInt("bathrooms", s.weights.Bathrooms, prefs.Bathrooms, prop.Bathrooms),
		membershipCategory("property_type", s.weights.PropertyType, prefs.PropertyTypes, prop.PropertyType),
		membershipCategory("furnishing", s.weights.Furnishing, prefs.Furnishing, prop.Furnishing),
		rangeCategory("square_meters", s.weights.SquareMeters, prefs.MinSquareMeters, prefs.MaxSquareMeters, prop.SquareMeters),
		membershipCategory("building_type", s.weights.BuildingType, prefs.BuildingTypes, b.BuildingType),
		equalityCategory("let_duration", s.weights.LetDuration, prefs.LetDuration, prop.LetDuration),
		equalityCategory("bills", s.weights.Bills, prefs.Bills, prop.Bills),
		setCategory("tenant_type", s.weights.TenantType, prefs.TenantTypes, prop.TenantTypes),
		boolCategory("pet_policy", s.weights.PetPolicy, prefs.PetPolicy, prop.PetPolicy),
		setCategory("amenities", s.weights.Amenities, prefs.Amenities, propAmenities),
		boolCategory("concierge", s.weights.Concierge, prefs.IsConcierge, b.IsConcierge),
		boolCategory("smoking_area", s.weights.SmokingArea, prefs.SmokingArea, b.SmokingArea),
		outdoorCategory(s.weights.OutdoorSpace, prefs, prop),
	}

	var sum, sumMax float64
	for _, c := range cats {
		if !c.HasPreference {
			continue
		}
		sum += c.Score
		sumMax += c.MaxScore
	}

	score := 0.0
	if sumMax > 0 {
		score = clamp(100*sum/sumMax, 0, 100)
	}

	sortCategories(cats)

	return MatchResult{
		MatchScore:      math.Round(score*10) / 10,
		MatchCategories: cats,
	}
}

// sortCategories orders categories for presentation: full matches first,
// then partial, then unmatched, each block by descending weight. Callers
// rely on this ordering.
func sortCategories(cats []MatchCategory) {
	tier := func(c MatchCategory) int {
		if c.MaxScore <= 0 {
			return 2
		}
		switch r := c.Score / c.MaxScore; {
		case r >= fullMatchRatio:
			return 0
		case r > 0:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(cats, func(i, j int) bool {
		ti, tj := tier(cats[i]), tier(cats[j])
		if ti != tj {
			return ti < tj
		}
		return cats[i].MaxScore > cats[j].MaxScore
	})
}

// setCategory scores multi-valued preferences against a multi-valued property
// field as intersection size over preferred-set size.
func setCategory(name string, weight float64, preferred, actual []string) MatchCategory {
	pref := normalizeSet(preferred)
	if len(pref) == 0 || weight <= 0 {
		return MatchCategory{Category: name}
	}
	have := make(map[string]struct{}, len(actual))
	for _, a := range actual {
		if n := normalize(a); n != "" {
			have[n] = struct{}{}
		}
	}
	matched := 0
	for _, p := range pref {
		if _, ok := have[p]; ok {
			matched++
		}
	}
	return MatchCategory{
		Category:      name,
		Score:         weight * float64(matched) / float64(len(pref)),
		MaxScore:      weight,
		HasPreference: true,
	}
}

// membershipCategory scores a single-valued property field against a set of
// acceptable values: full weight if present, zero otherwise.
func membershipCategory(name string, weight float64, preferred []string, actual string) MatchCategory {
	pref := normalizeSet(preferred)
	if len(pref) == 0 || weight <= 0 {
		return MatchCategory{Category: name}
	}
	score := 0.0
	if a := normalize(actual); a != "" {
		for _, p := range pref {
			if p == a {
				score = weight
				break
			}
		}
	}
	return MatchCategory{Category: name, Score: score, MaxScore: weight, HasPreference: true}
}

func membershipCategoryInt(name string, weight float64, preferred []int, actual int) MatchCategory {
	if len(preferred) == 0 || weight <= 0 {
		return MatchCategory{Category: name}
	}
	score := 0.0
	if actual > 0 {
		for _, p := range preferred {
			if p == actual {
				score = weight
				break
			}
		}
	}
	return MatchCategory{Category: name, Score: score, MaxScore: weight, HasPreference: true}
}

// rangeCategory gives full weight inside [min,max] and decays linearly to
// zero over rangeTolerance of the span outside it. An unrecorded property
// value scores zero.
func rangeCategory(name string, weight float64, min, max, actual int) MatchCategory {
	if (min <= 0 && max <= 0) || weight <= 0 {
		return MatchCategory{Category: name}
	}
	cat := MatchCategory{Category: name, MaxScore: weight, HasPreference: true}
	if actual <= 0 {
		return cat
	}
	lo, hi := float64(min), float64(max)
	if max <= 0 {
		hi = math.Inf(1)
	}
	span := hi - lo
	if math.IsInf(span, 1) || span <= 0 {
		// Open-ended or degenerate range: decay relative to the one bound.
		span = math.Max(lo, float64(max))
	}
	tol := rangeTolerance * span
	v := float64(actual)
	var dist float64
	switch {
	case v < lo:
		dist = lo - v
	case v > hi:
		dist = v - hi
	}
	if dist == 0 {
		cat.Score = weight
	} else if tol > 0 && dist < tol {
		cat.Score = weight * (1 - dist/tol)
	}
	return cat
}

func equalityCategory(name string, weight float64, preferred, actual string) MatchCategory {
	p := normalize(preferred)
	if p == "" || weight <= 0 {
		return MatchCategory{Category: name}
	}
	score := 0.0
	if p == normalize(actual) {
		score = weight
	}
	return MatchCategory{Category: name, Score: score, MaxScore: weight, HasPreference: true}
}

// boolCategory treats false as "no preference stated".
func boolCategory(name string, weight float64, preferred, actual bool) MatchCategory {
	if !preferred || weight <= 0 {
		return MatchCategory{Category: name}
	}
	score := 0.0
	if actual {
		score = weight
	}
	return MatchCategory{Category: name, Score: score, MaxScore: weight, HasPreference: true}
}

// outdoorCategory folds the three outdoor flags into one category: full
// weight only when every requested flag is present on the property.
func outdoorCategory(weight float64, prefs models.Preferences, prop models.Property) MatchCategory {
	wantAny := prefs.OutdoorSpace || prefs.Balcony || prefs.Terrace
	if !wantAny || weight <= 0 {
		return MatchCategory{Category: "outdoor_space"}
	}
	ok := (!prefs.OutdoorSpace || prop.OutdoorSpace) &&
		(!prefs.Balcony || prop.Balcony) &&
		(!prefs.Terrace || prop.Terrace)
	score := 0.0
	if ok {
		score = weight
	}
	return MatchCategory{Category: "outdoor_space", Score: score, MaxScore: weight, HasPreference: true}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
