package wizard

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// FormData is the typed schema behind the preferences wizard. Field names on
// the wire are the snake_case names in the registry below; UI-only aliases
// are reconciled once in transform.go, never here.
type FormData struct {
	PreferredAddress       string
	PreferredMetroStations []string
	PreferredEssentials    []string
	PreferredCommuteTimes  []string

	MinPrice    int
	MaxPrice    int
	MoveInDate  *time.Time
	MoveOutDate *time.Time

	PropertyTypes   []string
	Bedrooms        []int
	Bathrooms       []int
	Furnishing      []string
	OutdoorSpace    bool
	Balcony         bool
	Terrace         bool
	MinSquareMeters int
	MaxSquareMeters int

	BuildingTypes []string
	LetDuration   string
	Bills         string
	TenantTypes   []string

	PetPolicy     bool
	Pets          []string
	PetCustomType string
	NumberOfPets  int

	Amenities   []string
	IsConcierge bool
	SmokingArea bool

	Hobbies                []string
	IdealLivingEnvironment []string
	Smoker                 string
	AdditionalInfo         string
}

type fieldAccessor struct {
	get func(*FormData) interface{}
	set func(*FormData, interface{}) error
}

func stringField(ptr func(*FormData) *string) fieldAccessor {
	return fieldAccessor{
		get: func(f *FormData) interface{} { return *ptr(f) },
		set: func(f *FormData, v interface{}) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("expected string, got %T", v)
			}
			*ptr(f) = s
			return nil
		},
	}
}

func intField(ptr func(*FormData) *int) fieldAccessor {
	return fieldAccessor{
		get: func(f *FormData) interface{} { return *ptr(f) },
		set: func(f *FormData, v interface{}) error {
			switch n := v.(type) {
			case int:
				*ptr(f) = n
			case float64:
				*ptr(f) = int(n)
			default:
				return fmt.Errorf("expected int, got %T", v)
			}
			return nil
		},
	}
}

func boolField(ptr func(*FormData) *bool) fieldAccessor {
	return fieldAccessor{
		get: func(f *FormData) interface{} { return *ptr(f) },
		set: func(f *FormData, v interface{}) error {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("expected bool, got %T", v)
			}
			*ptr(f) = b
			return nil
		},
	}
}

func stringSetField(ptr func(*FormData) *[]string) fieldAccessor {
	return fieldAccessor{
		get: func(f *FormData) interface{} { return *ptr(f) },
		set: func(f *FormData, v interface{}) error {
			s, ok := v.([]string)
			if !ok {
				return fmt.Errorf("expected []string, got %T", v)
			}
			*ptr(f) = s
			return nil
		},
	}
}

func intSetField(ptr func(*FormData) *[]int) fieldAccessor {
	return fieldAccessor{
		get: func(f *FormData) interface{} { return *ptr(f) },
		set: func(f *FormData, v interface{}) error {
			s, ok := v.([]int)
			if !ok {
				return fmt.Errorf("expected []int, got %T", v)
			}
			*ptr(f) = s
			return nil
		},
	}
}

func dateField(ptr func(*FormData) **time.Time) fieldAccessor {
	return fieldAccessor{
		get: func(f *FormData) interface{} { return *ptr(f) },
		set: func(f *FormData, v interface{}) error {
			switch t := v.(type) {
			case nil:
				*ptr(f) = nil
			case *time.Time:
				*ptr(f) = t
			case time.Time:
				*ptr(f) = &t
			default:
				return fmt.Errorf("expected time, got %T", v)
			}
			return nil
		},
	}
}

// fieldRegistry maps wire field names to typed accessors. Every persisted
// preferences field appears exactly once.
var fieldRegistry = map[string]fieldAccessor{
	"preferred_address":        stringField(func(f *FormData) *string { return &f.PreferredAddress }),
	"preferred_metro_stations": stringSetField(func(f *FormData) *[]string { return &f.PreferredMetroStations }),
	"preferred_essentials":     stringSetField(func(f *FormData) *[]string { return &f.PreferredEssentials }),
	"preferred_commute_times":  stringSetField(func(f *FormData) *[]string { return &f.PreferredCommuteTimes }),
	"min_price":                intField(func(f *FormData) *int { return &f.MinPrice }),
	"max_price":                intField(func(f *FormData) *int { return &f.MaxPrice }),
	"move_in_date":             dateField(func(f *FormData) **time.Time { return &f.MoveInDate }),
	"move_out_date":            dateField(func(f *FormData) **time.Time { return &f.MoveOutDate }),
	"property_types":           stringSetField(func(f *FormData) *[]string { return &f.PropertyTypes }),
	"bedrooms":                 intSetField(func(f *FormData) *[]int { return &f.Bedrooms }),
	"bathrooms":                intSetField(func(f *FormData) *[]int { return &f.Bathrooms }),
	"furnishing":               stringSetField(func(f *FormData) *[]string { return &f.Furnishing }),
	"outdoor_space":            boolField(func(f *FormData) *bool { return &f.OutdoorSpace }),
	"balcony":                  boolField(func(f *FormData) *bool { return &f.Balcony }),
	"terrace":                  boolField(func(f *FormData) *bool { return &f.Terrace }),
	"min_square_meters":        intField(func(f *FormData) *int { return &f.MinSquareMeters }),
	"max_square_meters":        intField(func(f *FormData) *int { return &f.MaxSquareMeters }),
	"building_types":           stringSetField(func(f *FormData) *[]string { return &f.BuildingTypes }),
	"let_duration":             stringField(func(f *FormData) *string { return &f.LetDuration }),
	"bills":                    stringField(func(f *FormData) *string { return &f.Bills }),
	"tenant_types":             stringSetField(func(f *FormData) *[]string { return &f.TenantTypes }),
	"pet_policy":               boolField(func(f *FormData) *bool { return &f.PetPolicy }),
	"pets":                     stringSetField(func(f *FormData) *[]string { return &f.Pets }),
	"pet_custom_type":          stringField(func(f *FormData) *string { return &f.PetCustomType }),
	"number_of_pets":           intField(func(f *FormData) *int { return &f.NumberOfPets }),
	"amenities":                stringSetField(func(f *FormData) *[]string { return &f.Amenities }),
	"is_concierge":             boolField(func(f *FormData) *bool { return &f.IsConcierge }),
	"smoking_area":             boolField(func(f *FormData) *bool { return &f.SmokingArea }),
	"hobbies":                  stringSetField(func(f *FormData) *[]string { return &f.Hobbies }),
	"ideal_living_environment": stringSetField(func(f *FormData) *[]string { return &f.IdealLivingEnvironment }),
	"smoker":                   stringField(func(f *FormData) *string { return &f.Smoker }),
	"additional_info":          stringField(func(f *FormData) *string { return &f.AdditionalInfo }),
}

// companionFields are persisted together with the named field so the stored
// representation stays consistent (a custom pet type is meaningless without
// its pet set; date-ordering validation needs both dates).
var companionFields = map[string][]string{
	"pets":            {"pet_custom_type"},
	"pet_custom_type": {"pets"},
	"move_in_date":    {"move_out_date"},
	"move_out_date":   {"move_in_date"},
}

func withCompanions(field string) []string {
	fields := []string{field}
	return append(fields, companionFields[field]...)
}

// valueEqual compares two field values; sets compare order-independently.
func valueEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case []string:
		bv, ok := b.([]string)
		if !ok {
			return false
		}
		return stringSetEqual(av, bv)
	case []int:
		bv, ok := b.([]int)
		if !ok {
			return false
		}
		return intSetEqual(av, bv)
	case *time.Time:
		bv, ok := b.(*time.Time)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == bv
		}
		return av.Equal(*bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func stringSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string{}, a...)
	bs := append([]string{}, b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func intSetEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int{}, a...)
	bs := append([]int{}, b...)
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// diffFields returns the wire names of every field whose value in next
// differs from prev.
func diffFields(prev, next *FormData) []string {
	var changed []string
	for name, acc := range fieldRegistry {
		if !valueEqual(acc.get(prev), acc.get(next)) {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}
