// Package classify maps raw spot categories onto the normalized category set
// and picks the display icon for each spot.
package classify

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/kindness-map/internal/model"
)

// UnknownPolicy decides what happens to spots in the "other" category.
type UnknownPolicy string

// Unknown category policies.
const (
	// UnknownDefault renders unrecognized spots with the icon set's default icon.
	UnknownDefault UnknownPolicy = "default"
	// UnknownSkip excludes unrecognized spots from rendering.
	UnknownSkip UnknownPolicy = "skip"
)

// ParseUnknownPolicy validates a configured policy name.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch UnknownPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case UnknownDefault, "":
		return UnknownDefault, nil
	case UnknownSkip:
		return UnknownSkip, nil
	default:
		return "", eris.Errorf("classify: unknown policy %q", s)
	}
}

// Static document vocabulary, keyed by the compacted form of the raw value.
var staticVocabulary = map[string]model.Category{
	"foodbank":        model.CategoryFoodBank,
	"foodpantry":      model.CategoryFoodBank,
	"shelter":         model.CategoryShelter,
	"homelessshelter": model.CategoryShelter,
	"charity":         model.CategoryCharity,
	"charityshop":     model.CategoryCharity,
	"charitystore":    model.CategoryCharity,
}

// compact lowercases s and strips separators so "Food Bank", "food_bank" and
// "food-bank" share one key.
func compact(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize maps a static document "type" value to a Category.
func Normalize(raw string) model.Category {
	if cat, ok := staticVocabulary[compact(raw)]; ok {
		return cat
	}
	return model.CategoryOther
}

// FromTags maps OpenStreetMap tags to a Category. The second return value is
// the tag that decided the category, formatted as key=value.
func FromTags(tags map[string]string) (model.Category, string) {
	switch {
	case tags["amenity"] == "food_bank":
		return model.CategoryFoodBank, "amenity=food_bank"
	case tags["amenity"] == "shelter":
		return model.CategoryShelter, "amenity=shelter"
	case tags["amenity"] == "social_facility" && tags["social_facility"] == "shelter":
		return model.CategoryShelter, "social_facility=shelter"
	case tags["social_facility"] == "food_bank":
		return model.CategoryFoodBank, "social_facility=food_bank"
	case tags["shop"] == "charity":
		return model.CategoryCharity, "shop=charity"
	}
	for _, key := range []string{"amenity", "shop", "social_facility"} {
		if v := tags[key]; v != "" {
			return model.CategoryOther, key + "=" + v
		}
	}
	return model.CategoryOther, ""
}

// Label returns the human-readable name shown in popups for a category.
func Label(cat model.Category, raw string) string {
	switch cat {
	case model.CategoryFoodBank:
		return "Food Bank"
	case model.CategoryShelter:
		return "Shelter"
	case model.CategoryCharity:
		return "Charity Shop"
	}
	// key=value tags show only the value.
	if _, v, ok := strings.Cut(raw, "="); ok {
		raw = v
	}
	raw = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(raw))
	if raw == "" {
		return "Other"
	}
	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(raw)
}
