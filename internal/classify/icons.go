package classify

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/kindness-map/internal/model"
)

// Icon identifiers, one per display treatment.
const (
	IconFood    = "food"
	IconShelter = "shelter"
	IconCharity = "charity"
	IconDefault = "default"
)

// Icon describes how the widget draws a marker.
type Icon struct {
	ID     string `json:"id"`
	URL    string `json:"url,omitempty"`
	Glyph  string `json:"glyph,omitempty"`
	Size   [2]int `json:"size"`
	Anchor [2]int `json:"anchor"`
}

// IconSet is a named family of icons covering every category.
type IconSet struct {
	Name    string
	Food    Icon
	Shelter Icon
	Charity Icon
	Default Icon
}

// For returns the icon for a category. Other falls back to the set default.
func (s IconSet) For(cat model.Category) Icon {
	switch cat {
	case model.CategoryFoodBank:
		return s.Food
	case model.CategoryShelter:
		return s.Shelter
	case model.CategoryCharity:
		return s.Charity
	default:
		return s.Default
	}
}

const colorMarkerBase = "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-2x-"

func colorIcon(id, color string) Icon {
	return Icon{
		ID:     id,
		URL:    colorMarkerBase + color + ".png",
		Size:   [2]int{25, 41},
		Anchor: [2]int{12, 41},
	}
}

func glyphIcon(id, glyph string) Icon {
	return Icon{
		ID:     id,
		Glyph:  glyph,
		Size:   [2]int{30, 30},
		Anchor: [2]int{15, 15},
	}
}

var iconSets = map[string]IconSet{
	"color": {
		Name:    "color",
		Food:    colorIcon(IconFood, "green"),
		Shelter: colorIcon(IconShelter, "blue"),
		Charity: colorIcon(IconCharity, "red"),
		Default: colorIcon(IconDefault, "grey"),
	},
	"glyph": {
		Name:    "glyph",
		Food:    glyphIcon(IconFood, "🍞"),
		Shelter: glyphIcon(IconShelter, "🏠"),
		Charity: glyphIcon(IconCharity, "🛍️"),
		Default: glyphIcon(IconDefault, "📍"),
	},
}

// LookupIconSet returns a built-in icon set by name.
func LookupIconSet(name string) (IconSet, error) {
	set, ok := iconSets[name]
	if !ok {
		return IconSet{}, eris.Errorf("classify: unknown icon set %q", name)
	}
	return set, nil
}

// IconSetNames lists the built-in icon sets in sorted order.
func IconSetNames() []string {
	names := make([]string, 0, len(iconSets))
	for name := range iconSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
