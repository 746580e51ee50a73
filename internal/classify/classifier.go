package classify

import (
	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/model"
)

// Classified is a spot paired with its display treatment.
type Classified struct {
	Spot  model.Spot
	Label string
	Icon  Icon
}

// Classifier applies an icon set and unknown-category policy to spots.
type Classifier struct {
	icons   IconSet
	unknown UnknownPolicy
}

// New creates a Classifier.
func New(icons IconSet, unknown UnknownPolicy) *Classifier {
	if unknown == "" {
		unknown = UnknownDefault
	}
	return &Classifier{icons: icons, unknown: unknown}
}

// Policy returns the configured unknown-category policy.
func (c *Classifier) Policy() UnknownPolicy { return c.unknown }

// Classify tags each spot with its label and icon. Spots whose category is
// empty are normalized from RawCategory first. Under UnknownSkip, spots in
// the other category are dropped.
func (c *Classifier) Classify(spots []model.Spot) []Classified {
	out := make([]Classified, 0, len(spots))
	skipped := 0
	for _, s := range spots {
		if s.Category == "" {
			s.Category = Normalize(s.RawCategory)
		}
		if s.Category == model.CategoryOther && c.unknown == UnknownSkip {
			skipped++
			continue
		}
		out = append(out, Classified{
			Spot:  s,
			Label: Label(s.Category, s.RawCategory),
			Icon:  c.icons.For(s.Category),
		})
	}
	if skipped > 0 {
		zap.L().Debug("classify: skipped unrecognized spots",
			zap.Int("skipped", skipped),
			zap.Int("kept", len(out)),
		)
	}
	return out
}
