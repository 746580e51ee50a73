package overpass

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag is a key=value filter.
type Tag struct {
	Key   string
	Value string
}

func (t Tag) String() string {
	return t.Key + "=" + t.Value
}

// KindnessTags are the OpenStreetMap tags that mark food banks, shelters and
// charity shops.
var KindnessTags = []Tag{
	{Key: "amenity", Value: "food_bank"},
	{Key: "amenity", Value: "shelter"},
	{Key: "shop", Value: "charity"},
}

// AroundQuery describes a radius search around a point.
type AroundQuery struct {
	Lat     float64
	Lon     float64
	RadiusM float64
	Tags    []Tag
	// TimeoutS is the server-side [timeout:] setting; 0 omits it.
	TimeoutS int
}

// Build renders the query as Overpass QL. Each tag becomes an nwr statement
// inside a union and results are printed with "out center" so ways and
// relations carry a usable point.
func (q AroundQuery) Build() string {
	var b strings.Builder
	b.WriteString("[out:json]")
	if q.TimeoutS > 0 {
		fmt.Fprintf(&b, "[timeout:%d]", q.TimeoutS)
	}
	b.WriteString(";(")
	around := fmt.Sprintf("(around:%s,%s,%s)",
		strconv.FormatFloat(q.RadiusM, 'f', -1, 64),
		strconv.FormatFloat(q.Lat, 'f', 6, 64),
		strconv.FormatFloat(q.Lon, 'f', 6, 64),
	)
	for _, t := range q.Tags {
		fmt.Fprintf(&b, "nwr[%q=%q]%s;", t.Key, t.Value, around)
	}
	b.WriteString(");out center;")
	return b.String()
}
