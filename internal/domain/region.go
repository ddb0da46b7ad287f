package domain

import (
	"fmt"
	"strings"
)

// Region is one of the fixed forecast regions.
type Region string

const (
	Rakhiyal   Region = "rakhiyal"
	Bopal      Region = "bopal"
	Ambawadi   Region = "ambawadi"
	Chandkheda Region = "chandkheda"
	Vastral    Region = "vastral"
)

var regions = []Region{Rakhiyal, Bopal, Ambawadi, Chandkheda, Vastral}

// Regions returns the closed region set in its canonical display order.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// NormalizeRegion lower-cases and trims a region name. It does not validate.
func NormalizeRegion(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseRegion normalizes s and checks it against the region set.
func ParseRegion(s string) (Region, error) {
	r := Region(NormalizeRegion(s))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRegion, s)
	}
	return r, nil
}

// Valid reports whether r is a member of the region set.
func (r Region) Valid() bool {
	for _, known := range regions {
		if r == known {
			return true
		}
	}
	return false
}

// Title returns the region name with its first letter upper-cased, e.g. "Bopal".
func (r Region) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

func (r Region) String() string { return string(r) }
