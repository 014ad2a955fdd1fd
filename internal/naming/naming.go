// Package naming parses and composes access point names of the form
// SITE-AP-BUILDING-FLOOR-INDEX, e.g. TLS-AP-SKP-1c-1.
package naming

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind is the fixed second segment of every access point name.
const Kind = "AP"

const separator = "-"

var (
	// ErrInvalidName marks components that cannot form a canonical name.
	ErrInvalidName = errors.New("invalid access point name")

	canonical = regexp.MustCompile(`^([A-Z]{3})-AP-([A-Z]{3})-([A-Za-z0-9]{1,3})-([0-9]+)$`)

	sitePattern     = regexp.MustCompile(`^[A-Z]{3}$`)
	buildingPattern = sitePattern
	floorPattern    = regexp.MustCompile(`^[A-Za-z0-9]{1,3}$`)
)

// Name is a parsed canonical access point name.
type Name struct {
	Site     string
	Building string
	Floor    string
	Index    int
}

// Parse reads a canonical name. It reports false for anything that does not
// match the convention, including a zero index; it never fails otherwise.
func Parse(s string) (Name, bool) {
	m := canonical.FindStringSubmatch(s)
	if m == nil {
		return Name{}, false
	}

	index, ok := parseIndex(m[4])
	if !ok {
		return Name{}, false
	}

	return Name{Site: m[1], Building: m[2], Floor: m[3], Index: index}, true
}

// Matches reports whether s is a canonical name.
func Matches(s string) bool {
	_, ok := Parse(s)
	return ok
}

// String composes the name.
func (n Name) String() string {
	return Prefix(n.Site, n.Building, n.Floor) + strconv.Itoa(n.Index)
}

// Validate checks every component against the convention.
func (n Name) Validate() error {
	if err := ValidateGroup(n.Site, n.Building, n.Floor); err != nil {
		return err
	}
	if n.Index < 1 {
		return errors.Wrapf(ErrInvalidName, "index %d is not positive", n.Index)
	}
	return nil
}

// ValidateGroup checks the site, building and floor of a name group.
func ValidateGroup(site, building, floor string) error {
	switch {
	case !sitePattern.MatchString(site):
		return errors.Wrapf(ErrInvalidName, "site %q must be 3 uppercase letters", site)
	case !buildingPattern.MatchString(building):
		return errors.Wrapf(ErrInvalidName, "building %q must be 3 uppercase letters", building)
	case !floorPattern.MatchString(floor):
		return errors.Wrapf(ErrInvalidName, "floor %q must be 1 to 3 letters or digits", floor)
	}
	return nil
}

// Prefix returns "SITE-AP-BUILDING-FLOOR-", shared by every name of a group.
func Prefix(site, building, floor string) string {
	return strings.Join([]string{site, Kind, building, floor, ""}, separator)
}

// NextIndex returns one more than the highest index among the names that
// start with prefix, or 1 when there is none. Names whose suffix is not a
// positive integer, or that have no successor, are ignored.
func NextIndex(prefix string, names []string) int {
	highest := 0
	for _, name := range names {
		suffix, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		if index, ok := parseIndex(suffix); ok && index < math.MaxInt && index > highest {
			highest = index
		}
	}
	return highest + 1
}

// Location extracts building and floor from any five-segment name, canonical
// or not. Both are nil when the name has another shape.
func Location(s string) (building, floor *string) {
	parts := strings.Split(s, separator)
	if len(parts) != 5 {
		return nil, nil
	}
	return &parts[2], &parts[3]
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	index, err := strconv.Atoi(s)
	if err != nil || index < 1 {
		return 0, false
	}
	return index, true
}
