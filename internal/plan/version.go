package plan

import (
	"fmt"
	"strings"

	"github.com/blang/semver"
)

// Version is a MAJOR.MINOR.PATCH release number.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a MAJOR.MINOR.PATCH string. A leading v is accepted;
// pre-release and build suffixes are not.
func ParseVersion(s string) (Version, error) {
	v, err := semver.Parse(strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V"))
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	if len(v.Pre) > 0 || len(v.Build) > 0 {
		return Version{}, fmt.Errorf("invalid version %q: only MAJOR.MINOR.PATCH is allowed", s)
	}
	return Version{Major: int(v.Major), Minor: int(v.Minor), Patch: int(v.Patch)}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
