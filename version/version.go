package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oomph-ac/replica/oerror"
)

// Version is a client protocol version packed as major<<16 | minor<<8 | patch, so that numeric order
// matches release order.
type Version uint32

const (
	// Unknown is the version of a client that did not report one. It resolves to Latest.
	Unknown Version = 0

	V1_7    = Version(1<<16 | 7<<8)
	V1_8    = Version(1<<16 | 8<<8)
	V1_12   = Version(1<<16 | 12<<8)
	V1_13   = Version(1<<16 | 13<<8)
	V1_14   = Version(1<<16 | 14<<8)
	V1_15   = Version(1<<16 | 15<<8)
	V1_16   = Version(1<<16 | 16<<8)
	V1_19_4 = Version(1<<16 | 19<<8 | 4)
	V1_20   = Version(1<<16 | 20<<8)

	// Latest is used for clients newer than any formula cutover.
	Latest = Version(1<<16 | 255<<8 | 255)
)

// New returns the version major.minor.patch. Components are clamped to a byte.
func New(major, minor, patch int) Version {
	return Version(clampByte(major)<<16 | clampByte(minor)<<8 | clampByte(patch))
}

// Parse parses a dotted version string such as "1.8" or "1.19.4".
func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Unknown, oerror.InvalidArgument("malformed version %q", s)
	}
	var n [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 || v > 255 {
			return Unknown, oerror.InvalidArgument("malformed version %q", s)
		}
		n[i] = v
	}
	return New(n[0], n[1], n[2]), nil
}

// MustParse is like Parse but panics on malformed input. It is meant for constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Resolve returns the version used for formula selection: Unknown maps to Latest.
func (v Version) Resolve() Version {
	if v == Unknown {
		return Latest
	}
	return v
}

func (v Version) Major() int { return int(v >> 16 & 0xff) }
func (v Version) Minor() int { return int(v >> 8 & 0xff) }
func (v Version) Patch() int { return int(v & 0xff) }

// IsLowerThan reports v < o.
func (v Version) IsLowerThan(o Version) bool { return v.Resolve() < o }

// IsAtLeast reports v >= o.
func (v Version) IsAtLeast(o Version) bool { return v.Resolve() >= o }

// IsAtMost reports v <= o.
func (v Version) IsAtMost(o Version) bool { return v.Resolve() <= o }

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	a, b := v.Resolve(), o.Resolve()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (v Version) String() string {
	switch v {
	case Unknown:
		return "unknown"
	case Latest:
		return "latest"
	}
	if v.Patch() == 0 {
		return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
	}
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// MarshalText implements encoding.TextMarshaler so versions can live in settings files.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "unknown":
		*v = Unknown
		return nil
	case "latest":
		*v = Latest
		return nil
	}
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

func clampByte(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint32(n)
}
