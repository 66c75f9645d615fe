package crawler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SegmentWidth is the fixed decimal width of one tree level in a CategoryID.
const SegmentWidth = 3

// maxSegment is the largest sibling ordinal a segment can encode.
const maxSegment = 999

// ErrSegmentOverflow reports a sibling ordinal that no longer fits the fixed
// segment width. Allocation fails loudly instead of wrapping or silently
// widening the scheme.
var ErrSegmentOverflow = errors.New("category id segment overflow")

// CategoryID is a hierarchical category identifier built from fixed-width
// decimal segments, one per tree level. A child's id is always prefixed by
// its parent's id; the empty id denotes the root pseudo-category.
type CategoryID string

// ParseCategoryID validates the segment structure of s.
func ParseCategoryID(s string) (CategoryID, error) {
	if len(s)%SegmentWidth != 0 {
		return "", fmt.Errorf("category id %q length is not a multiple of %d", s, SegmentWidth)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("category id %q contains non-digit %q", s, r)
		}
	}
	return CategoryID(s), nil
}

// String returns the raw identifier.
func (id CategoryID) String() string { return string(id) }

// Level is the depth of the id; the root pseudo-category is level 0.
func (id CategoryID) Level() int { return len(id) / SegmentWidth }

// Parent returns the id with the last segment removed.
func (id CategoryID) Parent() CategoryID {
	if id == "" {
		return ""
	}
	return id[:len(id)-SegmentWidth]
}

// IsDirectChildOf reports whether id sits exactly one level below parent and
// shares its ancestry prefix.
func (id CategoryID) IsDirectChildOf(parent CategoryID) bool {
	return len(id) == len(parent)+SegmentWidth && strings.HasPrefix(string(id), string(parent))
}

// Successor returns the next sibling id, zero-padded back to the segment
// width. Crossing the width boundary is a checked error.
func (id CategoryID) Successor() (CategoryID, error) {
	if id == "" {
		return "", errors.New("root pseudo-category has no successor")
	}
	last, err := strconv.Atoi(string(id[len(id)-SegmentWidth:]))
	if err != nil {
		return "", fmt.Errorf("parse segment of %q: %w", id, err)
	}
	if last >= maxSegment {
		return "", fmt.Errorf("successor of %q: %w", id, ErrSegmentOverflow)
	}
	return id.Parent() + CategoryID(fmt.Sprintf("%0*d", SegmentWidth, last+1)), nil
}

// NextChild deterministically allocates the next free child id under parent
// given every identifier known so far.
func NextChild(parent CategoryID, known []CategoryID) (CategoryID, error) {
	var max CategoryID
	for _, id := range known {
		if id.IsDirectChildOf(parent) && id > max {
			max = id
		}
	}
	if max == "" {
		return parent + CategoryID(fmt.Sprintf("%0*d", SegmentWidth, 1)), nil
	}
	return max.Successor()
}
