package path

import (
	"strconv"
	"strings"
)

// SegmentKind distinguishes the three kinds of path segment.
type SegmentKind uint8

const (
	// KindKey addresses an object property.
	KindKey SegmentKind = iota
	// KindIndex addresses an array element (or the decimal key of an object).
	KindIndex
	// KindWildcard matches every element of an array. Read side only.
	KindWildcard
)

// Segment is one parsed path component.
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// Key returns a key segment. Use ForKey when the key may be numeric.
func Key(k string) Segment {
	return Segment{Kind: KindKey, Key: k}
}

// Index returns an index segment.
func Index(i int) Segment {
	return Segment{Kind: KindIndex, Index: i}
}

// Wildcard returns the "*" segment.
func Wildcard() Segment {
	return Segment{Kind: KindWildcard}
}

// ForKey returns the segment a parser would produce for the property name
// k, so paths built while walking objects compare equal to parsed ones.
func ForKey(k string) Segment {
	if i, ok := parseIndex(k); ok {
		return Index(i)
	}
	return Key(k)
}

// String renders the segment as it appears in a path string.
func (s Segment) String() string {
	switch s.Kind {
	case KindIndex:
		return strconv.Itoa(s.Index)
	case KindWildcard:
		return "*"
	default:
		return s.Key
	}
}

// objectKey is the property name this segment addresses in an Object.
func (s Segment) objectKey() string {
	if s.Kind == KindIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path is a parsed path. The zero value is the root.
type Path []Segment

// Parse parses a write path. Wildcards are rejected.
func Parse(s string) (Path, error) {
	p, err := parse(s)
	if err != nil {
		return nil, err
	}
	for _, seg := range p {
		if seg.Kind == KindWildcard {
			return nil, &Error{
				Code:    ErrCodeWildcardWrite,
				Path:    s,
				Segment: "*",
				Message: "wildcard is not allowed in a write path",
			}
		}
	}
	return p, nil
}

// ParsePattern parses a read or observe path; "*" segments are allowed.
func ParsePattern(s string) (Path, error) {
	return parse(s)
}

// MustParse is like ParsePattern but panics on error.
// Use only in tests or with constant paths.
func MustParse(s string) Path {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parse(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}

	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for i, part := range parts {
		switch {
		case part == "":
			return nil, &Error{
				Code:    ErrCodeInvalidPath,
				Path:    s,
				Message: "empty segment at position " + strconv.Itoa(i),
			}
		case part == "*":
			p = append(p, Wildcard())
		default:
			p = append(p, ForKey(part))
		}
	}
	return p, nil
}

// parseIndex accepts canonical non-negative decimals only, so that
// Index(i).String() round-trips to the same text.
func parseIndex(s string) (int, bool) {
	if s == "" || len(s) > 18 {
		return 0, false
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// String joins the segments with dots. The root path renders as "".
func (p Path) String() string {
	switch len(p) {
	case 0:
		return ""
	case 1:
		return p[0].String()
	}
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Child returns a new path with seg appended. p is not modified.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Parent returns p without its last segment. The root's parent is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Last returns the final segment. It panics on the root path.
func (p Path) Last() Segment {
	return p[len(p)-1]
}

// IsPattern reports whether p contains a wildcard.
func (p Path) IsPattern() bool {
	for _, seg := range p {
		if seg.Kind == KindWildcard {
			return true
		}
	}
	return false
}

// Equal reports whether p and q address the same location.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	return p.HasPrefix(q)
}

// HasPrefix reports whether prefix is p itself or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, seg := range prefix {
		if !sameSegment(seg, p[i]) {
			return false
		}
	}
	return true
}

// Match reports whether the concrete path p matches pattern. Both must have
// the same number of segments; "*" in the pattern matches any one segment.
func Match(pattern, p Path) bool {
	if len(pattern) != len(p) {
		return false
	}
	for i, seg := range pattern {
		if seg.Kind == KindWildcard {
			continue
		}
		if !sameSegment(seg, p[i]) {
			return false
		}
	}
	return true
}

func sameSegment(a, b Segment) bool {
	if a.Kind == b.Kind {
		return a.Key == b.Key && a.Index == b.Index
	}
	// Hand-built paths may spell an index as a key.
	return a.Kind != KindWildcard && b.Kind != KindWildcard && a.objectKey() == b.objectKey()
}
