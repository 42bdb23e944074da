package maven

import (
	"strconv"
	"strings"

	"github.com/caravel-cli/caravel/pkg/errors"
)

// Floating version markers resolved against maven-metadata.xml.
const (
	VersionLatest  = "LATEST"
	VersionRelease = "RELEASE"
)

// CompareVersions implements the Maven version total order.
//
// Versions are tokenized on '.', '-' and '_' and at digit/letter transitions;
// numeric tokens compare numerically and qualifier tokens by the Maven
// ranking alpha < beta < milestone < rc < snapshot < (empty|ga|final|release)
// < sp < other. A missing version sorts lower than any present version.
// Returns -1, 0, or 1.
func CompareVersions(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}

	ta, tb := tokenize(a), tokenize(b)
	n := max(len(ta), len(tb))
	for i := range n {
		var left, right versionToken
		if i < len(ta) {
			left = ta[i]
		}
		if i < len(tb) {
			right = tb[i]
		}
		if c := left.compare(right); c != 0 {
			return c
		}
	}
	return 0
}

// IsHigherThan reports whether a sorts strictly after b.
func IsHigherThan(a, b string) bool {
	return CompareVersions(a, b) > 0
}

// IsFloating reports whether the version requires metadata resolution
// before a concrete artifact can be fetched: empty, LATEST, RELEASE, or
// a version range.
func IsFloating(v string) bool {
	return v == "" || v == VersionLatest || v == VersionRelease || IsRange(v)
}

// qualifier ranking per the Maven version ordering. The zero token is a
// numeric 0, which doubles as the padding value for shorter versions.
const releaseRank = 6

var qualifierRanks = map[string]int{
	"alpha":     1,
	"a":         1,
	"beta":      2,
	"b":         2,
	"milestone": 3,
	"m":         3,
	"rc":        4,
	"cr":        4,
	"snapshot":  5,
	"":          releaseRank,
	"ga":        releaseRank,
	"final":     releaseRank,
	"release":   releaseRank,
	"sp":        7,
}

type versionToken struct {
	num       int
	qualifier string
	isNum     bool
	present   bool
}

func (t versionToken) compare(o versionToken) int {
	// Absent positions pad as numeric zero against numbers and as the
	// release qualifier against qualifiers ("1.0" == "1", "1.1" > "1.1-alpha").
	switch {
	case t.isNumeric() && o.isNumeric():
		return cmp(t.number(), o.number())
	case t.isNumeric():
		// Numbers sort after any qualifier ("1.1.1" > "1.1-sp").
		if !t.present && o.rank() != releaseRank {
			return cmp(releaseRank, o.rank())
		}
		if !t.present {
			return 0
		}
		return 1
	case o.isNumeric():
		if !o.present && t.rank() != releaseRank {
			return cmp(t.rank(), releaseRank)
		}
		if !o.present {
			return 0
		}
		return -1
	default:
		if c := cmp(t.rank(), o.rank()); c != 0 {
			return c
		}
		// Unknown qualifiers with equal rank compare lexically.
		return strings.Compare(t.qualifier, o.qualifier)
	}
}

func (t versionToken) isNumeric() bool { return !t.present || t.isNum }
func (t versionToken) number() int     { return t.num }

func (t versionToken) rank() int {
	if !t.present {
		return releaseRank
	}
	if r, ok := qualifierRanks[t.qualifier]; ok {
		return r
	}
	return 8
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// tokenize splits a normalized version string into comparable tokens.
func tokenize(v string) []versionToken {
	v = strings.ToLower(strings.TrimSpace(v))

	var tokens []versionToken
	var buf strings.Builder
	bufIsNum := false

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		s := buf.String()
		buf.Reset()
		if bufIsNum {
			n, _ := strconv.Atoi(s)
			tokens = append(tokens, versionToken{num: n, isNum: true, present: true})
		} else {
			tokens = append(tokens, versionToken{qualifier: s, present: true})
		}
	}

	for _, r := range v {
		switch {
		case r == '.' || r == '-' || r == '_':
			flush()
		case r >= '0' && r <= '9':
			if buf.Len() > 0 && !bufIsNum {
				flush()
			}
			bufIsNum = true
			buf.WriteRune(r)
		default:
			if buf.Len() > 0 && bufIsNum {
				flush()
			}
			bufIsNum = false
			buf.WriteRune(r)
		}
	}
	flush()

	// Trailing zero and release tokens are insignificant ("1.0.0" == "1").
	for len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		if (last.isNum && last.num == 0) || (!last.isNum && last.rank() == releaseRank) {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		break
	}
	return tokens
}

// IsRange reports whether the version string is a Maven version range
// ("[1.0,2.0)", "(,1.5]", "[1.0]", ...).
func IsRange(v string) bool {
	return strings.HasPrefix(v, "[") || strings.HasPrefix(v, "(")
}

// interval is one bracketed segment of a version range.
type interval struct {
	lower, upper       string
	lowerInc, upperInc bool
}

func (iv interval) contains(v string) bool {
	if iv.lower != "" {
		c := CompareVersions(v, iv.lower)
		if c < 0 || (c == 0 && !iv.lowerInc) {
			return false
		}
	}
	if iv.upper != "" {
		c := CompareVersions(v, iv.upper)
		if c > 0 || (c == 0 && !iv.upperInc) {
			return false
		}
	}
	return true
}

// ParseRange parses a Maven version range into its intervals. Ranges are
// unions of comma-separated bracketed intervals: "(,1.0],[1.2,)" accepts
// anything at most 1.0 or at least 1.2.
func ParseRange(s string) ([]interval, error) {
	var intervals []interval
	rest := strings.TrimSpace(s)

	for rest != "" {
		if rest[0] != '[' && rest[0] != '(' {
			return nil, errors.New(errors.ErrCodeInvalidCoordinate, "malformed version range %q", s)
		}
		end := strings.IndexAny(rest, "])")
		if end < 0 {
			return nil, errors.New(errors.ErrCodeInvalidCoordinate, "unterminated version range %q", s)
		}

		iv := interval{
			lowerInc: rest[0] == '[',
			upperInc: rest[end] == ']',
		}
		inner := rest[1:end]
		if comma := strings.Index(inner, ","); comma >= 0 {
			iv.lower = strings.TrimSpace(inner[:comma])
			iv.upper = strings.TrimSpace(inner[comma+1:])
		} else {
			// "[1.0]" pins exactly that version.
			v := strings.TrimSpace(inner)
			iv.lower, iv.upper = v, v
			iv.lowerInc, iv.upperInc = true, true
		}
		intervals = append(intervals, iv)

		rest = strings.TrimSpace(rest[end+1:])
		rest = strings.TrimPrefix(rest, ",")
		rest = strings.TrimSpace(rest)
	}

	if len(intervals) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCoordinate, "empty version range %q", s)
	}
	return intervals, nil
}

// RangeContains reports whether v satisfies the version range expression.
// A malformed range matches nothing.
func RangeContains(rangeExpr, v string) bool {
	intervals, err := ParseRange(rangeExpr)
	if err != nil {
		return false
	}
	for _, iv := range intervals {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

// HighestInRange returns the highest of versions satisfying the range,
// or false if none do.
func HighestInRange(rangeExpr string, versions []string) (string, bool) {
	best := ""
	found := false
	for _, v := range versions {
		if !RangeContains(rangeExpr, v) {
			continue
		}
		if !found || IsHigherThan(v, best) {
			best = v
			found = true
		}
	}
	return best, found
}
