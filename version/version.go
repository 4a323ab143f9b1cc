// Package version implements Mozilla-specific version string parsing and
// ordering. Version strings are treated as loose dotted sequences of numeric
// and alphabetic tokens ("46.0", "46.0b3", "2.0.1esr"), not as semver:
// beta/rc/build markers and the "esr" suffix are ordinary tokens, which is
// what the downstream sort discipline depends on.
package version

import (
	"strconv"
	"strings"
)

// token is one component of a parsed version: either a number or a run of
// letters. Exactly one of num/str is meaningful, selected by isNum.
type token struct {
	num   int
	str   string
	isNum bool
}

// Version is a parsed version string. The zero value compares equal to "0".
type Version struct {
	raw    string
	tokens []token
}

// Parse tokenizes a version string. Parsing is best-effort and never fails:
// malformed input degrades to whatever numeric and alphabetic runs it
// contains, matching loose-version convention.
func Parse(s string) Version {
	v := Version{raw: s}

	var cur strings.Builder
	var curIsDigit bool
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		text := cur.String()
		cur.Reset()
		if curIsDigit {
			n, err := strconv.Atoi(text)
			if err == nil {
				v.tokens = append(v.tokens, token{num: n, isNum: true})
				return
			}
		}
		v.tokens = append(v.tokens, token{str: text})
	}

	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if cur.Len() > 0 && !curIsDigit {
				flush()
			}
			curIsDigit = true
			cur.WriteRune(r)
		case r == '.' || r == ' ' || r == '-':
			flush()
		default:
			if cur.Len() > 0 && curIsDigit {
				flush()
			}
			curIsDigit = false
			cur.WriteRune(r)
		}
	}
	flush()

	return v
}

// String returns the original version string.
func (v Version) String() string {
	return v.raw
}

// IsESR reports whether the version carries the esr suffix token.
func (v Version) IsESR() bool {
	for _, t := range v.tokens {
		if !t.isNum && t.str == "esr" {
			return true
		}
	}
	return false
}

// Prerelease returns the alpha/beta marker ("a1", "a2", "b3") if one is
// present, or the empty string for a final release.
func (v Version) Prerelease() string {
	for i, t := range v.tokens {
		if t.isNum || (t.str != "a" && t.str != "b") {
			continue
		}
		if i+1 < len(v.tokens) && v.tokens[i+1].isNum {
			return t.str + strconv.Itoa(v.tokens[i+1].num)
		}
		return t.str
	}
	return ""
}

// Numbers returns the leading numeric components, stopping at the first
// non-numeric token ("46.0b3" yields [46, 0]).
func (v Version) Numbers() []int {
	var nums []int
	for _, t := range v.tokens {
		if !t.isNum {
			break
		}
		nums = append(nums, t.num)
	}
	return nums
}

// Compare defines the total order over versions. It returns a negative
// number, zero, or a positive number as v sorts before, equal to, or after
// other.
//
// The "esr" token is excluded from comparison only when both versions carry
// it, so "2.0.1esr" vs "2.0.2esr" compares purely on digits while
// "2.0" vs "2.0esr" keeps the suffix and yields "2.0" < "2.0esr". This
// asymmetry is load-bearing for ESR channel sorts and must not be
// normalized away.
func (v Version) Compare(other Version) int {
	a, b := v.tokens, other.tokens
	if v.IsESR() && other.IsESR() {
		a, b = stripESR(a), stripESR(b)
	}
	return compareTokens(a, b)
}

// Less reports whether v sorts strictly before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Compare orders two raw version strings.
func Compare(a, b string) int {
	return Parse(a).Compare(Parse(b))
}

// Less reports whether raw version string a sorts strictly before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Max returns the greater of two raw version strings. On a tie it returns b.
func Max(a, b string) string {
	if Compare(a, b) > 0 {
		return a
	}
	return b
}

func stripESR(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for _, t := range tokens {
		if !t.isNum && t.str == "esr" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// compareTokens walks both sequences element-wise. A missing trailing
// component counts as 0, so "2.0" and "2.0.0" are equal. Numeric tokens sort
// before alphabetic ones, which places "46.0" before "46.0b3" and before
// "46.0esr".
func compareTokens(a, b []token) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		at, bt := token{isNum: true}, token{isNum: true}
		if i < len(a) {
			at = a[i]
		}
		if i < len(b) {
			bt = b[i]
		}
		if c := compareToken(at, bt); c != 0 {
			return c
		}
	}
	return 0
}

func compareToken(a, b token) int {
	switch {
	case a.isNum && b.isNum:
		return a.num - b.num
	case a.isNum:
		return -1
	case b.isNum:
		return 1
	default:
		return strings.Compare(a.str, b.str)
	}
}
