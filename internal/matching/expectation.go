package matching

import (
	"fmt"
	"regexp"
	"strings"
)

// NegateToken prefixes a string expectation to invert its comparison.
const NegateToken = "!!"

// Expectation is a value a request field is compared against. It is either
// a literal, compared for equality, or a pattern, matched by regex search.
// The kind is fixed when the expectation is parsed.
type Expectation struct {
	literal string
	pattern *regexp.Regexp
	negate  bool
	fold    bool
}

// Literal returns an expectation requiring exact equality with s.
func Literal(s string) Expectation {
	return Expectation{literal: s}
}

// Pattern returns an expectation matched by searching with re.
func Pattern(re *regexp.Regexp) Expectation {
	return Expectation{pattern: re}
}

// IsRegexLiteral reports whether s is written as re/<pattern>/.
func IsRegexLiteral(s string) bool {
	return len(s) > 3 && strings.HasPrefix(s, "re/") && strings.HasSuffix(s, "/")
}

// ParseExpectation converts v into an Expectation. Strings may carry the
// negation token and may be written as a regex literal; a *regexp.Regexp is
// used as a pattern as-is; byte slices are treated as strings. Other scalar
// values are formatted with fmt.
func ParseExpectation(v any) (Expectation, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return Expectation{}, nil
	case Expectation:
		return x, nil
	case *regexp.Regexp:
		if x == nil {
			return Expectation{}, nil
		}
		return Pattern(x), nil
	case string:
		s = x
	case []byte:
		s = string(x)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}

	var e Expectation
	if strings.HasPrefix(s, NegateToken) {
		e.negate = true
		s = strings.TrimLeft(s[len(NegateToken):], " \t")
	}
	if IsRegexLiteral(s) {
		re, err := regexp.Compile(s[3 : len(s)-1])
		if err != nil {
			return Expectation{}, invalidf("bad pattern %q: %v", s, err)
		}
		e.pattern = re
		return e, nil
	}
	e.literal = s
	return e, nil
}

// MustParseExpectation is like ParseExpectation but panics on error.
func MustParseExpectation(v any) Expectation {
	e, err := ParseExpectation(v)
	if err != nil {
		panic(err)
	}
	return e
}

// IsZero reports whether the expectation is empty. Empty expectations pass
// every comparison.
func (e Expectation) IsZero() bool {
	return e.literal == "" && e.pattern == nil && !e.negate
}

// IsPattern reports whether the expectation is matched by regex.
func (e Expectation) IsPattern() bool { return e.pattern != nil }

// Negated reports whether the expectation carried the negation token.
func (e Expectation) Negated() bool { return e.negate }

// FoldCase returns a copy whose literal comparison ignores case.
func (e Expectation) FoldCase() Expectation {
	e.fold = true
	return e
}

// Test reports whether value satisfies the expectation.
func (e Expectation) Test(value string) bool {
	return e.Compare(value) == nil
}

// Compare checks value against the expectation. An empty expectation
// passes. A non-empty expectation never matches an empty value, even when
// negated. The returned error is a *MismatchError.
func (e Expectation) Compare(value string) error {
	return e.CompareField("", value)
}

// CompareField is Compare with subject naming the compared field in the
// mismatch explanation.
func (e Expectation) CompareField(subject, value string) error {
	if e.IsZero() {
		return nil
	}
	if value == "" {
		return &MismatchError{Subject: subject, Expected: e.String()}
	}
	ok := e.test(value)
	if e.negate {
		ok = !ok
	}
	if ok {
		return nil
	}
	return &MismatchError{
		Subject:  subject,
		Expected: e.body(),
		Actual:   value,
		Negated:  e.negate,
	}
}

func (e Expectation) test(value string) bool {
	if e.pattern != nil {
		return e.pattern.MatchString(value)
	}
	if e.fold {
		return strings.EqualFold(e.literal, value)
	}
	return e.literal == value
}

func (e Expectation) body() string {
	if e.pattern != nil {
		return "re/" + e.pattern.String() + "/"
	}
	return e.literal
}

// String renders the expectation in the form it would be parsed from.
func (e Expectation) String() string {
	if e.negate {
		return NegateToken + e.body()
	}
	return e.body()
}
