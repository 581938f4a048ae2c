// Package pattern holds the privacy pattern library: the categories of
// personal data recognized in sampled values, the keywords that make a
// column name suspicious, and the masking applied before values leave
// the scanner.
package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// Built-in category names.
const (
	CategoryEmail         = "email"
	CategoryPhone         = "phone"
	CategoryNationalID    = "national_id"
	CategoryCardNumber    = "card_number"
	CategoryAccountNumber = "account_number"
	CategoryIPAddress     = "ip_address"
)

// Engine names understood by DefaultLibrary.
const (
	EngineMySQL  = "mysql"
	EngineOracle = "oracle"
)

var commonPatterns = []struct {
	category string
	expr     string
}{
	{CategoryEmail, `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`},
	{CategoryPhone, `(\d{2,3}-\d{3,4}-\d{4}|\d{10,11})`},
	{CategoryNationalID, `\d{6}-[1-4]\d{6}`},
	{CategoryCardNumber, `5327-\d{4}-\d{4}-\d{4}`},
	{CategoryAccountNumber, `1000-\d{8}`},
}

const ipAddressPattern = `\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`

var commonKeywords = []string{
	"name", "email", "phone", "mobile", "tel", "address", "addr",
	"ssn", "social", "birth", "birthday", "card", "account",
	"user_id", "customer", "고객", "personal", "개인",
}

var oracleKeywords = []string{
	"이름", "성명", "전화", "휴대폰", "주소", "주민", "생년월일", "카드", "계좌",
	"emp_id", "employee",
}

// Library is an ordered set of compiled category patterns plus the
// suspicious-name keywords. It is immutable once built and safe for
// concurrent use.
type Library struct {
	patterns *orderedmap.OrderedMap[string, *regexp.Regexp]
	keywords []string
}

// DefaultLibrary returns the built-in library for an engine. Oracle adds
// IP address detection and a wider keyword list.
func DefaultLibrary(engine string) *Library {
	lib := &Library{patterns: orderedmap.NewOrderedMap[string, *regexp.Regexp]()}
	for _, p := range commonPatterns {
		lib.patterns.Set(p.category, regexp.MustCompile(p.expr))
	}
	lib.keywords = append(lib.keywords, commonKeywords...)

	if strings.EqualFold(engine, EngineOracle) {
		lib.patterns.Set(CategoryIPAddress, regexp.MustCompile(ipAddressPattern))
		lib.keywords = append(lib.keywords, oracleKeywords...)
	}
	return lib
}

// WithExtra returns a copy of the library with additional categories
// appended after the built-in ones. Existing category names are replaced
// in place. Map iteration order is not stable, so extras are added in
// sorted category order.
func (l *Library) WithExtra(extra map[string]string) (*Library, error) {
	out := l.clone()
	for _, name := range sortedKeys(extra) {
		re, err := regexp.Compile(extra[name])
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for category %q: %w", name, err)
		}
		out.patterns.Set(name, re)
	}
	return out, nil
}

// WithKeywords returns a copy of the library with extra suspicious-name
// keywords. Keywords are matched case-insensitively.
func (l *Library) WithKeywords(keywords ...string) *Library {
	out := l.clone()
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || out.hasKeyword(kw) {
			continue
		}
		out.keywords = append(out.keywords, kw)
	}
	return out
}

// Categories returns category names in library order.
func (l *Library) Categories() []string {
	return l.patterns.Keys()
}

// Len returns the number of categories.
func (l *Library) Len() int {
	return l.patterns.Len()
}

// Pattern returns the compiled expression for a category.
func (l *Library) Pattern(category string) (*regexp.Regexp, bool) {
	return l.patterns.Get(category)
}

// Each calls fn for every category in library order.
func (l *Library) Each(fn func(category string, re *regexp.Regexp)) {
	for el := l.patterns.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}

// Keywords returns a copy of the suspicious-name keywords.
func (l *Library) Keywords() []string {
	return append([]string(nil), l.keywords...)
}

// IsSuspiciousName reports whether the lowercased column name contains
// any keyword.
func (l *Library) IsSuspiciousName(column string) bool {
	lower := strings.ToLower(column)
	for _, kw := range l.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (l *Library) hasKeyword(kw string) bool {
	for _, k := range l.keywords {
		if k == kw {
			return true
		}
	}
	return false
}

func (l *Library) clone() *Library {
	out := &Library{
		patterns: orderedmap.NewOrderedMap[string, *regexp.Regexp](),
		keywords: append([]string(nil), l.keywords...),
	}
	l.Each(func(category string, re *regexp.Regexp) {
		out.patterns.Set(category, re)
	})
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
