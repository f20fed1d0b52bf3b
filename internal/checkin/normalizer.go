package checkin

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// Kind classifies what a scanned or typed string most likely is.
type Kind int

const (
	KindCode Kind = iota
	KindEmail
	KindPhone
)

func (k Kind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindPhone:
		return "phone"
	default:
		return "code"
	}
}

// Identifier is the normalizer output: a classified kind plus the ordered,
// deduplicated candidate values the lookup is willing to accept as equivalent
// to the raw input. Candidates is empty only for empty/whitespace input.
type Identifier struct {
	Kind       Kind
	Candidates []string
}

// Rules carries the deployment-specific phone conventions: the international
// calling code attendees register with and the leading digit(s) of local
// mobile numbers.
type Rules struct {
	CountryCode  string
	MobilePrefix string
}

func DefaultRules() Rules {
	return Rules{CountryCode: "966", MobilePrefix: "5"}
}

var (
	likelyPhoneRe = regexp.MustCompile(`^\+?\d{8,15}$`)
	localPhoneRe  = regexp.MustCompile(`^0\d{8,14}$`)
	absoluteURLRe = regexp.MustCompile(`(?i)^https?://`)
	codeLabelRe   = regexp.MustCompile(`(?i)^CODE[:=]`)
	tktLabelRe    = regexp.MustCompile(`(?i)^TKT[-_]`)
	tktPrefixRe   = regexp.MustCompile(`^TKT[-_]?`)
	pathSegmentRe = regexp.MustCompile(`^[A-Za-z0-9-]{4,}$`)
)

// Normalize classifies raw input and canonicalizes it into lookup candidates.
// It never fails: unparseable input comes back as KindCode with whatever
// survived canonicalization, and empty input yields an empty candidate set.
//
// Classification order (first match wins): anything containing '@' is an
// email; anything that is 8-15 digits once noise is stripped is a phone;
// everything else is treated as a ticket code.
func Normalize(raw string, rules Rules) Identifier {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Identifier{Kind: KindCode}
	}

	if strings.Contains(trimmed, "@") {
		// Case folding is deferred to the lookup, which matches email
		// case-insensitively.
		return Identifier{Kind: KindEmail, Candidates: []string{trimmed}}
	}

	if phone := normalizePhoneRaw(trimmed); likelyPhoneRe.MatchString(phone) {
		return Identifier{Kind: KindPhone, Candidates: phoneVariants(phone, rules)}
	}

	return Identifier{Kind: KindCode, Candidates: codeCandidates(trimmed)}
}

// codeCandidates canonicalizes a ticket code and expands it into the stored
// spellings we tolerate: scanners hand us URL-wrapped codes, label prefixes
// (CODE:, TKT-), Arabic-Indic digits and stray whitespace, while the database
// may hold either the bare code or a TKT-prefixed one.
func codeCandidates(raw string) []string {
	s := raw
	if decoded, err := url.QueryUnescape(s); err == nil {
		s = decoded
	}
	s = extractFromURLIfAny(s)
	s = foldArabicDigits(s)
	s = stripWhitespace(s)
	s = codeLabelRe.ReplaceAllString(s, "")
	s = tktLabelRe.ReplaceAllString(s, "")
	s = strings.ToUpper(s)
	if s == "" {
		return nil
	}

	bare := tktPrefixRe.ReplaceAllString(s, "")
	return dedupe([]string{s, bare, "TKT-" + bare, "TKT_" + bare})
}

// extractFromURLIfAny pulls the code out of a scanned ticket URL. Query
// parameters code, ticket and t are checked in that order; failing those, the
// last path segment is used when it looks like a code. Anything that does not
// parse falls through to the original string.
func extractFromURLIfAny(raw string) string {
	s := strings.TrimSpace(raw)
	if !absoluteURLRe.MatchString(s) {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	for _, param := range []string{"code", "ticket", "t"} {
		if v := u.Query().Get(param); v != "" {
			return v
		}
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		if pathSegmentRe.MatchString(segments[i]) {
			return segments[i]
		}
		break
	}
	return s
}

// normalizePhoneRaw folds Arabic-Indic digits, strips everything but digits
// and '+', and rewrites a leading 00 international prefix to '+'.
func normalizePhoneRaw(raw string) string {
	s := foldArabicDigits(raw)
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	return s
}

// phoneVariants expands a normalized phone number into the spellings it may
// be stored under: with/without '+', local 0-prefixed form and the
// country-code form, in both directions.
func phoneVariants(s string, rules Rules) []string {
	if s == "" {
		return nil
	}
	variants := []string{s}
	if strings.HasPrefix(s, "+") {
		variants = append(variants, s[1:])
	}
	if localPhoneRe.MatchString(s) {
		rest := s[1:]
		variants = append(variants, rules.CountryCode+rest, "+"+rules.CountryCode+rest)
	}
	if subscriber, ok := strings.CutPrefix(strings.TrimPrefix(s, "+"), rules.CountryCode); ok {
		if len(subscriber) >= 9 && strings.HasPrefix(subscriber, rules.MobilePrefix) {
			variants = append(variants, "0"+subscriber)
		}
	}
	// Every '+'-prefixed variant is also acceptable bare.
	for _, v := range variants {
		if strings.HasPrefix(v, "+") {
			variants = append(variants, v[1:])
		}
	}
	return dedupe(variants)
}

// foldArabicDigits maps the Arabic-Indic digits U+0660..U+0669 onto 0-9.
func foldArabicDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '٠' && r <= '٩' {
			return '0' + (r - '٠')
		}
		return r
	}, s)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// dedupe removes duplicates while keeping first-seen order, so the most
// likely candidate stays in front.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
