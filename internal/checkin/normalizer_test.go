package checkin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		ident := Normalize(raw, DefaultRules())
		assert.Equal(t, KindCode, ident.Kind)
		assert.Empty(t, ident.Candidates, "input %q should produce no candidates", raw)
	}
}

func TestNormalizeEmail(t *testing.T) {
	ident := Normalize("  Sara@Example.COM ", DefaultRules())
	require.Equal(t, KindEmail, ident.Kind)
	require.Len(t, ident.Candidates, 1)
	// Preserved verbatim; the lookup matches case-insensitively.
	assert.Equal(t, "Sara@Example.COM", ident.Candidates[0])
}

func TestNormalizeCodeEquivalentSpellings(t *testing.T) {
	// Every spelling a scanner or a hurried volunteer produces for the same
	// ticket must canonicalize to the same candidate set.
	inputs := []string{
		"Y7K2M4A",
		"y7k2m4a",
		"  Y7K2 M4A ",
		"TKT-Y7K2M4A",
		"tkt_y7k2m4a",
		"CODE:Y7K2M4A",
		"code=y7k2m4a",
		"https://conf.example.com/t/Y7K2M4A",
		"https://conf.example.com/checkin?code=Y7K2M4A",
		"https://conf.example.com/checkin?ticket=y7k2m4a&x=1",
		"https%3A%2F%2Fconf.example.com%2Fcheckin%3Fcode%3DY7K2M4A",
	}

	want := []string{"Y7K2M4A", "TKT-Y7K2M4A", "TKT_Y7K2M4A"}
	for _, raw := range inputs {
		ident := Normalize(raw, DefaultRules())
		require.Equal(t, KindCode, ident.Kind, "input %q", raw)
		assert.Equal(t, want, ident.Candidates, "input %q", raw)
	}
}

func TestNormalizeCodeKeepsPrefixedFirstWhenStoredPrefixed(t *testing.T) {
	ident := Normalize("TKT-Y7K2M4A", DefaultRules())
	require.Equal(t, KindCode, ident.Kind)
	// Canonical form first, bare second, underscore spelling last.
	assert.Equal(t, []string{"Y7K2M4A", "TKT-Y7K2M4A", "TKT_Y7K2M4A"}, ident.Candidates)
}

func TestNormalizeCodeArabicDigits(t *testing.T) {
	latin := Normalize("Y7K2M4A", DefaultRules())
	arabic := Normalize("Y٧K٢M٤A", DefaultRules())
	require.Equal(t, KindCode, arabic.Kind)
	assert.Equal(t, latin.Candidates, arabic.Candidates)
}

func TestNormalizeCodeURLWithoutCodeFallsThrough(t *testing.T) {
	// No recognized query param and no plausible path segment: the whole
	// string survives canonicalization (uppercased, whitespace stripped).
	ident := Normalize("https://conf.example.com/?session=9", DefaultRules())
	require.Equal(t, KindCode, ident.Kind)
	assert.NotEmpty(t, ident.Candidates)
}

func TestNormalizePhoneLocalForm(t *testing.T) {
	ident := Normalize("0501234567", DefaultRules())
	require.Equal(t, KindPhone, ident.Kind)
	assert.Equal(t, []string{"0501234567", "966501234567", "+966501234567"}, ident.Candidates)
}

func TestNormalizePhoneInternationalForms(t *testing.T) {
	for _, raw := range []string{"+966501234567", "00966501234567", "+966 50 123 4567"} {
		ident := Normalize(raw, DefaultRules())
		require.Equal(t, KindPhone, ident.Kind, "input %q", raw)
		assert.Equal(t, []string{"+966501234567", "966501234567", "0501234567"}, ident.Candidates, "input %q", raw)
	}
}

func TestNormalizePhoneArabicDigits(t *testing.T) {
	ident := Normalize("٠٥٠١٢٣٤٥٦٧", DefaultRules())
	require.Equal(t, KindPhone, ident.Kind)
	assert.Equal(t, []string{"0501234567", "966501234567", "+966501234567"}, ident.Candidates)
}

func TestNormalizePhoneForeignCountryCodeNoLocalVariant(t *testing.T) {
	ident := Normalize("+14155550123", DefaultRules())
	require.Equal(t, KindPhone, ident.Kind)
	assert.Equal(t, []string{"+14155550123", "14155550123"}, ident.Candidates)
}

func TestNormalizePhoneRespectsConfiguredRules(t *testing.T) {
	rules := Rules{CountryCode: "20", MobilePrefix: "1"}
	ident := Normalize("01012345678", rules)
	require.Equal(t, KindPhone, ident.Kind)
	assert.Equal(t, []string{"01012345678", "201012345678", "+201012345678"}, ident.Candidates)
}

func TestNormalizeShortDigitStringIsCode(t *testing.T) {
	// Seven digits is below the phone threshold, so it resolves as a code.
	ident := Normalize("1234567", DefaultRules())
	assert.Equal(t, KindCode, ident.Kind)
}

func TestNormalizeCandidatesDeduplicated(t *testing.T) {
	ident := Normalize("TKT-TKT_X", DefaultRules())
	seen := map[string]int{}
	for _, c := range ident.Candidates {
		seen[c]++
	}
	for c, n := range seen {
		assert.Equal(t, 1, n, "candidate %q appears %d times", c, n)
	}
}
