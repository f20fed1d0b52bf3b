package registration

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketCodeShape(t *testing.T) {
	codeRe := regexp.MustCompile(`^Y[0-9A-Z]{6}$`)
	for i := 0; i < 100; i++ {
		code, err := NewTicketCode()
		require.NoError(t, err)
		assert.Regexp(t, codeRe, code)
	}
}

func TestNewTicketCodeIsRandom(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		code, err := NewTicketCode()
		require.NoError(t, err)
		seen[code] = true
	}
	// 36^6 keyspace: 500 draws colliding would indicate broken randomness.
	assert.Greater(t, len(seen), 490)
}
