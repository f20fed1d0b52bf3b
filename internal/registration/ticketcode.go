package registration

import (
	"crypto/rand"
	"fmt"
)

// ticket codes: a fixed letter prefix plus 6 characters from an unambiguous
// uppercase alphabet. The prefix guarantees codes never look like phone
// numbers to the check-in normalizer.
const (
	codePrefix   = "Y"
	codeLength   = 6
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewTicketCode returns a fresh random ticket code. Uniqueness is enforced by
// the database constraint; callers retry on conflict.
func NewTicketCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return codePrefix + string(code), nil
}
