package mailer

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engdahman/conference-app/internal/config"
	"github.com/engdahman/conference-app/internal/models"
)

func TestSendTicketDisabledIsNoop(t *testing.T) {
	m := New(config.EmailConfig{Disabled: true, SMTPHost: "smtp.example.com"}, "Conf", nil)
	err := m.SendTicket(models.Attendee{Email: "x@example.com"}, "")
	assert.NoError(t, err)

	m = New(config.EmailConfig{}, "Conf", nil)
	err = m.SendTicket(models.Attendee{Email: "x@example.com"}, "")
	assert.NoError(t, err)
}

func TestDecodeDataURL(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	raw, ok := decodeDataURL(dataURL)
	require.True(t, ok)
	assert.Equal(t, payload, raw)

	_, ok = decodeDataURL("nonsense")
	assert.False(t, ok)

	_, ok = decodeDataURL("data:image/png;base64,!!!not-base64!!!")
	assert.False(t, ok)
}

func TestTicketBodyMentionsCode(t *testing.T) {
	m := New(config.EmailConfig{}, "GopherConf", nil)
	body := m.ticketBody(models.Attendee{FullName: "Sara", TicketCode: "Y7K2M4A"})
	assert.Contains(t, body, "Y7K2M4A")
	assert.Contains(t, body, "GopherConf")
	assert.Contains(t, body, "cid:qr.png")
}
