package mailer

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/engdahman/conference-app/internal/config"
	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
)

// Mailer sends the ticket confirmation email over SMTP. With no SMTP host
// configured (or EMAIL_DISABLED set) every send becomes a logged no-op, which
// keeps local development working without a mail server.
type Mailer struct {
	cfg      config.EmailConfig
	siteName string
	logger   *logger.Logger
}

func New(cfg config.EmailConfig, siteName string, log *logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, siteName: siteName, logger: log}
}

func (m *Mailer) enabled() bool {
	return !m.cfg.Disabled && m.cfg.SMTPHost != ""
}

// SendTicket delivers the ticket code and QR badge to a fresh registrant.
func (m *Mailer) SendTicket(a models.Attendee, qrDataURL string) error {
	if !m.enabled() {
		if m.logger != nil {
			m.logger.LogMail("SKIPPED", a.Email, "mail delivery disabled")
		}
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from())
	msg.SetHeader("To", a.Email)
	msg.SetHeader("Subject", fmt.Sprintf("%s - your ticket", m.siteName))
	msg.SetBody("text/html", m.ticketBody(a))

	if png, ok := decodeDataURL(qrDataURL); ok {
		msg.Embed("qr.png", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(png)
			return err
		}))
	}

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUsername, m.cfg.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send ticket mail: %w", err)
	}
	if m.logger != nil {
		m.logger.LogMail("SENT", a.Email, "ticket "+a.TicketCode)
	}
	return nil
}

func (m *Mailer) from() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return m.cfg.SMTPUsername
}

func (m *Mailer) ticketBody(a models.Attendee) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", a.FullName)
	fmt.Fprintf(&b, "<p>You are registered for %s.</p>", m.siteName)
	fmt.Fprintf(&b, "<p>Your ticket code: <strong>%s</strong></p>", a.TicketCode)
	b.WriteString(`<p><img src="cid:qr.png" alt="ticket QR" width="256" height="256"/></p>`)
	b.WriteString("<p>Show this QR at the entrance to check in.</p>")
	return b.String()
}

// decodeDataURL extracts the raw PNG bytes from a base64 image data URL.
func decodeDataURL(dataURL string) ([]byte, bool) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[len(prefix):])
	if err != nil {
		return nil, false
	}
	return raw, true
}
