// Package mailer delivers the welcome email carrying a registrant's QR code.
// Delivery is strictly best-effort: the registration and check-in paths never
// wait on, or fail because of, the mail server.
package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/rs/zerolog"
)

// Mailer holds SMTP settings. An empty Host disables sending altogether,
// which is the default for kiosks without internet access.
type Mailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
	log  *zerolog.Logger
}

// New builds a mailer; log must not be nil.
func New(host string, port int, user, pass, from string, log *zerolog.Logger) *Mailer {
	return &Mailer{Host: host, Port: port, User: user, Pass: pass, From: from, log: log}
}

// Enabled reports whether the mailer is configured to actually send.
func (m *Mailer) Enabled() bool { return m.Host != "" && m.From != "" }

// SendQRAsync dispatches the welcome email on its own goroutine. Errors are
// logged at warn level and swallowed; the caller has already responded to the
// user by the time delivery settles.
func (m *Mailer) SendQRAsync(recipient, name string, qrPNG []byte) {
	if !m.Enabled() || recipient == "" {
		return
	}
	go func() {
		if err := m.SendQR(recipient, name, qrPNG); err != nil {
			m.log.Warn().Err(err).Str("recipient", recipient).Msg("qr email delivery failed")
			return
		}
		m.log.Info().Str("recipient", recipient).Msg("qr email sent")
	}()
}

// SendQR sends an HTML welcome email with the QR PNG attached.
func (m *Mailer) SendQR(recipient, name string, qrPNG []byte) error {
	attachment := strings.ReplaceAll(name, " ", "_") + ".png"
	msg, err := m.compose(recipient, name, attachment, qrPNG)
	if err != nil {
		return fmt.Errorf("compose email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (m *Mailer) compose(recipient, name, attachmentName string, qrPNG []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	fmt.Fprintf(&buf, "To: %s\r\n", recipient)
	fmt.Fprintf(&buf, "Subject: Welcome - Your Check-in QR Code\r\n")
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", w.Boundary())

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=utf-8")
	part, err := w.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(part, `<html><body style="font-family: Arial, sans-serif; color: #333; line-height: 1.6;">
<h2>Hi %s,</h2>
<p>Welcome! Your QR code for check-in is attached to this email.</p>
<p>Please bring it with you upon entrance for fast and easy check-in.</p>
</body></html>`, name)

	imgHeader := textproto.MIMEHeader{}
	imgHeader.Set("Content-Type", "image/png")
	imgHeader.Set("Content-Transfer-Encoding", "base64")
	imgHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentName))
	part, err = w.CreatePart(imgHeader)
	if err != nil {
		return nil, err
	}
	enc := base64.NewEncoder(base64.StdEncoding, part)
	if _, err := enc.Write(qrPNG); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
