// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"go-quickstart/config"

	"gopkg.in/gomail.v2"
)

//go:generate mockgen -destination=mock_mailer.go -package=mail go-quickstart/internal/mail Mailer

type Mailer interface {
	SendOTP(to, otp string) error
	SendWithAttachment(to, subject, text string, attachment []byte, filename string) error
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: Helvetica,Arial,sans-serif;line-height:2">
  <div style="margin:50px auto;width:70%;padding:20px 0">
    <p style="font-size:1.1em">Hi,</p>
    <p>You are receiving this because you (or someone else) have requested the reset of the password for your account. OTP is valid for {{.Minutes}} minutes</p>
    <h2 style="background: #00466a;margin: 0 auto;width: max-content;padding: 0 10px;color: #fff;border-radius: 4px;">{{.OTP}}</h2>
    <p style="font-size:0.9em;">Regards,<br />{{.Sender}}</p>
  </div>
</div>`))

type SMTPMailer struct {
	sender     Sender
	from       string
	senderName string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return NewWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass), cfg)
}

func NewWithSender(sender Sender, cfg config.MailConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{sender: sender, from: from, senderName: cfg.SenderName}
}

func (m *SMTPMailer) newMessage(to, subject string) *gomail.Message {
	msg := gomail.NewMessage()
	if m.senderName != "" {
		msg.SetAddressHeader("From", m.from, m.senderName)
	} else {
		msg.SetHeader("From", m.from)
	}
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	return msg
}

func (m *SMTPMailer) SendOTP(to, otp string) error {
	var body bytes.Buffer
	err := otpTemplate.Execute(&body, map[string]interface{}{
		"OTP":     otp,
		"Minutes": 5,
		"Sender":  m.senderName,
	})
	if err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}

	msg := m.newMessage(to, "Password Reset OTP")
	msg.SetBody("text/html", body.String())
	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) SendWithAttachment(to, subject, text string, attachment []byte, filename string) error {
	if filename == "" {
		filename = "attachment.txt"
	}
	msg := m.newMessage(to, subject)
	msg.SetBody("text/plain", text)
	if len(attachment) > 0 {
		msg.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}))
	}
	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
