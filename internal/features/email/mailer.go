package email

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"

	"board-sync/internal/common/apperr"
	"board-sync/internal/config"
)

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg  config.SMTPConfig
	send sendFunc
}

func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &SMTPMailer{
		cfg:  cfg,
		send: smtp.SendMail,
	}
}

func (m *SMTPMailer) from() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return m.cfg.Username
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Host == "" || m.cfg.Port == 0 {
		return apperr.E(apperr.KindFailedPrecondition, "send mail", errors.New("missing smtp host or port"))
	}
	if len(msg.To) == 0 {
		return apperr.E(apperr.KindFailedPrecondition, "send mail", errors.New("no recipients"))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	from := m.from()
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, from, msg.To, buildMessage(from, msg)); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return apperr.E(apperr.KindUnavailable, "send mail", err)
		}
		return apperr.E(apperr.KindInternal, "send mail", err)
	}
	return nil
}

func buildMessage(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HtmlBody)
	return []byte(b.String())
}
