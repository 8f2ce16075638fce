package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"newsroom/internal/config"
)

// Message is a single outbound email with exactly one recipient.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Transport delivers a message. Implementations must be safe to call sequentially
// from many requests.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPTransport delivers mail through an authenticated SMTP relay.
type SMTPTransport struct {
	cfg         config.SMTP
	fromName    string
	dialTimeout time.Duration
	// ioTimeout bounds the whole SMTP conversation after the dial.
	ioTimeout time.Duration
}

func NewSMTPTransport(cfg config.SMTP, fromName string) *SMTPTransport {
	return &SMTPTransport{cfg: cfg, fromName: fromName, dialTimeout: 10 * time.Second, ioTimeout: 30 * time.Second}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(t.cfg.Host, t.cfg.Port)

	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	deadline := time.Now().Add(t.ioTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("smtp deadline: %w", err)
	}

	var client *smtp.Client
	if t.cfg.Port == "465" {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: t.cfg.Host})
		client, err = smtp.NewClient(tlsConn, t.cfg.Host)
	} else {
		client, err = smtp.NewClient(conn, t.cfg.Host)
	}
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: t.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(t.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(buildMIME(t.fromName, t.cfg.From, msg)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end data: %w", err)
	}
	return client.Quit()
}

func buildMIME(fromName, from string, msg Message) []byte {
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", fromName), from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogTransport is used when SMTP is not configured: it logs and drops mail.
type LogTransport struct {
	Logger *slog.Logger
}

func (t LogTransport) Send(_ context.Context, msg Message) error {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail disabled, message dropped", "to", msg.To, "subject", msg.Subject)
	return nil
}

// MailService renders email templates and hands messages to a Transport.
type MailService struct {
	transport Transport
	templates *template.Template
}

// NewMailService parses every email/*.html template found in templates.
func NewMailService(transport Transport, templates fs.FS) (*MailService, error) {
	t, err := template.New("email").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string { return t.Format("02.01.2006 15:04") },
	}).ParseFS(templates, "templates/email/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &MailService{transport: transport, templates: t}, nil
}

// NewTransport picks the SMTP transport when it is fully configured.
func NewTransport(cfg *config.Config, logger *slog.Logger) Transport {
	if !cfg.SMTP.Enabled() {
		logger.Warn("MailService disabled: missing SMTP settings")
		return LogTransport{Logger: logger}
	}
	return NewSMTPTransport(cfg.SMTP, cfg.AppName)
}

func (s *MailService) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// SendHTML renders the named template and sends it to a single recipient.
func (s *MailService) SendHTML(ctx context.Context, to, subject, templateName string, data any) error {
	body, err := s.render(templateName, data)
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, Message{To: to, Subject: subject, Body: body, HTML: true})
}

// SendText sends a plain-text message.
func (s *MailService) SendText(ctx context.Context, to, subject, body string) error {
	return s.transport.Send(ctx, Message{To: to, Subject: subject, Body: body})
}
