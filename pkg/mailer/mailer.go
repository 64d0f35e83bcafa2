package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/novocode/novocode-api/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrDisabled is returned when no SMTP host is configured.
var ErrDisabled = errors.New("email delivery disabled")

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// dialer is the subset of *gomail.Dialer used here.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender delivers transactional email over SMTP.
type Sender struct {
	dialer dialer
	from   string
}

// NewSender creates a Sender. With an empty host every send fails with
// ErrDisabled.
func NewSender(cfg Config) *Sender {
	if cfg.Host == "" {
		logger.Warn("SMTP host not configured, email delivery disabled")
		return &Sender{from: cfg.From}
	}
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

var testimonialRequestTemplate = template.Must(template.New("testimonial_request").Parse(
	`<p>Olá, {{.Name}}!</p>
<p>Foi um prazer trabalhar com você. Poderia contar em poucas palavras como foi sua experiência com a NOVOCODE?</p>
<p><a href="{{.Link}}">Deixar meu depoimento</a></p>
<p>Obrigado!<br>Equipe NOVOCODE</p>`))

// SendTestimonialRequest emails name a link to the public testimonial form.
func (s *Sender) SendTestimonialRequest(ctx context.Context, name, email, link string) error {
	if s.dialer == nil {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := testimonialRequestTemplate.Execute(&body, struct{ Name, Link string }{name, link}); err != nil {
		return fmt.Errorf("failed to render testimonial request email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", email, name)
	m.SetHeader("Subject", "Como foi trabalhar com a NOVOCODE?")
	m.SetBody("text/plain", fmt.Sprintf("Olá, %s! Deixe seu depoimento em: %s", name, link))
	m.AddAlternative("text/html", body.String())

	start := time.Now()
	if err := s.dialer.DialAndSend(m); err != nil {
		logger.LogAPICall("smtp", "sendTestimonialRequest", "error", time.Since(start).Seconds(), zap.Error(err))
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	logger.LogAPICall("smtp", "sendTestimonialRequest", "success", time.Since(start).Seconds())

	return nil
}
