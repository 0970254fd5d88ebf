// Package mailer sends transactional auth emails. All sends are
// best-effort from the caller's point of view.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetToken string) error
	SendPasswordChanged(ctx context.Context, to string) error
}

// SMTP sends through an authenticated SMTP relay.
type SMTP struct {
	client         *mail.Client
	from           string
	frontendURL    string
	resetExpiryMin int
}

func NewSMTP(host string, port int, user, pass, from, frontendURL string, resetExpiryMin int) (*SMTP, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(pass),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTP{
		client:         client,
		from:           from,
		frontendURL:    frontendURL,
		resetExpiryMin: resetExpiryMin,
	}, nil
}

func (s *SMTP) SendPasswordReset(ctx context.Context, to, resetToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password.html?token=%s", s.frontendURL, resetToken)
	body := fmt.Sprintf(`<h2>Recuperación de Contraseña</h2>
<p>Recibimos una solicitud para restablecer tu contraseña.</p>
<p><a href="%s">Restablecer Contraseña</a></p>
<p>Este enlace expirará en %d minutos. Si no solicitaste el cambio, ignora este correo.</p>`,
		resetURL, s.resetExpiryMin)

	return s.send(ctx, to, "PlayZone - Recuperación de contraseña", body)
}

func (s *SMTP) SendPasswordChanged(ctx context.Context, to string) error {
	body := `<h2>Contraseña actualizada</h2>
<p>Tu contraseña fue cambiada. Todas las sesiones abiertas fueron cerradas.</p>
<p>Si no realizaste este cambio, contacta al administrador de inmediato.</p>`

	return s.send(ctx, to, "PlayZone - Contraseña actualizada", body)
}

func (s *SMTP) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	return s.client.DialAndSendWithContext(ctx, msg)
}

// Noop logs instead of sending; used in development when SMTP is not
// configured.
type Noop struct {
	Logger *zap.Logger
}

func (n Noop) SendPasswordReset(_ context.Context, to, resetToken string) error {
	n.Logger.Info("noop mailer: password reset", zap.String("to", to), zap.String("token", resetToken))
	return nil
}

func (n Noop) SendPasswordChanged(_ context.Context, to string) error {
	n.Logger.Info("noop mailer: password changed notice", zap.String("to", to))
	return nil
}
