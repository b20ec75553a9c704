package mail

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"pedidos-backend/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer envia avisos pelo SMTP configurado.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	send     func(e *email.Email, addr string, a smtp.Auth) error
}

// NewMailer devolve nil quando SMTP_HOST não está definido.
func NewMailer(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" {
		return nil
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		send: func(e *email.Email, addr string, a smtp.Auth) error {
			return e.Send(addr, a)
		},
	}
}

// RecoveryMessage monta o aviso enviado quando a senha do administrador é recuperada.
func RecoveryMessage(company, to, ip string, at time.Time) *email.Email {
	e := email.NewEmail()
	e.To = []string{to}
	e.Subject = fmt.Sprintf("[%s] Recuperação da senha do administrador", company)

	var b strings.Builder
	fmt.Fprintf(&b, "A senha do administrador do portal de pedidos %s foi consultada.\n\n", company)
	fmt.Fprintf(&b, "Data: %s\n", at.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "IP: %s\n\n", ip)
	b.WriteString("Se não foi você, altere a senha nas configurações.\n")
	e.Text = []byte(b.String())
	return e
}

func (m *Mailer) SendRecoveryNotice(company, to, ip string, at time.Time) error {
	e := RecoveryMessage(company, to, ip, at)
	e.From = m.from

	var a smtp.Auth
	if m.user != "" {
		a = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := m.send(e, m.addr, a); err != nil {
		return fmt.Errorf("mailer: aviso de recuperação: %w", err)
	}
	return nil
}
