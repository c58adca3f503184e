package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Mailer sends the transactional messages of the order flow. The context is
// accepted for interface symmetry; SMTP delivery itself is synchronous.
type Mailer interface {
	SendOrderStatus(ctx context.Context, data OrderStatusData) error
	SendRecoveryCode(ctx context.Context, data RecoveryCodeData) error
}

type OrderStatusData struct {
	UserName        string
	Email           string
	MerchandiseName string
	Status          string
}

type RecoveryCodeData struct {
	UserName string
	Email    string
	Code     string
}

type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		addr: host + ":" + port,
		auth: smtp.PlainAuth("", username, password, host),
		from: from,
	}
}

func (m *SMTPMailer) SendOrderStatus(ctx context.Context, data OrderStatusData) error {
	html, err := render(orderStatusTmpl, data)
	if err != nil {
		return err
	}
	return m.send(data.Email, "Atualização do seu pedido", html)
}

func (m *SMTPMailer) SendRecoveryCode(ctx context.Context, data RecoveryCodeData) error {
	html, err := render(recoveryCodeTmpl, data)
	if err != nil {
		return err
	}
	return m.send(data.Email, "Recuperação de senha", html)
}

func (m *SMTPMailer) send(to, subject string, html []byte) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.HTML = html

	return e.Send(m.addr, m.auth)
}

func render(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

var (
	orderStatusTmpl  = template.Must(template.New("order_status").Parse(orderStatusTemplate))
	recoveryCodeTmpl = template.Must(template.New("recovery_code").Parse(recoveryCodeTemplate))
)

const orderStatusTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
    <p>Olá {{.UserName}},</p>
    <p>O status do seu pedido de <strong>{{.MerchandiseName}}</strong> foi atualizado para:</p>
    <p style="font-size: 18px;"><strong>{{.Status}}</strong></p>
    <p>Obrigado por comprar conosco!</p>
    <p style="font-size: 12px; color: #666;">Este email foi enviado automaticamente, por favor não responda.</p>
</body>
</html>
`

const recoveryCodeTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
    <p>Olá {{.UserName}},</p>
    <p>Recebemos uma solicitação de recuperação de senha para a sua conta.</p>
    <p>Seu código de recuperação é:</p>
    <p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
    <p>Se você não solicitou a recuperação, ignore este email.</p>
    <p style="font-size: 12px; color: #666;">Este email foi enviado automaticamente, por favor não responda.</p>
</body>
</html>
`
