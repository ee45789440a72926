package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
)

// SMTPConfig описывает почтовый сервер. Порт 465 - прямой TLS, иначе STARTTLS.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type mailSender func(ctx context.Context, to string, msg []byte) error

// EmailNotifier пишет участнику о смене статуса его заявки.
type EmailNotifier struct {
	from string
	send mailSender
}

func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{from: cfg.From, send: smtpSender(cfg)}
}

func (n *EmailNotifier) Notify(ctx context.Context, e Event) error {
	if e.ParticipantEmail == "" {
		return nil
	}
	subject, body, ok, err := emailContent(e)
	if err != nil || !ok {
		return err
	}
	return n.send(ctx, e.ParticipantEmail, buildMessage(n.from, e.ParticipantEmail, subject, body))
}

var emailTemplate = template.Must(template.New("registration").Parse(`<p>Здравствуйте, {{.Name}}!</p>
<p>{{.Text}}</p>
<p>Лагерь: <b>{{.Camp}}</b><br>Статус заявки: {{.Confirmation}}<br>Оплата: {{.Payment}}</p>`))

func emailContent(e Event) (subject, body string, ok bool, err error) {
	var text string
	camp := nonEmpty(e.CampName, e.CampID)
	switch e.Type {
	case RegistrationCreated:
		subject = fmt.Sprintf("Заявка в лагерь %s принята", camp)
		text = "Ваша заявка зарегистрирована. Оплатите взнос, чтобы организаторы могли ее подтвердить."
	case RegistrationPaid:
		subject = fmt.Sprintf("Оплата за лагерь %s получена", camp)
		text = "Мы получили оплату. Заявка ожидает подтверждения организатором."
	case RegistrationConfirmed:
		subject = fmt.Sprintf("Участие в лагере %s подтверждено", camp)
		text = "Организатор подтвердил вашу заявку. До встречи в лагере!"
	default:
		return "", "", false, nil
	}

	var buf bytes.Buffer
	err = emailTemplate.Execute(&buf, struct {
		Name, Text, Camp, Confirmation, Payment string
	}{
		Name:         nonEmpty(e.ParticipantName, e.ParticipantEmail),
		Text:         text,
		Camp:         camp,
		Confirmation: string(e.ConfirmationStatus),
		Payment:      string(e.PaymentStatus),
	})
	if err != nil {
		return "", "", false, fmt.Errorf("ошибка выполнения шаблона письма: %w", err)
	}
	return subject, buf.String(), true, nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("To: " + headerValue(to) + "\r\n")
	b.WriteString("From: " + headerValue(from) + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", headerValue(subject)) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// headerValue не дает значению разорвать заголовок письма.
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

func smtpSender(cfg SMTPConfig) mailSender {
	return func(ctx context.Context, to string, msg []byte) error {
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		tlsConfig := &tls.Config{ServerName: cfg.Host}

		var conn net.Conn
		var err error
		if cfg.Port == 465 {
			conn, err = (&tls.Dialer{Config: tlsConfig}).DialContext(ctx, "tcp", addr)
		} else {
			conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
		}
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetDeadline(deadline)
		}

		client, err := smtp.NewClient(conn, cfg.Host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
		if cfg.Port != 465 {
			if err := client.StartTLS(tlsConfig); err != nil {
				client.Close()
				return fmt.Errorf("ошибка команды STARTTLS: %w", err)
			}
		}
		defer client.Close()

		if cfg.User != "" {
			if err := client.Auth(smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)); err != nil {
				return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
			}
		}
		if err := client.Mail(cfg.From); err != nil {
			return fmt.Errorf("ошибка MAIL FROM: %w", err)
		}
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("ошибка RCPT TO: %w", err)
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("ошибка команды DATA: %w", err)
		}
		if _, err := w.Write(msg); err != nil {
			return fmt.Errorf("ошибка записи сообщения: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия DATA: %w", err)
		}
		return client.Quit()
	}
}
