package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/BorisNikolic/timeline-app-sub001/internal/config"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/logger"
)

// EmailService sends invitation mail over SMTP. When SMTP is not configured
// (disabled or no host) delivery degrades to a log line and reports success,
// which keeps the invitation flow usable in local development.
type EmailService struct {
	cfg     *config.EmailConfig
	baseURL string
}

func NewEmailService(cfg *config.EmailConfig, baseURL string) *EmailService {
	return &EmailService{cfg: cfg, baseURL: strings.TrimRight(baseURL, "/")}
}

// InviteLink builds the frontend URL the invited user clicks.
func (s *EmailService) InviteLink(token string) string {
	return fmt.Sprintf("%s/invitations/accept/%s", s.baseURL, token)
}

func (s *EmailService) SendInvitation(mail InvitationMail) error {
	if !s.cfg.Enabled || s.cfg.Host == "" {
		logger.Infof("[Email] SMTP not configured, skipping delivery to %s (link: %s)", mail.To, mail.InviteLink)
		return nil
	}

	subject := fmt.Sprintf("%s invited you to the timeline \"%s\"", mail.InviterName, mail.TimelineName)
	body := buildInvitationBody(mail)

	return s.sendEmail([]string{mail.To}, subject, body)
}

func buildInvitationBody(mail InvitationMail) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>You're invited</h2>")
	sb.WriteString(fmt.Sprintf("<p><strong>%s</strong> has invited you to collaborate on the timeline <strong>%s</strong> as <strong>%s</strong>.</p>",
		mail.InviterName, mail.TimelineName, mail.Role))
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"display: inline-block; background: #2563eb; color: #fff; padding: 10px 20px; border-radius: 4px; text-decoration: none;\">Accept Invitation</a></p>", mail.InviteLink))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #888; font-size: 12px;\">Or paste this link into your browser: %s</p>", mail.InviteLink))
	sb.WriteString("<p style=\"color: #888; font-size: 12px;\">This invitation expires in 7 days.</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(to []string, subject, body string) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendEmailTLS(addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent invitation to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(message))
	if err != nil {
		return err
	}

	return w.Close()
}
