package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPMailerService implements the Mailer interface using net/smtp.
type SMTPMailerService struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	senderName string
	logger     *zap.Logger
}

func NewSMTPMailerService(host string, port int, username, password, fromEmail, senderName string, logger *zap.Logger) *SMTPMailerService {
	return &SMTPMailerService{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		from:       fromEmail,
		senderName: senderName,
		logger:     logger.Named("SMTPMailerService"),
	}
}

func (s *SMTPMailerService) SendVerificationEmail(toEmailAddr, toName, verificationCode string) error {
	subject := "Verify your Email"
	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
                             <p>Your verification code is: <b>%s</b></p>
                             <p>Enter this code in the app to verify your email address.</p>
                             <p>If you did not request this, please ignore this email.</p>`, toName, verificationCode)
	textBody := fmt.Sprintf(`Hello %s,
                           Your verification code is: %s
                           Enter this code in the app to verify your email address.
                           If you did not request this, please ignore this email.`, toName, verificationCode)

	return s.send(toEmailAddr, subject, textBody, htmlBody)
}

func (s *SMTPMailerService) SendWelcomeEmail(toEmailAddr, toName string) error {
	subject := "Welcome to NewsNet!"
	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
                             <p>Your email has been verified, welcome aboard!</p>
                             <p>You can now log in and start reading.</p>`, toName)
	textBody := fmt.Sprintf(`Hello %s,
                           Your email has been verified, welcome aboard!
                           You can now log in and start reading.`, toName)

	return s.send(toEmailAddr, subject, textBody, htmlBody)
}

func (s *SMTPMailerService) send(toEmailAddr, subject, plainTextBody, htmlBody string) error {
	if s.host == "" || s.username == "" || s.password == "" || s.from == "" {
		s.logger.Error("SMTP configuration is incomplete. Email not sent.",
			zap.String("host", s.host),
			zap.String("username", s.username),
			zap.Bool("password_set", s.password != ""),
			zap.String("from", s.from))
		return fmt.Errorf("SMTP configuration is incomplete")
	}

	s.logger.Info("Attempting to send email via SMTP",
		zap.String("toEmail", toEmailAddr),
		zap.String("subject", subject),
		zap.String("smtpHost", s.host))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	headers := make(map[string]string)
	if s.senderName != "" {
		headers["From"] = fmt.Sprintf("%s <%s>", s.senderName, s.from)
	} else {
		headers["From"] = s.from
	}
	headers["To"] = toEmailAddr
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"

	boundary := "newsnet-boundary-0001"
	headers["Content-Type"] = fmt.Sprintf("multipart/alternative; boundary=%s", boundary)

	var msgBuilder strings.Builder
	for k, v := range headers {
		msgBuilder.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msgBuilder.WriteString("\r\n")

	msgBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msgBuilder.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msgBuilder.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	msgBuilder.WriteString(plainTextBody)
	msgBuilder.WriteString("\r\n\r\n")

	msgBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msgBuilder.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msgBuilder.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	msgBuilder.WriteString(htmlBody)
	msgBuilder.WriteString("\r\n\r\n")

	msgBuilder.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.from, []string{toEmailAddr}, []byte(msgBuilder.String())); err != nil {
		s.logger.Error("Failed to send email via SMTP",
			zap.Error(err),
			zap.String("toEmail", toEmailAddr),
			zap.String("smtpHost", s.host))
		return fmt.Errorf("smtp.SendMail failed: %w", err)
	}

	s.logger.Info("Email sent successfully via SMTP", zap.String("toEmail", toEmailAddr))
	return nil
}
