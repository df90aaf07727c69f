package mailer

// Mailer defines the interface for sending account emails.
type Mailer interface {
	SendVerificationEmail(toEmail, toName, verificationCode string) error
	SendWelcomeEmail(toEmail, toName string) error
}
