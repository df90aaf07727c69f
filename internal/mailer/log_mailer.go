package mailer

import "go.uber.org/zap"

// LogMailerService is the fallback when no email transport is configured.
// It writes the would-be message to the log so the verification code is
// still reachable during local development.
type LogMailerService struct {
	logger *zap.Logger
}

func NewLogMailerService(logger *zap.Logger) *LogMailerService {
	return &LogMailerService{logger: logger.Named("LogMailerService")}
}

func (s *LogMailerService) SendVerificationEmail(toEmail, toName, verificationCode string) error {
	s.logger.Info("Email transport not configured, logging verification code",
		zap.String("toEmail", toEmail),
		zap.String("toName", toName),
		zap.String("code", verificationCode))
	return nil
}

func (s *LogMailerService) SendWelcomeEmail(toEmail, toName string) error {
	s.logger.Info("Email transport not configured, skipping welcome email",
		zap.String("toEmail", toEmail),
		zap.String("toName", toName))
	return nil
}
