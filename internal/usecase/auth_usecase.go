package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/newsnet/backend/internal/entity"
	"github.com/newsnet/backend/internal/mailer"
	"github.com/newsnet/backend/internal/port/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrNotVerified        = errors.New("email is not verified")
)

// TokenIssuer is the slice of the token manager the auth flow needs.
type TokenIssuer interface {
	Issue(userID, email, username, role string) (string, error)
}

// AuthUsecase drives the account lifecycle: an account is created unverified
// with a one-time numeric code, becomes verified exactly once when that code
// matches, and only verified accounts can obtain a session token.
type AuthUsecase struct {
	repo   repository.UserRepository
	mailer mailer.Mailer
	tokens TokenIssuer
	logger *zap.Logger
}

func NewAuthUsecase(repo repository.UserRepository, m mailer.Mailer, tokens TokenIssuer, logger *zap.Logger) *AuthUsecase {
	return &AuthUsecase{
		repo:   repo,
		mailer: m,
		tokens: tokens,
		logger: logger.Named("AuthUsecase"),
	}
}

// generateVerificationCode returns a 6-digit code uniformly sampled
// from [100000, 999999].
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// Signup creates an unverified account and dispatches the verification code.
// It never returns a session token. Returns repository.ErrDuplicateEmail when
// the address is already taken; the unique index backs up the pre-check when
// two signups race.
func (u *AuthUsecase) Signup(ctx context.Context, username, email, password string) (string, error) {
	if _, err := u.repo.GetByEmail(ctx, email); err == nil {
		return "", repository.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("AuthUsecase.Signup: failed to check existing user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("AuthUsecase.Signup: failed to hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return "", fmt.Errorf("AuthUsecase.Signup: %w", err)
	}

	user := &entity.User{
		Username:         username,
		Email:            email,
		Password:         string(hashedPassword),
		Role:             entity.RoleUser,
		IsVerified:       false,
		VerificationCode: code,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	userID, err := u.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", err
		}
		return "", fmt.Errorf("AuthUsecase.Signup: failed to create user: %w", err)
	}

	u.dispatchVerificationEmail(email, username, code)

	u.logger.Info("User signed up, verification pending",
		zap.String("userID", userID),
		zap.String("email", email))
	return userID, nil
}

// VerifyEmail flips the account to verified when the submitted code matches
// the outstanding one. The code is single-use: a successful match clears it.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	user, err := u.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.IsVerified {
		return "", ErrAlreadyVerified
	}
	if user.VerificationCode == "" || user.VerificationCode != code {
		return "", ErrInvalidCode
	}

	if err := u.repo.MarkVerified(ctx, user.ID); err != nil {
		return "", fmt.Errorf("AuthUsecase.VerifyEmail: failed to mark user verified: %w", err)
	}

	// Best effort, the verification stands even if the welcome mail is lost.
	go func() {
		if err := u.mailer.SendWelcomeEmail(user.Email, user.Username); err != nil {
			u.logger.Warn("Failed to send welcome email",
				zap.String("email", user.Email),
				zap.Error(err))
		}
	}()

	u.logger.Info("User email verified", zap.String("userID", user.ID), zap.String("email", email))
	return user.ID, nil
}

// ResendVerification issues a fresh code, silently invalidating any prior
// outstanding one. No rate limiting is applied.
func (u *AuthUsecase) ResendVerification(ctx context.Context, email string) error {
	user, err := u.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := generateVerificationCode()
	if err != nil {
		return fmt.Errorf("AuthUsecase.ResendVerification: %w", err)
	}
	if err := u.repo.SetVerificationCode(ctx, user.ID, code); err != nil {
		return fmt.Errorf("AuthUsecase.ResendVerification: failed to store code: %w", err)
	}

	u.dispatchVerificationEmail(user.Email, user.Username, code)
	return nil
}

// Login checks the password and issues a session token. An unverified account
// is rejected with ErrNotVerified and the user entity is still returned so the
// caller can route to the verification flow.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := u.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if !user.IsVerified {
		return user, "", ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	tokenString, err := u.tokens.Issue(user.ID, user.Email, user.Username, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("AuthUsecase.Login: failed to issue token: %w", err)
	}

	u.logger.Info("User logged in", zap.String("userID", user.ID), zap.String("email", email))
	return user, tokenString, nil
}

// Logout is stateless: tokens are self-contained and not tracked server-side,
// so there is nothing to revoke. The caller discards its copy.
func (u *AuthUsecase) Logout(userID string) {
	u.logger.Info("User logged out", zap.String("userID", userID))
}

func (u *AuthUsecase) dispatchVerificationEmail(email, username, code string) {
	go func() {
		if err := u.mailer.SendVerificationEmail(email, username, code); err != nil {
			u.logger.Warn("Failed to send verification email",
				zap.String("email", email),
				zap.Error(err))
		}
	}()
}
