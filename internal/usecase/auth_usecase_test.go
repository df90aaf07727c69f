package usecase

import (
	"context"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/newsnet/backend/internal/entity"
	"github.com/newsnet/backend/internal/port/repository"
	"github.com/newsnet/backend/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID, username, email string) error {
	args := m.Called(ctx, userID, username, email)
	return args.Error(0)
}
func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}
func (m *MockUserRepository) SetVerificationCode(ctx context.Context, userID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}
func (m *MockUserRepository) MarkVerified(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockUserRepository) AddBookmark(ctx context.Context, userID, newsID string) error {
	args := m.Called(ctx, userID, newsID)
	return args.Error(0)
}
func (m *MockUserRepository) RemoveBookmark(ctx context.Context, userID, newsID string) error {
	args := m.Called(ctx, userID, newsID)
	return args.Error(0)
}
func (m *MockUserRepository) AddLike(ctx context.Context, userID, newsID string) error {
	args := m.Called(ctx, userID, newsID)
	return args.Error(0)
}
func (m *MockUserRepository) RemoveLike(ctx context.Context, userID, newsID string) error {
	args := m.Called(ctx, userID, newsID)
	return args.Error(0)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendVerificationEmail(toEmail, toName, verificationCode string) error {
	args := m.Called(toEmail, toName, verificationCode)
	return args.Error(0)
}
func (m *MockMailer) SendWelcomeEmail(toEmail, toName string) error {
	args := m.Called(toEmail, toName)
	return args.Error(0)
}

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

func newAuthUsecaseForTest(repo *MockUserRepository, m *MockMailer) (*AuthUsecase, *token.Manager) {
	logger := zap.NewNop()
	manager := token.NewManager("test-secret", time.Hour)
	return NewAuthUsecase(repo, m, manager, logger), manager
}

func TestSignup_CreatesUnverifiedUserWithSixDigitCode(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrNotFound)

	var created *entity.User
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.User)
		}).
		Return("user-1", nil)
	mailer.On("SendVerificationEmail", "a@x.com", "alice", mock.Anything).Return(nil).Maybe()

	userID, err := uc.Signup(context.Background(), "alice", "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NotNil(t, created)
	assert.False(t, created.IsVerified)
	assert.Equal(t, entity.RoleUser, created.Role)

	assert.Regexp(t, codePattern, created.VerificationCode)
	codeValue, err := strconv.Atoi(created.VerificationCode)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, codeValue, 100000)
	assert.LessOrEqual(t, codeValue, 999999)

	// The stored credential is a hash of the submitted password, never the plaintext.
	assert.NotEqual(t, "secret1", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret1")))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&entity.User{ID: "user-1", Email: "a@x.com"}, nil)

	_, err := uc.Signup(context.Background(), "alice", "a@x.com", "secret1")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVerifyEmail_Success(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entity.User{
		ID:               "user-1",
		Username:         "alice",
		Email:            "a@x.com",
		VerificationCode: "123456",
	}, nil)
	repo.On("MarkVerified", mock.Anything, "user-1").Return(nil)
	mailer.On("SendWelcomeEmail", "a@x.com", "alice").Return(nil).Maybe()

	userID, err := uc.VerifyEmail(context.Background(), "a@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	repo.AssertCalled(t, "MarkVerified", mock.Anything, "user-1")
}

func TestVerifyEmail_WrongCode(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entity.User{
		ID:               "user-1",
		Email:            "a@x.com",
		VerificationCode: "123456",
	}, nil)

	_, err := uc.VerifyEmail(context.Background(), "a@x.com", "654321")
	assert.ErrorIs(t, err, ErrInvalidCode)
	repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

// A verified account has no code on file: a replay of the used code must fail
// as already-verified, never succeed twice.
func TestVerifyEmail_AlreadyVerified(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entity.User{
		ID:         "user-1",
		Email:      "a@x.com",
		IsVerified: true,
	}, nil)

	_, err := uc.VerifyEmail(context.Background(), "a@x.com", "123456")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyEmail_UserNotFound(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "missing@x.com").Return(nil, repository.ErrNotFound)

	_, err := uc.VerifyEmail(context.Background(), "missing@x.com", "123456")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResendVerification_ReplacesCode(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entity.User{
		ID:               "user-1",
		Username:         "alice",
		Email:            "a@x.com",
		VerificationCode: "123456",
	}, nil)

	var newCode string
	repo.On("SetVerificationCode", mock.Anything, "user-1", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			newCode = args.String(2)
		}).
		Return(nil)
	mailer.On("SendVerificationEmail", "a@x.com", "alice", mock.Anything).Return(nil).Maybe()

	err := uc.ResendVerification(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Regexp(t, codePattern, newCode)
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entity.User{
		ID:         "user-1",
		Email:      "a@x.com",
		IsVerified: true,
	}, nil)

	err := uc.ResendVerification(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	repo.AssertNotCalled(t, "SetVerificationCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_PendingVerification(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entity.User{
		ID:         "user-1",
		Email:      "a@x.com",
		IsVerified: false,
	}, nil)

	user, tokenString, err := uc.Login(context.Background(), "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.Empty(t, tokenString)
	// The entity comes back so the caller can route to the verify flow.
	require.NotNil(t, user)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestLogin_Success_TokenCarriesClaims(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, manager := newAuthUsecaseForTest(repo, mailer)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entity.User{
		ID:         "user-1",
		Username:   "alice",
		Email:      "a@x.com",
		Password:   string(hash),
		Role:       entity.RoleUser,
		IsVerified: true,
	}, nil)

	user, tokenString, err := uc.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotEmpty(t, tokenString)

	claims, err := manager.Validate(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, entity.RoleUser, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)

	repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entity.User{
		ID:         "user-1",
		Email:      "a@x.com",
		Password:   string(hash),
		IsVerified: true,
	}, nil)

	_, tokenString, err := uc.Login(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, tokenString)
}

func TestLogin_UserNotFound(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	uc, _ := newAuthUsecaseForTest(repo, mailer)

	repo.On("GetByEmail", mock.Anything, "missing@x.com").Return(nil, repository.ErrNotFound)

	_, tokenString, err := uc.Login(context.Background(), "missing@x.com", "secret1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, tokenString)
}
