package services_test

import (
	"errors"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(username string) error {
	args := m.Called(username)
	return args.Error(0)
}

func (m *MockUserRepository) List(search string) ([]models.User, error) {
	args := m.Called(search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetConfirmationCode(id, hash string) error {
	args := m.Called(id, hash)
	return args.Error(0)
}

// MockNotifier records confirmation codes instead of delivering them.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendConfirmationCode(email, username, code string) error {
	args := m.Called(email, username, code)
	return args.Error(0)
}

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func newAuthService(repo *MockUserRepository, notifier *MockNotifier, rotate bool) *services.AuthService {
	return services.NewAuthService(repo, notifier, services.AuthConfig{
		JWTSecret:       "test_jwt_secret",
		TokenTTL:        time.Hour,
		RotateCodeOnUse: rotate,
	})
}

func TestAuthService_SignupNewUser(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newAuthService(repo, notifier, false)

	var storedHash, sentCode string
	repo.On("GetByUsername", "alice").Return(nil, apperrors.ErrNotFound).Once()
	repo.On("GetByEmail", "alice@example.com").Return(nil, apperrors.ErrNotFound).Once()
	repo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = "user-1"
	}).Return(nil).Once()
	repo.On("SetConfirmationCode", "user-1", mock.Anything).Run(func(args mock.Arguments) {
		storedHash = args.String(1)
	}).Return(nil).Once()
	notifier.On("SendConfirmationCode", "alice@example.com", "alice", mock.Anything).Run(func(args mock.Arguments) {
		sentCode = args.String(2)
	}).Return(nil).Once()

	user, err := svc.Signup(services.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)

	assert.Len(t, sentCode, 20)
	assert.NotEqual(t, sentCode, storedHash, "the raw code must never be stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(sentCode)))
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestAuthService_SignupRejectsReservedUsername(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo, new(MockNotifier), false)

	_, err := svc.Signup(services.SignupRequest{Username: "me", Email: "me@example.com"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_SignupTwiceReissuesCode(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newAuthService(repo, notifier, false)

	existing := &models.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser, ConfirmationCode: "old-hash"}
	repo.On("GetByUsername", "alice").Return(existing, nil).Once()
	repo.On("GetByEmail", "alice@example.com").Return(existing, nil).Once()
	repo.On("SetConfirmationCode", "user-1", mock.Anything).Return(nil).Once()
	notifier.On("SendConfirmationCode", "alice@example.com", "alice", mock.Anything).Return(nil).Once()

	user, err := svc.Signup(services.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, "old-hash", user.ConfirmationCode)
	repo.AssertNotCalled(t, "Create", mock.Anything)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestAuthService_SignupConflicts(t *testing.T) {
	alice := &models.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}

	t.Run("username taken by another email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, new(MockNotifier), false)
		repo.On("GetByUsername", "alice").Return(alice, nil).Once()
		repo.On("GetByEmail", "other@example.com").Return(nil, apperrors.ErrNotFound).Once()

		_, err := svc.Signup(services.SignupRequest{Username: "alice", Email: "other@example.com"})
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "username")
		assert.NotContains(t, verr.Fields, "email")
	})

	t.Run("email taken by another username", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, new(MockNotifier), false)
		repo.On("GetByUsername", "bob").Return(nil, apperrors.ErrNotFound).Once()
		repo.On("GetByEmail", "alice@example.com").Return(alice, nil).Once()

		_, err := svc.Signup(services.SignupRequest{Username: "bob", Email: "alice@example.com"})
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")
		assert.NotContains(t, verr.Fields, "username")
	})
}

func TestAuthService_SignupIgnoresNotifierFailure(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newAuthService(repo, notifier, false)

	repo.On("GetByUsername", "alice").Return(nil, apperrors.ErrNotFound).Once()
	repo.On("GetByEmail", "alice@example.com").Return(nil, apperrors.ErrNotFound).Once()
	repo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	repo.On("SetConfirmationCode", mock.Anything, mock.Anything).Return(nil).Once()
	notifier.On("SendConfirmationCode", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := svc.Signup(services.SignupRequest{Username: "alice", Email: "alice@example.com"})
	assert.NoError(t, err)
}

func userWithCode(t *testing.T, code string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Role: models.RoleModerator, ConfirmationCode: string(hash)}
}

func TestAuthService_ObtainToken(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo, new(MockNotifier), false)
	repo.On("GetByUsername", "alice").Return(userWithCode(t, "secret-code"), nil)

	token, err := svc.ObtainToken(services.TokenRequest{Username: "alice", ConfirmationCode: "secret-code"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "moderator", claims["role"])
	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.InDelta(t, float64(time.Now().Add(time.Hour).Unix()), exp, 5)

	// Without rotation the same code keeps working.
	_, err = svc.ObtainToken(services.TokenRequest{Username: "alice", ConfirmationCode: "secret-code"})
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "SetConfirmationCode", mock.Anything, mock.Anything)
}

func TestAuthService_ObtainTokenWrongCode(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo, new(MockNotifier), false)
	repo.On("GetByUsername", "alice").Return(userWithCode(t, "secret-code"), nil)

	_, err := svc.ObtainToken(services.TokenRequest{Username: "alice", ConfirmationCode: "guess"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "confirmation_code")
}

func TestAuthService_ObtainTokenWithoutIssuedCode(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo, new(MockNotifier), false)
	repo.On("GetByUsername", "alice").Return(&models.User{ID: "user-1", Username: "alice"}, nil)

	_, err := svc.ObtainToken(services.TokenRequest{Username: "alice", ConfirmationCode: "anything"})
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAuthService_ObtainTokenUnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo, new(MockNotifier), false)
	repo.On("GetByUsername", "ghost").Return(nil, apperrors.ErrNotFound)

	_, err := svc.ObtainToken(services.TokenRequest{Username: "ghost", ConfirmationCode: "anything"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAuthService_ObtainTokenRotatesCode(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo, new(MockNotifier), true)
	repo.On("GetByUsername", "alice").Return(userWithCode(t, "secret-code"), nil).Once()
	repo.On("SetConfirmationCode", "user-1", "").Return(nil).Once()

	_, err := svc.ObtainToken(services.TokenRequest{Username: "alice", ConfirmationCode: "secret-code"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc := newAuthService(new(MockUserRepository), new(MockNotifier), false)
	token, err := svc.IssueToken(&models.User{ID: "user-1", Username: "alice", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.NoError(t, err)

	other := services.NewAuthService(new(MockUserRepository), nil, services.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err, "token signed with a different secret must be rejected")

	fallback := services.NewAuthService(new(MockUserRepository), nil, services.AuthConfig{JWTSecret: "test_jwt_secret", TokenTTL: -time.Hour})
	fresh, err := fallback.IssueToken(&models.User{ID: "user-1"})
	require.NoError(t, err)
	// A non-positive TTL falls back to the default, so the token is still valid.
	_, err = svc.ValidateToken(fresh)
	assert.NoError(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
