package services

import (
	"errors"
	"fmt"
	"net/http"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/permissions"
	"yamdb/internal/repositories"
	"yamdb/internal/validation"

	"github.com/go-playground/validator/v10"
)

// UserInput is the admin write payload of a user.
type UserInput struct {
	Username  string      `json:"username" validate:"required,max=150,username"`
	Email     string      `json:"email" validate:"required,email,max=254"`
	FirstName string      `json:"first_name" validate:"max=150"`
	LastName  string      `json:"last_name" validate:"max=150"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role" validate:"required,role"`
}

// UserPatch is a partial UserInput.
type UserPatch struct {
	Username  *string      `json:"username"`
	Email     *string      `json:"email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role"`
}

// UserService handles user administration and self-service profile edits.
type UserService struct {
	userRepo repositories.UserRepository
	policy   permissions.Policy
	validate *validator.Validate
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		policy:   permissions.AdminOnly,
		validate: validation.New(),
	}
}

// ListUsers retrieves users, optionally filtered by a username substring.
func (s *UserService) ListUsers(actor *models.User, search string) ([]models.User, error) {
	if err := authorize(s.policy, actor, http.MethodGet, nil); err != nil {
		return nil, err
	}
	return s.userRepo.List(search)
}

// GetUser retrieves a user by username.
func (s *UserService) GetUser(actor *models.User, username string) (*models.User, error) {
	if err := authorize(s.policy, actor, http.MethodGet, nil); err != nil {
		return nil, err
	}
	return s.userRepo.GetByUsername(username)
}

// CreateUser registers a user on behalf of an admin. No confirmation code is
// sent; the user obtains one through signup.
func (s *UserService) CreateUser(actor *models.User, in UserInput) (*models.User, error) {
	if err := authorize(s.policy, actor, http.MethodPost, nil); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if err := s.checkConflicts("", in.Username, in.Email); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      in.Role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, duplicateAsValidation(err, "username", "A user with that username already exists.")
	}
	return user, nil
}

// UpdateUser applies an admin's partial update to the user named username.
func (s *UserService) UpdateUser(actor *models.User, username string, patch UserPatch) (*models.User, error) {
	if err := authorize(s.policy, actor, http.MethodPatch, nil); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.update(user, patch)
}

// DeleteUser removes a user with all of their reviews and comments.
func (s *UserService) DeleteUser(actor *models.User, username string) error {
	if err := authorize(s.policy, actor, http.MethodDelete, nil); err != nil {
		return err
	}
	return s.userRepo.Delete(username)
}

// GetMe returns the actor's own profile, re-read from storage.
func (s *UserService) GetMe(actor *models.User) (*models.User, error) {
	if err := authorize(permissions.Authenticated, actor, http.MethodGet, nil); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(actor.ID)
}

// UpdateMe edits the actor's own profile. The role cannot be changed this way.
func (s *UserService) UpdateMe(actor *models.User, patch UserPatch) (*models.User, error) {
	if err := authorize(permissions.Authenticated, actor, http.MethodPatch, nil); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(actor.ID)
	if err != nil {
		return nil, err
	}
	patch.Role = nil
	return s.update(user, patch)
}

func (s *UserService) update(user *models.User, patch UserPatch) (*models.User, error) {
	in := UserInput{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Role:      user.Role,
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if patch.Username != nil {
		in.Username = *patch.Username
	}
	if patch.Email != nil {
		in.Email = *patch.Email
	}
	if patch.FirstName != nil {
		in.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		in.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		in.Bio = *patch.Bio
	}
	if patch.Role != nil {
		in.Role = *patch.Role
	}
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if err := s.checkConflicts(user.ID, in.Username, in.Email); err != nil {
		return nil, err
	}

	user.Username = in.Username
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Bio = in.Bio
	user.Role = in.Role
	if err := s.userRepo.Update(user); err != nil {
		return nil, duplicateAsValidation(err, "username", "A user with that username already exists.")
	}
	return user, nil
}

// checkConflicts reports username or email collisions with accounts other than selfID.
func (s *UserService) checkConflicts(selfID, username, email string) error {
	fields := map[string]string{}

	byName, err := s.userRepo.GetByUsername(username)
	switch {
	case err == nil && byName.ID != selfID:
		fields["username"] = "A user with that username already exists."
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("failed to check username: %w", err)
	}

	byEmail, err := s.userRepo.GetByEmail(email)
	switch {
	case err == nil && byEmail.ID != selfID:
		fields["email"] = "A user with that email already exists."
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("failed to check email: %w", err)
	}

	if len(fields) > 0 {
		return &apperrors.ValidationError{Fields: fields}
	}
	return nil
}
