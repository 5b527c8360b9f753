package service

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/md2004sameer/Wire/internal/models"
	"github.com/md2004sameer/Wire/internal/repository"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// UserService handles account registration, credential checks and
// profile updates. Usernames are folded at registration so the unique
// index enforces case-insensitive uniqueness.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the mutable profile fields. Pointer
// fields distinguish "leave unchanged" from "set to zero value".
type UpdateProfileInput struct {
	Bio       *string
	IsPrivate *bool
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = fold(username)
	email = fold(email)

	if !usernamePattern.MatchString(username) {
		return nil, models.NewValidationError("Username must be 3-30 characters: lowercase letters, digits, underscore")
	}
	if !strings.Contains(email, "@") {
		return nil, models.NewValidationError("Invalid email address")
	}
	if len(password) < 8 {
		return nil, models.NewValidationError("Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: username, Email: email, Password: string(hash)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the credentials and returns the account.
// A missing user and a wrong password produce the same error so the
// endpoint does not leak which usernames exist.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, fold(username))
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	return user, nil
}

// Get returns the account for a username.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, fold(username))
}

// UpdateProfile applies the provided fields to the caller's profile.
// Flipping IsPrivate affects future follow requests only; existing
// accepted edges are untouched.
func (s *UserService) UpdateProfile(ctx context.Context, username string, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, fold(username))
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.IsPrivate != nil {
		user.IsPrivate = *in.IsPrivate
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns accounts ordered by username.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}
