package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/storage"
	"github.com/profilekit/profilekit/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Service encapsulates user-related business logic
type Service struct {
	repo  UserRepository
	blobs storage.BlobStore
	cost  int
}

// NewService accepts a nil blob store; replaced avatars are then left in place.
func NewService(r UserRepository, blobs storage.BlobStore) *Service {
	return &Service{repo: r, blobs: blobs, cost: bcrypt.DefaultCost}
}

// SignupInput is the payload of an account registration.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup validates the input, hashes the password and stores a new user.
// A taken email yields common.ErrConflict.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, common.Invalid("", "All fields are required")
	}
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	email := NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword("password", in.Password); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, common.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate checks email and password. Any mismatch yields common.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, common.Invalid("", "Email and password are required")
	}
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, common.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}
	return u, nil
}

// Get returns the user with the given subject or common.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, common.ErrNotFound
	}
	return u, nil
}

// UpdateProfile renames the user and, when picture is non-empty, replaces the avatar.
// The previous avatar object is removed once the update is stored, provided it
// was uploaded by this user.
func (s *Service) UpdateProfile(ctx context.Context, id, name string, picture *models.Avatar) (*models.User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = strings.TrimSpace(name)
	var stale string
	if picture != nil && picture.URL != "" {
		if u.Avatar != nil && u.Avatar.PublicID != picture.PublicID {
			stale = u.Avatar.PublicID
		}
		u.Avatar = picture
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if stale != "" && s.blobs != nil && storage.OwnedBy(stale, id) {
		if err := s.blobs.Delete(ctx, stale); err != nil {
			logger.Warnf("remove replaced avatar %s: %v", stale, err)
		}
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	if current == "" || next == "" {
		return common.Invalid("", "Current password and new password are required")
	}
	if err := validatePassword("newPassword", next); err != nil {
		return err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return fmt.Errorf("%w: current password is incorrect", common.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
