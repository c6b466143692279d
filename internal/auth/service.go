package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supplysathi/marketplace/internal/hash"
	"github.com/supplysathi/marketplace/internal/models"
	"github.com/supplysathi/marketplace/internal/repo"
	"github.com/supplysathi/marketplace/internal/tokens"
)

var (
	ErrValidation   = errors.New("validation")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

const accessTTL = 24 * time.Hour

type Service struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
}

func (s *Service) Register(ctx context.Context, username, password, role, businessName string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password required", ErrValidation)
	}
	if role != models.RoleVendor && role != models.RoleSupplier {
		return nil, fmt.Errorf("%w: role must be vendor or supplier", ErrValidation)
	}

	taken, err := s.Repo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username taken", ErrConflict)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
		BusinessName: businessName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if username == "" || password == "" {
		return "", nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
		}
		return "", nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return "", nil, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
	}

	token, err := tokens.NewAccessToken(s.JWTSecret, user.ID.String(), user.Role, time.Now().UTC().Add(accessTTL))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
