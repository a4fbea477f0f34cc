package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vitrinezap/api/internal/repositories"
)

var (
	// ErrUserInvalidInput indicates the caller supplied invalid profile data.
	ErrUserInvalidInput = errors.New("user: invalid input")
	// ErrUserNotFound indicates the profile could not be located.
	ErrUserNotFound = errors.New("user: not found")
)

// UserServiceDeps bundles collaborators for the user service.
type UserServiceDeps struct {
	Users repositories.UserRepository
	Clock func() time.Time
}

type userService struct {
	users repositories.UserRepository
	clock func() time.Time
}

// NewUserService constructs a UserService validating required dependencies.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Users == nil {
		return nil, errors.New("user service: user repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &userService{
		users: deps.Users,
		clock: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserProfile{}, fmt.Errorf("%w: user id is required", ErrUserInvalidInput)
	}

	profile, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return UserProfile{}, s.translateError(err)
	}
	return profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return UserProfile{}, fmt.Errorf("%w: user id is required", ErrUserInvalidInput)
	}

	profile, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return UserProfile{}, s.translateError(err)
	}

	if cmd.DisplayName != nil {
		name := strings.TrimSpace(*cmd.DisplayName)
		if name == "" {
			return UserProfile{}, fmt.Errorf("%w: display name must not be blank", ErrUserInvalidInput)
		}
		profile.DisplayName = name
	}
	if cmd.Phone != nil {
		profile.Phone = strings.TrimSpace(*cmd.Phone)
	}
	if cmd.Address != nil {
		addr := *cmd.Address
		addr.PostalCode = strings.TrimSpace(addr.PostalCode)
		addr.City = strings.TrimSpace(addr.City)
		addr.Street = strings.TrimSpace(addr.Street)
		addr.Number = strings.TrimSpace(addr.Number)
		addr.District = strings.TrimSpace(addr.District)
		addr.Complement = trimmedPtr(addr.Complement)
		profile.Address = &addr
	}
	profile.UpdatedAt = s.clock()

	updated, err := s.users.UpdateProfile(ctx, profile)
	if err != nil {
		return UserProfile{}, s.translateError(err)
	}
	return updated, nil
}

func (s *userService) translateError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsNotFound() {
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}
	return err
}
