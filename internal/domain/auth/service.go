package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

type Service struct {
	store  StoreAPI
	secret string
	ttl    time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl}
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, Email: user.Email, Role: user.Role}, s.ttl)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("userId", user.ID).Msg("update last_login failed")
	}

	return LoginResult{AccessToken: token, User: user}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < 8 {
		return ErrWeakPassword
	}
	if currentPassword == newPassword {
		return ErrPasswordUnchanged
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := CheckPassword(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdatePassword(ctx, userID, hash)
}

func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	return s.store.FindByID(ctx, userID)
}

// ActiveUser resolves a token subject to a user that may still act.
func (s *Service) ActiveUser(ctx context.Context, userID string) (User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if !user.IsActive {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

// ResolveActor finds an active user by email or id.
func (s *Service) ResolveActor(ctx context.Context, ref string) (User, error) {
	ref = strings.TrimSpace(ref)
	if !strings.Contains(ref, "@") {
		return s.ActiveUser(ctx, strings.ToLower(ref))
	}
	user, err := s.store.FindByEmail(ctx, strings.ToLower(ref))
	if err != nil {
		return User{}, err
	}
	if !user.IsActive {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) EnsureUser(ctx context.Context, user NewUser) (string, bool, error) {
	return s.store.EnsureUser(ctx, user)
}
