package service

import (
	"context"
	"errors"
	"time"

	"enrollhub_backend/internal/auth/password"
	"enrollhub_backend/internal/auth/repository"
	"enrollhub_backend/platform/config"
	"enrollhub_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalid = errors.New("token invalid")
var ErrAccountDisabled = errors.New("account disabled")
var ErrEmailTaken = errors.New("email already in use")
var ErrInvalidCurrentPassword = errors.New("current password is incorrect")

const accessTokenType = "access"

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("sign_in_failed", email, false, "unknown email")
		return "", "", ErrInvalidCredentials
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in_failed", email, false, "wrong password")
		return "", "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", "", ErrAccountDisabled
	}

	s.log.AuthEvent("sign_in", email, true, "")
	return s.issueTokens(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	hash := hashRefreshToken(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return "", "", ErrTokenExpired
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", ErrTokenInvalid
	}
	if !user.IsActive {
		_ = s.repo.RevokeAllRefreshTokens(ctx, userID)
		return "", "", ErrAccountDisabled
	}

	// Rotate: each refresh token is single-use.
	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, user)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	hash := hashRefreshToken(refreshToken)
	return s.repo.RevokeRefreshToken(ctx, hash)
}

// CreateUser registers a new account with the given roles. Owner-only.
func (s *Service) CreateUser(ctx context.Context, email, fullName, plainPassword string, roles []string) (repository.User, error) {
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return repository.User{}, ErrEmailTaken
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return repository.User{}, err
	}

	user, err := s.repo.CreateUser(ctx, email, fullName, hash, roles)
	if err != nil {
		return repository.User{}, err
	}

	s.log.AuthEvent("user_created", email, true, "")
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := password.Compare(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCurrentPassword
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.repo.RevokeAllRefreshTokens(ctx, userID)
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (repository.UserWithRoles, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return repository.UserWithRoles{}, err
	}
	roles, err := s.repo.GetUserRoles(ctx, userID)
	if err != nil {
		return repository.UserWithRoles{}, err
	}
	return repository.UserWithRoles{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		IsActive: user.IsActive,
		Roles:    roles,
	}, nil
}

func (s *Service) SetUserRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	return s.repo.SetUserRoles(ctx, userID, roles)
}

func (s *Service) ListUsers(ctx context.Context) ([]repository.UserWithRoles, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (string, string, error) {
	roles, err := s.repo.GetUserRoles(ctx, user.ID)
	if err != nil {
		return "", "", err
	}

	accessToken, err := s.signJWT(user.ID, user.FullName, roles)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return "", "", err
	}

	hash := hashRefreshToken(refreshToken)
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *Service) signJWT(userID uuid.UUID, name string, roles []string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  accessTokenType,
		"name":  name,
		"roles": roles,
		"exp":   time.Now().Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   time.Now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
