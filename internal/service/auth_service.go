package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/repository"
)

// AuthService authenticates users and issues bearer tokens. Login and logout
// land in the audit trail as session events.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest, origin Origin) (dto.LoginResponse, error)
	Logout(ctx context.Context, actor Actor, origin Origin) error
	ResolveActor(ctx context.Context, userID uint) (Actor, error)
}

type authService struct {
	users     repository.UserRepository
	audit     AuditRecorder
	validator *validator.Validate
	secret    []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, audit AuditRecorder, validate *validator.Validate, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		audit:     audit,
		validator: validate,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, origin Origin) (dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, validationError(err)
	}

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		// Same response for unknown user and bad password.
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return dto.LoginResponse{}, apperrors.Forbidden("invalid credentials", "")
		}
		return dto.LoginResponse{}, err
	}

	if !user.IsActive {
		return dto.LoginResponse{}, apperrors.Forbidden("account is disabled", "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.LoginResponse{}, apperrors.Forbidden("invalid credentials", "")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return dto.LoginResponse{}, apperrors.New(apperrors.KindStorageUnavailable, "failed to sign token")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record last login time")
	}
	user.LastLoginAt = &now

	s.audit.RecordLogin(user.ID, "password", origin)
	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user logged in")

	return dto.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

func (s *authService) Logout(_ context.Context, actor Actor, origin Origin) error {
	if actor.ID == 0 {
		return apperrors.Forbidden("not authenticated", "")
	}
	s.audit.RecordLogout(actor.ID, origin)
	return nil
}

// ResolveActor loads the actor's current role from storage. Roles are read
// per request so a demotion takes effect before the token expires.
func (s *authService) ResolveActor(ctx context.Context, userID uint) (Actor, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	if !user.IsActive {
		return Actor{}, apperrors.Forbidden("account is disabled", "")
	}
	return Actor{ID: user.ID, Role: user.Role}, nil
}
