package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/is0060hf/qa-web-system-sub002/internal/auth"
	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/repository"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// LoginResult carries an issued access token.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService verifies credentials and issues tokens.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	hasher   *auth.PasswordHasher
	logger   *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Hasher   *auth.PasswordHasher
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    deps.UserRepo,
		tokenMgr: deps.Tokens,
		hasher:   deps.Hasher,
		logger:   logger,
	}
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewStorageError(err)
		}
		_ = s.hasher.Compare("", password)
		return nil, apperrors.NewUnauthenticated("invalid email or password")
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Debug("login rejected", zap.String("user_id", user.ID))
		return nil, apperrors.NewUnauthenticated("invalid email or password")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(*user.Identity())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
