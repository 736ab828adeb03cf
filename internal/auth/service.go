package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard-server/internal/core"
	"github.com/vovakirdan/wireboard-server/internal/store"
)

// Service authenticates bearer tokens and resolves them to identities.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
	log       *zerolog.Logger
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
		log:       logger,
	}
}

// Authenticate verifies the token signature and looks up the identity it
// names. Every failure is reported as core.ErrUnauthenticated; the cause is
// only logged.
func (s *Service) Authenticate(ctx context.Context, token string) (core.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.log.Debug().Msg("auth: missing token")
		return core.Identity{}, core.ErrUnauthenticated
	}

	claims, err := ValidateToken(s.jwtConfig, token)
	if err != nil {
		s.log.Debug().Err(err).Msg("auth: invalid token")
		return core.Identity{}, core.ErrUnauthenticated
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		s.log.Debug().Err(err).Str("user_id", claims.UserID).Msg("auth: identity lookup failed")
		return core.Identity{}, core.ErrUnauthenticated
	}

	return core.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Avatar:   user.Avatar,
	}, nil
}

// IssueToken mints a token for an existing user.
func (s *Service) IssueToken(ctx context.Context, userID string) (string, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
