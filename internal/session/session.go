package session

import (
	"context"
	"fmt"

	"github.com/guttosm/tickprobe/internal/domain/dto"
	"github.com/guttosm/tickprobe/internal/logger"
)

// Authenticator is the part of the API client needed to open a session.
type Authenticator interface {
	Register(ctx context.Context, creds dto.Credentials) (int, error)
	Login(ctx context.Context, creds dto.Credentials) (string, error)
}

// Open makes sure the account exists and logs in, returning the bearer token.
//
// Registration is create-if-absent: a duplicate account (or any other
// registration failure) is logged and ignored. Only a failed login is an error.
func Open(ctx context.Context, api Authenticator, creds dto.Credentials) (string, error) {
	status, err := api.Register(ctx, creds)
	switch {
	case err != nil:
		logger.L().Warn().Err(err).Str("username", creds.Username).Msg("registration request failed, trying login")
	case status >= 200 && status < 300:
		logger.L().Info().Str("username", creds.Username).Int("status", status).Msg("account registered")
	default:
		logger.L().Debug().Str("username", creds.Username).Int("status", status).Msg("registration skipped, account likely exists")
	}

	token, err := api.Login(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("login as %s: %w", creds.Username, err)
	}
	logger.L().Info().Str("username", creds.Username).Msg("login succeeded, token obtained")
	return token, nil
}
