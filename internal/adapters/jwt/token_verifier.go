package token_adapter

import (
	"context"
	"errors"
	"fmt"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenVerifier checks HS256 bearer tokens issued by the authentication service.
type TokenVerifier struct {
	signingKey []byte
}

var _ port.TokenVerifierPort = (*TokenVerifier)(nil)

func NewTokenVerifier(signingKey string) (*TokenVerifier, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &TokenVerifier{signingKey: []byte(signingKey)}, nil
}

type jwtCustomClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

func (v *TokenVerifier) Verify(ctx context.Context, tokenString string) (*domain.Principal, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	verifierLogger := logger.WithFields(port.Fields{
		"component": "TokenVerifier",
		"method":    "Verify",
	})

	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			verifierLogger.Warn("Token has expired", nil)
		} else {
			verifierLogger.Warn("Invalid token format or signature", port.Fields{"error": err.Error()})
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		verifierLogger.Warn("Token carries no usable claims", nil)
		return nil, domain.ErrTokenInvalid
	}

	verifierLogger.Debug("Token verified", port.Fields{"user_id": claims.UserID.String(), "role": claims.Role})
	return &domain.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
