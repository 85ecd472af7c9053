package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phoenix-shipper/booking-docs/internal/model"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingUserID = errors.New("missing user_id in claims")
)

type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates an HS256 access token and returns its principal.
func (p *Parser) Parse(token string) (model.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	rawID := claims.UserID
	if rawID == "" {
		rawID = claims.Subject
	}
	if rawID == "" {
		return model.Principal{}, ErrMissingUserID
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: user_id is not a uuid", ErrInvalidToken)
	}

	return model.Principal{
		UserID: userID,
		Role:   model.UserRole(strings.ToUpper(strings.TrimSpace(claims.Role))),
	}, nil
}

// Sign issues a token for the principal. Used by tooling and tests.
func (p *Parser) Sign(principal model.Principal, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: claims,
		UserID:           principal.UserID.String(),
		Role:             string(principal.Role),
	})
	return token.SignedString(p.secret)
}
