package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoenix-shipper/booking-docs/internal/model"
)

func TestParseRoundTrip(t *testing.T) {
	p := NewParser("secret")
	want := model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin}

	token, err := p.Sign(want, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	got, err := p.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.IsAdmin())
}

func TestParseRejects(t *testing.T) {
	p := NewParser("secret")
	principal := model.Principal{UserID: uuid.New(), Role: model.UserRoleCustomer}

	expired, err := p.Sign(principal, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	require.NoError(t, err)

	foreign, err := NewParser("other").Sign(principal, jwt.RegisteredClaims{})
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "ADMIN"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "42"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"missing user", noUser, ErrMissingUserID},
		{"non uuid user", badUser, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestParseFallsBackToSubject(t *testing.T) {
	p := NewParser("secret")
	id := uuid.New()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()},
		Role:             "driver",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, err := p.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got.UserID)
	assert.True(t, got.IsDriver())
}
