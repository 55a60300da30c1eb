package jwt_test

import (
	"lodging/config"
	lodgingJWT "lodging/infras/jwt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, secret string, claims lodgingJWT.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func newService(issuer string) lodgingJWT.JWT {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = testSecret
	cfg.JWT.Issuer = issuer

	return lodgingJWT.New(cfg)
}

func TestValidateToken(t *testing.T) {
	now := time.Now()
	valid := lodgingJWT.Claims{
		UserID: "host-1",
		Role:   "host",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "identity",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))

	subjectOnly := lodgingJWT.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "guest-7", Issuer: "identity"}}

	tests := []struct {
		name    string
		token   string
		issuer  string
		wantErr error
		wantID  string
	}{
		{name: "valid token", token: sign(t, testSecret, valid), issuer: "identity", wantID: "host-1"},
		{name: "subject fallback", token: sign(t, testSecret, subjectOnly), wantID: "guest-7"},
		{name: "expired token", token: sign(t, testSecret, expired), wantErr: lodgingJWT.ErrExpiredToken},
		{name: "wrong secret", token: sign(t, "other", valid), wantErr: lodgingJWT.ErrInvalidToken},
		{name: "wrong issuer", token: sign(t, testSecret, valid), issuer: "someone-else", wantErr: lodgingJWT.ErrInvalidToken},
		{name: "missing user", token: sign(t, testSecret, lodgingJWT.Claims{}), wantErr: lodgingJWT.ErrInvalidClaim},
		{name: "garbage", token: "not.a.token", wantErr: lodgingJWT.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := newService(tt.issuer).ValidateToken(tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, claims.UserID)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := lodgingJWT.ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = lodgingJWT.ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = lodgingJWT.ExtractTokenFromHeader("Basic abc")
	assert.Error(t, err)
}
