package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/cleancity/wastewatch-api/config"
	"github.com/cleancity/wastewatch-api/models"
)

func setTokenTestConfig(t *testing.T) *config.Config {
	t.Helper()

	original := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(original) })

	cfg := &config.Config{
		JWTSecret:   "token-service-test-secret",
		JWTIssuer:   "wastewatch-api",
		JWTAudience: "wastewatch-client",
	}
	config.SetConfig(cfg)
	return cfg
}

func TestGenerateTokenCarriesIdentityAndRole(t *testing.T) {
	cfg := setTokenTestConfig(t)

	tokenString, err := GenerateToken(42, models.RoleAdmin)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	var claims AccessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	assert.Equal(t, "42", claims.Subject, "Subject should carry the user ID")
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, cfg.JWTIssuer, claims.Issuer)
	assert.Contains(t, claims.Audience, cfg.JWTAudience)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateTokenRejectedWithWrongSecret(t *testing.T) {
	setTokenTestConfig(t)

	tokenString, err := GenerateToken(7, models.RoleUser)
	assert.NoError(t, err)

	var claims AccessClaims
	_, err = jwt.ParseWithClaims(tokenString, &claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte("a-different-secret"), nil
	})
	assert.Error(t, err, "Token signed with one secret must not verify with another")
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash, "Hash must not equal the plain text")

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "hunter22"))
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	first, err := HashPassword("same-password")
	assert.NoError(t, err)
	second, err := HashPassword("same-password")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second, "bcrypt should salt each hash")
}
