package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/cleancity/wastewatch-api/config"
	"github.com/cleancity/wastewatch-api/models"
	"github.com/cleancity/wastewatch-api/services"
)

func authTestConfig(t *testing.T) *config.Config {
	t.Helper()

	original := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(original) })

	cfg := &config.Config{
		JWTSecret:   "middleware-test-secret",
		JWTIssuer:   "wastewatch-api",
		JWTAudience: "wastewatch-client",
	}
	config.SetConfig(cfg)
	return cfg
}

// protectedRouter wires EnsureValidToken in front of a probe handler that
// echoes what the middleware attached.
func protectedRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", EnsureValidToken(cfg), func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		role, err := GetUserRole(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "userId": userID, "role": role})
	})
	return router
}

func TestEnsureValidTokenAcceptsIssuedToken(t *testing.T) {
	cfg := authTestConfig(t)
	router := protectedRouter(cfg)

	token, err := services.GenerateToken(42, models.RoleAdmin)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":42`)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestEnsureValidTokenRejectsBadRequests(t *testing.T) {
	cfg := authTestConfig(t)
	router := protectedRouter(cfg)

	expired := signToken(t, cfg.JWTSecret, jwt.MapClaims{
		"sub":  "42",
		"role": models.RoleUser,
		"iss":  cfg.JWTIssuer,
		"aud":  cfg.JWTAudience,
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	wrongIssuer := signToken(t, cfg.JWTSecret, jwt.MapClaims{
		"sub":  "42",
		"role": models.RoleUser,
		"iss":  "someone-else",
		"aud":  cfg.JWTAudience,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	wrongSecret := signToken(t, "not-the-secret", jwt.MapClaims{
		"sub":  "42",
		"role": models.RoleUser,
		"iss":  cfg.JWTIssuer,
		"aud":  cfg.JWTAudience,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		authHeader string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong issuer", "Bearer " + wrongIssuer},
		{"wrong signing secret", "Bearer " + wrongSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			// The body must be exactly one JSON envelope; Unmarshal fails on
			// anything appended after it
			var response map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, false, response["success"])
			assert.Equal(t, "Invalid or expired token", response["message"])
		})
	}
}

// TestEnsureValidTokenStopsChainOnRejection checks a rejected token never
// reaches downstream handlers, which would append a second body to the 401
func TestEnsureValidTokenStopsChainOnRejection(t *testing.T) {
	cfg := authTestConfig(t)
	gin.SetMode(gin.TestMode)

	handlerRan := false
	router := gin.New()
	router.GET("/probe", EnsureValidToken(cfg), func(c *gin.Context) {
		handlerRan = true
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerRan, "Downstream handler must not run without a valid token")

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid or expired token", response["message"])
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		role           interface{}
		setRole        bool
		expectedStatus int
	}{
		{"admin passes", models.RoleAdmin, true, http.StatusOK},
		{"user is forbidden", models.RoleUser, true, http.StatusForbidden},
		{"missing role is forbidden", nil, false, http.StatusForbidden},
		{"non-string role is forbidden", 17, true, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/admin", func(c *gin.Context) {
				if tt.setRole {
					c.Set("role", tt.role)
				}
			}, RequireAdmin(), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"success": true})
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    uint
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "123")
			},
			wantID:  123,
			wantErr: false,
		},
		{
			name: "user ID not found in context",
			setupFunc: func(c *gin.Context) {
				// Don't set user_id
			},
			wantErr: true,
		},
		{
			name: "user ID is not a string",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", 12345)
			},
			wantErr: true,
		},
		{
			name: "user ID is not numeric",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "abc")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			gotID, err := GetUserID(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Zero(t, gotID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
		})
	}
}

func TestGetUserRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("role", models.RoleUser)

	role, err := GetUserRole(c)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)

	c2, _ := gin.CreateTestContext(w)
	_, err = GetUserRole(c2)
	assert.Error(t, err)
}
