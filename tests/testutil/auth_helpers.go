package testutil

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cleancity/wastewatch-api/config"
	"github.com/cleancity/wastewatch-api/services"
)

// TestConfig returns a config suitable for unit and integration tests and
// installs it as the global configuration.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		DatabaseURL:    "sqlite::memory:",
		Port:           "8080",
		GoEnv:          "test",
		JWTSecret:      "test-signing-secret",
		JWTIssuer:      "wastewatch-api",
		JWTAudience:    "wastewatch-client",
		StorageBackend: "local",
		UploadDir:      t.TempDir(),
		CORSOrigin:     "http://localhost:5173",
	}
	config.SetConfig(cfg)
	return cfg
}

// IssueToken signs a real access token for the given user using the
// installed test configuration.
func IssueToken(t *testing.T, userID uint, role string) string {
	t.Helper()

	token, err := services.GenerateToken(userID, role)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}

// SetMockAuthContext attaches the identity the auth middleware would have
// attached, bypassing token verification.
func SetMockAuthContext(c *gin.Context, userID uint, role string) {
	c.Set("user_id", strconv.FormatUint(uint64(userID), 10))
	c.Set("role", role)
}

// MockAuthMiddleware returns a middleware that attaches a fixed identity,
// standing in for EnsureValidToken in controller tests.
func MockAuthMiddleware(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, role)
		c.Next()
	}
}

// AuthenticatedRequest builds a request carrying a freshly issued bearer token.
func AuthenticatedRequest(t *testing.T, method, url string, body *bytes.Buffer, userID uint, role string) *http.Request {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+IssueToken(t, userID, role))
	return req
}

// MultipartComplaintBody builds a multipart form body for complaint
// submission. fields maps form names to values; image, when non-nil, is
// attached as the image part under the given filename.
func MultipartComplaintBody(t *testing.T, fields map[string]string, imageName string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("Failed to write form field %q: %v", name, err)
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("Failed to create image part: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("Failed to write image content: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// MultipartFileHeader fabricates a *multipart.FileHeader the way a handler
// would receive it, for exercising upload services directly.
func MultipartFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write file content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("Failed to parse multipart form: %v", err)
	}

	files := req.MultipartForm.File["image"]
	if len(files) != 1 {
		t.Fatalf("Expected exactly one file part, got %d", len(files))
	}
	return files[0]
}
