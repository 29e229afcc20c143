package testutil

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/qolzam/forum/internal/types"
	"github.com/stretchr/testify/require"
)

// HTTPHelper provides a robust way to make HTTP requests in tests.
// It enforces error checking and provides a fluent API for building requests.
type HTTPHelper struct {
	t   *testing.T
	app *fiber.App
}

// NewHTTPHelper creates a new test helper for a given Fiber app.
func NewHTTPHelper(t *testing.T, app *fiber.App) *HTTPHelper {
	require.NotNil(t, app, "Fiber app provided to HTTPHelper cannot be nil")
	return &HTTPHelper{t: t, app: app}
}

// Request represents a test request under construction.
type Request struct {
	helper    *HTTPHelper
	method    string
	path      string
	bodyBytes []byte
	headers   http.Header
}

// Response is a fully read test response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewRequest begins building a new test request. Non-byte bodies are marshaled as JSON.
func (h *HTTPHelper) NewRequest(method, path string, body interface{}) *Request {
	var bodyBytes []byte
	if body != nil {
		switch b := body.(type) {
		case []byte:
			bodyBytes = b
		case string:
			bodyBytes = []byte(b)
		default:
			jsonBytes, err := json.Marshal(body)
			require.NoError(h.t, err, "Failed to marshal request body to JSON")
			bodyBytes = jsonBytes
		}
	}
	req := &Request{
		helper:    h,
		method:    method,
		path:      path,
		bodyBytes: bodyBytes,
		headers:   make(http.Header),
	}
	if body != nil {
		req.WithHeader(types.HeaderContentType, "application/json")
	}
	return req
}

// WithHeader adds a header to the request.
func (r *Request) WithHeader(key, value string) *Request {
	r.headers.Add(key, value)
	return r
}

// WithJWTAuth adds the token as Authorization: Bearer header.
func (r *Request) WithJWTAuth(token string) *Request {
	return r.WithHeader(types.HeaderAuthorization, types.BearerPrefix+token)
}

// Send executes the request against the app and reads the whole body.
func (r *Request) Send() *Response {
	t := r.helper.t
	req := httptest.NewRequest(r.method, r.path, bytes.NewReader(r.bodyBytes))
	for key, values := range r.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	resp, err := r.helper.app.Test(req, -1)
	require.NoError(t, err, "app.Test failed for %s %s", r.method, r.path)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), "body: %s", string(r.Body))
}

// KeyPair is an ES256 key pair used to sign test tokens.
type KeyPair struct {
	Private   *ecdsa.PrivateKey
	PublicPEM string
}

// NewKeyPair generates a fresh P-256 key pair.
func NewKeyPair(t *testing.T) *KeyPair {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	return &KeyPair{Private: key, PublicPEM: string(publicPEM)}
}

// SignToken issues a token for user under claimKey that expires after ttl.
func (k *KeyPair) SignToken(t *testing.T, claimKey string, user types.UserContext, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
		claimKey: map[string]interface{}{
			types.HeaderUID: user.UserID.String(),
			"username":      user.Username,
			"displayName":   user.DisplayName,
			"role":          user.SystemRole,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(k.Private)
	require.NoError(t, err)
	return token
}
