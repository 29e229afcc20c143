package authjwt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	platformconfig "github.com/qolzam/forum/internal/platform/config"
	"github.com/qolzam/forum/internal/types"
)

// Config defines the config for the JWT middleware.
type Config struct {
	// The EC public key for validating ES256 tokens.
	PublicKey string
	// The claim key where the UserContext is stored.
	ClaimKey string
	// The context key to store the UserContext.
	UserCtxName string
}

// New creates a new middleware handler. It panics when the public key cannot be parsed,
// since the service cannot authenticate anyone without it.
func New(cfg Config) fiber.Handler {
	ecPublicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(cfg.PublicKey))
	if err != nil {
		panic(fmt.Sprintf("failed to parse EC public key: %v", err))
	}
	if cfg.ClaimKey == "" {
		cfg.ClaimKey = "claim"
	}
	if cfg.UserCtxName == "" {
		cfg.UserCtxName = types.UserCtxName
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return unauthorized(c, "Missing or invalid JWT", "")
		}

		token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return ecPublicKey, nil
		})
		if err != nil {
			return unauthorized(c, "Invalid token", err.Error())
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			return unauthorized(c, "Invalid token", "")
		}

		claimData, ok := claims[cfg.ClaimKey].(map[string]interface{})
		if !ok {
			return unauthorized(c, "Invalid token claim format", "")
		}

		userCtx, err := mapToUserContext(claimData)
		if err != nil {
			return unauthorized(c, "Invalid user context in token", err.Error())
		}

		c.Locals(cfg.UserCtxName, userCtx)
		return c.Next()
	}
}

// extractToken reads the bearer token, falling back to the access_token cookie used by browsers.
func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get(types.HeaderAuthorization)
	if strings.HasPrefix(authHeader, types.BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, types.BearerPrefix))
	}
	return c.Cookies("access_token")
}

func unauthorized(c *fiber.Ctx, message, details string) error {
	body := fiber.Map{
		"code":    "UNAUTHORIZED",
		"message": message,
	}
	if details != "" {
		body["details"] = details
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}

// mapToUserContext converts claim data to UserContext
func mapToUserContext(claimData map[string]interface{}) (types.UserContext, error) {
	var userCtx types.UserContext

	userIDStr, ok := claimData[types.HeaderUID].(string)
	if !ok {
		return userCtx, errors.New("missing or invalid uid in claim")
	}
	userID, err := uuid.FromString(userIDStr)
	if err != nil {
		return userCtx, fmt.Errorf("invalid user ID: %v", err)
	}
	if userID == uuid.Nil {
		return userCtx, errors.New("nil user ID in claim")
	}
	userCtx.UserID = userID

	if username, ok := claimData["username"].(string); ok {
		userCtx.Username = username
	}
	if displayName, ok := claimData["displayName"].(string); ok {
		userCtx.DisplayName = displayName
	}
	if systemRole, ok := claimData["role"].(string); ok {
		userCtx.SystemRole = systemRole
	}

	return userCtx, nil
}

// FromConfig builds the middleware from the platform JWT settings.
func FromConfig(cfg platformconfig.JWTConfig) fiber.Handler {
	return New(Config{PublicKey: cfg.PublicKey, ClaimKey: cfg.ClaimKey})
}
