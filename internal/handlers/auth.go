package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/rebooked/campus-service/internal/config"
)

// TokenParser resolves a bearer token to a stable user id.
type TokenParser func(token string) (string, error)

// NewCasdoorTokenParser configures the Casdoor SDK and returns a parser for its JWTs.
func NewCasdoorTokenParser(cfg config.AuthConfig) TokenParser {
	casdoorsdk.InitConfig(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.OrganizationName, cfg.ApplicationName)

	return func(token string) (string, error) {
		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			return "", err
		}
		if claims.User.Id != "" {
			return claims.User.Id, nil
		}
		return claims.User.Owner + "/" + claims.User.Name, nil
	}
}

// Authenticate identifies signed-in users from a bearer token. Requests without a token pass
// through as guests; a token that fails to parse is rejected.
func Authenticate(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if parser == nil || header == "" {
			c.Next()
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
				Details: "expected a Bearer token",
			})
			return
		}

		userID, err := parser(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
				Details: "invalid or expired token",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
