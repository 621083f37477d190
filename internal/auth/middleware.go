package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type TokenParser interface {
	ParseToken(token string) (string, error)
}

// Middleware rejects requests without a valid "Bearer" token and stores the
// username in the gin context.
func Middleware(parser TokenParser, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			apperror.Respond(c, log, unauthorized("autenticação necessária", errInvalidToken))
			return
		}

		username, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			apperror.Respond(c, log, err)
			return
		}

		c.Set(usernameKey, username)
		c.Next()
	}
}

func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}
