package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/dreamvision/internal/domain/auth"
	apperrors "github.com/yanqian/dreamvision/pkg/errors"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errMalformedBearer      = errors.New("invalid authorization header")
)

func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", err.Error(), nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		switch {
		case err == nil:
		case apperrors.IsCode(err, auth.CodeInvalidToken):
			// a presented but rejected access token is forbidden, not anonymous
			abortWithError(c, NewHTTPError(http.StatusForbidden, auth.CodeInvalidToken, apperrors.MessageOf(err), err))
			return
		default:
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", "failed to validate token", err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errMissingAuthorization
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMalformedBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMalformedBearer
	}
	return token, nil
}
