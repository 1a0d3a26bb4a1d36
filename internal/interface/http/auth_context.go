package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/dreamvision/internal/domain/auth"
)

const authClaimsKey = "auth_claims"

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(authClaimsKey, claims)
}

func getClaims(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}

// currentUser returns the dreamer id of an authenticated request and aborts otherwise.
func currentUser(c *gin.Context) (int64, bool) {
	claims, ok := getClaims(c)
	if !ok || claims.UserID <= 0 {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authentication", nil))
		return 0, false
	}
	return claims.UserID, true
}

// requestUserID is the logging view of currentUser; zero when anonymous.
func requestUserID(c *gin.Context) int64 {
	claims, ok := getClaims(c)
	if !ok {
		return 0
	}
	return claims.UserID
}
