package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/dreamvision/internal/domain/auth"
	"github.com/yanqian/dreamvision/internal/domain/dream"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc  auth.Service
	dreamSvc dream.Service
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(authSvc auth.Service, dreamSvc dream.Service, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:  authSvc,
		dreamSvc: dreamSvc,
		logger:   logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

func entryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// unparseable ids cannot belong to the caller
		abortWithError(c, NewHTTPError(http.StatusNotFound, dream.CodeNotFound, "dream not found", err))
		return uuid.Nil, false
	}
	return id, true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
