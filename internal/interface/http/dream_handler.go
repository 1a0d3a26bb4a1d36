package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

// CreateDream journals an entry and optionally interprets it.
func (h *Handler) CreateDream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dream.CreateEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.dreamSvc.CreateEntry(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListDreams returns one page of the caller's journal.
func (h *Handler) ListDreams(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	filter := dream.ListFilter{
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
	}
	page, err := h.dreamSvc.ListEntries(c.Request.Context(), userID, filter)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetDream returns one entry.
func (h *Handler) GetDream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	entry, err := h.dreamSvc.GetEntry(c.Request.Context(), userID, id)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"dream": entry})
}

// UpdateDream edits an entry, re-interpreting it when it had an interpretation.
func (h *Handler) UpdateDream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	var req dream.UpdateEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.dreamSvc.UpdateEntry(c.Request.Context(), userID, id, req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteDream removes an entry and its interpretation.
func (h *Handler) DeleteDream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	if err := h.dreamSvc.DeleteEntry(c.Request.Context(), userID, id); err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Interpret attaches an interpretation to an entry that has none.
func (h *Handler) Interpret(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	result, err := h.dreamSvc.RequestInterpretation(c.Request.Context(), userID, id)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetInterpretation returns the interpretation attached to an entry.
func (h *Handler) GetInterpretation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	interp, err := h.dreamSvc.GetInterpretation(c.Request.Context(), userID, id)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"interpretation": interp})
}

type visualizeRequest struct {
	Style string `json:"style"`
}

// Visualize picks a scene image for an entry.
func (h *Handler) Visualize(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	var req visualizeRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	url, err := h.dreamSvc.Visualize(c.Request.Context(), userID, id, req.Style)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

// GetVisualization returns the stored scene image.
func (h *Handler) GetVisualization(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	url, err := h.dreamSvc.Visualization(c.Request.Context(), userID, id)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

// Entitlement reports the caller's interpretation allowance.
func (h *Handler) Entitlement(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	decision, err := h.dreamSvc.Entitlement(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, decision)
}

// Upgrade moves the caller to the premium plan.
func (h *Handler) Upgrade(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	decision, err := h.dreamSvc.Upgrade(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, decision)
}

// Stats returns aggregate journal statistics.
func (h *Handler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.dreamSvc.Stats(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Export returns a download link or, without object storage, the archive itself.
func (h *Handler) Export(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.dreamSvc.Export(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	if result.URL != "" {
		c.JSON(http.StatusOK, gin.H{"url": result.URL, "filename": result.Filename})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, "application/json", result.Payload)
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
