package trial

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trialwatch/internal/auth"
)

// Handler exposes HTTP handlers for trial resources.
type Handler struct {
	svc        *Service
	log        *slog.Logger
	cronSecret string
}

func NewHandler(svc *Service, log *slog.Logger, cronSecret string) *Handler {
	return &Handler{svc: svc, log: log, cronSecret: cronSecret}
}

// RegisterRoutes mounts the API. The identity middleware resolves the caller
// without rejecting anonymous requests; strictness lives in the service.
func (h *Handler) RegisterRoutes(router *gin.Engine, identity gin.HandlerFunc) {
	api := router.Group("/api")

	trials := api.Group("/trials", identity)
	trials.GET("", h.list)
	trials.GET("/summary", h.summary)
	trials.GET("/closest", h.closest)
	trials.GET("/:id", h.getByID)
	trials.POST("", h.create)
	trials.PUT("/:id", h.update)
	trials.DELETE("/:id", h.delete)

	api.POST("/cron/update-trials", h.refreshStatuses)
}

func (h *Handler) list(c *gin.Context) {
	owner, _ := auth.CallerID(c)

	trials, err := h.svc.List(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if trials == nil {
		trials = []Trial{}
	}

	c.JSON(http.StatusOK, gin.H{"data": trials})
}

func (h *Handler) summary(c *gin.Context) {
	owner, _ := auth.CallerID(c)

	summary, err := h.svc.Summarize(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// closest is public: it backs the landing-page countdown and looks across
// all owners.
func (h *Handler) closest(c *gin.Context) {
	t, seconds, err := h.svc.Closest(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"trial":   nil,
				"message": "No active trials found",
			})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trial":              t,
		"expiresAt":          t.ExpiresAt,
		"secondsUntilExpiry": seconds,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	owner, _ := auth.CallerID(c)

	t, err := h.svc.Get(c.Request.Context(), id, owner)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": t})
}

func (h *Handler) create(c *gin.Context) {
	var in MutationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	owner, _ := auth.CallerID(c)

	t, warning, err := h.svc.Save(c.Request.Context(), in, owner)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mutationResponse(t, warning))
}

func (h *Handler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var in MutationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	// The path wins over any id in the payload.
	in.ID = &id
	owner, _ := auth.CallerID(c)

	t, warning, err := h.svc.Save(c.Request.Context(), in, owner)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mutationResponse(t, warning))
}

func (h *Handler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	owner, _ := auth.CallerID(c)

	if err := h.svc.Delete(c.Request.Context(), id, owner); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// refreshStatuses is the periodic trigger's entry point. It is guarded by a
// shared bearer secret rather than a session.
func (h *Handler) refreshStatuses(c *gin.Context) {
	if !h.cronAuthorized(c.GetHeader("Authorization")) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	checked, err := h.svc.RefreshStatuses(c.Request.Context())
	if err != nil {
		h.log.Error("status refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "status refresh failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "trial statuses updated",
		"trialsChecked": checked,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) cronAuthorized(header string) bool {
	if h.cronSecret == "" {
		return false
	}
	expected := "Bearer " + h.cronSecret
	return subtle.ConstantTimeCompare([]byte(header), []byte(expected)) == 1
}

func mutationResponse(t Trial, warning string) gin.H {
	resp := gin.H{"data": t}
	if warning != "" {
		resp["warning"] = warning
	}
	return resp
}

// respondError maps service errors onto transport responses. Unknown errors
// are logged with context and surfaced as a generic internal error.
func (h *Handler) respondError(c *gin.Context, err error) {
	if verr, ok := AsValidationErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"errors": verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "trial not found"})
	default:
		h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
