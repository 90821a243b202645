package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUnknownReference),
		errors.Is(err, pos.ErrInvalidInput), errors.Is(err, pos.ErrPromotionNotApplicable):
		return http.StatusBadRequest
	case errors.Is(err, pos.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, pos.ErrInvalidTransition),
		errors.Is(err, pos.ErrInsufficientPoints),
		errors.Is(err, pos.ErrAlreadyPaid):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.lg.Error("request_failed", err, map[string]any{"method": c.Request.Method, "path": c.FullPath()})
		c.AbortWithStatusJSON(code, gin.H{"error": "internal server error"})
		return
	}
	msg := err.Error()
	if errors.Is(err, store.ErrConflict) {
		msg = conflictMessage(err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

// conflictMessage hides driver text from unique key violations.
func conflictMessage(err error) string {
	if store.IsDuplicate(err) {
		return "a record with the same unique value already exists"
	}
	return "the record is still referenced by other data"
}

// bind decodes the JSON body into dst and reports validation failures per field.
func bind(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return false
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
	return false
}

func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func queryUint(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	u := uint(v)
	return &u, true
}

func queryInt(c *gin.Context, name string, def, max int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
