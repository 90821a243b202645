package api

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
)

const (
	defaultMemberLimit = 50
	maxMemberLimit     = 500
)

type memberRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Phone string `json:"phone" binding:"required,phone"`
	Email string `json:"email" binding:"omitempty,email,max=255"`
}

func (h *Handler) listMembers(c *gin.Context) {
	members, err := h.store.ListMembers(c.Request.Context(), c.Query("q"), queryInt(c, "limit", defaultMemberLimit, maxMemberLimit))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) getMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := h.store.GetMember(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// getMemberByPhone accepts formatted numbers such as 081-234-5678.
func (h *Handler) getMemberByPhone(c *gin.Context) {
	phone := digitsOnly(c.Param("phone"))
	if !phonePattern.MatchString(phone) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid phone"})
		return
	}
	m, err := h.store.GetMemberByPhone(c.Request.Context(), phone)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) createMember(c *gin.Context) {
	var req memberRequest
	if !bind(c, &req) {
		return
	}
	m := &models.Member{
		Name:  strings.TrimSpace(req.Name),
		Phone: req.Phone,
		Email: strings.TrimSpace(req.Email),
	}
	if err := h.store.CreateMember(c.Request.Context(), m); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.MemberChanged, "created", m)
	c.JSON(http.StatusCreated, m)
}

// updateMember edits contact details. Points and visit counters are only
// changed by orders.
func (h *Handler) updateMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req memberRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	m, err := h.store.GetMember(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	m.Name = strings.TrimSpace(req.Name)
	m.Phone = req.Phone
	m.Email = strings.TrimSpace(req.Email)
	if err := h.store.SaveMember(ctx, m); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.MemberChanged, "updated", m)
	c.JSON(http.StatusOK, m)
}

func (h *Handler) deleteMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteMember(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.MemberChanged, "deleted", gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
