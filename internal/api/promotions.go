package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
)

type promotionRequest struct {
	Name          string     `json:"name" binding:"required,max=255"`
	Code          string     `json:"code" binding:"max=64"`
	Description   string     `json:"description" binding:"max=2000"`
	DiscountType  string     `json:"discount_type" binding:"required,oneof=percent fixed"`
	DiscountValue float64    `json:"discount_value" binding:"required,gt=0"`
	MinPurchase   float64    `json:"min_purchase" binding:"min=0"`
	MaxDiscount   float64    `json:"max_discount" binding:"min=0"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
	UsageLimit    int        `json:"usage_limit" binding:"min=0"`
	Active        *bool      `json:"active"`
}

func (r *promotionRequest) apply(p *models.Promotion) {
	p.Name = strings.TrimSpace(r.Name)
	p.Code = nil
	if code := strings.TrimSpace(r.Code); code != "" {
		p.Code = &code
	}
	p.Description = r.Description
	p.DiscountType = r.DiscountType
	p.DiscountValue = r.DiscountValue
	p.MinPurchase = r.MinPurchase
	p.MaxDiscount = r.MaxDiscount
	p.StartsAt = r.StartsAt
	p.EndsAt = r.EndsAt
	p.UsageLimit = r.UsageLimit
	p.Active = boolOr(r.Active, p.ID == 0 || p.Active)
}

func (h *Handler) listPromotions(c *gin.Context) {
	promos, err := h.store.ListPromotions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, promos)
}

func (h *Handler) activePromotions(c *gin.Context) {
	promos, err := h.svc.ActivePromotions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, promos)
}

func (h *Handler) createPromotion(c *gin.Context) {
	var req promotionRequest
	if !bind(c, &req) {
		return
	}
	p := &models.Promotion{}
	req.apply(p)
	if err := pos.CheckPromotion(p); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.CreatePromotion(c.Request.Context(), p); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.PromotionChanged, "created", p)
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) updatePromotion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req promotionRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	p, err := h.store.GetPromotion(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	req.apply(p)
	if err := pos.CheckPromotion(p); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.SavePromotion(ctx, p); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.PromotionChanged, "updated", p)
	c.JSON(http.StatusOK, p)
}

func (h *Handler) deletePromotion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeletePromotion(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.PromotionChanged, "deleted", gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

func (h *Handler) validatePromotion(c *gin.Context) {
	var q pos.PromotionQuery
	if !bind(c, &q) {
		return
	}
	res, err := h.svc.ValidatePromotion(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
