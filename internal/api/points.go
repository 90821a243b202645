package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
)

type pointSettingsRequest struct {
	Enabled       *bool   `json:"enabled"`
	SpendPerPoint float64 `json:"spend_per_point" binding:"required,gt=0"`
	PointsPerStep int     `json:"points_per_step" binding:"omitempty,min=1"`
	MinOrderTotal float64 `json:"min_order_total" binding:"min=0"`
}

func (h *Handler) getPointSettings(c *gin.Context) {
	ps, err := h.store.GetPointSettings(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (h *Handler) updatePointSettings(c *gin.Context) {
	var req pointSettingsRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	ps, err := h.store.GetPointSettings(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	ps.Enabled = boolOr(req.Enabled, ps.Enabled)
	ps.SpendPerPoint = req.SpendPerPoint
	if req.PointsPerStep > 0 {
		ps.PointsPerStep = req.PointsPerStep
	}
	ps.MinOrderTotal = req.MinOrderTotal
	if err := pos.CheckPointSettings(ps); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.SavePointSettings(ctx, ps); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.PointsChanged, "settings_updated", ps)
	c.JSON(http.StatusOK, ps)
}

type ruleRequest struct {
	Name           string  `json:"name" binding:"required,max=255"`
	PointsRequired int     `json:"points_required" binding:"required,gt=0"`
	DiscountAmount float64 `json:"discount_amount" binding:"required,gt=0"`
	Active         *bool   `json:"active"`
}

func (h *Handler) listRules(c *gin.Context) {
	rules, err := h.store.ListRedemptionRules(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *Handler) createRule(c *gin.Context) {
	var req ruleRequest
	if !bind(c, &req) {
		return
	}
	r := &models.PointRedemptionRule{
		Name:           strings.TrimSpace(req.Name),
		PointsRequired: req.PointsRequired,
		DiscountAmount: req.DiscountAmount,
		Active:         boolOr(req.Active, true),
	}
	if err := pos.CheckRedemptionRule(r); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.CreateRedemptionRule(c.Request.Context(), r); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.PointsChanged, "rule_created", r)
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) updateRule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ruleRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	r, err := h.store.GetRedemptionRule(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	r.Name = strings.TrimSpace(req.Name)
	r.PointsRequired = req.PointsRequired
	r.DiscountAmount = req.DiscountAmount
	r.Active = boolOr(req.Active, r.Active)
	if err := pos.CheckRedemptionRule(r); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.SaveRedemptionRule(ctx, r); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.PointsChanged, "rule_updated", r)
	c.JSON(http.StatusOK, r)
}

func (h *Handler) deleteRule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteRedemptionRule(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.PointsChanged, "rule_deleted", gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

// previewPoints tells the POS what the member would earn and which rules
// they can redeem on the current cart.
func (h *Handler) previewPoints(c *gin.Context) {
	var in pos.PointsPreviewInput
	if !bind(c, &in) {
		return
	}
	p, err := h.svc.PreviewPoints(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
