package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
)

const (
	defaultTxnLimit = 100
	maxTxnLimit     = 1000
)

// inventoryRequest sets the item definition. Quantity is only taken on
// create; later changes go through adjust so they leave a transaction.
type inventoryRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Unit        string  `json:"unit" binding:"required,max=16"`
	Quantity    float64 `json:"quantity" binding:"min=0"`
	MinQuantity float64 `json:"min_quantity" binding:"min=0"`
	CostPerUnit float64 `json:"cost_per_unit" binding:"min=0"`
}

func (h *Handler) listInventory(c *gin.Context) {
	items, err := h.store.ListInventory(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) lowStock(c *gin.Context) {
	items, err := h.store.ListLowStock(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createInventoryItem(c *gin.Context) {
	var req inventoryRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	it := &models.InventoryItem{
		Name:        strings.TrimSpace(req.Name),
		Unit:        strings.TrimSpace(req.Unit),
		MinQuantity: req.MinQuantity,
		CostPerUnit: req.CostPerUnit,
	}
	if err := h.store.CreateInventoryItem(ctx, it); err != nil {
		h.fail(c, err)
		return
	}
	if req.Quantity > 0 {
		adjusted, err := h.svc.AdjustInventory(ctx, it.ID, pos.AdjustInput{Type: models.TxRestock, Quantity: req.Quantity, Note: "opening stock"})
		if err != nil {
			h.fail(c, err)
			return
		}
		it = adjusted
	}
	h.publish(c, realtime.InventoryChanged, "created", it)
	c.JSON(http.StatusCreated, it)
}

func (h *Handler) updateInventoryItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req inventoryRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	it, err := h.store.GetInventoryItem(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	it.Name = strings.TrimSpace(req.Name)
	it.Unit = strings.TrimSpace(req.Unit)
	it.MinQuantity = req.MinQuantity
	it.CostPerUnit = req.CostPerUnit
	if err := h.store.SaveInventoryItem(ctx, it); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.InventoryChanged, "updated", it)
	c.JSON(http.StatusOK, it)
}

func (h *Handler) deleteInventoryItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteInventoryItem(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.InventoryChanged, "deleted", gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

func (h *Handler) adjustInventory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in pos.AdjustInput
	if !bind(c, &in) {
		return
	}
	it, err := h.svc.AdjustInventory(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) inventoryTransactions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.GetInventoryItem(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	txns, err := h.store.ListInventoryTransactions(ctx, id, queryInt(c, "limit", defaultTxnLimit, maxTxnLimit))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}
