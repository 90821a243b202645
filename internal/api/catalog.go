package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

type categoryRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	SortOrder int    `json:"sort_order"`
}

func (h *Handler) listCategories(c *gin.Context) {
	cats, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	cat := &models.Category{Name: strings.TrimSpace(req.Name), SortOrder: req.SortOrder}
	if err := h.store.CreateCategory(c.Request.Context(), cat); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.CategoryChanged, "created", cat)
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	cat, err := h.store.GetCategory(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	cat.Name = strings.TrimSpace(req.Name)
	cat.SortOrder = req.SortOrder
	if err := h.store.SaveCategory(ctx, cat); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.CategoryChanged, "updated", cat)
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.CategoryChanged, "deleted", gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

type productRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=2000"`
	Price       float64 `json:"price" binding:"min=0"`
	CategoryID  *uint   `json:"category_id"`
	ImageURL    string  `json:"image_url" binding:"omitempty,max=512"`
	Available   *bool   `json:"available"`
	SortOrder   int     `json:"sort_order"`
	// OptionIDs replaces the linked options when present.
	OptionIDs []uint `json:"option_ids"`
}

func (h *Handler) listProducts(c *gin.Context) {
	var f store.ProductFilter
	var ok bool
	if f.CategoryID, ok = queryUint(c, "category_id"); !ok {
		return
	}
	switch c.Query("available") {
	case "true", "1":
		v := true
		f.Available = &v
	case "false", "0":
		v := false
		f.Available = &v
	}
	products, err := h.store.ListProducts(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.store.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if !h.categoryExists(c, req.CategoryID) {
		return
	}
	p := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Available:   boolOr(req.Available, true),
		SortOrder:   req.SortOrder,
	}
	ids := req.OptionIDs
	if ids == nil {
		ids = []uint{}
	}
	if err := h.store.CreateProduct(ctx, p, ids); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.ProductChanged, "created", p)
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req productRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	p, err := h.store.GetProduct(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.categoryExists(c, req.CategoryID) {
		return
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = req.Price
	p.CategoryID = req.CategoryID
	p.Category = nil
	p.ImageURL = req.ImageURL
	p.Available = boolOr(req.Available, p.Available)
	p.SortOrder = req.SortOrder
	if err := h.store.SaveProduct(ctx, p, req.OptionIDs); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.ProductChanged, "updated", p)
	c.JSON(http.StatusOK, p)
}

func (h *Handler) categoryExists(c *gin.Context, id *uint) bool {
	if id == nil {
		return true
	}
	_, err := h.store.GetCategory(c.Request.Context(), *id)
	if errors.Is(err, store.ErrNotFound) {
		err = fmt.Errorf("category %d: %w", *id, store.ErrUnknownReference)
	}
	if err != nil {
		h.fail(c, err)
		return false
	}
	return true
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.ProductChanged, "deleted", gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

type ingredientRequest struct {
	InventoryID uint    `json:"inventory_id" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
}

type ingredientsRequest struct {
	Ingredients []ingredientRequest `json:"ingredients" binding:"dive"`
}

// setIngredients replaces the recipe used for stock deduction.
func (h *Handler) setIngredients(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ingredientsRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	seen := make(map[uint]bool, len(req.Ingredients))
	ings := make([]models.ProductIngredient, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		if seen[in.InventoryID] {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "inventory item listed twice"})
			return
		}
		seen[in.InventoryID] = true
		if _, err := h.store.GetInventoryItem(ctx, in.InventoryID); err != nil {
			h.fail(c, err)
			return
		}
		ings = append(ings, models.ProductIngredient{InventoryID: in.InventoryID, Quantity: in.Quantity})
	}
	if err := h.store.SetProductIngredients(ctx, id, ings); err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.store.GetProduct(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.ProductChanged, "updated", p)
	c.JSON(http.StatusOK, p)
}

type optionRequest struct {
	Name       string  `json:"name" binding:"required,max=100"`
	GroupName  string  `json:"group_name" binding:"required,max=50"`
	PriceDelta float64 `json:"price_delta"`
	Active     *bool   `json:"active"`
	SortOrder  int     `json:"sort_order"`
}

func (h *Handler) listOptions(c *gin.Context) {
	opts, err := h.store.ListOptions(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *Handler) createOption(c *gin.Context) {
	var req optionRequest
	if !bind(c, &req) {
		return
	}
	o := &models.CustomizationOption{
		Name:       strings.TrimSpace(req.Name),
		GroupName:  strings.ToLower(strings.TrimSpace(req.GroupName)),
		PriceDelta: req.PriceDelta,
		Active:     boolOr(req.Active, true),
		SortOrder:  req.SortOrder,
	}
	if err := h.store.CreateOption(c.Request.Context(), o); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.OptionChanged, "created", o)
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) updateOption(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req optionRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	o, err := h.store.GetOption(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	o.Name = strings.TrimSpace(req.Name)
	o.GroupName = strings.ToLower(strings.TrimSpace(req.GroupName))
	o.PriceDelta = req.PriceDelta
	o.Active = boolOr(req.Active, o.Active)
	o.SortOrder = req.SortOrder
	if err := h.store.SaveOption(ctx, o); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.OptionChanged, "updated", o)
	c.JSON(http.StatusOK, o)
}

func (h *Handler) deleteOption(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteOption(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.OptionChanged, "deleted", gin.H{"id": id})
	c.Status(http.StatusNoContent)
}
