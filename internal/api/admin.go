package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
)

type loginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// login verifies credentials only. There is no session.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type userRequest struct {
	Username    string `json:"username" binding:"required,max=64"`
	Password    string `json:"password" binding:"omitempty,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"max=255"`
	Role        string `json:"role" binding:"omitempty,oneof=admin staff"`
	Active      *bool  `json:"active"`
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) createUser(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	u, err := pos.NewUser(req.Username, req.Password, req.DisplayName, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if err := h.store.CreateUser(c.Request.Context(), u); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.UserChanged, "created", u)
	c.JSON(http.StatusCreated, u)
}

// updateUser keeps the current password when none is sent.
func (h *Handler) updateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req userRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	u, err := h.store.GetUser(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	u.Username = strings.TrimSpace(req.Username)
	u.DisplayName = req.DisplayName
	if req.Role != "" {
		u.Role = req.Role
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if req.Password != "" {
		hash, err := pos.HashPassword(req.Password)
		if err != nil {
			h.fail(c, err)
			return
		}
		u.PasswordHash = hash
	}
	if err := h.store.SaveUser(ctx, u); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.UserChanged, "updated", u)
	c.JSON(http.StatusOK, u)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.UserChanged, "deleted", gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

type settingsRequest struct {
	ShopName             string `json:"shop_name" binding:"required,max=255"`
	Address              string `json:"address" binding:"max=1000"`
	Phone                string `json:"phone" binding:"max=32"`
	TaxID                string `json:"tax_id" binding:"max=32"`
	PromptPayID          string `json:"promptpay_id" binding:"max=32"`
	Currency             string `json:"currency" binding:"omitempty,len=3"`
	ReceiptFooter        string `json:"receipt_footer" binding:"max=1000"`
	OpenTime             string `json:"open_time" binding:"omitempty,datetime=15:04"`
	CloseTime            string `json:"close_time" binding:"omitempty,datetime=15:04"`
	AcceptCustomerOrders *bool  `json:"accept_customer_orders"`
}

func (h *Handler) getSettings(c *gin.Context) {
	st, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req settingsRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	st, err := h.store.GetSettings(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	st.ShopName = req.ShopName
	st.Address = req.Address
	st.Phone = req.Phone
	st.TaxID = req.TaxID
	st.PromptPayID = req.PromptPayID
	if req.Currency != "" {
		st.Currency = strings.ToUpper(req.Currency)
	}
	st.ReceiptFooter = req.ReceiptFooter
	st.OpenTime = req.OpenTime
	st.CloseTime = req.CloseTime
	if req.AcceptCustomerOrders != nil {
		st.AcceptCustomerOrders = *req.AcceptCustomerOrders
	}
	if err := h.store.SaveSettings(ctx, st); err != nil {
		h.fail(c, err)
		return
	}
	h.publish(c, realtime.SettingsChanged, "updated", st)
	c.JSON(http.StatusOK, st)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

