package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/promptpay"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

const (
	defaultOrderLimit = 100
	maxOrderLimit     = 1000
	qrSize            = 320
)

// listOrders filters by comma separated status, shop-local date and member.
func (h *Handler) listOrders(c *gin.Context) {
	f := store.OrderFilter{Limit: queryInt(c, "limit", defaultOrderLimit, maxOrderLimit)}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if !pos.ValidStatus(s) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown status " + s})
				return
			}
			f.Statuses = append(f.Statuses, s)
		}
	}
	if date := c.Query("date"); date != "" {
		from, to, err := h.svc.DayRange(date)
		if err != nil {
			h.fail(c, err)
			return
		}
		f.From, f.To = from, to
	}
	member, ok := queryUint(c, "member_id")
	if !ok {
		return
	}
	if member != nil {
		f.MemberID = *member
	}
	orders, err := h.store.ListOrders(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// activeOrders is the kitchen queue.
func (h *Handler) activeOrders(c *gin.Context) {
	orders, err := h.store.ListActiveOrders(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	o, err := h.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) getOrderByCode(c *gin.Context) {
	o, err := h.store.GetOrderByCode(c.Request.Context(), strings.ToUpper(strings.TrimSpace(c.Param("code"))))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) createOrder(c *gin.Context) {
	var in pos.CreateOrderInput
	if !bind(c, &in) {
		return
	}
	o, err := h.svc.CreateOrder(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending preparing ready completed cancelled"`
	Reason string `json:"reason" binding:"max=500"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) payOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in pos.PayInput
	if !bind(c, &in) {
		return
	}
	o, err := h.svc.Pay(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) orderPromptPay(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	qr, err := h.svc.OrderPromptPay(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, qr)
}

func (h *Handler) orderPromptPayPNG(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	qr, err := h.svc.OrderPromptPay(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	png, err := promptpay.PNG(qr.Payload, queryInt(c, "size", qrSize, 1024))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
