package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/project-sy789/coffeeorder-sub000/internal/promptpay"
	"github.com/project-sy789/coffeeorder-sub000/internal/utils"
)

// promptPay builds an ad-hoc payload, for counter sales not tied to an order.
// format=png returns the QR image instead of JSON.
func (h *Handler) promptPay(c *gin.Context) {
	var amount float64
	if raw := c.Query("amount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		amount = utils.Money(v)
	}
	qr, err := h.svc.PromptPayFor(c.Request.Context(), amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Query("format") == "png" {
		png, err := promptpay.PNG(qr.Payload, queryInt(c, "size", qrSize, 1024))
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
		return
	}
	c.JSON(http.StatusOK, qr)
}

func (h *Handler) salesReport(c *gin.Context) {
	rep, err := h.svc.SalesReport(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
