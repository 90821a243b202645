// Package api is the REST surface of the POS, served with gin.
package api

import (
	"context"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/logger"
	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

type Handler struct {
	store  *store.Store
	svc    *pos.Service
	hub    *realtime.Hub
	lg     *logger.Logger
	memory bool
}

type Options struct {
	Store          *store.Store
	Service        *pos.Service
	Hub            *realtime.Hub
	Logger         *logger.Logger
	AllowedOrigins []string
	// Memory is reported by the health check.
	Memory bool
}

var phonePattern = regexp.MustCompile(`^0[0-9]{8,9}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
	}
}

// NewRouter wires every route under /api.
func NewRouter(opts Options) *gin.Engine {
	h := &Handler{
		store:  opts.Store,
		svc:    opts.Service,
		hub:    opts.Hub,
		lg:     opts.Logger.With("api"),
		memory: opts.Memory,
	}

	r := gin.New()
	r.Use(recovery(h.lg), requestLogger(h.lg))
	if cfg, ok := corsConfig(opts.AllowedOrigins); ok {
		r.Use(cors.New(cfg))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	api := r.Group("/api")
	api.GET("/healthz", h.health)
	api.POST("/auth/login", h.login)

	api.GET("/users", h.listUsers)
	api.POST("/users", h.createUser)
	api.PUT("/users/:id", h.updateUser)
	api.DELETE("/users/:id", h.deleteUser)

	api.GET("/settings", h.getSettings)
	api.PUT("/settings", h.updateSettings)

	api.GET("/categories", h.listCategories)
	api.POST("/categories", h.createCategory)
	api.PUT("/categories/:id", h.updateCategory)
	api.DELETE("/categories/:id", h.deleteCategory)

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.POST("/products", h.createProduct)
	api.PUT("/products/:id", h.updateProduct)
	api.DELETE("/products/:id", h.deleteProduct)
	api.PUT("/products/:id/ingredients", h.setIngredients)

	api.GET("/customization-options", h.listOptions)
	api.POST("/customization-options", h.createOption)
	api.PUT("/customization-options/:id", h.updateOption)
	api.DELETE("/customization-options/:id", h.deleteOption)

	api.GET("/members", h.listMembers)
	api.GET("/members/phone/:phone", h.getMemberByPhone)
	api.GET("/members/:id", h.getMember)
	api.POST("/members", h.createMember)
	api.PUT("/members/:id", h.updateMember)
	api.DELETE("/members/:id", h.deleteMember)

	api.GET("/orders", h.listOrders)
	api.GET("/orders/active", h.activeOrders)
	api.GET("/orders/code/:code", h.getOrderByCode)
	api.GET("/orders/:id", h.getOrder)
	api.POST("/orders", h.createOrder)
	api.PATCH("/orders/:id/status", h.updateOrderStatus)
	api.POST("/orders/:id/pay", h.payOrder)
	api.GET("/orders/:id/promptpay", h.orderPromptPay)
	api.GET("/orders/:id/promptpay.png", h.orderPromptPayPNG)

	api.GET("/inventory", h.listInventory)
	api.GET("/inventory/low-stock", h.lowStock)
	api.POST("/inventory", h.createInventoryItem)
	api.PUT("/inventory/:id", h.updateInventoryItem)
	api.DELETE("/inventory/:id", h.deleteInventoryItem)
	api.POST("/inventory/:id/adjust", h.adjustInventory)
	api.GET("/inventory/:id/transactions", h.inventoryTransactions)

	api.GET("/promotions", h.listPromotions)
	api.GET("/promotions/active", h.activePromotions)
	api.POST("/promotions", h.createPromotion)
	api.POST("/promotions/validate", h.validatePromotion)
	api.PUT("/promotions/:id", h.updatePromotion)
	api.DELETE("/promotions/:id", h.deletePromotion)

	api.GET("/points/settings", h.getPointSettings)
	api.PUT("/points/settings", h.updatePointSettings)
	api.GET("/points/rules", h.listRules)
	api.POST("/points/rules", h.createRule)
	api.PUT("/points/rules/:id", h.updateRule)
	api.DELETE("/points/rules/:id", h.deleteRule)
	api.POST("/points/preview", h.previewPoints)

	api.GET("/promptpay", h.promptPay)
	api.GET("/reports/sales", h.salesReport)
	api.GET("/events", h.hub.Stream)

	return r
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	db := "ok"
	code := http.StatusOK
	if err := database.Ping(ctx, h.store.DB()); err != nil {
		db = err.Error()
		code = http.StatusServiceUnavailable
	}
	mode := "postgres"
	if h.memory {
		mode = "memory"
	}
	c.JSON(code, gin.H{
		"status":      http.StatusText(code),
		"database":    db,
		"storage":     mode,
		"subscribers": h.hub.Subscribers(),
		"dropped":     h.hub.Dropped(),
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}

// publish announces a change made through a CRUD endpoint.
func (h *Handler) publish(c *gin.Context, typ, action string, data interface{}) {
	h.hub.Publish(c.Request.Context(), typ, gin.H{"action": action, "data": data})
}
