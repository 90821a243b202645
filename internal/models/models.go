// Package models holds the gorm models for the POS schema.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Setting is the single shop configuration row (ID 1).
type Setting struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	ShopName             string    `gorm:"size:255;not null" json:"shop_name"`
	Address              string    `gorm:"type:text" json:"address"`
	Phone                string    `gorm:"size:32" json:"phone"`
	TaxID                string    `gorm:"size:32" json:"tax_id"`
	PromptPayID          string    `gorm:"size:32" json:"promptpay_id"`
	Currency             string    `gorm:"size:8;default:THB" json:"currency"`
	ReceiptFooter        string    `gorm:"type:text" json:"receipt_footer"`
	OpenTime             string    `gorm:"size:5" json:"open_time"`
	CloseTime            string    `gorm:"size:5" json:"close_time"`
	AcceptCustomerOrders bool      `json:"accept_customer_orders"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	DisplayName  string    `gorm:"size:255" json:"display_name"`
	Role         string    `gorm:"size:16;not null;default:staff" json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	Name        string                `gorm:"size:255;not null" json:"name"`
	Description string                `gorm:"type:text" json:"description"`
	Price       float64               `gorm:"not null" json:"price"`
	CategoryID  *uint                 `gorm:"index" json:"category_id"`
	Category    *Category             `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	ImageURL    string                `gorm:"size:512" json:"image_url"`
	Available   bool                  `json:"available"`
	SortOrder   int                   `gorm:"default:0" json:"sort_order"`
	Options     []CustomizationOption `gorm:"many2many:product_options;" json:"options,omitempty"`
	Ingredients []ProductIngredient   `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

type CustomizationOption struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	GroupName  string    `gorm:"size:50;not null;index" json:"group_name"`
	PriceDelta float64   `gorm:"default:0" json:"price_delta"`
	Active     bool      `json:"active"`
	SortOrder  int       `gorm:"default:0" json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (CustomizationOption) TableName() string { return "customization_options" }

type Member struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Phone       string     `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	Email       string     `gorm:"size:255" json:"email"`
	Points      int        `gorm:"not null;default:0" json:"points"`
	TotalSpent  float64    `gorm:"not null;default:0" json:"total_spent"`
	VisitCount  int        `gorm:"not null;default:0" json:"visit_count"`
	LastVisitAt *time.Time `json:"last_visit_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Member) TableName() string { return "members" }

// Order statuses.
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"

	SourcePOS      = "pos"
	SourceCustomer = "customer"

	PaymentCash      = "cash"
	PaymentPromptPay = "promptpay"
	PaymentCard      = "card"

	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

type Order struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	Code              string      `gorm:"size:32;not null;uniqueIndex" json:"code"`
	MemberID          *uint       `gorm:"index" json:"member_id"`
	Member            *Member     `gorm:"constraint:OnDelete:SET NULL" json:"member,omitempty"`
	CustomerName      string      `gorm:"size:255" json:"customer_name"`
	OrderType         string      `gorm:"size:16;not null;default:takeaway" json:"order_type"`
	Source            string      `gorm:"size:16;not null;default:pos" json:"source"`
	TableNumber       string      `gorm:"size:16" json:"table_number"`
	Status            string      `gorm:"size:16;not null;default:pending;index" json:"status"`
	PaymentMethod     string      `gorm:"size:16" json:"payment_method"`
	PaymentStatus     string      `gorm:"size:16;not null;default:unpaid" json:"payment_status"`
	Subtotal          float64     `gorm:"not null;default:0" json:"subtotal"`
	PromotionID       *uint       `gorm:"index" json:"promotion_id"`
	PromotionDiscount float64     `gorm:"not null;default:0" json:"promotion_discount"`
	RedemptionRuleID  *uint       `json:"redemption_rule_id"`
	PointsRedeemed    int         `gorm:"not null;default:0" json:"points_redeemed"`
	PointsDiscount    float64     `gorm:"not null;default:0" json:"points_discount"`
	Total             float64     `gorm:"not null;default:0" json:"total"`
	PointsEarned      int         `gorm:"not null;default:0" json:"points_earned"`
	CashReceived      float64     `gorm:"not null;default:0" json:"cash_received"`
	ChangeDue         float64     `gorm:"not null;default:0" json:"change_due"`
	Note              string      `gorm:"type:text" json:"note"`
	CancelReason      string      `gorm:"type:text" json:"cancel_reason,omitempty"`
	PaidAt            *time.Time  `json:"paid_at"`
	CompletedAt       *time.Time  `json:"completed_at"`
	CancelledAt       *time.Time  `json:"cancelled_at"`
	Items             []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt         time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// IsTerminal reports whether the order can no longer change status.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// SelectedOption is the snapshot of a customization chosen for an order item.
type SelectedOption struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	GroupName  string  `json:"group_name"`
	PriceDelta float64 `json:"price_delta"`
}

// SelectedOptions is stored as a JSON text column.
type SelectedOptions []SelectedOption

func (s SelectedOptions) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SelectedOptions) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = SelectedOptions{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for SelectedOptions", value)
	}
	if len(raw) == 0 {
		*s = SelectedOptions{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	ProductID    *uint           `gorm:"index" json:"product_id"`
	ProductName  string          `gorm:"size:255;not null" json:"product_name"`
	BasePrice    float64         `gorm:"not null" json:"base_price"`
	Options      SelectedOptions `gorm:"type:text" json:"options"`
	OptionsTotal float64         `gorm:"not null;default:0" json:"options_total"`
	UnitPrice    float64         `gorm:"not null" json:"unit_price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	LineTotal    float64         `gorm:"not null" json:"line_total"`
	Note         string          `gorm:"type:text" json:"note"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }

const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

type Promotion struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Code          *string    `gorm:"size:64;uniqueIndex" json:"code"`
	Description   string     `gorm:"type:text" json:"description"`
	DiscountType  string     `gorm:"size:16;not null" json:"discount_type"`
	DiscountValue float64    `gorm:"not null" json:"discount_value"`
	MinPurchase   float64    `gorm:"not null;default:0" json:"min_purchase"`
	MaxDiscount   float64    `gorm:"not null;default:0" json:"max_discount"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
	UsageLimit    int        `gorm:"not null;default:0" json:"usage_limit"`
	UsageCount    int        `gorm:"not null;default:0" json:"usage_count"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Promotion) TableName() string { return "promotions" }

// PointSetting is the single loyalty configuration row (ID 1).
type PointSetting struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Enabled       bool      `json:"enabled"`
	SpendPerPoint float64   `gorm:"not null;default:25" json:"spend_per_point"`
	PointsPerStep int       `gorm:"not null;default:1" json:"points_per_step"`
	MinOrderTotal float64   `gorm:"not null;default:0" json:"min_order_total"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (PointSetting) TableName() string { return "point_settings" }

type PointRedemptionRule struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	PointsRequired int       `gorm:"not null" json:"points_required"`
	DiscountAmount float64   `gorm:"not null" json:"discount_amount"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (PointRedemptionRule) TableName() string { return "point_redemption_rules" }

type InventoryItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Unit        string    `gorm:"size:16;not null" json:"unit"`
	Quantity    float64   `gorm:"not null;default:0" json:"quantity"`
	MinQuantity float64   `gorm:"not null;default:0" json:"min_quantity"`
	CostPerUnit float64   `gorm:"not null;default:0" json:"cost_per_unit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string { return "inventory" }

// IsLow reports whether stock is at or below the reorder threshold.
func (i *InventoryItem) IsLow() bool { return i.Quantity <= i.MinQuantity }

type ProductIngredient struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProductID   uint           `gorm:"not null;uniqueIndex:idx_product_inventory" json:"product_id"`
	InventoryID uint           `gorm:"not null;uniqueIndex:idx_product_inventory" json:"inventory_id"`
	Inventory   *InventoryItem `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE" json:"inventory,omitempty"`
	Quantity    float64        `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (ProductIngredient) TableName() string { return "product_ingredients" }

const (
	TxRestock    = "restock"
	TxUsage      = "usage"
	TxAdjustment = "adjustment"
	TxWaste      = "waste"
)

type InventoryTransaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InventoryID  uint      `gorm:"not null;index" json:"inventory_id"`
	Type         string    `gorm:"size:16;not null" json:"type"`
	Quantity     float64   `gorm:"not null" json:"quantity"`
	BalanceAfter float64   `gorm:"not null" json:"balance_after"`
	OrderID      *uint     `gorm:"index" json:"order_id"`
	Note         string    `gorm:"type:text" json:"note"`
	CreatedBy    string    `gorm:"size:64" json:"created_by"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (InventoryTransaction) TableName() string { return "inventory_transactions" }

// All lists every model in dependency order, for migrations and test setup.
func All() []interface{} {
	return []interface{}{
		&Setting{},
		&User{},
		&Category{},
		&CustomizationOption{},
		&Product{},
		&Member{},
		&Promotion{},
		&PointSetting{},
		&PointRedemptionRule{},
		&InventoryItem{},
		&ProductIngredient{},
		&Order{},
		&OrderItem{},
		&InventoryTransaction{},
	}
}
