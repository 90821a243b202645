package pos

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/logger"
	"github.com/project-sy789/coffeeorder-sub000/internal/migrations"
	"github.com/project-sy789/coffeeorder-sub000/internal/models"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

var (
	bangkok = time.FixedZone("ICT", 7*60*60)
	fixedAt = time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc    *Service
	store  *store.Store
	hub    *realtime.Hub
	latte  *models.Product
	tea    *models.Product
	oat    *models.CustomizationOption
	shot   *models.CustomizationOption
	beans  *models.InventoryItem
	milk   *models.InventoryItem
	member *models.Member
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if _, err := migrations.Apply(ctx, db, "_test_migrations"); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	st := store.New(db)
	hub := realtime.NewHub(logger.Discard(), 64)
	t.Cleanup(hub.Close)
	f := &fixture{
		svc:   NewService(st, hub, bangkok, logger.Discard(), WithClock(func() time.Time { return fixedAt })),
		store: st,
		hub:   hub,
		oat:   &models.CustomizationOption{Name: "Oat milk", GroupName: "milk", PriceDelta: 15, Active: true},
		shot:  &models.CustomizationOption{Name: "Extra shot", GroupName: "topping", PriceDelta: 10, Active: true},
		beans: &models.InventoryItem{Name: "Espresso beans", Unit: "g", Quantity: 1000, MinQuantity: 100},
		milk:  &models.InventoryItem{Name: "Milk", Unit: "ml", Quantity: 500, MinQuantity: 200},
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	must(st.CreateOption(ctx, f.oat))
	must(st.CreateOption(ctx, f.shot))
	must(st.CreateInventoryItem(ctx, f.beans))
	must(st.CreateInventoryItem(ctx, f.milk))

	f.latte = &models.Product{Name: "Latte", Price: 60, Available: true}
	must(st.CreateProduct(ctx, f.latte, []uint{f.oat.ID}))
	must(st.SetProductIngredients(ctx, f.latte.ID, []models.ProductIngredient{
		{InventoryID: f.beans.ID, Quantity: 18},
		{InventoryID: f.milk.ID, Quantity: 150},
	}))
	f.tea = &models.Product{Name: "Thai tea", Price: 50, Available: true}
	must(st.CreateProduct(ctx, f.tea, nil))

	f.member = &models.Member{Name: "Nok", Phone: "0812345678", Points: 60}
	must(st.CreateMember(ctx, f.member))

	must(st.SavePointSettings(ctx, &models.PointSetting{Enabled: true, SpendPerPoint: 25, PointsPerStep: 1}))
	return f
}

func (f *fixture) basicOrder() CreateOrderInput {
	return CreateOrderInput{Items: []ItemInput{
		{ProductID: f.latte.ID, Quantity: 2, OptionIDs: []uint{f.oat.ID}},
		{ProductID: f.tea.ID, Quantity: 1},
	}}
}

// collideOrderInserts makes the next failures inserts into orders fail with a
// duplicate key and returns a counter of insert attempts.
func collideOrderInserts(t *testing.T, f *fixture, failures int) *int {
	t.Helper()
	attempts := 0
	err := f.store.DB().Callback().Create().Before("gorm:create").Register("test:order_code_collision", func(tx *gorm.DB) {
		if tx.Statement.Table != "orders" {
			return
		}
		attempts++
		if attempts <= failures {
			tx.AddError(gorm.ErrDuplicatedKey)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return &attempts
}

func TestCreateOrderRetriesCodeCollision(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	attempts := collideOrderInserts(t, f, 2)

	o, err := f.svc.CreateOrder(ctx, f.basicOrder())
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if *attempts != 3 {
		t.Errorf("Expected 3 insert attempts, got %d", *attempts)
	}
	if o.Code != "ORD-20260315-0001" {
		t.Errorf("unexpected code %s", o.Code)
	}
}

func TestCreateOrderGivesUpAfterFiveCollisions(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	attempts := collideOrderInserts(t, f, 100)

	_, err := f.svc.CreateOrder(ctx, f.basicOrder())
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if *attempts != maxCodeAttempts || maxCodeAttempts != 5 {
		t.Errorf("Expected %d insert attempts, got %d", maxCodeAttempts, *attempts)
	}
	orders, err := f.store.ListOrders(ctx, store.OrderFilter{})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("failed attempts must not leave orders behind, got %d", len(orders))
	}
}

func TestCodePrefix(t *testing.T) {
	late := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)
	if got := codePrefix(late, bangkok); got != "ORD-20260316-" {
		t.Errorf("codePrefix = %s, want shop-local date ORD-20260316-", got)
	}
	if got := formatOrderCode("ORD-20260316-", 7); got != "ORD-20260316-0007" {
		t.Errorf("formatOrderCode = %s", got)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.StatusPending, models.StatusPreparing, true},
		{models.StatusPending, models.StatusCompleted, true},
		{models.StatusPreparing, models.StatusReady, true},
		{models.StatusReady, models.StatusCompleted, true},
		{models.StatusReady, models.StatusCancelled, true},
		{models.StatusPreparing, models.StatusPending, false},
		{models.StatusReady, models.StatusReady, false},
		{models.StatusCompleted, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusPending, false},
		{models.StatusPending, "shipped", false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestEarnedPoints(t *testing.T) {
	on := &models.PointSetting{Enabled: true, SpendPerPoint: 25, PointsPerStep: 2, MinOrderTotal: 50}
	tests := []struct {
		name  string
		ps    *models.PointSetting
		total float64
		want  int
	}{
		{"disabled", &models.PointSetting{SpendPerPoint: 25, PointsPerStep: 1}, 500, 0},
		{"below minimum", on, 49.99, 0},
		{"floor", on, 99.99, 6},
		{"exact step", on, 100, 8},
		{"nil settings", nil, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EarnedPoints(tt.ps, tt.total); got != tt.want {
				t.Errorf("EarnedPoints = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPromotionDiscount(t *testing.T) {
	past := fixedAt.Add(-24 * time.Hour)
	future := fixedAt.Add(24 * time.Hour)
	tests := []struct {
		name     string
		promo    models.Promotion
		subtotal float64
		want     float64
		wantErr  bool
	}{
		{"percent", models.Promotion{Active: true, DiscountType: models.DiscountPercent, DiscountValue: 10}, 200, 20, false},
		{"percent capped", models.Promotion{Active: true, DiscountType: models.DiscountPercent, DiscountValue: 50, MaxDiscount: 30}, 200, 30, false},
		{"fixed", models.Promotion{Active: true, DiscountType: models.DiscountFixed, DiscountValue: 25}, 200, 25, false},
		{"fixed above subtotal", models.Promotion{Active: true, DiscountType: models.DiscountFixed, DiscountValue: 80}, 60, 60, false},
		{"rounding", models.Promotion{Active: true, DiscountType: models.DiscountPercent, DiscountValue: 15}, 33.4, 5.01, false},
		{"inactive", models.Promotion{DiscountType: models.DiscountFixed, DiscountValue: 5}, 100, 0, true},
		{"not started", models.Promotion{Active: true, DiscountType: models.DiscountFixed, DiscountValue: 5, StartsAt: &future}, 100, 0, true},
		{"ended", models.Promotion{Active: true, DiscountType: models.DiscountFixed, DiscountValue: 5, EndsAt: &past}, 100, 0, true},
		{"in window", models.Promotion{Active: true, DiscountType: models.DiscountFixed, DiscountValue: 5, StartsAt: &past, EndsAt: &future}, 100, 5, false},
		{"used up", models.Promotion{Active: true, DiscountType: models.DiscountFixed, DiscountValue: 5, UsageLimit: 3, UsageCount: 3}, 100, 0, true},
		{"min purchase", models.Promotion{Active: true, DiscountType: models.DiscountFixed, DiscountValue: 5, MinPurchase: 150}, 100, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PromotionDiscount(&tt.promo, tt.subtotal, fixedAt)
			if tt.wantErr {
				if !errors.Is(err, ErrPromotionNotApplicable) {
					t.Errorf("Expected ErrPromotionNotApplicable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PromotionDiscount failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("PromotionDiscount = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateOrderPricesItems(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	sub := f.hub.Subscribe(realtime.OrderCreated)

	o, err := f.svc.CreateOrder(ctx, f.basicOrder())
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if o.Code != "ORD-20260315-0001" {
		t.Errorf("unexpected code %s", o.Code)
	}
	if o.Status != models.StatusPending || o.PaymentStatus != models.PaymentUnpaid || o.OrderType != models.OrderTypeTakeaway {
		t.Errorf("unexpected defaults %+v", o)
	}
	if len(o.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(o.Items))
	}
	latte := o.Items[0]
	if latte.UnitPrice != 75 || latte.LineTotal != 150 || latte.OptionsTotal != 15 || len(latte.Options) != 1 || latte.Options[0].Name != "Oat milk" {
		t.Errorf("unexpected latte line %+v", latte)
	}
	if o.Subtotal != 200 || o.Total != 200 {
		t.Errorf("subtotal %v total %v, want 200", o.Subtotal, o.Total)
	}

	select {
	case ev := <-sub.C:
		if ev.Type != realtime.OrderCreated {
			t.Errorf("unexpected event %s", ev.Type)
		}
	default:
		t.Error("order.created was not published")
	}

	second, err := f.svc.CreateOrder(ctx, f.basicOrder())
	if err != nil {
		t.Fatalf("second CreateOrder failed: %v", err)
	}
	if second.Code != "ORD-20260315-0002" {
		t.Errorf("Expected next sequence, got %s", second.Code)
	}
}

func TestCreateOrderRejectsBadItems(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	off := &models.Product{Name: "Seasonal", Price: 90, Available: false}
	if err := f.store.CreateProduct(ctx, off, nil); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	tests := []struct {
		name string
		in   CreateOrderInput
	}{
		{"no items", CreateOrderInput{}},
		{"unknown product", CreateOrderInput{Items: []ItemInput{{ProductID: 999, Quantity: 1}}}},
		{"unavailable product", CreateOrderInput{Items: []ItemInput{{ProductID: off.ID, Quantity: 1}}}},
		{"option not offered", CreateOrderInput{Items: []ItemInput{{ProductID: f.tea.ID, Quantity: 1, OptionIDs: []uint{f.shot.ID}}}}},
		{"zero quantity", CreateOrderInput{Items: []ItemInput{{ProductID: f.tea.ID}}}},
		{"bad order type", CreateOrderInput{OrderType: "delivery", Items: []ItemInput{{ProductID: f.tea.ID, Quantity: 1}}}},
		{"redeem without member", CreateOrderInput{RedemptionRuleID: new(uint), Items: []ItemInput{{ProductID: f.tea.ID, Quantity: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.CreateOrder(ctx, tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}

	orders, _ := f.store.ListOrders(ctx, store.OrderFilter{})
	if len(orders) != 0 {
		t.Errorf("rejected orders must not be stored, found %d", len(orders))
	}
}

func TestCreateOrderWithPromotionAndRedemption(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	code := "LATTE10"
	promo := &models.Promotion{Name: "Latte week", Code: &code, DiscountType: models.DiscountPercent, DiscountValue: 10, MaxDiscount: 15, Active: true}
	if err := f.store.CreatePromotion(ctx, promo); err != nil {
		t.Fatalf("CreatePromotion failed: %v", err)
	}
	rule := &models.PointRedemptionRule{Name: "50 points", PointsRequired: 50, DiscountAmount: 20, Active: true}
	if err := f.store.CreateRedemptionRule(ctx, rule); err != nil {
		t.Fatalf("CreateRedemptionRule failed: %v", err)
	}

	in := f.basicOrder()
	in.MemberID = &f.member.ID
	in.PromotionCode = "latte10"
	in.RedemptionRuleID = &rule.ID
	o, err := f.svc.CreateOrder(ctx, in)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if o.PromotionDiscount != 15 || o.PointsDiscount != 20 || o.PointsRedeemed != 50 || o.Total != 165 {
		t.Errorf("unexpected discounts %+v", o)
	}
	if o.CustomerName != "Nok" {
		t.Errorf("customer name should default to the member, got %q", o.CustomerName)
	}

	m, _ := f.store.GetMember(ctx, f.member.ID)
	if m.Points != 10 {
		t.Errorf("Expected 10 points left, got %d", m.Points)
	}
	p, _ := f.store.GetPromotion(ctx, promo.ID)
	if p.UsageCount != 1 {
		t.Errorf("Expected usage_count 1, got %d", p.UsageCount)
	}

	_, err = f.svc.CreateOrder(ctx, in)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("Expected ErrInsufficientPoints, got %v", err)
	}
	p, _ = f.store.GetPromotion(ctx, promo.ID)
	if p.UsageCount != 1 {
		t.Errorf("failed order must not count promotion usage, got %d", p.UsageCount)
	}
}

func TestCompleteOrderDeductsInventoryAndEarnsPoints(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	in := f.basicOrder()
	in.MemberID = &f.member.ID
	o, err := f.svc.CreateOrder(ctx, in)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	low := f.hub.Subscribe(realtime.InventoryLowStock)
	if _, err := f.svc.UpdateStatus(ctx, o.ID, models.StatusPreparing, ""); err != nil {
		t.Fatalf("UpdateStatus preparing failed: %v", err)
	}
	done, err := f.svc.UpdateStatus(ctx, o.ID, models.StatusCompleted, "")
	if err != nil {
		t.Fatalf("UpdateStatus completed failed: %v", err)
	}
	if done.CompletedAt == nil || done.PaymentStatus != models.PaymentPaid || done.PaymentMethod != models.PaymentCash {
		t.Errorf("completion side effects missing %+v", done)
	}
	if done.PointsEarned != 8 {
		t.Errorf("Expected 8 points for 200 baht, got %d", done.PointsEarned)
	}

	beans, _ := f.store.GetInventoryItem(ctx, f.beans.ID)
	milk, _ := f.store.GetInventoryItem(ctx, f.milk.ID)
	if beans.Quantity != 964 || milk.Quantity != 200 {
		t.Errorf("unexpected stock beans=%v milk=%v", beans.Quantity, milk.Quantity)
	}
	txns, _ := f.store.ListInventoryTransactions(ctx, f.milk.ID, 0)
	if len(txns) != 1 || txns[0].Type != models.TxUsage || txns[0].OrderID == nil || *txns[0].OrderID != o.ID {
		t.Errorf("unexpected usage transactions %+v", txns)
	}
	select {
	case ev := <-low.C:
		if item, ok := ev.Payload.(models.InventoryItem); !ok || item.ID != f.milk.ID {
			t.Errorf("unexpected low stock payload %+v", ev.Payload)
		}
	default:
		t.Error("milk should be reported as low stock")
	}

	m, _ := f.store.GetMember(ctx, f.member.ID)
	if m.Points != 68 || m.VisitCount != 1 || m.TotalSpent != 200 || m.LastVisitAt == nil {
		t.Errorf("unexpected member after completion %+v", m)
	}

	_, err = f.svc.UpdateStatus(ctx, o.ID, models.StatusCancelled, "")
	if !errors.Is(err, ErrInvalidTransition) || !strings.Contains(err.Error(), "already completed") {
		t.Errorf("completed orders cannot be cancelled, got %v", err)
	}
}

func TestCancelRefundsPoints(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	rule := &models.PointRedemptionRule{Name: "50 points", PointsRequired: 50, DiscountAmount: 20, Active: true}
	if err := f.store.CreateRedemptionRule(ctx, rule); err != nil {
		t.Fatalf("CreateRedemptionRule failed: %v", err)
	}
	in := f.basicOrder()
	in.MemberID = &f.member.ID
	in.RedemptionRuleID = &rule.ID
	o, err := f.svc.CreateOrder(ctx, in)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	cancelled, err := f.svc.UpdateStatus(ctx, o.ID, models.StatusCancelled, "customer left")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.CancelledAt == nil || cancelled.CancelReason != "customer left" {
		t.Errorf("cancel not stamped %+v", cancelled)
	}
	m, _ := f.store.GetMember(ctx, f.member.ID)
	if m.Points != 60 {
		t.Errorf("points should be refunded, got %d", m.Points)
	}
	beans, _ := f.store.GetInventoryItem(ctx, f.beans.ID)
	if beans.Quantity != 1000 {
		t.Errorf("cancelled orders must not consume stock, got %v", beans.Quantity)
	}

	if _, err := f.svc.UpdateStatus(ctx, o.ID, models.StatusPreparing, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, o.ID, "shipped", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := f.svc.Pay(ctx, o.ID, PayInput{PaymentMethod: models.PaymentCard}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("paying a cancelled order should fail, got %v", err)
	}
}

func TestPay(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	o, err := f.svc.CreateOrder(ctx, f.basicOrder())
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := f.svc.Pay(ctx, o.ID, PayInput{PaymentMethod: models.PaymentCash, CashReceived: 150}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("short cash should fail, got %v", err)
	}
	paid, err := f.svc.Pay(ctx, o.ID, PayInput{PaymentMethod: models.PaymentCash, CashReceived: 500})
	if err != nil {
		t.Fatalf("Pay failed: %v", err)
	}
	if paid.ChangeDue != 300 || paid.PaidAt == nil || paid.PaymentStatus != models.PaymentPaid {
		t.Errorf("unexpected paid order %+v", paid)
	}
	if _, err := f.svc.Pay(ctx, o.ID, PayInput{PaymentMethod: models.PaymentPromptPay}); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("Expected ErrAlreadyPaid, got %v", err)
	}
	if _, err := f.svc.Pay(ctx, 999, PayInput{PaymentMethod: models.PaymentCash}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAdjustInventory(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	tests := []struct {
		in   AdjustInput
		want float64
	}{
		{AdjustInput{Type: models.TxRestock, Quantity: 250}, 750},
		{AdjustInput{Type: models.TxWaste, Quantity: 100}, 650},
		{AdjustInput{Type: models.TxUsage, Quantity: 50}, 600},
		{AdjustInput{Type: models.TxAdjustment, Quantity: -700}, -100},
	}
	for _, tt := range tests {
		item, err := f.svc.AdjustInventory(ctx, f.milk.ID, tt.in)
		if err != nil {
			t.Fatalf("AdjustInventory(%s) failed: %v", tt.in.Type, err)
		}
		if item.Quantity != tt.want {
			t.Errorf("after %s: quantity %v, want %v", tt.in.Type, item.Quantity, tt.want)
		}
	}

	for _, bad := range []AdjustInput{
		{Type: models.TxRestock, Quantity: -5},
		{Type: models.TxWaste, Quantity: 0},
		{Type: models.TxAdjustment, Quantity: 0},
		{Type: "theft", Quantity: 1},
	} {
		if _, err := f.svc.AdjustInventory(ctx, f.milk.ID, bad); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", bad, err)
		}
	}
	if _, err := f.svc.AdjustInventory(ctx, 999, AdjustInput{Type: models.TxRestock, Quantity: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	txns, _ := f.store.ListInventoryTransactions(ctx, f.milk.ID, 0)
	if len(txns) != 4 {
		t.Errorf("Expected 4 transactions, got %d", len(txns))
	}
}

func TestValidateAndListPromotions(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	future := fixedAt.Add(48 * time.Hour)
	code := "SOON"
	for _, p := range []*models.Promotion{
		{Name: "Always", DiscountType: models.DiscountFixed, DiscountValue: 10, Active: true},
		{Name: "Later", Code: &code, DiscountType: models.DiscountFixed, DiscountValue: 10, Active: true, StartsAt: &future},
		{Name: "Off", DiscountType: models.DiscountFixed, DiscountValue: 10},
	} {
		if err := f.store.CreatePromotion(ctx, p); err != nil {
			t.Fatalf("CreatePromotion failed: %v", err)
		}
	}

	active, err := f.svc.ActivePromotions(ctx)
	if err != nil {
		t.Fatalf("ActivePromotions failed: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Always" {
		t.Errorf("unexpected active promotions %+v", active)
	}

	if _, err := f.svc.ValidatePromotion(ctx, PromotionQuery{Code: "soon", Subtotal: 100}); !errors.Is(err, ErrPromotionNotApplicable) {
		t.Errorf("Expected ErrPromotionNotApplicable, got %v", err)
	}
	if _, err := f.svc.ValidatePromotion(ctx, PromotionQuery{Code: "nope", Subtotal: 100}); !errors.Is(err, ErrPromotionNotApplicable) {
		t.Errorf("unknown code: expected ErrPromotionNotApplicable, got %v", err)
	}
	if _, err := f.svc.ValidatePromotion(ctx, PromotionQuery{Subtotal: 100}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty query: expected ErrInvalidInput, got %v", err)
	}
	res, err := f.svc.ValidatePromotion(ctx, PromotionQuery{PromotionID: &active[0].ID, Subtotal: 100})
	if err != nil {
		t.Fatalf("ValidatePromotion failed: %v", err)
	}
	if res.Discount != 10 || res.Total != 90 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPreviewPoints(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	for _, r := range []*models.PointRedemptionRule{
		{Name: "Small", PointsRequired: 50, DiscountAmount: 20, Active: true},
		{Name: "Big", PointsRequired: 100, DiscountAmount: 50, Active: true},
	} {
		if err := f.store.CreateRedemptionRule(ctx, r); err != nil {
			t.Fatalf("CreateRedemptionRule failed: %v", err)
		}
	}

	pv, err := f.svc.PreviewPoints(ctx, PointsPreviewInput{MemberID: &f.member.ID, Subtotal: 130, Discount: 10})
	if err != nil {
		t.Fatalf("PreviewPoints failed: %v", err)
	}
	if !pv.Enabled || pv.PointsToEarn != 4 || pv.MemberPoints != 60 {
		t.Errorf("unexpected preview %+v", pv)
	}
	if len(pv.Rules) != 2 || !pv.Rules[0].Eligible || pv.Rules[1].Eligible {
		t.Errorf("unexpected rule eligibility %+v", pv.Rules)
	}

	missing := uint(999)
	if _, err := f.svc.PreviewPoints(ctx, PointsPreviewInput{MemberID: &missing}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestSalesReport(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	for i := 0; i < 2; i++ {
		o, err := f.svc.CreateOrder(ctx, f.basicOrder())
		if err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if _, err := f.svc.UpdateStatus(ctx, o.ID, models.StatusCompleted, ""); err != nil {
			t.Fatalf("complete failed: %v", err)
		}
	}
	if _, err := f.svc.CreateOrder(ctx, f.basicOrder()); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	rep, err := f.svc.SalesReport(ctx, "", "")
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	if rep.From != "2026-03-15" || rep.Totals.Orders != 2 || rep.Totals.Revenue != 400 {
		t.Errorf("unexpected report %+v totals %+v", rep, rep.Totals)
	}
	if len(rep.TopProducts) != 2 || rep.TopProducts[0].ProductName != "Latte" || rep.TopProducts[0].Quantity != 4 {
		t.Errorf("unexpected top products %+v", rep.TopProducts)
	}

	if _, err := f.svc.SalesReport(ctx, "2026-03-16", "2026-03-15"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("reversed range: expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.SalesReport(ctx, "15/03/2026", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad date: expected ErrInvalidInput, got %v", err)
	}
}

func TestOrderPromptPay(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	o, err := f.svc.CreateOrder(ctx, f.basicOrder())
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if _, err := f.svc.OrderPromptPay(ctx, o.ID); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing promptpay id: expected ErrInvalidInput, got %v", err)
	}

	st, _ := f.store.GetSettings(ctx)
	st.PromptPayID = "0812345678"
	if err := f.store.SaveSettings(ctx, st); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	qr, err := f.svc.OrderPromptPay(ctx, o.ID)
	if err != nil {
		t.Fatalf("OrderPromptPay failed: %v", err)
	}
	if qr.Amount != 200 || qr.Code != o.Code {
		t.Errorf("unexpected qr %+v", qr)
	}
	if want := "00020101021229370016A000000677010111011300668123456785802TH53037645406200.0063040A45"; qr.Payload != want {
		t.Errorf("payload = %s, expected %s", qr.Payload, want)
	}
}

func TestCustomerOrdersCanBeClosed(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)

	st, _ := f.store.GetSettings(ctx)
	st.AcceptCustomerOrders = false
	if err := f.store.SaveSettings(ctx, st); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	in := f.basicOrder()
	in.Source = models.SourceCustomer
	if _, err := f.svc.CreateOrder(ctx, in); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	in.Source = models.SourcePOS
	if _, err := f.svc.CreateOrder(ctx, in); err != nil {
		t.Errorf("counter orders are always accepted: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := setupFixture(t)
	PasswordCost = 4

	u, err := NewUser("barista", "espresso42", "", "")
	if err != nil {
		t.Fatalf("NewUser failed: %v", err)
	}
	if u.Role != models.RoleStaff || u.DisplayName != "barista" || u.PasswordHash == "espresso42" {
		t.Errorf("unexpected user %+v", u)
	}
	if err := f.store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := f.svc.Authenticate(ctx, "barista", "espresso42"); err != nil {
		t.Errorf("Authenticate failed: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "barista", "latte"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("wrong password: expected ErrBadCredentials, got %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "nobody", "espresso42"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("unknown user: expected ErrBadCredentials, got %v", err)
	}

	u.Active = false
	f.store.SaveUser(ctx, u)
	if _, err := f.svc.Authenticate(ctx, "barista", "espresso42"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("inactive user: expected ErrBadCredentials, got %v", err)
	}

	if _, err := NewUser("x", "short", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("short password: expected ErrInvalidInput, got %v", err)
	}
	if _, err := NewUser("x", "longenough", "", "owner"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad role: expected ErrInvalidInput, got %v", err)
	}
}
