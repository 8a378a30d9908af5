package settlement

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/database"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/models"
)

// newTestDB opens a per-test in-memory SQLite database. A single pooled
// connection keeps concurrent transactions serialized the same way the
// MySQL row locks do in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedCampaign(t *testing.T, db *gorm.DB, target, current float64, status string) *models.Campaign {
	t.Helper()
	c := &models.Campaign{
		Title:         "medical fund",
		TargetAmount:  target,
		CurrentAmount: current,
		Status:        status,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, price float64, stock, sales, status int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:   "cat badge",
		Price:  price,
		Stock:  stock,
		Sales:  sales,
		Status: status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func reloadCampaign(t *testing.T, db *gorm.DB, id uint) *models.Campaign {
	t.Helper()
	var c models.Campaign
	require.NoError(t, db.First(&c, id).Error)
	return &c
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) *models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return &p
}

func TestCreatePledgeMockSettlesImmediately(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, MockGateway{})
	campaign := seedCampaign(t, db, 100, 0, models.CampaignStatusActive)

	res, err := engine.CreatePledge(context.Background(), campaign.ID, 1, 1)
	require.NoError(t, err)

	assert.True(t, res.Mock)
	assert.Equal(t, models.PledgeStatusCompleted, res.Status)
	require.NotNil(t, res.TransactionID)
	assert.True(t, strings.HasPrefix(*res.TransactionID, "mock_tx_"))

	// The aggregate moves inside the prepay transaction, no confirm needed.
	updated := reloadCampaign(t, db, campaign.ID)
	assert.InDelta(t, 1, updated.CurrentAmount, 1e-9)
	assert.Equal(t, models.CampaignStatusActive, updated.Status)
}

func TestCreatePledgeValidation(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, MockGateway{})
	campaign := seedCampaign(t, db, 100, 0, models.CampaignStatusActive)

	cases := []struct {
		name       string
		campaignID uint
		userID     uint
		amount     float64
		want       error
	}{
		{"zero amount", campaign.ID, 1, 0, ErrInvalidAmount},
		{"negative amount", campaign.ID, 1, -5, ErrInvalidAmount},
		{"over cap", campaign.ID, 1, 10000.01, ErrInvalidAmount},
		{"nan", campaign.ID, 1, math.NaN(), ErrInvalidAmount},
		{"inf", campaign.ID, 1, math.Inf(1), ErrInvalidAmount},
		{"zero user", campaign.ID, 0, 10, ErrInvalidUser},
		{"missing campaign", 9999, 1, 10, ErrCampaignNotFound},
		{"zero campaign", 0, 1, 10, ErrCampaignNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CreatePledge(context.Background(), tc.campaignID, tc.userID, tc.amount)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// Nothing above may have left a row behind.
	var count int64
	require.NoError(t, db.Model(&models.Pledge{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePledgeCancelledCampaign(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, MockGateway{})
	campaign := seedCampaign(t, db, 100, 0, models.CampaignStatusCancelled)

	_, err := engine.CreatePledge(context.Background(), campaign.ID, 1, 10)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestCreatePledgePendingWhenGatewayUnavailable(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, ExternalGateway{})
	campaign := seedCampaign(t, db, 100, 0, models.CampaignStatusActive)

	res, err := engine.CreatePledge(context.Background(), campaign.ID, 1, 25)
	require.NoError(t, err)
	assert.False(t, res.Mock)
	assert.Equal(t, models.PledgeStatusPending, res.Status)
	assert.Nil(t, res.TransactionID)

	// Pending pledge must not touch the aggregate.
	assert.InDelta(t, 0, reloadCampaign(t, db, campaign.ID).CurrentAmount, 1e-9)
}

func TestConfirmPledgeIdempotent(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, ExternalGateway{})
	campaign := seedCampaign(t, db, 100, 0, models.CampaignStatusActive)

	created, err := engine.CreatePledge(context.Background(), campaign.ID, 1, 25)
	require.NoError(t, err)

	first, err := engine.ConfirmPledge(context.Background(), campaign.ID, created.RecordID)
	require.NoError(t, err)
	assert.False(t, first.Already)
	assert.InDelta(t, 25, reloadCampaign(t, db, campaign.ID).CurrentAmount, 1e-9)

	second, err := engine.ConfirmPledge(context.Background(), campaign.ID, created.RecordID)
	require.NoError(t, err)
	assert.True(t, second.Already)
	assert.InDelta(t, 25, reloadCampaign(t, db, campaign.ID).CurrentAmount, 1e-9)
}

func TestConfirmPledgeWrongCampaign(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, ExternalGateway{})
	campaign := seedCampaign(t, db, 100, 0, models.CampaignStatusActive)
	other := seedCampaign(t, db, 100, 0, models.CampaignStatusActive)

	created, err := engine.CreatePledge(context.Background(), campaign.ID, 1, 10)
	require.NoError(t, err)

	_, err = engine.ConfirmPledge(context.Background(), other.ID, created.RecordID)
	assert.ErrorIs(t, err, ErrPledgeNotFound)

	_, err = engine.ConfirmPledge(context.Background(), campaign.ID, 9999)
	assert.ErrorIs(t, err, ErrPledgeNotFound)
}

func TestConfirmPledgeCompletesCampaignAtTarget(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, ExternalGateway{})
	campaign := seedCampaign(t, db, 300, 150, models.CampaignStatusActive)

	created, err := engine.CreatePledge(context.Background(), campaign.ID, 1, 150)
	require.NoError(t, err)
	_, err = engine.ConfirmPledge(context.Background(), campaign.ID, created.RecordID)
	require.NoError(t, err)

	updated := reloadCampaign(t, db, campaign.ID)
	assert.InDelta(t, 300, updated.CurrentAmount, 1e-9)
	assert.Equal(t, models.CampaignStatusCompleted, updated.Status)
}

func TestConfirmPledgeMayExceedTarget(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, ExternalGateway{})
	campaign := seedCampaign(t, db, 300, 290, models.CampaignStatusActive)

	created, err := engine.CreatePledge(context.Background(), campaign.ID, 1, 50)
	require.NoError(t, err)
	_, err = engine.ConfirmPledge(context.Background(), campaign.ID, created.RecordID)
	require.NoError(t, err)

	updated := reloadCampaign(t, db, campaign.ID)
	assert.InDelta(t, 340, updated.CurrentAmount, 1e-9)
	assert.Equal(t, models.CampaignStatusCompleted, updated.Status)
}

func TestCampaignCompletionIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, ExternalGateway{})
	campaign := seedCampaign(t, db, 100, 0, models.CampaignStatusActive)

	first, err := engine.CreatePledge(context.Background(), campaign.ID, 1, 100)
	require.NoError(t, err)
	_, err = engine.ConfirmPledge(context.Background(), campaign.ID, first.RecordID)
	require.NoError(t, err)
	require.Equal(t, models.CampaignStatusCompleted, reloadCampaign(t, db, campaign.ID).Status)

	// Confirming further pledges keeps moving the amount but never reopens
	// the campaign.
	second, err := engine.CreatePledge(context.Background(), campaign.ID, 2, 10)
	require.NoError(t, err)
	_, err = engine.ConfirmPledge(context.Background(), campaign.ID, second.RecordID)
	require.NoError(t, err)

	updated := reloadCampaign(t, db, campaign.ID)
	assert.Equal(t, models.CampaignStatusCompleted, updated.Status)
	assert.InDelta(t, 110, updated.CurrentAmount, 1e-9)
}

func TestConcurrentConfirmationsConserveAmount(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, ExternalGateway{})
	campaign := seedCampaign(t, db, 1000000, 0, models.CampaignStatusActive)

	const n = 20
	var sum float64
	ids := make([]uint, 0, n)
	for i := 1; i <= n; i++ {
		res, err := engine.CreatePledge(context.Background(), campaign.ID, uint(i), float64(i))
		require.NoError(t, err)
		ids = append(ids, res.RecordID)
		sum += float64(i)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(pledgeID uint) {
			defer wg.Done()
			if _, err := engine.ConfirmPledge(context.Background(), campaign.ID, pledgeID); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent confirm failed: %v", err)
	}

	assert.InDelta(t, sum, reloadCampaign(t, db, campaign.ID).CurrentAmount, 1e-9)
}

func TestCreateOrderMockFlow(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, MockGateway{})
	product := seedProduct(t, db, 9.9, 5, 10, models.ProductStatusActive)

	res, err := engine.CreateOrder(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)

	assert.True(t, res.Mock)
	assert.Equal(t, models.OrderStatusPaid, res.Status)
	assert.InDelta(t, 19.8, res.TotalAmount, 1e-9)
	assert.Len(t, res.OrderNo, 32)
	require.NotNil(t, res.TransactionID)

	// Inventory moved eagerly inside the creation transaction.
	updated := reloadProduct(t, db, product.ID)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, 12, updated.Sales)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, res.ID).Error)
	assert.NotNil(t, order.PaymentTime)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.InDelta(t, 9.9, order.Items[0].Price, 1e-9)
	assert.InDelta(t, 19.8, order.Items[0].TotalPrice, 1e-9)
}

func TestCreateOrderPendingWhenGatewayUnavailable(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, ExternalGateway{})
	product := seedProduct(t, db, 10, 5, 0, models.ProductStatusActive)

	res, err := engine.CreateOrder(context.Background(), 1, product.ID, 1)
	require.NoError(t, err)

	assert.False(t, res.Mock)
	assert.Equal(t, models.OrderStatusPending, res.Status)

	// Stock is only mutated on settlement; the pending order leaves it alone.
	updated := reloadProduct(t, db, product.ID)
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, 0, updated.Sales)
}

func TestCreateOrderValidation(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, MockGateway{})
	active := seedProduct(t, db, 10, 5, 0, models.ProductStatusActive)
	inactive := seedProduct(t, db, 10, 5, 0, models.ProductStatusInactive)

	cases := []struct {
		name      string
		userID    uint
		productID uint
		quantity  int
		want      error
	}{
		{"zero user", 0, active.ID, 1, ErrInvalidUser},
		{"zero quantity", 1, active.ID, 0, ErrInvalidQuantity},
		{"negative quantity", 1, active.ID, -1, ErrInvalidQuantity},
		{"missing product", 1, 9999, 1, ErrProductNotFound},
		{"inactive product", 1, inactive.ID, 1, ErrProductNotFound},
		{"zero product", 1, 0, 1, ErrProductNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CreateOrder(context.Background(), tc.userID, tc.productID, tc.quantity)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, MockGateway{})
	product := seedProduct(t, db, 10, 1, 0, models.ProductStatusActive)

	_, err := engine.CreateOrder(context.Background(), 1, product.ID, 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Rejection happens before any mutation.
	updated := reloadProduct(t, db, product.ID)
	assert.Equal(t, 1, updated.Stock)
	assert.Equal(t, 0, updated.Sales)
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConcurrentOrdersCannotOversell(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, MockGateway{})
	product := seedProduct(t, db, 10, 1, 10, models.ProductStatusActive)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(user uint) {
			defer wg.Done()
			_, err := engine.CreateOrder(context.Background(), user, product.ID, 1)
			results <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)

	updated := reloadProduct(t, db, product.ID)
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, 11, updated.Sales)
}

func TestOrderTotalFrozenAgainstPriceChange(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, MockGateway{})
	product := seedProduct(t, db, 10, 5, 0, models.ProductStatusActive)

	res, err := engine.CreateOrder(context.Background(), 1, product.ID, 2)
	require.NoError(t, err)
	require.InDelta(t, 20, res.TotalAmount, 1e-9)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", 99.0).Error)

	var order models.Order
	require.NoError(t, db.First(&order, res.ID).Error)
	assert.InDelta(t, 20, order.TotalAmount, 1e-9)

	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&item).Error)
	assert.InDelta(t, 10, item.Price, 1e-9)
}
