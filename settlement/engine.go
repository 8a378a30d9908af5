package settlement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/models"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

const maxPledgeAmount = 10000

// Engine runs the money-moving paths: donation pledges against campaigns and
// product orders against inventory. Every mutation of a shared aggregate
// (campaign current_amount, product stock/sales) happens inside a single
// transaction that first takes an exclusive row lock on that aggregate, so
// concurrent settlements serialize at the database and the completion flip
// can never be lost or doubled.
type Engine struct {
	db      *gorm.DB
	gateway Gateway
}

// NewEngine wires the engine to an explicit database handle and a gateway
// variant chosen by the caller at construction time.
func NewEngine(db *gorm.DB, gateway Gateway) *Engine {
	return &Engine{db: db, gateway: gateway}
}

// PledgeResult is the prepay outcome. Mock is false when the real gateway is
// not configured; the pledge then stays pending and the HTTP layer answers
// 501 while still returning the created record id.
type PledgeResult struct {
	Mock          bool    `json:"mock"`
	RecordID      uint    `json:"record_id"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

type ConfirmResult struct {
	Already bool `json:"already"`
}

type OrderResult struct {
	Mock          bool    `json:"mock"`
	ID            uint    `json:"id"`
	OrderNo       string  `json:"order_no"`
	Status        string  `json:"status"`
	TotalAmount   float64 `json:"total_amount"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// lockForUpdate takes an exclusive row lock (SELECT ... FOR UPDATE) held
// until the transaction commits or rolls back. SQLite has no FOR UPDATE
// syntax; its write lock is database-wide, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// CreatePledge records a donation pledge against a campaign. With the mock
// gateway the pledge settles inside the same transaction: it is inserted as
// completed and its amount applied to the campaign immediately. With the
// external gateway the pledge is inserted pending and waits for a confirm
// call that never comes from the placeholder integration.
//
// There is no idempotency key: a client that retries a lost prepay response
// creates a second pledge record. Known hazard, accepted for now.
func (e *Engine) CreatePledge(ctx context.Context, campaignID, userID uint, amount float64) (*PledgeResult, error) {
	if campaignID == 0 {
		return nil, ErrCampaignNotFound
	}
	if userID == 0 {
		return nil, ErrInvalidUser
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 || amount > maxPledgeAmount {
		return nil, ErrInvalidAmount
	}

	intent, gwErr := e.gateway.CreateIntent(amount, map[string]string{
		"kind":        "donation",
		"campaign_id": fmt.Sprint(campaignID),
	})
	if gwErr != nil && !errors.Is(gwErr, ErrGatewayUnavailable) {
		return nil, gwErr
	}

	res := &PledgeResult{Mock: gwErr == nil && intent.Settled}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaign models.Campaign
		if err := lockForUpdate(tx).First(&campaign, campaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampaignNotFound
			}
			return err
		}
		if campaign.Status == models.CampaignStatusCancelled {
			return ErrCampaignNotFound
		}

		pledge := models.Pledge{
			CampaignID:    campaignID,
			UserID:        userID,
			Amount:        amount,
			PaymentMethod: "wechat",
			Status:        models.PledgeStatusPending,
		}
		if res.Mock {
			ref := intent.Reference
			pledge.Status = models.PledgeStatusCompleted
			pledge.TransactionID = &ref
		}
		if err := tx.Create(&pledge).Error; err != nil {
			return err
		}
		if res.Mock {
			if err := applyPledge(tx, campaign.ID, pledge.Amount); err != nil {
				return err
			}
		}

		res.RecordID = pledge.ID
		res.Status = pledge.Status
		res.TransactionID = pledge.TransactionID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ConfirmPledge settles a pending pledge. Confirming an already-completed
// pledge is the idempotent no-op guarding against double application: the
// second caller gets Already=true and the campaign amount does not move.
func (e *Engine) ConfirmPledge(ctx context.Context, campaignID, pledgeID uint) (*ConfirmResult, error) {
	if campaignID == 0 || pledgeID == 0 {
		return nil, ErrPledgeNotFound
	}

	res := &ConfirmResult{}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pledge models.Pledge
		if err := lockForUpdate(tx).
			Where("id = ? AND donation_id = ?", pledgeID, campaignID).
			First(&pledge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPledgeNotFound
			}
			return err
		}
		if pledge.Status == models.PledgeStatusCompleted {
			res.Already = true
			return nil
		}

		// Lock the campaign before touching either row so the increment and
		// the completion check happen under one lock.
		var campaign models.Campaign
		if err := lockForUpdate(tx).First(&campaign, pledge.CampaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampaignNotFound
			}
			return err
		}

		if err := tx.Model(&models.Pledge{}).Where("id = ?", pledge.ID).
			Updates(map[string]interface{}{
				"status":     models.PledgeStatusCompleted,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		return applyPledge(tx, campaign.ID, pledge.Amount)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// applyPledge moves a confirmed amount onto the campaign aggregate. The
// caller must already hold the row lock on the campaign inside tx. The
// increment is relative (current_amount + ?) and the completion flip
// re-reads the row under the same lock, guarded by a status check, so two
// racing confirmations both advance the amount and at most one flips the
// status. Exceeding the target is allowed; the flip is one-way.
func applyPledge(tx *gorm.DB, campaignID uint, amount float64) error {
	if err := tx.Model(&models.Campaign{}).Where("id = ?", campaignID).
		Updates(map[string]interface{}{
			"current_amount": gorm.Expr("current_amount + ?", amount),
			"updated_at":     time.Now(),
		}).Error; err != nil {
		return err
	}

	var updated models.Campaign
	if err := tx.First(&updated, campaignID).Error; err != nil {
		return err
	}
	if updated.CurrentAmount >= updated.TargetAmount && updated.Status != models.CampaignStatusCompleted {
		if err := tx.Model(&models.Campaign{}).Where("id = ?", campaignID).
			Update("status", models.CampaignStatusCompleted).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateOrder places a product order. The product row is locked before the
// stock check so concurrent orders cannot oversell, and the order total is
// frozen from the locked price. Inventory moves eagerly at creation time in
// mock mode only; with the external gateway the order stays pending and
// stock is untouched. Orders have no confirm step, so the asymmetry with
// the donation flow is deliberate.
func (e *Engine) CreateOrder(ctx context.Context, userID, productID uint, quantity int) (*OrderResult, error) {
	if userID == 0 {
		return nil, ErrInvalidUser
	}
	if productID == 0 {
		return nil, ErrProductNotFound
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	res := &OrderResult{}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := lockForUpdate(tx).
			Where("id = ? AND status = ?", productID, models.ProductStatusActive).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if product.Stock < quantity {
			return ErrInsufficientStock
		}

		totalAmount := product.Price * float64(quantity)

		intent, gwErr := e.gateway.CreateIntent(totalAmount, map[string]string{
			"kind":       "order",
			"product_id": fmt.Sprint(productID),
		})
		if gwErr != nil && !errors.Is(gwErr, ErrGatewayUnavailable) {
			return gwErr
		}
		settled := gwErr == nil && intent.Settled

		order := models.Order{
			OrderNo:       utils.GenerateOrderNo(),
			UserID:        userID,
			TotalAmount:   totalAmount,
			Status:        models.OrderStatusPending,
			PaymentMethod: "wechat",
		}
		if settled {
			now := time.Now()
			order.Status = models.OrderStatusPaid
			order.PaymentTime = &now
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		item := models.OrderItem{
			OrderID:    order.ID,
			ProductID:  product.ID,
			Quantity:   quantity,
			Price:      product.Price,
			TotalPrice: totalAmount,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		if settled {
			if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", quantity),
					"sales":      gorm.Expr("sales + ?", quantity),
					"updated_at": time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		res.Mock = settled
		res.ID = order.ID
		res.OrderNo = order.OrderNo
		res.Status = order.Status
		res.TotalAmount = order.TotalAmount
		if settled {
			ref := intent.Reference
			res.TransactionID = &ref
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
