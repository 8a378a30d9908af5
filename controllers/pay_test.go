package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/database"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/models"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/settlement"
)

func newPayTestServer(t *testing.T, gateway settlement.Gateway) (*mux.Router, *gorm.DB) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	c := NewPayController(settlement.NewEngine(db, gateway))
	r := mux.NewRouter()
	r.Handle("/api/pay/donation/{id}/prepay", http.HandlerFunc(c.DonationPrepay)).Methods(http.MethodPost)
	r.Handle("/api/pay/donation/{id}/confirm", http.HandlerFunc(c.DonationConfirm)).Methods(http.MethodPost)
	r.Handle("/api/pay/order/prepay", http.HandlerFunc(c.OrderPrepay)).Methods(http.MethodPost)
	return r, db
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return rr, envelope
}

func TestDonationPrepayMock(t *testing.T) {
	r, db := newPayTestServer(t, settlement.MockGateway{})
	campaign := models.Campaign{Title: "vet bill", TargetAmount: 100, Status: models.CampaignStatusActive}
	require.NoError(t, db.Create(&campaign).Error)

	rr, envelope := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/pay/donation/%d/prepay", campaign.ID),
		map[string]interface{}{"user_id": 1, "amount": 1})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 200, envelope["code"])
	assert.NotZero(t, envelope["timestamp"])

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, true, data["mock"])
	assert.EqualValues(t, 1, data["record_id"])
	assert.Nil(t, data["payment"])

	// The campaign already moved, no confirm round trip needed in mock mode.
	var updated models.Campaign
	require.NoError(t, db.First(&updated, campaign.ID).Error)
	assert.InDelta(t, 1, updated.CurrentAmount, 1e-9)
}

func TestDonationPrepayGatewayNotConfigured(t *testing.T) {
	r, db := newPayTestServer(t, settlement.ExternalGateway{})
	campaign := models.Campaign{Title: "vet bill", TargetAmount: 100, Status: models.CampaignStatusActive}
	require.NoError(t, db.Create(&campaign).Error)

	rr, envelope := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/pay/donation/%d/prepay", campaign.ID),
		map[string]interface{}{"user_id": 1, "amount": 5})

	require.Equal(t, http.StatusNotImplemented, rr.Code)
	assert.EqualValues(t, 501, envelope["code"])

	// The pending record was still created and is returned to the caller.
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, false, data["mock"])
	assert.EqualValues(t, 1, data["record_id"])
}

func TestDonationPrepayErrors(t *testing.T) {
	r, db := newPayTestServer(t, settlement.MockGateway{})
	campaign := models.Campaign{Title: "vet bill", TargetAmount: 100, Status: models.CampaignStatusActive}
	require.NoError(t, db.Create(&campaign).Error)

	rr, _ := doJSON(t, r, http.MethodPost, "/api/pay/donation/9999/prepay",
		map[string]interface{}{"user_id": 1, "amount": 5})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/pay/donation/%d/prepay", campaign.ID),
		map[string]interface{}{"user_id": 1, "amount": -1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/pay/donation/%d/prepay", campaign.ID),
		map[string]interface{}{"user_id": 1, "amount": 10001})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/pay/donation/%d/prepay", campaign.ID),
		map[string]interface{}{"amount": 5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDonationConfirmIdempotentOverHTTP(t *testing.T) {
	r, db := newPayTestServer(t, settlement.ExternalGateway{})
	campaign := models.Campaign{Title: "vet bill", TargetAmount: 100, Status: models.CampaignStatusActive}
	require.NoError(t, db.Create(&campaign).Error)

	_, envelope := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/pay/donation/%d/prepay", campaign.ID),
		map[string]interface{}{"user_id": 1, "amount": 30})
	recordID := envelope["data"].(map[string]interface{})["record_id"].(float64)

	rr, envelope := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/pay/donation/%d/confirm", campaign.ID),
		map[string]interface{}{"record_id": recordID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, envelope["data"].(map[string]interface{})["already"])

	rr, envelope = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/pay/donation/%d/confirm", campaign.ID),
		map[string]interface{}{"record_id": recordID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, envelope["data"].(map[string]interface{})["already"])

	var updated models.Campaign
	require.NoError(t, db.First(&updated, campaign.ID).Error)
	assert.InDelta(t, 30, updated.CurrentAmount, 1e-9)
}

func TestOrderPrepayMockAndStockErrors(t *testing.T) {
	r, db := newPayTestServer(t, settlement.MockGateway{})
	product := models.Product{Name: "badge", Price: 12.5, Stock: 2, Sales: 0, Status: models.ProductStatusActive}
	require.NoError(t, db.Create(&product).Error)

	rr, envelope := doJSON(t, r, http.MethodPost, "/api/pay/order/prepay",
		map[string]interface{}{"user_id": 1, "product_id": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rr.Code)

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, true, data["mock"])
	order := data["order"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusPaid, order["status"])
	assert.InDelta(t, 25, order["total_amount"].(float64), 1e-9)
	assert.Len(t, order["order_no"].(string), 32)

	// Everything is sold out now; the next attempt must fail cleanly.
	rr, envelope = doJSON(t, r, http.MethodPost, "/api/pay/order/prepay",
		map[string]interface{}{"user_id": 2, "product_id": product.ID, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, envelope["message"], "insufficient stock")

	rr, _ = doJSON(t, r, http.MethodPost, "/api/pay/order/prepay",
		map[string]interface{}{"user_id": 1, "product_id": 9999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = doJSON(t, r, http.MethodPost, "/api/pay/order/prepay",
		map[string]interface{}{"user_id": 1, "product_id": product.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
