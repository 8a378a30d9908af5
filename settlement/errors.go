package settlement

import "errors"

// Classified failures crossing the engine boundary. Anything else coming out
// of a transaction is a storage error and surfaces as a generic 500 upstream.
var (
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrPledgeNotFound     = errors.New("pledge record not found")
	ErrProductNotFound    = errors.New("product not found or inactive")
	ErrInvalidAmount      = errors.New("amount must be between 0.01 and 10000")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidUser        = errors.New("user id is not valid")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrGatewayUnavailable = errors.New("payment gateway not configured")
)
