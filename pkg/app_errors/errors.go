package apperrors

import "errors"

// 預期中的業務拒絕，由 handler 以 errors.Is 轉成 4xx 回應
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrTicketNotFound     = errors.New("issued ticket not found")
	ErrInsufficientStock  = errors.New("insufficient stock")

	ErrDiscountInvalid        = errors.New("discount code invalid")
	ErrDiscountExpired        = errors.New("discount code expired")
	ErrDiscountRankIneligible = errors.New("discount code not applicable to buyer rank")

	ErrOrderExpired         = errors.New("order payment window expired")
	ErrOrderAlreadyTerminal = errors.New("order already in terminal status")
	ErrOrderNotPending      = errors.New("order is not pending")
	ErrTicketUnpaid         = errors.New("ticket order not paid")

	ErrInvalidOrderRef  = errors.New("invalid gateway order reference")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrGatewayDeclined  = errors.New("payment gateway declined the charge")

	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)
