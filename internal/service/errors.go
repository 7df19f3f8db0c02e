package service

import "errors"

// Error message constants for the shop surface
const (
	ErrMsgCartEmpty        = "cart is empty"
	ErrMsgShippingRequired = "please fill in all required shipping information"
	ErrMsgInvalidProduct   = "product id is required"
	ErrMsgPublishFailed    = "checkout could not be submitted"
)

var (
	// ErrEmptyCart is returned when checking out a session with no lines
	ErrEmptyCart = errors.New(ErrMsgCartEmpty)
	// ErrInvalidCheckout is returned when shipping details are missing
	ErrInvalidCheckout = errors.New(ErrMsgShippingRequired)
	// ErrInvalidProduct is returned for products without an id
	ErrInvalidProduct = errors.New(ErrMsgInvalidProduct)
	// ErrCheckoutUnavailable is returned when the checkout event could not be published
	ErrCheckoutUnavailable = errors.New(ErrMsgPublishFailed)
)
