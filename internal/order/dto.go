package order

// CheckoutRequest payload for POST /checkout.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	Shipping
	CouponCode string `json:"coupon_code" example:"WELCOME10"`
}

// CheckoutResponse is returned once the order exists, with or without a
// payment session.
// swagger:model CheckoutResponse
type CheckoutResponse struct {
	Order       Order    `json:"order"`
	Items       []Item   `json:"items"`
	RedirectURL string   `json:"redirect_url,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// UpdateStatusRequest payload for staff status changes.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status Status `json:"status" example:"processing"`
}

// OrderDetail bundles an order with its items.
// swagger:model OrderDetail
type OrderDetail struct {
	Order Order  `json:"order"`
	Items []Item `json:"items"`
}
