package session

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gt=0"`
}

// updateQuantityRequest takes a pointer so an explicit zero survives decoding;
// zero and below remove the line.
type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type loginRequest struct {
	Token string `json:"token" validate:"required"`
}

type globalDiscountRequest struct {
	IsActive      bool     `json:"isActive"`
	Type          string   `json:"type" validate:"required,oneof=none percentage flat"`
	Value         float64  `json:"value" validate:"gte=0"`
	MinOrderTotal *float64 `json:"minOrderTotal,omitempty" validate:"omitempty,gte=0"`
	Label         string   `json:"label"`
}
