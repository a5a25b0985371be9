package dto

import "vending-machine-api/internal/core/domain"

// TokenRequest is the OAuth2 password-grant form posted to /token.
type TokenRequest struct {
	Username string `form:"username" json:"username" binding:"required,max=64"`
	Password string `form:"password" json:"password" binding:"required,max=128" sanitize:"-"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token" binding:"required" sanitize:"-"`
}

// TokenResponse is returned by /token and /token/refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

// ItemQuery filters GET /items down to one product.
type ItemQuery struct {
	ProductID string `form:"productId" binding:"omitempty,product_id"`
}

// UpsertItemRequest is the body of PUT /items.
type UpsertItemRequest struct {
	ProductID string        `json:"productId" binding:"required,product_id"`
	Price     *domain.Money `json:"price" binding:"required,price"`
}

// DeleteItemRequest is the body of DELETE /items.
type DeleteItemRequest struct {
	ProductID string `json:"productId" binding:"required,product_id"`
}

// DeleteItemResponse carries the id of the removed row, 0 when nothing matched.
type DeleteItemResponse struct {
	ID int64 `json:"id"`
}

// DepositRequest is the body of POST /deposit.
type DepositRequest struct {
	Value *CoinValue `json:"value" binding:"required,coin"`
}

// DepositResponse renders the till balance as "X.XX".
type DepositResponse struct {
	Deposit string `json:"deposit"`
}

// PurchaseLineRequest is one element of the POST /buy array.
type PurchaseLineRequest struct {
	ProductID string `json:"productId" binding:"required,product_id"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0,max=100"`
}

// ToOrder converts the request lines, preserving their order.
func ToOrder(lines []PurchaseLineRequest) domain.Order {
	order := make(domain.Order, 0, len(lines))
	for _, l := range lines {
		order = append(order, domain.PurchaseLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return order
}

// HealthResponse reports dependency status.
type HealthResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

// DependencyStatus is the state of one backing service.
type DependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
