package domain

// Item is a catalog entry keyed by its product id.
type Item struct {
	ID        int64  `json:"id"`
	ProductID string `json:"productId"`
	Price     Money  `json:"price"`
}

// ItemView is the public shape of an item.
type ItemView struct {
	ProductID string `json:"productId"`
	Price     Money  `json:"price"`
}

// View drops the storage identifier.
func (i Item) View() ItemView {
	return ItemView{ProductID: i.ProductID, Price: i.Price}
}
