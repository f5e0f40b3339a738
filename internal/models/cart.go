package models

// Cart is the client-held basket. It is bound to a single restaurant and
// never stored in the database.
type Cart struct {
	RestaurantID uint       `json:"restaurant_id"`
	Items        []CartItem `json:"items"`
	TotalAmount  float64    `json:"total_amount"`
}

// CartItem keeps a snapshot of the menu item taken when it was added.
type CartItem struct {
	MenuItem        MenuItem `json:"menu_item"`
	Quantity        int      `json:"quantity"`
	SpecialRequests string   `json:"special_requests,omitempty"`
}
