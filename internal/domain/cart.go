package domain

// Cart holds the line items a single user intends to buy. There is at most
// one cart per user; UserID is the lookup key everywhere in the system.
type Cart struct {
	ID     string     `json:"id" bson:"id" dynamodbav:"id"`
	UserID string     `json:"user_id" bson:"user_id" dynamodbav:"user_id"`
	Items  []CartItem `json:"items" bson:"items" dynamodbav:"items"`
}

// CartItem is a (product, quantity) pair. Items are unique by ProductID
// within their cart and are replaced wholesale on update.
type CartItem struct {
	ProductID string `json:"product_id" bson:"product_id" dynamodbav:"product_id"`
	Amount    int    `json:"amount" bson:"amount" dynamodbav:"amount"`
}

// NewCart returns a cart for the given user with the given items.
func NewCart(id, userID string, items []CartItem) *Cart {
	if items == nil {
		items = []CartItem{}
	}
	return &Cart{ID: id, UserID: userID, Items: items}
}

// AddItem appends item to the cart. It does not check uniqueness; callers
// must verify the product is not already present.
func (c *Cart) AddItem(item CartItem) {
	c.Items = append(c.Items, item)
}

// FindItem returns the item with the given product id, or false.
func (c *Cart) FindItem(productID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// HasItem reports whether the cart contains the given product.
func (c *Cart) HasItem(productID string) bool {
	_, ok := c.FindItem(productID)
	return ok
}
