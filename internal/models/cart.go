package models

// MaxQuantityPerItem caps how many tickets of one event a single cart
// may hold.
const MaxQuantityPerItem = 6

// CartItem represents one event's tickets in the shopping cart
type CartItem struct {
	EventID     int    `json:"event_id"`
	Name        string `json:"name"`
	Price       int    `json:"price"` // in cents
	Quantity    int    `json:"quantity"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Subtotal returns price*quantity for the item.
func (i CartItem) Subtotal() int {
	return i.Price * i.Quantity
}

// Cart is the visitor's ordered list of selected tickets, mirrored in
// the cookie session between requests.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Find returns the index of the item for eventID, or -1.
func (c *Cart) Find(eventID int) int {
	for i := range c.Items {
		if c.Items[i].EventID == eventID {
			return i
		}
	}
	return -1
}

// Add puts an event's ticket into the cart. Adding an event already
// present increments its quantity; the quantity is capped at
// MaxQuantityPerItem and the increment past the cap is an error.
func (c *Cart) Add(item CartItem) error {
	if idx := c.Find(item.EventID); idx >= 0 {
		if c.Items[idx].Quantity >= MaxQuantityPerItem {
			return ErrQuantityLimit
		}
		c.Items[idx].Quantity++
		return nil
	}

	item.Quantity = 1
	c.Items = append(c.Items, item)
	return nil
}

// IncreaseQuantity bumps the item's quantity by one, up to the cap.
func (c *Cart) IncreaseQuantity(eventID int) error {
	idx := c.Find(eventID)
	if idx < 0 {
		return ErrEventNotFound
	}
	if c.Items[idx].Quantity >= MaxQuantityPerItem {
		return ErrQuantityLimit
	}
	c.Items[idx].Quantity++
	return nil
}

// DecreaseQuantity lowers the item's quantity by one and removes the
// item when it reaches zero.
func (c *Cart) DecreaseQuantity(eventID int) error {
	idx := c.Find(eventID)
	if idx < 0 {
		return ErrEventNotFound
	}
	c.Items[idx].Quantity--
	if c.Items[idx].Quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
	return nil
}

// Remove drops the item regardless of quantity.
func (c *Cart) Remove(eventID int) {
	if idx := c.Find(eventID); idx >= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
}

// Total sums price*quantity over all items, in cents.
func (c *Cart) Total() int {
	total := 0
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount sums the quantities of all items.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}
