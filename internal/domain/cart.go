package domain

type Cart struct {
	Items []LineItem
}

type LineItem struct {
	ProductID string
	Quantity  int

	// Product is kept for display and pricing; the catalog owns it.
	Product Product
}

func (c Cart) Len() int {
	return len(c.Items)
}

// Find returns the index of the line item for productID, or -1.
func (c Cart) Find(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
