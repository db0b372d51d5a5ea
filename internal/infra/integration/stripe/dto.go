package stripe

// Product is the subset of a Stripe product the catalog reconciliation reads.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

type CreateProductInput struct {
	Name        string
	Description string
	Active      bool
	Metadata    map[string]string
}

// CreatePriceInput describes a new Stripe price. Interval and IntervalCount
// are only sent when Recurring is set.
type CreatePriceInput struct {
	ProductID      string
	UnitAmount     int64
	Currency       string
	Recurring      bool
	Interval       string
	IntervalCount  int64
	Metadata       map[string]string
	IdempotencyKey string
}
