package domain

// Storefront — доменная сущность витрины.
type Storefront struct {
	ID           string `json:"id"`
	PublicID     string `json:"public_id"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currency_code"`
}

// Topic — имя топика широковещательных событий витрины.
func (s Storefront) Topic() string {
	return "storefront." + s.PublicID
}
