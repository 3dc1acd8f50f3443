package entities

// Location is a pair of coordinates in decimal degrees
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Pharmacy identifies a participating pharmacy
type Pharmacy struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zipCode"`
	Phone     string  `json:"phone"`
	ChainCode string  `json:"chainCode,omitempty"`
	NPI       string  `json:"npi,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  float64 `json:"distance"`
}

// PharmacyPriceResult is the price of one drug at one pharmacy
type PharmacyPriceResult struct {
	Pharmacy               Pharmacy `json:"pharmacy"`
	Price                  float64  `json:"price"`
	UsualAndCustomaryPrice float64  `json:"usualAndCustomaryPrice"`
	Distance               float64  `json:"distance"`
}
