package model

type Car struct {
	ID           int64   `json:"id"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	PricePerDay  float64 `json:"pricePerDay"`
	Rating       float64 `json:"rating"`
	Seats        int     `json:"seats"`
	Transmission string  `json:"transmission,omitempty"`
	FuelType     string  `json:"fuelType,omitempty"`
	BodyType     string  `json:"bodyType,omitempty"`
	Available    bool    `json:"available"`
	Favorite     bool    `json:"favorite"`
	ImageURL     string  `json:"imageUrl,omitempty"`
}

// WithFavorite returns a copy of the car with the favorite flag set
func (c Car) WithFavorite(favorite bool) Car {
	c.Favorite = favorite
	return c
}
