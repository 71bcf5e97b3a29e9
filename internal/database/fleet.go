package database

import (
	"fmt"

	"carrental-client/internal/model"
)

type fleetEntry struct {
	brand, model string
	year         int
	price        float64
	rating       float64
	seats        int
	transmission string
	fuel         string
	body         string
	available    bool
}

var fleetEntries = []fleetEntry{
	{"Toyota", "Corolla", 2022, 45, 4.5, 5, "automatic", "hybrid", "sedan", true},
	{"Toyota", "Yaris", 2021, 35, 4.1, 5, "manual", "petrol", "hatchback", true},
	{"Toyota", "RAV4", 2023, 70, 4.7, 5, "automatic", "hybrid", "suv", true},
	{"BMW", "320i", 2022, 95, 4.6, 5, "automatic", "petrol", "sedan", true},
	{"BMW", "X5", 2023, 150, 4.8, 7, "automatic", "diesel", "suv", false},
	{"BMW", "i4", 2024, 130, 4.9, 5, "automatic", "electric", "sedan", true},
	{"Audi", "A3", 2021, 70, 4.3, 5, "automatic", "petrol", "hatchback", true},
	{"Audi", "Q5", 2022, 120, 4.5, 5, "automatic", "diesel", "suv", true},
	{"Volkswagen", "Golf", 2020, 50, 4.2, 5, "manual", "petrol", "hatchback", true},
	{"Volkswagen", "Polo", 2019, 38, 3.9, 5, "manual", "petrol", "hatchback", false},
	{"Volkswagen", "T-Roc", 2022, 65, 4.0, 5, "automatic", "petrol", "suv", true},
	{"Renault", "Clio", 2021, 32, 3.8, 5, "manual", "petrol", "hatchback", true},
	{"Renault", "Mégane", 2020, 42, 3.7, 5, "manual", "diesel", "hatchback", true},
	{"Peugeot", "208", 2022, 36, 4.0, 5, "manual", "petrol", "hatchback", true},
	{"Peugeot", "3008", 2023, 68, 4.4, 5, "automatic", "hybrid", "suv", true},
	{"Citroën", "C3", 2021, 33, 3.6, 5, "manual", "petrol", "hatchback", true},
	{"Tesla", "Model 3", 2023, 110, 4.8, 5, "automatic", "electric", "sedan", true},
	{"Tesla", "Model Y", 2024, 125, 4.7, 5, "automatic", "electric", "suv", false},
	{"Mercedes-Benz", "C200", 2022, 115, 4.6, 5, "automatic", "petrol", "sedan", true},
	{"Mercedes-Benz", "Vito", 2021, 105, 4.1, 9, "manual", "diesel", "van", true},
	{"Škoda", "Octavia", 2022, 55, 4.4, 5, "automatic", "diesel", "wagon", true},
	{"Fiat", "500", 2020, 30, 3.5, 4, "manual", "petrol", "hatchback", true},
	{"Hyundai", "Tucson", 2023, 72, 4.3, 5, "automatic", "hybrid", "suv", true},
	{"Kia", "Niro", 2022, 64, 4.2, 5, "automatic", "electric", "crossover", true},
	{"Ford", "Mustang", 2021, 160, 4.9, 4, "automatic", "petrol", "coupe", false},
}

// Fleet returns the fixture cars used to seed empty stores
func Fleet() []model.Car {
	cars := make([]model.Car, 0, len(fleetEntries))
	for i, e := range fleetEntries {
		id := int64(i + 1)
		cars = append(cars, model.Car{
			ID:           id,
			Brand:        e.brand,
			Model:        e.model,
			Year:         e.year,
			PricePerDay:  e.price,
			Rating:       e.rating,
			Seats:        e.seats,
			Transmission: e.transmission,
			FuelType:     e.fuel,
			BodyType:     e.body,
			Available:    e.available,
			ImageURL:     fmt.Sprintf("https://img.carrental.local/cars/%d.jpg", id),
		})
	}
	return cars
}
