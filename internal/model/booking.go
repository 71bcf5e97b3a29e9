package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingPaid      BookingStatus = "PAID"
	BookingCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID         int64         `json:"id"`
	CarID      int64         `json:"carId"`
	UserID     int64         `json:"userId"`
	StartDate  time.Time     `json:"startDate"`
	EndDate    time.Time     `json:"endDate"`
	TotalPrice float64       `json:"totalPrice"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt,omitempty"`
}

// Overlaps reports whether the booking's period intersects [start, end)
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}

type BookingRequest struct {
	CarID     int64     `json:"carId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Quote is the price of renting a car for a period
type Quote struct {
	CarID       int64   `json:"carId"`
	Days        int     `json:"days"`
	PricePerDay float64 `json:"pricePerDay"`
	Total       float64 `json:"total"`
}

type PaymentCard struct {
	Holder   string `json:"holder"`
	Number   string `json:"number"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
	CVV      string `json:"cvv"`
}

type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentDeclined PaymentStatus = "DECLINED"
)

type PaymentReceipt struct {
	TransactionID string        `json:"transactionId"`
	BookingID     int64         `json:"bookingId"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	CardLast4     string        `json:"cardLast4"`
	PaidAt        time.Time     `json:"paidAt"`
}
