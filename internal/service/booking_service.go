package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"carrental-client/internal/model"
)

var (
	ErrInvalidDates    = errors.New("end date must be after start date")
	ErrCarUnavailable  = errors.New("car is not available")
	ErrBookingOverlap  = errors.New("car is already booked for these dates")
	ErrPaymentDeclined = errors.New("payment declined")
)

type BookingBackend interface {
	GetByID(ctx context.Context, id int64) (*model.Car, error)
	ListBookings(ctx context.Context) ([]model.Booking, error)
	CreateBooking(ctx context.Context, req model.BookingRequest) (*model.Booking, error)
}

// BookingService prices, books and pays rentals. Payment is simulated
// locally.
type BookingService struct {
	backend BookingBackend
	logger  *slog.Logger
	now     func() time.Time
}

func NewBookingService(backend BookingBackend, logger *slog.Logger) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{backend: backend, logger: logger, now: time.Now}
}

// Quote prices a rental in whole days, at least one
func (s *BookingService) Quote(car model.Car, start, end time.Time) (model.Quote, error) {
	if !end.After(start) {
		return model.Quote{}, ErrInvalidDates
	}

	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	days = max(days, 1)

	return model.Quote{
		CarID:       car.ID,
		Days:        days,
		PricePerDay: car.PricePerDay,
		Total:       roundCents(car.PricePerDay * float64(days)),
	}, nil
}

// Book creates a booking after checking the car is available and not
// already booked by the user for an overlapping period
func (s *BookingService) Book(ctx context.Context, carID int64, start, end time.Time) (*model.Booking, error) {
	if !end.After(start) {
		return nil, ErrInvalidDates
	}

	var car *model.Car
	var bookings []model.Booking

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.backend.GetByID(gctx, carID)
		if err != nil {
			return fmt.Errorf("failed to load car: %w", err)
		}
		car = c
		return nil
	})
	g.Go(func() error {
		b, err := s.backend.ListBookings(gctx)
		if err != nil {
			return fmt.Errorf("failed to load bookings: %w", err)
		}
		bookings = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !car.Available {
		return nil, ErrCarUnavailable
	}

	for _, b := range bookings {
		if b.CarID == carID && b.Status != model.BookingCancelled && b.Overlaps(start, end) {
			return nil, fmt.Errorf("%w: booking %d", ErrBookingOverlap, b.ID)
		}
	}

	booking, err := s.backend.CreateBooking(ctx, model.BookingRequest{
		CarID:     carID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"car_id", carID,
		"total", booking.TotalPrice,
	)
	return booking, nil
}

// Pay runs the mock payment for a booking. A declined card returns a
// receipt with status DECLINED together with ErrPaymentDeclined.
func (s *BookingService) Pay(ctx context.Context, booking model.Booking, card model.PaymentCard) (*model.PaymentReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if booking.Status == model.BookingCancelled {
		return nil, fmt.Errorf("booking %d is cancelled", booking.ID)
	}

	number := digitsOnly(card.Number)
	receipt := &model.PaymentReceipt{
		BookingID: booking.ID,
		Amount:    booking.TotalPrice,
		CardLast4: last4(number),
		PaidAt:    s.now().UTC(),
	}

	if reason := s.checkCard(number, card); reason != "" {
		receipt.Status = model.PaymentDeclined
		s.logger.Warn("payment declined",
			"booking_id", booking.ID,
			"reason", reason,
		)
		return receipt, fmt.Errorf("%w: %s", ErrPaymentDeclined, reason)
	}

	receipt.Status = model.PaymentApproved
	receipt.TransactionID = uuid.NewString()

	s.logger.Info("payment approved",
		"booking_id", booking.ID,
		"transaction_id", receipt.TransactionID,
		"amount", receipt.Amount,
	)
	return receipt, nil
}

// checkCard returns the decline reason, or "" for an acceptable card
func (s *BookingService) checkCard(number string, card model.PaymentCard) string {
	if len(number) < 12 || len(number) > 19 || !luhnValid(number) {
		return "invalid card number"
	}

	if card.ExpMonth < 1 || card.ExpMonth > 12 {
		return "invalid expiry month"
	}
	// cards are valid through the last day of the expiry month
	expires := time.Date(card.ExpYear, time.Month(card.ExpMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	if !s.now().Before(expires) {
		return "card expired"
	}

	cvv := strings.TrimSpace(card.CVV)
	if len(cvv) < 3 || len(cvv) > 4 || digitsOnly(cvv) != cvv {
		return "invalid cvv"
	}

	return ""
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// digitsOnly drops spaces and dashes. Any other non-digit empties the
// result.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return ""
		}
	}
	return b.String()
}

func last4(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
