package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"carrental-client/internal/matching"
	"carrental-client/internal/model"
)

// MemoryStore is an in-process fixture backing every store interface. It
// serves cars and favorites directly; Users and Bookings return views for
// the other two. Brand and model filters ignore case and accents.
type MemoryStore struct {
	mu        sync.RWMutex
	cars      []model.Car
	users     map[int64]memoryUser
	favorites map[int64]map[int64]time.Time
	bookings  []model.Booking
	nextUser  int64
	nextBook  int64
	now       func() time.Time
}

type memoryUser struct {
	user model.User
	hash string
}

func NewMemoryStore(cars []model.Car) *MemoryStore {
	seeded := make([]model.Car, len(cars))
	copy(seeded, cars)
	slices.SortFunc(seeded, func(a, b model.Car) int { return cmp.Compare(a.ID, b.ID) })

	return &MemoryStore{
		cars:      seeded,
		users:     make(map[int64]memoryUser),
		favorites: make(map[int64]map[int64]time.Time),
		now:       time.Now,
	}
}

// Cars

func (s *MemoryStore) List(ctx context.Context) ([]model.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cars), nil
}

func (s *MemoryStore) ListPaged(ctx context.Context, q model.PageQuery) (*model.Page[model.Car], error) {
	s.mu.RLock()
	var matched []model.Car
	for _, c := range s.cars {
		if carMatches(c, q) {
			matched = append(matched, c)
		}
	}
	s.mu.RUnlock()

	col := sortColumn(q.Sort)
	desc := descending(q.Direction)
	slices.SortStableFunc(matched, func(a, b model.Car) int {
		n := compareCars(a, b, col)
		if desc {
			n = -n
		}
		if n == 0 {
			n = cmp.Compare(a.ID, b.ID)
		}
		return n
	})

	start := min(q.Page*q.Size, len(matched))
	end := min(start+q.Size, len(matched))

	return model.NewPage(slices.Clone(matched[start:end]), q.Page, q.Size, int64(len(matched))), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*model.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	car, ok := s.car(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &car, nil
}

func (s *MemoryStore) car(id int64) (model.Car, bool) {
	i, found := slices.BinarySearchFunc(s.cars, id, func(c model.Car, id int64) int {
		return cmp.Compare(c.ID, id)
	})
	if !found {
		return model.Car{}, false
	}
	return s.cars[i], true
}

func carMatches(c model.Car, q model.PageQuery) bool {
	switch {
	case q.Brand != "" && !matching.Contains(c.Brand, q.Brand):
		return false
	case q.Model != "" && !matching.Contains(c.Model, q.Model):
		return false
	case q.MinRating != nil && c.Rating < *q.MinRating:
		return false
	case q.MaxRating != nil && c.Rating > *q.MaxRating:
		return false
	case q.Availability != nil && c.Available != *q.Availability:
		return false
	}
	return true
}

func compareCars(a, b model.Car, col string) int {
	switch col {
	case "brand":
		return strings.Compare(matching.Normalize(a.Brand), matching.Normalize(b.Brand))
	case "model":
		return strings.Compare(matching.Normalize(a.Model), matching.Normalize(b.Model))
	case "year":
		return cmp.Compare(a.Year, b.Year)
	case "price_per_day":
		return cmp.Compare(a.PricePerDay, b.PricePerDay)
	case "rating":
		return cmp.Compare(a.Rating, b.Rating)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

// Users returns the user store view
func (s *MemoryStore) Users() UserStore {
	return memoryUsers{s}
}

// Bookings returns the booking store view
func (s *MemoryStore) Bookings() BookingStore {
	return memoryBookings{s}
}

type memoryUsers struct {
	s *MemoryStore
}

func (u memoryUsers) Create(ctx context.Context, user *model.User, passwordHash string) error {
	return u.s.createUser(user, passwordHash)
}

func (u memoryUsers) GetByEmail(ctx context.Context, email string) (*model.User, string, error) {
	return u.s.userByEmail(email)
}

func (u memoryUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.s.user(id)
}

type memoryBookings struct {
	s *MemoryStore
}

func (b memoryBookings) Create(ctx context.Context, booking *model.Booking) error {
	return b.s.createBooking(booking)
}

func (b memoryBookings) ListByUser(ctx context.Context, userID int64) ([]model.Booking, error) {
	return b.s.bookingsOf(userID), nil
}

// Users

func (s *MemoryStore) createUser(user *model.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.users {
		if u.user.Email == email {
			return ErrDuplicateEmail
		}
	}

	s.nextUser++
	user.ID = s.nextUser
	user.Email = email
	user.CreatedAt = s.now().UTC()
	s.users[user.ID] = memoryUser{user: *user, hash: passwordHash}
	return nil
}

func (s *MemoryStore) userByEmail(email string) (*model.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.user.Email == email {
			user := u.user
			return &user, u.hash, nil
		}
	}
	return nil, "", ErrNotFound
}

func (s *MemoryStore) user(id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user := u.user
	return &user, nil
}

// Favorites

func (s *MemoryStore) Add(ctx context.Context, userID, carID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.car(carID); !ok {
		return ErrNotFound
	}

	favs, ok := s.favorites[userID]
	if !ok {
		favs = make(map[int64]time.Time)
		s.favorites[userID] = favs
	}
	if _, ok := favs[carID]; !ok {
		favs[carID] = s.now()
	}
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, userID, carID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.favorites[userID], carID)
	return nil
}

func (s *MemoryStore) ListCars(ctx context.Context, userID int64) ([]model.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	favs := s.favorites[userID]
	cars := make([]model.Car, 0, len(favs))
	for id := range favs {
		if c, ok := s.car(id); ok {
			cars = append(cars, c.WithFavorite(true))
		}
	}

	slices.SortFunc(cars, func(a, b model.Car) int {
		if n := favs[b.ID].Compare(favs[a.ID]); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return cars, nil
}

func (s *MemoryStore) IDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[int64]bool, len(s.favorites[userID]))
	for id := range s.favorites[userID] {
		ids[id] = true
	}
	return ids, nil
}

// Bookings

func (s *MemoryStore) createBooking(b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.car(b.CarID); !ok {
		return ErrNotFound
	}

	for _, existing := range s.bookings {
		if existing.CarID == b.CarID && existing.Status != model.BookingCancelled && existing.Overlaps(b.StartDate, b.EndDate) {
			return ErrBookingConflict
		}
	}

	s.nextBook++
	b.ID = s.nextBook
	b.CreatedAt = s.now().UTC()
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s *MemoryStore) bookingsOf(userID int64) []model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := []model.Booking{}
	for _, b := range s.bookings {
		if b.UserID == userID {
			bookings = append(bookings, b)
		}
	}

	slices.SortStableFunc(bookings, func(a, b model.Booking) int {
		return b.StartDate.Compare(a.StartDate)
	})
	return bookings
}
