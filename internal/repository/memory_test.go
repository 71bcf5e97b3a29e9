package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-client/internal/model"
)

func testCars() []model.Car {
	return []model.Car{
		{ID: 3, Brand: "Citroën", Model: "C3", PricePerDay: 33, Rating: 3.6, Available: true},
		{ID: 1, Brand: "BMW", Model: "320i", PricePerDay: 95, Rating: 4.6, Available: true},
		{ID: 2, Brand: "BMW", Model: "X5", PricePerDay: 150, Rating: 4.8, Available: false},
		{ID: 4, Brand: "Renault", Model: "Mégane", PricePerDay: 42, Rating: 3.7, Available: true},
		{ID: 5, Brand: "Toyota", Model: "Corolla", PricePerDay: 45, Rating: 4.5, Available: true},
	}
}

func ptr[T any](v T) *T {
	return &v
}

func ids(cars []model.Car) []int64 {
	out := make([]int64, 0, len(cars))
	for _, c := range cars {
		out = append(out, c.ID)
	}
	return out
}

func TestMemoryCars(t *testing.T) {
	store := NewMemoryStore(testCars())
	ctx := context.Background()

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(all))

	car, err := store.GetByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Mégane", car.Model)

	_, err = store.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListPaged(t *testing.T) {
	store := NewMemoryStore(testCars())
	ctx := context.Background()

	tests := []struct {
		name  string
		query model.PageQuery
		want  []int64
		total int64
		pages int
		last  bool
	}{
		{
			name:  "brand ignores case",
			query: model.PageQuery{Size: 10, Brand: "bmw"},
			want:  []int64{1, 2},
			total: 2, pages: 1, last: true,
		},
		{
			name:  "brand ignores accents",
			query: model.PageQuery{Size: 10, Brand: "citroen"},
			want:  []int64{3},
			total: 1, pages: 1, last: true,
		},
		{
			name:  "model",
			query: model.PageQuery{Size: 10, Model: "megane"},
			want:  []int64{4},
			total: 1, pages: 1, last: true,
		},
		{
			name:  "wildcard characters are literal",
			query: model.PageQuery{Size: 10, Brand: "_"},
			want:  []int64{},
			total: 0, pages: 0, last: true,
		},
		{
			name:  "rating range",
			query: model.PageQuery{Size: 10, MinRating: ptr(4.0), MaxRating: ptr(4.6)},
			want:  []int64{1, 5},
			total: 2, pages: 1, last: true,
		},
		{
			name:  "available first page",
			query: model.PageQuery{Size: 2, Availability: ptr(true)},
			want:  []int64{1, 3},
			total: 4, pages: 2, last: false,
		},
		{
			name:  "available second page",
			query: model.PageQuery{Page: 1, Size: 2, Availability: ptr(true)},
			want:  []int64{4, 5},
			total: 4, pages: 2, last: true,
		},
		{
			name:  "past the end",
			query: model.PageQuery{Page: 7, Size: 2},
			want:  []int64{},
			total: 5, pages: 3, last: true,
		},
		{
			name:  "sort by price descending",
			query: model.PageQuery{Size: 3, Sort: "price", Direction: "desc"},
			want:  []int64{2, 1, 5},
			total: 5, pages: 2, last: false,
		},
		{
			name:  "unknown sort falls back to id",
			query: model.PageQuery{Size: 2, Sort: "id; DROP TABLE cars"},
			want:  []int64{1, 2},
			total: 5, pages: 3, last: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := store.ListPaged(ctx, tt.query)
			require.NoError(t, err)
			require.NoError(t, page.Validate())

			assert.Equal(t, tt.want, ids(page.Content))
			assert.Equal(t, tt.total, page.TotalElements)
			assert.Equal(t, tt.pages, page.TotalPages)
			assert.Equal(t, tt.last, page.Last)
		})
	}
}

func TestMemoryUsers(t *testing.T) {
	users := NewMemoryStore(nil).Users()
	ctx := context.Background()

	u := &model.User{Name: "Ana", Email: " Ana@Example.com "}
	require.NoError(t, users.Create(ctx, u, "hash"))
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())

	err := users.Create(ctx, &model.User{Email: "ANA@example.com"}, "other")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	got, hash, err := users.GetByEmail(ctx, "ana@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", hash)
	assert.Equal(t, "Ana", got.Name)

	_, err = users.GetByID(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFavorites(t *testing.T) {
	store := NewMemoryStore(testCars())
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	require.NoError(t, store.Add(ctx, 1, 5))
	require.NoError(t, store.Add(ctx, 1, 2))
	require.NoError(t, store.Add(ctx, 1, 2))
	assert.ErrorIs(t, store.Add(ctx, 1, 99), ErrNotFound)

	cars, err := store.ListCars(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, ids(cars))
	for _, c := range cars {
		assert.True(t, c.Favorite)
	}

	favIDs, err := store.IDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{2: true, 5: true}, favIDs)

	require.NoError(t, store.Remove(ctx, 1, 5))
	require.NoError(t, store.Remove(ctx, 7, 5))

	cars, err = store.ListCars(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(cars))

	empty, err := store.ListCars(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryBookings(t *testing.T) {
	bookings := NewMemoryStore(testCars()).Bookings()
	ctx := context.Background()

	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	b := &model.Booking{CarID: 1, UserID: 7, StartDate: start, EndDate: start.AddDate(0, 0, 3), Status: model.BookingConfirmed}
	require.NoError(t, bookings.Create(ctx, b))
	assert.Equal(t, int64(1), b.ID)

	overlap := &model.Booking{CarID: 1, UserID: 8, StartDate: start.AddDate(0, 0, 2), EndDate: start.AddDate(0, 0, 5), Status: model.BookingConfirmed}
	assert.ErrorIs(t, bookings.Create(ctx, overlap), ErrBookingConflict)

	adjacent := &model.Booking{CarID: 1, UserID: 7, StartDate: start.AddDate(0, 0, 3), EndDate: start.AddDate(0, 0, 4), Status: model.BookingConfirmed}
	require.NoError(t, bookings.Create(ctx, adjacent))

	missing := &model.Booking{CarID: 99, UserID: 7, StartDate: start, EndDate: start.AddDate(0, 0, 1)}
	assert.ErrorIs(t, bookings.Create(ctx, missing), ErrNotFound)

	list, err := bookings.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, adjacent.ID, list[0].ID)

	none, err := bookings.ListByUser(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCarWhere(t *testing.T) {
	where, args := carWhere(model.PageQuery{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = carWhere(model.PageQuery{Brand: "BMW", MinRating: ptr(3.5), Availability: ptr(true)})
	assert.Equal(t, " WHERE strpos(search_brand, $1) > 0 AND rating >= $2 AND available = $3", where)
	assert.Equal(t, []any{"bmw", 3.5, true}, args)

	where, args = carWhere(model.PageQuery{Brand: " Citroën ", Model: "50%_"})
	assert.Equal(t, " WHERE strpos(search_brand, $1) > 0 AND strpos(search_model, $2) > 0", where)
	assert.Equal(t, []any{"citroen", "50%_"}, args)

	assert.Equal(t, "price_per_day", sortColumn("price"))
	assert.Equal(t, "id", sortColumn("1; DROP TABLE cars"))
}
