package handler_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"carrental-client/internal/auth"
	"carrental-client/internal/client"
	"carrental-client/internal/database"
	"carrental-client/internal/handler"
	"carrental-client/internal/listing"
	"carrental-client/internal/model"
	"carrental-client/internal/repository"
	"carrental-client/internal/service"
	"carrental-client/internal/tokenstore"
)

type stack struct {
	api      *client.CarClient
	session  *tokenstore.MemoryStore
	listing  *listing.Controller
	accounts *service.AuthService
}

func newStack(t *testing.T) *stack {
	t.Helper()

	store := repository.NewMemoryStore(database.Fleet())
	tokens, err := auth.NewManager("e2e-signing-key", "carrental-stub")
	require.NoError(t, err)

	srv := httptest.NewServer(handler.NewRouter(handler.Deps{
		Cars:       store,
		Users:      store.Users(),
		Favorites:  store,
		Bookings:   store.Bookings(),
		Tokens:     tokens,
		PageSize:   10,
		BcryptCost: bcrypt.MinCost,
	}))
	t.Cleanup(srv.Close)

	session := tokenstore.NewMemoryStore()
	api := client.NewCarClient(client.DefaultConfig(srv.URL), session, nil)
	t.Cleanup(api.Close)

	ctrl := listing.NewController(api, listing.DefaultConfig(), nil)
	t.Cleanup(ctrl.Close)

	return &stack{
		api:      api,
		session:  session,
		listing:  ctrl,
		accounts: service.NewAuthService(api, session, nil, service.AuthConfig{}, nil),
	}
}

func TestListingAgainstBackend(t *testing.T) {
	s := newStack(t)

	s.listing.LoadAll()
	s.listing.Wait()
	state := s.listing.State()
	require.Equal(t, listing.KindSuccess, state.Kind)
	assert.Len(t, state.Items, len(database.Fleet()))

	s.listing.LoadAvailable(0, 10)
	s.listing.Wait()
	snap := s.listing.Snapshot()
	require.Equal(t, listing.KindPaginated, snap.State.Kind)
	assert.Equal(t, 3, snap.TotalPages)
	assert.False(t, snap.IsLastPage)

	s.listing.NextPage()
	s.listing.Wait()
	snap = s.listing.Snapshot()
	require.Equal(t, listing.KindPaginated, snap.State.Kind)
	assert.Equal(t, 1, snap.Page)

	s.listing.NextPage()
	s.listing.Wait()
	snap = s.listing.Snapshot()
	assert.Equal(t, 2, snap.Page)
	assert.True(t, snap.IsLastPage)
	assert.Len(t, snap.State.Page.Content, 1)

	s.listing.FilterByBrand("  citroen ")
	s.listing.Wait()
	state = s.listing.State()
	require.Equal(t, listing.KindPaginated, state.Kind)
	require.Len(t, state.Page.Content, 1)
	assert.Equal(t, "Citroën", state.Page.Content[0].Brand)

	s.listing.FilterByRatingRange(4.9, 4.7)
	s.listing.Wait()
	state = s.listing.State()
	require.Equal(t, listing.KindPaginated, state.Kind)
	for _, c := range state.Page.Content {
		assert.GreaterOrEqual(t, c.Rating, 4.7)
		assert.LessOrEqual(t, c.Rating, 4.9)
	}

	s.listing.LoadByID(999)
	s.listing.Wait()
	state = s.listing.State()
	require.Equal(t, listing.KindError, state.Kind)
	assert.Equal(t, model.KindNotFound, state.Err.Kind)

	s.listing.LoadByID(6)
	s.listing.Wait()
	state = s.listing.State()
	require.Equal(t, listing.KindSingle, state.Kind)
	assert.Equal(t, "i4", state.Car.Model)
}

func TestAccountFlowAgainstBackend(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	_, err := s.api.ListFavorites(ctx)
	assert.Equal(t, model.KindUnauthenticated, model.KindOf(err))

	_, err = s.accounts.Register(ctx, model.RegisterRequest{Name: "Rita", Email: "rita@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, s.accounts.Logout(ctx))
	assert.False(t, s.accounts.IsLoggedIn(ctx))

	_, err = s.accounts.Login(ctx, "rita@example.com", "wrong-password")
	assert.Equal(t, model.KindUnauthenticated, model.KindOf(err))

	_, err = s.accounts.Login(ctx, "rita@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, s.accounts.IsLoggedIn(ctx))

	me, err := s.accounts.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rita", me.Name)

	s.listing.FilterByBrand("bmw")
	s.listing.Wait()
	cars := s.listing.State().Cars()
	require.NotEmpty(t, cars)

	favorites := service.NewFavoriteService(s.api, s.listing, nil)
	updated, err := favorites.Toggle(ctx, cars[0])
	require.NoError(t, err)
	assert.True(t, updated.Favorite)
	assert.True(t, s.listing.State().Cars()[0].Favorite)

	listed, err := favorites.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, cars[0].ID, listed[0].ID)

	s.listing.Reload()
	s.listing.Wait()
	assert.True(t, s.listing.State().Cars()[0].Favorite)

	bookings := service.NewBookingService(s.api, nil)
	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)

	booking, err := bookings.Book(ctx, 1, start, start.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 90.0, booking.TotalPrice)

	_, err = bookings.Book(ctx, 1, start.Add(24*time.Hour), start.Add(72*time.Hour))
	assert.ErrorIs(t, err, service.ErrBookingOverlap)

	_, err = bookings.Book(ctx, 5, start, start.Add(24*time.Hour))
	assert.ErrorIs(t, err, service.ErrCarUnavailable)

	receipt, err := bookings.Pay(ctx, *booking, model.PaymentCard{
		Holder:   "Rita",
		Number:   "4242 4242 4242 4242",
		ExpMonth: 12,
		ExpYear:  2099,
		CVV:      "123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentApproved, receipt.Status)
	assert.Equal(t, "4242", receipt.CardLast4)
	assert.Equal(t, booking.TotalPrice, receipt.Amount)
}
