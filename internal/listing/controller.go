package listing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"carrental-client/internal/matching"
	"carrental-client/internal/model"
)

// CarService is the remote car catalog the controller queries
type CarService interface {
	ListAll(ctx context.Context) ([]model.Car, error)
	ListPaged(ctx context.Context, q model.PageQuery) (*model.Page[model.Car], error)
	GetByID(ctx context.Context, id int64) (*model.Car, error)
}

// Config holds listing defaults
type Config struct {
	PageSize    int
	Sort        string
	Direction   string
	CallTimeout time.Duration
}

// DefaultConfig returns the default listing configuration
func DefaultConfig() Config {
	return Config{
		PageSize:    10,
		Sort:        "id",
		Direction:   "asc",
		CallTimeout: 15 * time.Second,
	}
}

// Snapshot is a consistent view of the controller's cursor and state
type Snapshot struct {
	Filter     model.Filter
	Page       int
	PageSize   int
	TotalPages int
	IsLastPage bool
	State      State
}

type target int

const (
	targetListing target = iota
	targetCar
)

// Controller drives the car listing. Every operation publishes Loading
// synchronously and runs the remote call on its own goroutine. Only the
// response of the most recently issued operation is applied.
type Controller struct {
	svc    CarService
	cfg    Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      State
	filter     model.Filter
	page       int
	pageSize   int
	totalPages int
	isLastPage bool
	target     target
	carID      int64
	seq        uint64
	closed     bool
	subs       map[int]chan State
	nextSub    int
}

// NewController creates a controller in the Idle state
func NewController(svc CarService, cfg Config, logger *slog.Logger) *Controller {
	return NewControllerContext(context.Background(), svc, cfg, logger)
}

// NewControllerContext creates a controller whose calls are cancelled when
// parent is done
func NewControllerContext(parent context.Context, svc CarService, cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaults.CallTimeout
	}

	ctx, cancel := context.WithCancel(parent)

	return &Controller{
		svc:        svc,
		cfg:        cfg,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		state:      Idle(),
		filter:     model.NoFilter(),
		pageSize:   cfg.PageSize,
		isLastPage: true,
		subs:       make(map[int]chan State),
	}
}

// LoadAll clears the filter and loads the unfiltered listing
func (c *Controller) LoadAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetFilter(model.NoFilter(), 0, c.cfg.PageSize)
	c.issueListing()
}

// FilterByBrand lists cars of a brand. Blank input behaves as LoadAll.
func (c *Controller) FilterByBrand(brand string) {
	brand = matching.CleanQuery(brand)
	if brand == "" {
		c.LoadAll()
		return
	}
	c.applyFilter(model.ByBrand(brand), 0, c.cfg.PageSize)
}

// FilterByModel lists cars of a model. Blank input behaves as LoadAll.
func (c *Controller) FilterByModel(name string) {
	name = matching.CleanQuery(name)
	if name == "" {
		c.LoadAll()
		return
	}
	c.applyFilter(model.ByModel(name), 0, c.cfg.PageSize)
}

// FilterByRatingRange lists cars rated within [min, max]
func (c *Controller) FilterByRatingRange(min, max float64) {
	c.applyFilter(model.ByRatingRange(min, max), 0, c.cfg.PageSize)
}

// LoadAvailable lists available cars starting at the given page
func (c *Controller) LoadAvailable(page, size int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = c.cfg.PageSize
	}
	c.applyFilter(model.AvailableOnly(), page, size)
}

// NextPage moves to the following page of the active query. It does
// nothing on the last page, including a page still in flight.
func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.isLastPage {
		return
	}
	c.page++
	c.isLastPage = c.page >= c.totalPages-1
	c.issueListing()
}

// PreviousPage moves back one page. It does nothing on the first page.
func (c *Controller) PreviousPage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.page == 0 {
		return
	}
	c.page--
	c.isLastPage = false
	c.issueListing()
}

// LoadByID loads a single car. The listing cursor and filter are kept.
func (c *Controller) LoadByID(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.target = targetCar
	c.carID = id
	c.issueCar(id)
}

// Reload reissues the last operation at the current cursor
func (c *Controller) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.target == targetCar {
		c.issueCar(c.carID)
		return
	}
	c.issueListing()
}

// SetFavorite patches the favorite flag of a visible car and republishes
// the state. It reports whether a car was patched.
func (c *Controller) SetFavorite(carID int64, favorite bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	next, ok := c.state.withFavorite(carID, favorite)
	if !ok {
		return false
	}
	c.setState(next)
	return true
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the cursor, metadata and state under one lock
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Filter:     c.filter,
		Page:       c.page,
		PageSize:   c.pageSize,
		TotalPages: c.totalPages,
		IsLastPage: c.isLastPage,
		State:      c.state,
	}
}

// Subscribe returns a channel that always holds the latest state. The
// current state is delivered immediately. A slow reader skips
// intermediate states. The channel is closed by cancel or Close.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Wait blocks until every in-flight call has finished
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight calls, waits for them and closes subscriptions.
// Operations issued after Close are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Controller) applyFilter(f model.Filter, page, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetFilter(f, page, size)
	c.issueListing()
}

// resetFilter installs a new query. Page metadata is unknown until the
// first response of that query arrives, so navigation is disabled.
func (c *Controller) resetFilter(f model.Filter, page, size int) {
	c.filter = f
	c.page = page
	c.pageSize = size
	c.totalPages = 0
	c.isLastPage = true
	c.target = targetListing
}

// issueListing starts the query for the active filter at the current
// cursor. Must be called with mu held.
func (c *Controller) issueListing() {
	if c.closed {
		return
	}
	c.target = targetListing

	if !c.filter.Paged() {
		c.issue("cars.ListAll", func(ctx context.Context) (State, error) {
			items, err := c.svc.ListAll(ctx)
			if err != nil {
				return State{}, err
			}
			return Success(items), nil
		})
		return
	}

	q := c.filter.Query(c.page, c.pageSize, c.cfg.Sort, c.cfg.Direction)
	c.issue("cars.ListPaged", func(ctx context.Context) (State, error) {
		page, err := c.svc.ListPaged(ctx, q)
		if err != nil {
			return State{}, err
		}
		if page == nil {
			return State{}, model.NewError("cars.ListPaged", model.KindDecode, "empty page")
		}
		return Paginated(page), nil
	})
}

// issueCar starts a single car lookup. Must be called with mu held.
func (c *Controller) issueCar(id int64) {
	c.issue("cars.GetByID", func(ctx context.Context) (State, error) {
		car, err := c.svc.GetByID(ctx, id)
		if err != nil {
			return State{}, err
		}
		if car == nil {
			return State{}, model.NewError("cars.GetByID", model.KindNotFound, "car not found")
		}
		return Single(car), nil
	})
}

// issue takes the next sequence number, publishes Loading and runs call in
// the background. Must be called with mu held.
func (c *Controller) issue(op string, call func(ctx context.Context) (State, error)) {
	c.seq++
	seq := c.seq
	filter := c.filter

	c.setState(Loading())

	c.logger.Debug("issuing listing request",
		"op", op,
		"seq", seq,
		"filter", filter.String(),
		"page", c.page,
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.CallTimeout)
		defer cancel()

		next, err := call(ctx)
		if err != nil {
			next = Failed(model.AsError(op, err))
		}
		c.apply(seq, op, next)
	}()
}

// apply publishes the result of request seq unless a newer request has
// been issued since
func (c *Controller) apply(seq uint64, op string, next State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if seq != c.seq {
		c.logger.Debug("dropping stale response",
			"op", op,
			"seq", seq,
			"latest", c.seq,
		)
		return
	}

	switch next.Kind {
	case KindPaginated:
		c.totalPages = next.Page.TotalPages
		c.isLastPage = next.Page.Last
	case KindError:
		c.logger.Warn("listing request failed",
			"op", op,
			"kind", next.Err.Kind,
			"error", next.Err,
		)
	}

	c.setState(next)
}

// setState stores and broadcasts a state. Must be called with mu held.
func (c *Controller) setState(s State) {
	c.state = s
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
