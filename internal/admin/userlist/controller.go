package userlist

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Users []User
	Total int
	Pager PagerState
	// Ready is false until the undeletable users have been loaded or failed to load.
	Ready bool

	undeletable map[string]struct{}
}

// Protected reports whether user can not be deleted, with the same answer
// IsProtected gave when the snapshot was taken.
func (s Snapshot) Protected(user User) bool {
	if !s.Ready {
		return true
	}
	_, ok := s.undeletable[user.Username]
	return ok
}

// Controller drives the user list. All methods are safe for concurrent use.
// Gateway calls are made without holding the state lock, so when requests
// overlap the one that resolves last determines what is shown.
type Controller struct {
	gateway   Gateway
	special   SpecialUsersSource
	notifier  Notifier
	navigator Navigator
	logger    *slog.Logger

	window           time.Duration
	startingPageSize int

	mu          sync.Mutex
	users       []User
	total       int
	pager       *Pager
	undeletable map[string]struct{}
	ready       bool
	debounce    *debouncer[PageEvent]
	cancel      context.CancelFunc
	listeners   []func(Snapshot)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithDebounceWindow sets the quiet period applied to page changes.
func WithDebounceWindow(window time.Duration) ControllerOption {
	return func(c *Controller) {
		if window > 0 {
			c.window = window
		}
	}
}

// WithStartingPageSize overrides the page size used by Activate.
// Sizes outside PageSizeOptions are ignored.
func WithStartingPageSize(size int) ControllerOption {
	return func(c *Controller) {
		if IsPageSizeOption(size) {
			c.startingPageSize = size
		}
	}
}

// NewController creates a controller. It does nothing until Activate is called.
func NewController(
	gateway Gateway,
	special SpecialUsersSource,
	notifier Notifier,
	navigator Navigator,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		gateway:          gateway,
		special:          special,
		notifier:         notifier,
		navigator:        navigator,
		logger:           slog.Default(),
		window:           DefaultDebounceWindow,
		startingPageSize: StartingPageSize,
		users:            []User{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.pager = NewPager(c.startingPageSize)
	return c
}

// Activate subscribes to page changes, puts the pager back on the first page
// at the starting size, then loads that page and the undeletable users
// concurrently. It returns once both have settled. Failures are logged and
// never stop the other load.
func (c *Controller) Activate(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	lifeCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.debounce = newDebouncer(c.window, func(ev PageEvent) {
		c.handlePageEvent(lifeCtx, ev)
	})
	pageSize := c.startingPageSize
	c.pager.Apply(PageEvent{PageSize: pageSize, PageIndex: 0})
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		c.RequestPage(lifeCtx, pageSize, 0)
		return nil
	})
	g.Go(func() error {
		return c.loadSpecialUsers(lifeCtx)
	})

	if err := g.Wait(); err != nil {
		c.logger.ErrorContext(ctx, "failed to initialize user list", slog.String("error", err.Error()))
	}
}

// Deactivate stops listening for page changes. Pending changes are dropped.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	d, cancel := c.debounce, c.cancel
	c.debounce, c.cancel = nil, nil
	c.mu.Unlock()

	if d != nil {
		d.Close()
	}
	if cancel != nil {
		cancel()
	}
}

func (c *Controller) loadSpecialUsers(ctx context.Context) error {
	special, err := c.special.GetSpecialUsers(ctx)

	c.mu.Lock()
	c.undeletable = make(map[string]struct{}, len(special.UndeletableUsers))
	if err == nil {
		for _, name := range special.UndeletableUsers {
			c.undeletable[name] = struct{}{}
		}
	}
	c.ready = true
	c.mu.Unlock()

	c.notifyListeners()

	if err != nil {
		return fmt.Errorf("failed to load special users: %w", err)
	}
	return nil
}

// Refresh refetches the page the pager is on. It reports whether the page
// was applied.
func (c *Controller) Refresh(ctx context.Context) bool {
	c.mu.Lock()
	state := c.pager.State()
	c.mu.Unlock()

	return c.RequestPage(ctx, state.PageSize, state.PageIndex)
}

// RequestPage fetches a page and shows it when it has at least one user.
// It reports whether the page was applied. An applied page also moves the
// pager to pageSize and pageIndex, so the pager always names the rows on
// screen. A failed request shows an error toast, an empty page leaves
// everything as it was.
func (c *Controller) RequestPage(ctx context.Context, pageSize, pageIndex int) bool {
	page, err := c.gateway.GetUsers(ctx, pageSize, pageIndex)
	if err != nil {
		if ctx.Err() != nil {
			c.logger.DebugContext(ctx, "user page request abandoned",
				slog.Int("page_index", pageIndex),
				slog.String("error", err.Error()),
			)
			return false
		}
		c.logger.ErrorContext(ctx, "failed to fetch users",
			slog.Int("page_size", pageSize),
			slog.Int("page_index", pageIndex),
			slog.String("error", err.Error()),
		)
		c.notifier.Toast(ToastError, MsgFetchFailed)
		return false
	}

	if len(page.Users) == 0 {
		return false
	}

	c.mu.Lock()
	c.users = slices.Clone(page.Users)
	c.total = page.Total
	c.pager.Apply(PageEvent{PageSize: pageSize, PageIndex: pageIndex})
	c.pager.SetLength(page.Total)
	c.mu.Unlock()

	c.notifyListeners()
	return true
}

// ChangePage moves the pager to ev at once and schedules the fetch. Bursts
// of events are collapsed into the last one. An inactive controller ignores
// the event and leaves the pager where it is.
func (c *Controller) ChangePage(ev PageEvent) {
	c.mu.Lock()
	d := c.debounce
	if d != nil {
		c.pager.Apply(ev)
	}
	c.mu.Unlock()

	if d == nil {
		c.logger.Debug("page change ignored, user list is not active", slog.Int("page_index", ev.PageIndex))
		return
	}
	d.Push(ev)
}

func (c *Controller) handlePageEvent(ctx context.Context, ev PageEvent) {
	if ctx.Err() != nil {
		return
	}
	if c.RequestPage(ctx, ev.PageSize, ev.PageIndex) {
		return
	}
	if ctx.Err() != nil {
		return
	}

	if ev.PreviousPageIndex == ev.PageIndex-1 {
		c.PreviousPage()
	} else {
		c.FirstPage()
	}
}

// NextPage moves the pager forward when there is a next page.
func (c *Controller) NextPage() { c.movePager((*Pager).NextPage) }

// PreviousPage moves the pager back unless it is on the first page.
func (c *Controller) PreviousPage() { c.movePager((*Pager).PreviousPage) }

// FirstPage moves the pager to the first page unless it is already there.
func (c *Controller) FirstPage() { c.movePager((*Pager).FirstPage) }

// LastPage moves the pager to the last known page.
func (c *Controller) LastPage() { c.movePager((*Pager).LastPage) }

// GoToPage moves the pager to index.
func (c *Controller) GoToPage(index int) {
	c.movePager(func(p *Pager) (PageEvent, bool) { return p.GoTo(index) })
}

// SetPageSize changes the page size. size must be one of PageSizeOptions.
func (c *Controller) SetPageSize(size int) error {
	if !IsPageSizeOption(size) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	c.movePager(func(p *Pager) (PageEvent, bool) { return p.SetPageSize(size) })
	return nil
}

func (c *Controller) movePager(move func(*Pager) (PageEvent, bool)) {
	c.mu.Lock()
	if c.debounce == nil {
		c.mu.Unlock()
		c.logger.Debug("pager move ignored, user list is not active")
		return
	}
	ev, moved := move(c.pager)
	c.mu.Unlock()

	if moved {
		c.ChangePage(ev)
	}
}

// Delete asks for confirmation, deletes the user when confirmed and then
// refreshes the current page. The refresh happens whatever the answer was.
func (c *Controller) Delete(ctx context.Context, user User) {
	choice, err := c.notifier.Confirm(ctx, deleteDialog(user))
	if err != nil {
		c.logger.WarnContext(ctx, "delete confirmation failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err == nil && choice == ButtonDelete {
		if delErr := c.gateway.DeleteUser(ctx, user.ID); delErr != nil {
			c.logger.ErrorContext(ctx, "failed to delete user",
				slog.String("user_id", user.ID),
				slog.String("error", delErr.Error()),
			)
			c.notifier.Toast(ToastError, MsgDeleteFailed)
		} else {
			c.logger.InfoContext(ctx, "user deleted", slog.String("user_id", user.ID))
			c.notifier.Toast(ToastSuccess, MsgDeleted)
		}
	}

	if !c.Refresh(ctx) {
		c.FirstPage()
	}
}

func deleteDialog(user User) Dialog {
	return Dialog{
		Title:       fmt.Sprintf("Are you sure you want to delete %s?", user.Username),
		Description: "This action cannot be undone.",
		Buttons: []DialogButton{
			{Name: ButtonDelete, Text: "Delete", Color: "red"},
			{Name: ButtonCancel, Text: "Cancel", Color: "primary"},
		},
	}
}

// IsProtected reports whether user can not be deleted. Until the
// undeletable users are known every user counts as protected.
func (c *Controller) IsProtected(user User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{Ready: c.ready, undeletable: c.undeletable}.Protected(user)
}

// Ready reports whether the undeletable users load has settled.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// AddUser opens the user creation screen.
func (c *Controller) AddUser() {
	c.navigator.Navigate(RouteAddUser)
}

// EditUser opens the edit screen of user.
func (c *Controller) EditUser(user User) {
	c.navigator.Navigate(RouteEditUser + user.ID)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Users:       slices.Clone(c.users),
		Total:       c.total,
		Pager:       c.pager.State(),
		Ready:       c.ready,
		undeletable: c.undeletable,
	}
}

// OnChange registers fn to be called after a page is applied and once the
// undeletable users have settled.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) notifyListeners() {
	c.mu.Lock()
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
