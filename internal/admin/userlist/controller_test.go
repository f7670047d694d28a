package userlist_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/admin/userlist"
)

const (
	testWindow  = 20 * time.Millisecond
	waitFor     = 2 * time.Second
	pollEvery   = 5 * time.Millisecond
	quietPeriod = 5 * testWindow
)

type pageRequest struct {
	size  int
	index int
}

// fakeDirectory serves pages from an in-memory list of users.
type fakeDirectory struct {
	mu        sync.Mutex
	users     []userlist.User
	calls     []pageRequest
	deleted   []string
	getErr    error
	deleteErr error
}

func newFakeDirectory(n int) *fakeDirectory {
	users := make([]userlist.User, 0, n)
	for i := range n {
		users = append(users, userlist.User{
			ID:       fmt.Sprintf("id-%03d", i),
			Username: fmt.Sprintf("user%03d", i),
			Roles:    []string{"user"},
		})
	}
	return &fakeDirectory{users: users}
}

func (d *fakeDirectory) GetUsers(_ context.Context, pageSize, pageIndex int) (userlist.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, pageRequest{size: pageSize, index: pageIndex})
	if d.getErr != nil {
		return userlist.Page{}, d.getErr
	}

	start := pageSize * pageIndex
	if start >= len(d.users) {
		return userlist.Page{Users: []userlist.User{}, Total: len(d.users)}, nil
	}
	end := min(start+pageSize, len(d.users))
	return userlist.Page{Users: slices.Clone(d.users[start:end]), Total: len(d.users)}, nil
}

func (d *fakeDirectory) DeleteUser(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.deleteErr != nil {
		return d.deleteErr
	}
	d.deleted = append(d.deleted, id)
	d.users = slices.DeleteFunc(d.users, func(u userlist.User) bool { return u.ID == id })
	return nil
}

func (d *fakeDirectory) Calls() []pageRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

func (d *fakeDirectory) Deleted() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.deleted)
}

type fakeSpecial struct {
	names   []string
	err     error
	release chan struct{}
}

func (s *fakeSpecial) GetSpecialUsers(ctx context.Context) (userlist.SpecialUsers, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return userlist.SpecialUsers{}, ctx.Err()
		}
	}
	if s.err != nil {
		return userlist.SpecialUsers{}, s.err
	}
	return userlist.SpecialUsers{UndeletableUsers: s.names}, nil
}

type toast struct {
	kind    userlist.ToastKind
	message string
}

type fakeNotifier struct {
	mu      sync.Mutex
	answer  string
	err     error
	dialogs []userlist.Dialog
	toasts  []toast
}

func (n *fakeNotifier) Confirm(_ context.Context, dialog userlist.Dialog) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dialogs = append(n.dialogs, dialog)
	return n.answer, n.err
}

func (n *fakeNotifier) Toast(kind userlist.ToastKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast{kind: kind, message: message})
}

func (n *fakeNotifier) Toasts() []toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.toasts)
}

type fakeNavigator struct {
	routes []string
}

func (n *fakeNavigator) Navigate(route string) {
	n.routes = append(n.routes, route)
}

type fixture struct {
	dir        *fakeDirectory
	special    *fakeSpecial
	notifier   *fakeNotifier
	navigator  *fakeNavigator
	controller *userlist.Controller
}

func newFixture(t *testing.T, users int) *fixture {
	t.Helper()

	f := &fixture{
		dir:       newFakeDirectory(users),
		special:   &fakeSpecial{names: []string{"admin", "guest"}},
		notifier:  &fakeNotifier{},
		navigator: &fakeNavigator{},
	}
	f.controller = userlist.NewController(f.dir, f.special, f.notifier, f.navigator,
		userlist.WithDebounceWindow(testWindow),
	)
	t.Cleanup(f.controller.Deactivate)
	return f
}

func (f *fixture) activate(t *testing.T) {
	t.Helper()
	f.controller.Activate(context.Background())
	require.Len(t, f.dir.Calls(), 1)
}

func (f *fixture) waitForPage(t *testing.T, index int) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap := f.controller.Snapshot()
		return len(snap.Users) > 0 && snap.Users[0].ID == fmt.Sprintf("id-%03d", index*snap.Pager.PageSize)
	}, waitFor, pollEvery)
}

func TestController_Activate_LoadsFirstPageAndSpecialUsers(t *testing.T) {
	f := newFixture(t, 60)

	f.activate(t)

	snap := f.controller.Snapshot()
	assert.Equal(t, []pageRequest{{size: userlist.StartingPageSize, index: 0}}, f.dir.Calls())
	assert.Len(t, snap.Users, 25)
	assert.Equal(t, 60, snap.Total)
	assert.Equal(t, userlist.PagerState{PageSize: 25, PageIndex: 0, Length: 60}, snap.Pager)
	assert.True(t, snap.Ready)
}

func TestController_Activate_FetchDoesNotWaitForSpecialUsers(t *testing.T) {
	f := newFixture(t, 10)
	f.special.release = make(chan struct{})

	done := make(chan struct{})
	go func() {
		f.controller.Activate(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(f.controller.Snapshot().Users) == 10
	}, waitFor, pollEvery)
	assert.False(t, f.controller.Ready())

	close(f.special.release)
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Activate did not return")
	}
	assert.True(t, f.controller.Ready())
}

func TestController_Activate_FailuresAreIndependent(t *testing.T) {
	f := newFixture(t, 10)
	f.dir.getErr = errors.New("boom")
	f.special.err = errors.New("unavailable")

	f.controller.Activate(context.Background())

	snap := f.controller.Snapshot()
	assert.Empty(t, snap.Users)
	assert.True(t, snap.Ready)
	assert.Equal(t, []toast{{kind: userlist.ToastError, message: "Failed to fetch users"}}, f.notifier.Toasts())
}

func TestController_RequestPage_NonEmptyReplacesState(t *testing.T) {
	f := newFixture(t, 12)

	applied := f.controller.RequestPage(context.Background(), 5, 2)

	require.True(t, applied)
	snap := f.controller.Snapshot()
	require.Len(t, snap.Users, 2)
	assert.Equal(t, "id-010", snap.Users[0].ID)
	assert.Equal(t, "id-011", snap.Users[1].ID)
	assert.Equal(t, 12, snap.Total)
	assert.Equal(t, userlist.PagerState{PageSize: 5, PageIndex: 2, Length: 12}, snap.Pager,
		"the pager names the page on screen")
}

func TestController_Refresh(t *testing.T) {
	f := newFixture(t, 60)
	f.activate(t)
	f.controller.NextPage()
	f.waitForPage(t, 1)

	require.True(t, f.controller.Refresh(context.Background()))

	assert.Equal(t, []pageRequest{{25, 0}, {25, 1}, {25, 1}}, f.dir.Calls())
	assert.Equal(t, 1, f.controller.Snapshot().Pager.PageIndex)
}

func TestController_RequestPage_EmptyLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, 12)
	require.True(t, f.controller.RequestPage(context.Background(), 5, 0))
	before := f.controller.Snapshot()

	applied := f.controller.RequestPage(context.Background(), 5, 9)

	assert.False(t, applied)
	assert.Equal(t, before, f.controller.Snapshot())
	assert.Empty(t, f.notifier.Toasts())
}

func TestController_RequestPage_GatewayFailure(t *testing.T) {
	f := newFixture(t, 12)
	require.True(t, f.controller.RequestPage(context.Background(), 5, 0))
	before := f.controller.Snapshot()
	f.dir.getErr = errors.New("connection refused")

	applied := f.controller.RequestPage(context.Background(), 5, 1)

	assert.False(t, applied)
	assert.Equal(t, before, f.controller.Snapshot())
	assert.Equal(t, []toast{{kind: userlist.ToastError, message: "Failed to fetch users"}}, f.notifier.Toasts())
}

func TestController_ChangePage_ForwardOverrunRollsBack(t *testing.T) {
	f := newFixture(t, 60)
	f.activate(t)

	// Page 3 does not exist: 60 users span pages 0..2.
	f.controller.ChangePage(userlist.PageEvent{PageSize: 25, PageIndex: 3, PreviousPageIndex: 2})
	assert.Equal(t, 3, f.controller.Snapshot().Pager.PageIndex, "pager follows the event at once")

	require.Eventually(t, func() bool {
		return len(f.dir.Calls()) == 3
	}, waitFor, pollEvery)
	f.waitForPage(t, 2)

	assert.Equal(t, []pageRequest{{25, 0}, {25, 3}, {25, 2}}, f.dir.Calls())
	snap := f.controller.Snapshot()
	assert.Equal(t, 2, snap.Pager.PageIndex)
	assert.Len(t, snap.Users, 10)
	assert.Empty(t, f.notifier.Toasts())
}

func TestController_ChangePage_NonAdjacentMissGoesToFirstPage(t *testing.T) {
	f := newFixture(t, 60)
	f.activate(t)
	f.controller.ChangePage(userlist.PageEvent{PageSize: 25, PageIndex: 1, PreviousPageIndex: 0})
	f.waitForPage(t, 1)

	f.controller.ChangePage(userlist.PageEvent{PageSize: 25, PageIndex: 7, PreviousPageIndex: 1})

	require.Eventually(t, func() bool {
		calls := f.dir.Calls()
		return len(calls) == 4 && calls[3] == pageRequest{25, 0}
	}, waitFor, pollEvery)
	f.waitForPage(t, 0)

	assert.Equal(t, []pageRequest{{25, 0}, {25, 1}, {25, 7}, {25, 0}}, f.dir.Calls())
	assert.Equal(t, 0, f.controller.Snapshot().Pager.PageIndex)
}

func TestController_ChangePage_MissOnFirstPageStops(t *testing.T) {
	f := newFixture(t, 0)
	f.controller.Activate(context.Background())

	f.controller.ChangePage(userlist.PageEvent{PageSize: 10, PageIndex: 0, PreviousPageIndex: 0})

	require.Eventually(t, func() bool {
		return len(f.dir.Calls()) == 2
	}, waitFor, pollEvery)
	time.Sleep(quietPeriod)

	assert.Len(t, f.dir.Calls(), 2, "no further requests from the first page")
	assert.Equal(t, 0, f.controller.Snapshot().Pager.PageIndex)
}

func TestController_ChangePage_DebouncesBursts(t *testing.T) {
	const (
		window = 200 * time.Millisecond
		gap    = window / 5
	)
	dir := newFakeDirectory(60)
	c := userlist.NewController(dir, &fakeSpecial{}, &fakeNotifier{}, &fakeNavigator{},
		userlist.WithDebounceWindow(window),
		userlist.WithStartingPageSize(5),
	)
	t.Cleanup(c.Deactivate)
	c.Activate(context.Background())
	require.Len(t, dir.Calls(), 1)

	// Five events, each arriving before the previous one's window ran out.
	for i := 1; i <= 5; i++ {
		c.ChangePage(userlist.PageEvent{PageSize: 5, PageIndex: i, PreviousPageIndex: i - 1})
		if i < 5 {
			time.Sleep(gap)
			assert.Len(t, dir.Calls(), 1, "no request while events keep arriving")
		}
	}

	require.Eventually(t, func() bool {
		return len(dir.Calls()) == 2
	}, waitFor, pollEvery)
	time.Sleep(2 * window)

	assert.Equal(t, []pageRequest{{5, 0}, {5, 5}}, dir.Calls())
	assert.Equal(t, "id-025", c.Snapshot().Users[0].ID)
}

func TestController_PagerMoves(t *testing.T) {
	f := newFixture(t, 60)
	f.activate(t)

	f.controller.NextPage()
	f.waitForPage(t, 1)

	f.controller.LastPage()
	f.waitForPage(t, 2)

	f.controller.NextPage() // no page after the last one
	f.controller.PreviousPage()
	f.waitForPage(t, 1)

	f.controller.FirstPage()
	f.waitForPage(t, 0)

	assert.ErrorIs(t, f.controller.SetPageSize(7), userlist.ErrInvalidPageSize)
}

func TestController_Delete_ConfirmedDeletesAndRefreshes(t *testing.T) {
	f := newFixture(t, 30)
	f.notifier.answer = userlist.ButtonDelete
	f.activate(t)
	target := f.controller.Snapshot().Users[3]

	f.controller.Delete(context.Background(), target)

	assert.Equal(t, []string{target.ID}, f.dir.Deleted())
	assert.Equal(t, []toast{{kind: userlist.ToastSuccess, message: "User deleted"}}, f.notifier.Toasts())
	assert.Equal(t, []pageRequest{{25, 0}, {25, 0}}, f.dir.Calls())

	snap := f.controller.Snapshot()
	assert.Equal(t, 29, snap.Total)
	assert.NotContains(t, snap.Users, target)

	require.Len(t, f.notifier.dialogs, 1)
	dialog := f.notifier.dialogs[0]
	assert.Equal(t, "Are you sure you want to delete user003?", dialog.Title)
	assert.Equal(t, "This action cannot be undone.", dialog.Description)
	assert.Equal(t, userlist.ButtonDelete, dialog.Buttons[0].Name)
	assert.Equal(t, "red", dialog.Buttons[0].Color)
	assert.Equal(t, userlist.ButtonCancel, dialog.Buttons[1].Name)
}

func TestController_Delete_LastUserOnPageFallsBackToFirstPage(t *testing.T) {
	f := newFixture(t, 26)
	f.notifier.answer = userlist.ButtonDelete
	f.activate(t)
	f.controller.NextPage()
	f.waitForPage(t, 1)
	last := f.controller.Snapshot().Users[0]

	f.controller.Delete(context.Background(), last)

	require.Eventually(t, func() bool {
		return f.controller.Snapshot().Pager.PageIndex == 0 && len(f.dir.Calls()) == 4
	}, waitFor, pollEvery)
	f.waitForPage(t, 0)
	assert.Equal(t, []pageRequest{{25, 0}, {25, 1}, {25, 1}, {25, 0}}, f.dir.Calls())
}

func TestController_Delete_FailureStillRefreshes(t *testing.T) {
	f := newFixture(t, 10)
	f.notifier.answer = userlist.ButtonDelete
	f.dir.deleteErr = errors.New("forbidden")
	f.activate(t)

	f.controller.Delete(context.Background(), f.controller.Snapshot().Users[0])

	assert.Equal(t, []toast{{kind: userlist.ToastError, message: "Failed to delete user"}}, f.notifier.Toasts())
	assert.Len(t, f.dir.Calls(), 2)
}

func TestController_Delete_CancelSkipsDeletion(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
	}{
		{name: "cancel button", answer: userlist.ButtonCancel},
		{name: "dismissed", answer: ""},
		{name: "confirm failed", answer: userlist.ButtonDelete, err: errors.New("stdin closed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10)
			f.notifier.answer = tt.answer
			f.notifier.err = tt.err
			f.activate(t)

			f.controller.Delete(context.Background(), f.controller.Snapshot().Users[0])

			assert.Empty(t, f.dir.Deleted())
			assert.Empty(t, f.notifier.Toasts())
			assert.Equal(t, []pageRequest{{25, 0}, {25, 0}}, f.dir.Calls(), "refreshes regardless")
		})
	}
}

func TestController_IsProtected(t *testing.T) {
	f := newFixture(t, 3)
	admin := userlist.User{ID: "a", Username: "admin"}
	alice := userlist.User{ID: "b", Username: "alice"}

	assert.True(t, f.controller.IsProtected(alice), "protected until the special users are known")

	f.activate(t)

	assert.True(t, f.controller.IsProtected(admin))
	assert.True(t, f.controller.IsProtected(userlist.User{Username: "guest"}))
	assert.False(t, f.controller.IsProtected(alice))
	assert.False(t, f.controller.IsProtected(userlist.User{Username: "Admin"}), "exact match only")
}

func TestController_IsProtected_FailedLoadSettlesEmpty(t *testing.T) {
	f := newFixture(t, 3)
	f.special.err = errors.New("unavailable")

	f.activate(t)

	assert.True(t, f.controller.Ready())
	assert.False(t, f.controller.IsProtected(userlist.User{Username: "admin"}))
}

func TestController_Navigation(t *testing.T) {
	f := newFixture(t, 0)

	f.controller.AddUser()
	f.controller.EditUser(userlist.User{ID: "42"})

	assert.Equal(t, []string{"/settings/users/add", "/settings/users/edit/42"}, f.navigator.routes)
}

func TestController_DeactivateDropsPendingChanges(t *testing.T) {
	f := newFixture(t, 60)
	f.activate(t)

	f.controller.ChangePage(userlist.PageEvent{PageSize: 25, PageIndex: 1, PreviousPageIndex: 0})
	f.controller.Deactivate()
	time.Sleep(quietPeriod)

	assert.Len(t, f.dir.Calls(), 1)

	f.controller.ChangePage(userlist.PageEvent{PageSize: 25, PageIndex: 2, PreviousPageIndex: 1})
	time.Sleep(quietPeriod)
	assert.Len(t, f.dir.Calls(), 1)
}

func TestController_ReactivateStartsOnFirstPage(t *testing.T) {
	f := newFixture(t, 60)
	f.activate(t)
	f.controller.NextPage()
	f.waitForPage(t, 1)
	f.controller.NextPage()
	f.waitForPage(t, 2)

	f.controller.Deactivate()
	f.controller.Activate(context.Background())

	assert.Equal(t, []pageRequest{{25, 0}, {25, 1}, {25, 2}, {25, 0}}, f.dir.Calls())
	snap := f.controller.Snapshot()
	assert.Equal(t, userlist.PagerState{PageSize: 25, PageIndex: 0, Length: 60}, snap.Pager)
	assert.Equal(t, "id-000", snap.Users[0].ID)
}

func TestController_PagerIgnoredWhileInactive(t *testing.T) {
	f := newFixture(t, 60)

	f.controller.ChangePage(userlist.PageEvent{PageSize: 25, PageIndex: 2, PreviousPageIndex: 0})
	f.controller.GoToPage(1)
	require.NoError(t, f.controller.SetPageSize(10))

	assert.Equal(t, userlist.PagerState{PageSize: 25}, f.controller.Snapshot().Pager)
	assert.Empty(t, f.dir.Calls())

	f.activate(t)

	assert.Equal(t, []pageRequest{{25, 0}}, f.dir.Calls())
	assert.Equal(t, 0, f.controller.Snapshot().Pager.PageIndex)
}

func TestController_OnChange(t *testing.T) {
	f := newFixture(t, 8)

	var mu sync.Mutex
	var snaps []userlist.Snapshot
	f.controller.OnChange(func(s userlist.Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	})

	f.activate(t)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, snaps, 2, "one for the page, one for the special users")
	assert.True(t, slices.ContainsFunc(snaps, func(s userlist.Snapshot) bool { return len(s.Users) == 8 }))
	assert.True(t, slices.ContainsFunc(snaps, func(s userlist.Snapshot) bool { return s.Ready }))
}

func TestController_StartingPageSizeOption(t *testing.T) {
	dir := newFakeDirectory(30)
	c := userlist.NewController(dir, &fakeSpecial{}, &fakeNotifier{}, &fakeNavigator{},
		userlist.WithStartingPageSize(10),
	)
	t.Cleanup(c.Deactivate)

	c.Activate(context.Background())

	assert.Equal(t, []pageRequest{{10, 0}}, dir.Calls())
	assert.Equal(t, 10, c.Snapshot().Pager.PageSize)
}
