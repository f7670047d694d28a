// Package console is a line-oriented terminal front end for the admin user list.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lllypuk/imghost/internal/admin/userlist"
)

// Prompt is printed before every command.
const Prompt = "> "

// ErrInputClosed is returned when the input ends while a command or answer is awaited.
var ErrInputClosed = errors.New("console input closed")

// Controller is the part of userlist.Controller the view drives.
type Controller interface {
	Snapshot() userlist.Snapshot
	OnChange(fn func(userlist.Snapshot))
	Refresh(ctx context.Context) bool
	NextPage()
	PreviousPage()
	FirstPage()
	LastPage()
	GoToPage(index int)
	SetPageSize(size int) error
	Delete(ctx context.Context, user userlist.User)
	IsProtected(user userlist.User) bool
	AddUser()
	EditUser(user userlist.User)
}

var (
	_ userlist.Notifier  = (*View)(nil)
	_ userlist.Navigator = (*View)(nil)
)

// View renders the user list and turns typed commands into controller calls.
// It doubles as the controller's Notifier and Navigator. Output is serialized
// because pages may be rendered from the debounce goroutine.
type View struct {
	out    io.Writer
	lines  <-chan string
	logger *slog.Logger

	mu    sync.Mutex
	route string
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		v.logger = logger
	}
}

// NewView creates a view reading commands from in and writing to out.
// Reading starts immediately.
func NewView(in io.Reader, out io.Writer, opts ...Option) *View {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	v := &View{
		out:    out,
		lines:  lines,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run renders the current page and executes commands until quit, the end of
// input or ctx cancellation.
func (v *View) Run(ctx context.Context, ctrl Controller) error {
	ctrl.OnChange(v.Render)
	v.Render(ctrl.Snapshot())

	for {
		v.printf("%s", Prompt)

		line, err := v.readLine(ctx)
		if err != nil {
			if errors.Is(err, ErrInputClosed) {
				return nil
			}
			return err
		}

		if quit := v.execute(ctx, ctrl, strings.Fields(line)); quit {
			return nil
		}
	}
}

func (v *View) execute(ctx context.Context, ctrl Controller, args []string) bool {
	if len(args) == 0 {
		return false
	}

	switch cmd := strings.ToLower(args[0]); cmd {
	case "quit", "exit", "q":
		return true
	case "help", "h", "?":
		v.printHelp()
	case "next", "n":
		ctrl.NextPage()
	case "prev", "p":
		ctrl.PreviousPage()
	case "first":
		ctrl.FirstPage()
	case "last":
		ctrl.LastPage()
	case "refresh", "r":
		ctrl.Refresh(ctx)
	case "add":
		ctrl.AddUser()
	case "page":
		n, ok := v.intArg(args)
		if ok {
			ctrl.GoToPage(n - 1)
		}
	case "size":
		n, ok := v.intArg(args)
		if !ok {
			return false
		}
		if err := ctrl.SetPageSize(n); err != nil {
			v.printf("page size must be one of %v\n", userlist.PageSizeOptions)
		}
	case "del", "delete", "edit":
		user, ok := v.rowArg(ctrl, args)
		if !ok {
			return false
		}
		if cmd == "edit" {
			ctrl.EditUser(user)
			return false
		}
		if ctrl.IsProtected(user) {
			v.printf("%s can not be deleted\n", user.Username)
			return false
		}
		ctrl.Delete(ctx, user)
	default:
		v.printf("unknown command %q, type help for a list\n", cmd)
	}
	return false
}

func (v *View) intArg(args []string) (int, bool) {
	if len(args) < 2 {
		v.printf("%s needs a number\n", args[0])
		return 0, false
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		v.printf("%q is not a number\n", args[1])
		return 0, false
	}
	return n, true
}

// rowArg resolves a 1-based row number of the visible page.
func (v *View) rowArg(ctrl Controller, args []string) (userlist.User, bool) {
	n, ok := v.intArg(args)
	if !ok {
		return userlist.User{}, false
	}
	users := ctrl.Snapshot().Users
	if n < 1 || n > len(users) {
		v.printf("no row %d on this page\n", n)
		return userlist.User{}, false
	}
	return users[n-1], true
}

func (v *View) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-v.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return strings.TrimSpace(line), nil
	}
}

// Render prints snap as a table followed by the pager footer.
func (v *View) Render(snap userlist.Snapshot) {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%-4s %-24s %-36s %s\n", "#", "USERNAME", "ROLES", "CREATED")
	for i, u := range snap.Users {
		name := u.Username
		if snap.Protected(u) {
			name += " *"
		}
		fmt.Fprintf(&b, "%-4d %-24s %-36s %s\n", i+1, name, formatRoles(u.Roles), formatTime(u.CreatedAt))
	}
	if len(snap.Users) == 0 {
		b.WriteString("(no users)\n")
	}

	state := snap.Pager
	fmt.Fprintf(&b, "page %d/%d · size %d · total %d\n",
		state.PageIndex+1, state.NumberOfPages(), state.PageSize, snap.Total)

	v.printf("%s", b.String())
}

func formatRoles(roles []string) string {
	if len(roles) <= userlist.RolesTruncate {
		return strings.Join(roles, ",")
	}
	shown := strings.Join(roles[:userlist.RolesTruncate], ",")
	return fmt.Sprintf("%s +%d", shown, len(roles)-userlist.RolesTruncate)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

// Confirm prints the dialog and reads the answer from the command input.
// An answer matching no button picks the last one.
func (v *View) Confirm(ctx context.Context, dialog userlist.Dialog) (string, error) {
	if len(dialog.Buttons) == 0 {
		return "", errors.New("dialog has no buttons")
	}

	choices := make([]string, 0, len(dialog.Buttons))
	for _, btn := range dialog.Buttons {
		choices = append(choices, btn.Name)
	}
	v.printf("%s\n%s\n[%s] ", dialog.Title, dialog.Description, strings.Join(choices, "/"))

	answer, err := v.readLine(ctx)
	if err != nil {
		return "", err
	}

	for _, btn := range dialog.Buttons {
		if strings.EqualFold(answer, btn.Name) || strings.EqualFold(answer, btn.Text) {
			return btn.Name, nil
		}
	}
	return dialog.Buttons[len(dialog.Buttons)-1].Name, nil
}

// Toast prints a one-line notification.
func (v *View) Toast(kind userlist.ToastKind, message string) {
	prefix := "[ok]"
	if kind == userlist.ToastError {
		prefix = "[error]"
	}
	v.printf("%s %s\n", prefix, message)
}

// Navigate records route. The console has no other screens, so it only
// tells the operator where the web UI would go.
func (v *View) Navigate(route string) {
	v.mu.Lock()
	v.route = route
	v.mu.Unlock()

	v.logger.Debug("navigation requested", slog.String("route", route))
	v.printf("-> %s\n", route)
}

// LastRoute returns the most recent navigation target.
func (v *View) LastRoute() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.route
}

func (v *View) printHelp() {
	v.printf(`commands:
  next | prev | first | last   move between pages
  page N                       go to page N
  size N                       set page size (%s)
  refresh                      reload the current page
  del N                        delete the user in row N
  edit N                       edit the user in row N
  add                          add a user
  quit                         leave
rows marked * can not be deleted
`, joinInts(userlist.PageSizeOptions))
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, n := range values {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ", ")
}

func (v *View) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := fmt.Fprintf(v.out, format, args...); err != nil {
		v.logger.Warn("failed to write to console", slog.String("error", err.Error()))
	}
}
