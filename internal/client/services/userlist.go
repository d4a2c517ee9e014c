package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/pagination"
	"github.com/dmitrijs2005/useradmin/internal/logging"
)

var (
	ErrBusy   = errors.New("another operation is still in progress")
	ErrClosed = errors.New("view closed")
)

// FetchErrorPolicy decides what a failed page fetch does to the rows that
// are already shown.
type FetchErrorPolicy string

const (
	// KeepOnError leaves the previous page visible and records the error.
	KeepOnError FetchErrorPolicy = "keep"
	// PanelOnError drops the rows and shows the error in their place.
	PanelOnError FetchErrorPolicy = "panel"
)

func ParseFetchErrorPolicy(s string) (FetchErrorPolicy, error) {
	switch p := FetchErrorPolicy(s); p {
	case KeepOnError, PanelOnError:
		return p, nil
	default:
		return "", fmt.Errorf("unknown fetch error policy %q (want keep or panel)", s)
	}
}

type ListAPI interface {
	ListUsers(ctx context.Context, page, limit int) ([]models.User, int, error)
	DeleteUser(ctx context.Context, id string) error
}

// ListView is a snapshot of everything the list screen renders.
type ListView struct {
	Items  []models.User
	Err    error
	Loaded bool
	Busy   bool

	PageIndex   int
	PageSize    int
	Total       int
	TotalPages  int
	FirstItem   int
	LastItem    int
	PageNumbers []int
	ShowStrip   bool
	HasPrevious bool
	HasNext     bool
}

// ErrMessage is the text of the error panel, or "".
func (v ListView) ErrMessage() string {
	if v.Err == nil {
		return ""
	}
	return client.Message(v.Err)
}

type UserList struct {
	api    ListAPI
	log    logging.Logger
	policy FetchErrorPolicy

	mu     sync.Mutex
	pager  *pagination.Controller
	items  []models.User
	err    error
	loaded bool
	busy   bool
	closed bool
}

type ListOption func(*UserList)

func WithListLogger(l logging.Logger) ListOption {
	return func(u *UserList) { u.log = l }
}

func WithFetchErrorPolicy(p FetchErrorPolicy) ListOption {
	return func(u *UserList) { u.policy = p }
}

func NewUserList(api ListAPI, pageSize int, opts ...ListOption) (*UserList, error) {
	pager, err := pagination.New(pageSize)
	if err != nil {
		return nil, err
	}
	u := &UserList{
		api:    api,
		log:    logging.Nop(),
		policy: PanelOnError,
		pager:  pager,
	}
	for _, o := range opts {
		o(u)
	}
	return u, nil
}

func (u *UserList) View() ListView {
	u.mu.Lock()
	defer u.mu.Unlock()

	p := u.pager
	v := ListView{
		Items:       append([]models.User(nil), u.items...),
		Err:         u.err,
		Loaded:      u.loaded,
		Busy:        u.busy,
		PageIndex:   p.PageIndex(),
		PageSize:    p.PageSize(),
		Total:       p.Total(),
		TotalPages:  p.TotalPages(),
		FirstItem:   p.FirstItemOrdinal(),
		LastItem:    p.LastItemOrdinal(),
		ShowStrip:   p.ShowPageStrip(),
		HasPrevious: p.HasPrevious(),
		HasNext:     p.HasNext(),
	}
	if v.ShowStrip {
		v.PageNumbers = p.PageNumbers()
	}
	return v
}

// Fetch reloads the current page.
func (u *UserList) Fetch(ctx context.Context) error {
	return u.load(ctx, nil)
}

func (u *UserList) NextPage(ctx context.Context) error {
	return u.load(ctx, step((*pagination.Controller).Next))
}

func (u *UserList) PrevPage(ctx context.Context) error {
	return u.load(ctx, step((*pagination.Controller).Previous))
}

func (u *UserList) FirstPage(ctx context.Context) error {
	return u.load(ctx, step((*pagination.Controller).First))
}

func (u *UserList) LastPage(ctx context.Context) error {
	return u.load(ctx, step((*pagination.Controller).Last))
}

// GoTo loads the page with the 0-based index.
func (u *UserList) GoTo(ctx context.Context, index int) error {
	return u.load(ctx, func(p *pagination.Controller) error { return p.GoTo(index) })
}

// SetPageSize switches to one of pagination.PageSizes and reloads from the
// first page.
func (u *UserList) SetPageSize(ctx context.Context, n int) error {
	if !pagination.IsPageSizeChoice(n) {
		return fmt.Errorf("%w: %d is not one of %v", pagination.ErrInvalidPageSize, n, pagination.PageSizes)
	}
	return u.load(ctx, func(p *pagination.Controller) error { return p.SetPageSize(n) })
}

func step(move func(*pagination.Controller) bool) func(*pagination.Controller) error {
	return func(p *pagination.Controller) error {
		if !move(p) {
			return pagination.ErrPageOutOfRange
		}
		return nil
	}
}

func (u *UserList) begin() error {
	if u.closed {
		return ErrClosed
	}
	if u.busy {
		return ErrBusy
	}
	u.busy = true
	return nil
}

// load moves a copy of the pager, fetches that page and commits the move
// only once the fetch is through.
func (u *UserList) load(ctx context.Context, move func(*pagination.Controller) error) error {
	u.mu.Lock()
	next := *u.pager
	if move != nil {
		if err := move(&next); err != nil {
			u.mu.Unlock()
			return err
		}
	}
	if err := u.begin(); err != nil {
		u.mu.Unlock()
		return err
	}
	u.mu.Unlock()

	users, total, err := u.api.ListUsers(ctx, next.PageNumber(), next.PageSize())

	u.mu.Lock()
	defer u.mu.Unlock()
	u.busy = false
	if u.closed {
		return ErrClosed
	}

	if err != nil {
		u.log.Warn(ctx, "fetching users failed", "page", next.PageNumber(), "limit", next.PageSize(), "error", err)
		u.err = err
		if u.policy == PanelOnError {
			*u.pager = next
			u.items = nil
		}
		return err
	}

	next.SetTotal(total)
	*u.pager = next
	u.items = users
	u.err = nil
	u.loaded = true
	return nil
}

// Delete removes the user on the server and then drops the row locally,
// without refetching the page. When that empties a page other than the
// first, the previous page is loaded instead.
func (u *UserList) Delete(ctx context.Context, id string) error {
	u.mu.Lock()
	if err := u.begin(); err != nil {
		u.mu.Unlock()
		return err
	}
	u.mu.Unlock()

	err := u.api.DeleteUser(ctx, id)

	u.mu.Lock()
	u.busy = false
	if err != nil {
		u.mu.Unlock()
		u.log.Warn(ctx, "deleting user failed", "user_id", id, "error", err)
		return err
	}
	u.log.Info(ctx, "user deleted", "user_id", id)
	if u.closed {
		u.mu.Unlock()
		return nil
	}

	removed := false
	for i, it := range u.items {
		if it.ID == id {
			u.items = append(u.items[:i:i], u.items[i+1:]...)
			u.pager.SetTotal(u.pager.Total() - 1)
			removed = true
			break
		}
	}
	stepBack := removed && len(u.items) == 0 && u.pager.PageIndex() > 0
	u.mu.Unlock()

	if stepBack {
		if err := u.PrevPage(ctx); err != nil {
			u.log.Warn(ctx, "loading the previous page after delete failed", "error", err)
		}
	}
	return nil
}

// Close tears the view down. Results of requests still in flight are
// dropped when they arrive.
func (u *UserList) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
}
