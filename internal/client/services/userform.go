package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/upload"
	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/dmitrijs2005/useradmin/internal/logging"
)

var ErrNoChanges = errors.New("nothing to update")

type FormAPI interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, in models.CreateUserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id string, in models.UpdateUserInput) (*models.User, error)
}

type FormMode int

const (
	ModeCreate FormMode = iota
	ModeEdit
)

func (m FormMode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// PhotoInfo describes the selected, not yet uploaded photo.
type PhotoInfo struct {
	FileName string
	MimeType string
	SizeKB   int64
}

// FormValues is a snapshot of the form as it would be rendered.
type FormValues struct {
	Mode     FormMode
	ID       string
	Name     string
	Email    string
	Role     models.Role
	Status   models.Status
	Photo    *models.ProfilePhoto
	Pending  *PhotoInfo
	Password bool
	Busy     bool
}

type UserForm struct {
	api      FormAPI
	uploader upload.Uploader
	log      logging.Logger

	mu       sync.Mutex
	mode     FormMode
	original *models.User

	name     string
	email    string
	password []byte
	role     models.Role
	status   models.Status
	photo    *models.ProfilePhoto
	pending  *upload.PendingUpload
	busy     bool
	closed   bool

	// uploading is the selection a running Submit streams from. It is
	// released by that Submit once it returns, never underneath it.
	uploading    *upload.PendingUpload
	releaseLater bool
}

type FormOption func(*UserForm)

func WithFormLogger(l logging.Logger) FormOption {
	return func(f *UserForm) { f.log = l }
}

// NewUserForm returns an empty create form. Call Load to edit an existing
// user instead.
func NewUserForm(api FormAPI, uploader upload.Uploader, opts ...FormOption) *UserForm {
	if uploader == nil {
		uploader = upload.Stub{}
	}
	f := &UserForm{
		api:      api,
		uploader: uploader,
		log:      logging.Nop(),
		role:     models.RoleUser,
		status:   models.StatusActive,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Load fetches the user and switches the form to edit mode.
func (f *UserForm) Load(ctx context.Context, id string) error {
	f.mu.Lock()
	if err := f.beginLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()

	u, err := f.api.GetUser(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if f.closed {
		return ErrClosed
	}
	if err != nil {
		return err
	}
	f.resetLocked(u)
	return nil
}

func (f *UserForm) resetLocked(u *models.User) {
	f.releaseLocked()
	f.mode = ModeEdit
	f.original = u
	f.name = u.Name
	f.email = u.Email
	common.WipeByteArray(f.password)
	f.password = nil
	f.role = u.Role
	f.status = u.Status
	f.photo = nil
	if u.ProfilePhoto != nil {
		p := *u.ProfilePhoto
		f.photo = &p
	}
}

func (f *UserForm) beginLocked() error {
	if f.closed {
		return ErrClosed
	}
	if f.busy {
		return ErrBusy
	}
	f.busy = true
	return nil
}

func (f *UserForm) Values() FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := FormValues{
		Mode:     f.mode,
		Name:     f.name,
		Email:    f.email,
		Role:     f.role,
		Status:   f.status,
		Password: len(f.password) > 0,
		Busy:     f.busy,
	}
	if f.original != nil {
		v.ID = f.original.ID
	}
	if f.photo != nil {
		p := *f.photo
		v.Photo = &p
	}
	if f.pending != nil {
		v.Pending = &PhotoInfo{
			FileName: f.pending.FileName,
			MimeType: f.pending.MimeType,
			SizeKB:   f.pending.SizeKB(),
		}
	}
	return v
}

func (f *UserForm) SetName(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = strings.TrimSpace(s)
}

func (f *UserForm) SetEmail(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = strings.TrimSpace(s)
}

// SetPassword keeps a copy of p. On edit an empty password means unchanged.
func (f *UserForm) SetPassword(p []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	common.WipeByteArray(f.password)
	f.password = append([]byte(nil), p...)
}

func (f *UserForm) SetRole(r models.Role) error {
	if r != models.RoleUser && r != models.RoleAdmin {
		return fmt.Errorf("%w: role must be user or admin", client.ErrInvalidArgument)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.role = r
	return nil
}

func (f *UserForm) SetStatus(s models.Status) error {
	if s != models.StatusActive && s != models.StatusInactive {
		return fmt.Errorf("%w: status must be active or inactive", client.ErrInvalidArgument)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
	return nil
}

// SelectPhoto validates the file at path and makes it the pending photo.
// Invalid files are rejected here, before anything is sent anywhere, and
// leave the current selection untouched.
func (f *UserForm) SelectPhoto(path string) error {
	p, err := upload.Open(path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		_ = p.Release()
		return ErrClosed
	}
	f.releaseLocked()
	f.pending = p
	return nil
}

// RemovePhoto clears both the pending selection and the stored photo.
func (f *UserForm) RemovePhoto() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseLocked()
	f.photo = nil
}

func (f *UserForm) releaseLocked() {
	if f.pending == nil {
		return
	}
	if f.pending == f.uploading {
		f.releaseLater = true
	} else {
		f.release(f.pending)
	}
	f.pending = nil
}

func (f *UserForm) release(p *upload.PendingUpload) {
	if err := p.Release(); err != nil {
		f.log.Warn(context.Background(), "releasing selected photo failed", "file", p.FileName, "error", err)
	}
}

// Submit creates the user or sends the changed fields of the edited one.
// The pending photo is uploaded only after the fields pass validation.
func (f *UserForm) Submit(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	if err := f.beginLocked(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	mode := f.mode
	original := f.original
	pending := f.pending
	f.uploading = pending
	var (
		create models.CreateUserInput
		update models.UpdateUserInput
		err    error
	)
	if mode == ModeCreate {
		create, err = f.createInputLocked()
	} else {
		update, err = f.updateInputLocked(pending != nil)
	}
	f.mu.Unlock()

	u, err := f.submit(ctx, mode, original, pending, create, update, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	f.uploading = nil
	if f.releaseLater {
		f.releaseLater = false
		f.release(pending)
	}
	if err != nil {
		return nil, err
	}
	if f.closed {
		return u, nil
	}
	f.resetLocked(u)
	return u, nil
}

func (f *UserForm) submit(
	ctx context.Context,
	mode FormMode,
	original *models.User,
	pending *upload.PendingUpload,
	create models.CreateUserInput,
	update models.UpdateUserInput,
	inputErr error,
) (*models.User, error) {
	if inputErr != nil {
		return nil, inputErr
	}

	var photo *models.ProfilePhoto
	if pending != nil {
		p, err := f.uploader.Upload(ctx, pending)
		if err != nil {
			f.log.Warn(ctx, "photo upload failed", "file", pending.FileName, "error", err)
			return nil, fmt.Errorf("upload photo: %w", err)
		}
		photo = &p
	}

	if mode == ModeCreate {
		if photo != nil {
			create.ProfilePhoto = photo
		}
		u, err := f.api.CreateUser(ctx, create)
		if err != nil {
			return nil, err
		}
		f.log.Info(ctx, "user created", "user_id", u.ID)
		return u, nil
	}

	if photo != nil {
		update.ProfilePhoto = photo
		update.RemovePhoto = false
	}
	u, err := f.api.UpdateUser(ctx, original.ID, update)
	if err != nil {
		return nil, err
	}
	f.log.Info(ctx, "user updated", "user_id", u.ID)
	return u, nil
}

func (f *UserForm) createInputLocked() (models.CreateUserInput, error) {
	in := models.CreateUserInput{
		Name:     f.name,
		Email:    f.email,
		Password: string(f.password),
		Role:     f.role,
		Status:   f.status,
	}
	if f.pending == nil && f.photo != nil {
		p := *f.photo
		in.ProfilePhoto = &p
	}
	if err := models.Validate(in); err != nil {
		return in, client.NewValidationError(err)
	}
	return in, nil
}

// updateInputLocked builds a partial update holding only what differs from
// the loaded user.
func (f *UserForm) updateInputLocked(hasPending bool) (models.UpdateUserInput, error) {
	o := f.original
	var in models.UpdateUserInput
	if f.name != o.Name {
		in.Name = ptr(f.name)
	}
	if f.email != o.Email {
		in.Email = ptr(f.email)
	}
	if len(f.password) > 0 {
		in.Password = ptr(string(f.password))
	}
	if f.role != o.Role {
		in.Role = ptr(f.role)
	}
	if f.status != o.Status {
		in.Status = ptr(f.status)
	}
	if f.photo == nil && o.ProfilePhoto != nil {
		in.RemovePhoto = true
	}

	if in.IsEmpty() && !hasPending {
		return in, ErrNoChanges
	}
	if err := models.Validate(in); err != nil {
		return in, client.NewValidationError(err)
	}
	return in, nil
}

func ptr[T any](v T) *T { return &v }

// Close releases the pending photo, or leaves that to a Submit still
// uploading it. Requests still in flight complete but no longer change the
// form.
func (f *UserForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.releaseLocked()
	common.WipeByteArray(f.password)
	f.password = nil
}
