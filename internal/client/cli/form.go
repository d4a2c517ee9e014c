package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/services"
	"github.com/dmitrijs2005/useradmin/internal/client/upload"
	"github.com/dmitrijs2005/useradmin/internal/common"
)

const removePhoto = "-"

func (a *App) newForm() *services.UserForm {
	return services.NewUserForm(a.api, a.uploader, services.WithFormLogger(a.log))
}

func (a *App) cmdAdd(ctx context.Context, _ []string) error {
	f := a.newForm()
	defer f.Close()

	if err := a.fillForm(f, true); err != nil {
		return err
	}
	u, err := f.Submit(ctx)
	if err != nil {
		return formError(err)
	}
	fmt.Fprintf(a.out, "User %s created.\n", u.ID)
	a.refreshList(ctx)
	return nil
}

func (a *App) cmdEdit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	f := a.newForm()
	defer f.Close()

	if err := f.Load(ctx, args[0]); err != nil {
		return err
	}
	if err := a.fillForm(f, false); err != nil {
		return err
	}
	u, err := f.Submit(ctx)
	if errors.Is(err, services.ErrNoChanges) {
		fmt.Fprintln(a.out, "Nothing changed.")
		return nil
	}
	if err != nil {
		return formError(err)
	}
	fmt.Fprintf(a.out, "User %s updated.\n", u.ID)
	a.refreshList(ctx)
	return nil
}

// fillForm walks the user through every field, showing current values as
// defaults.
func (a *App) fillForm(f *services.UserForm, create bool) error {
	v := f.Values()

	name, err := GetTextWithDefault(a.reader, "Name", v.Name, a.out)
	if err != nil {
		return err
	}
	f.SetName(name)

	email, err := GetTextWithDefault(a.reader, "Email", v.Email, a.out)
	if err != nil {
		return err
	}
	f.SetEmail(email)

	prompt := "Password"
	if !create {
		prompt = "New password (empty keeps the current one)"
	}
	pw, err := GetPassword(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	f.SetPassword(pw)
	common.WipeByteArray(pw)

	for {
		role, err := GetTextWithDefault(a.reader, "Role (user/admin)", string(v.Role), a.out)
		if err != nil {
			return err
		}
		if err := f.SetRole(models.Role(role)); err == nil {
			break
		}
		fmt.Fprintln(a.out, "Role must be user or admin.")
	}

	for {
		status, err := GetTextWithDefault(a.reader, "Status (active/inactive)", string(v.Status), a.out)
		if err != nil {
			return err
		}
		if err := f.SetStatus(models.Status(status)); err == nil {
			break
		}
		fmt.Fprintln(a.out, "Status must be active or inactive.")
	}

	return a.askPhoto(f, v.Photo)
}

// askPhoto keeps asking until the answer is empty, "-" or a valid image.
func (a *App) askPhoto(f *services.UserForm, current *models.ProfilePhoto) error {
	prompt := "Profile photo path (empty for none)"
	if current != nil {
		prompt = fmt.Sprintf("Profile photo path (empty keeps %s, %s removes)", current.Name, removePhoto)
	}
	for {
		path, err := GetSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		switch path {
		case "":
			return nil
		case removePhoto:
			f.RemovePhoto()
			return nil
		}

		err = f.SelectPhoto(path)
		switch {
		case err == nil:
			p := f.Values().Pending
			fmt.Fprintf(a.out, "Selected %s (%d KB).\n", p.FileName, p.SizeKB)
			return nil
		case errors.Is(err, upload.ErrNotImage):
			fmt.Fprintln(a.out, "Please select an image file.")
		case errors.Is(err, upload.ErrTooLarge):
			fmt.Fprintln(a.out, "File size should be less than 5MB.")
		default:
			fmt.Fprintln(a.out, "Cannot use that file:", err)
		}
	}
}

// formError appends field-level messages to validation failures.
func formError(err error) error {
	var apiErr *client.Error
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return err
	}
	keys := make([]string, 0, len(apiErr.Fields))
	for k := range apiErr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+apiErr.Fields[k])
	}
	return fmt.Errorf("%s (%s)", apiErr.Message, strings.Join(parts, "; "))
}

// refreshList reloads an already shown list so it reflects the change.
func (a *App) refreshList(ctx context.Context) {
	a.mu.Lock()
	l := a.list
	a.mu.Unlock()
	if l == nil || !l.View().Loaded {
		return
	}
	if err := l.Fetch(ctx); err != nil {
		a.log.Warn(ctx, "refreshing list failed", "error", err)
	}
}
