package upload

import (
	"context"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

const DefaultStubBaseURL = "https://example.com/fake-upload"

// Uploader stores a pending photo and returns how the backend should
// reference it.
type Uploader interface {
	Upload(ctx context.Context, p *PendingUpload) (models.ProfilePhoto, error)
}

// Stub never transfers any bytes. The photo URL is derived from the file
// name under BaseURL, which is enough for backends that only keep the link.
type Stub struct {
	BaseURL string
}

func (s Stub) Upload(ctx context.Context, p *PendingUpload) (models.ProfilePhoto, error) {
	if err := ctx.Err(); err != nil {
		return models.ProfilePhoto{}, err
	}
	base := s.BaseURL
	if base == "" {
		base = DefaultStubBaseURL
	}
	return models.ProfilePhoto{
		Name: p.FileName,
		URL:  strings.TrimRight(base, "/") + "/" + url.PathEscape(p.FileName),
	}, nil
}
