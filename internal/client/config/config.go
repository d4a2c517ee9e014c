package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/pagination"
)

type Config struct {
	APIURL              string
	RequestTimeout      time.Duration
	ExpiryCheckInterval time.Duration
	DBPath              string
	PageSize            int
	FetchErrorPolicy    string
	Log                 LogConfig
	Upload              UploadConfig
}

type LogConfig struct {
	Level   string
	Format  string
	Backend string
}

// UploadConfig selects where profile photos go. Mode "stub" only derives a
// URL from BaseURL; mode "s3" stores the file in a bucket.
type UploadConfig struct {
	Mode      string
	BaseURL   string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
	Prefix    string
}

const (
	UploadModeStub = "stub"
	UploadModeS3   = "s3"
)

func Defaults() *Config {
	return &Config{
		APIURL:              "http://localhost:5000/api",
		RequestTimeout:      15 * time.Second,
		ExpiryCheckInterval: time.Minute,
		DBPath:              "useradmin.db",
		PageSize:            pagination.DefaultPageSize,
		FetchErrorPolicy:    "panel",
		Log: LogConfig{
			Level:   "warn",
			Format:  "text",
			Backend: "slog",
		},
		Upload: UploadConfig{
			Mode:    UploadModeStub,
			BaseURL: "https://example.com/fake-upload",
			Prefix:  "avatars",
		},
	}
}

var ErrInvalid = errors.New("invalid configuration")

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if u, err := url.Parse(c.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		bad("api_url %q must be an absolute http(s) URL", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		bad("request_timeout must be positive")
	}
	if c.ExpiryCheckInterval <= 0 {
		bad("expiry_check_interval must be positive")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		bad("db_path is required")
	}
	if !pagination.IsPageSizeChoice(c.PageSize) {
		bad("page_size %d must be one of %v", c.PageSize, pagination.PageSizes)
	}
	if !slices.Contains([]string{"keep", "panel"}, c.FetchErrorPolicy) {
		bad("fetch_error_policy %q must be keep or panel", c.FetchErrorPolicy)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		bad("log level %q is unknown", c.Log.Level)
	}
	if !slices.Contains([]string{"text", "json"}, strings.ToLower(c.Log.Format)) {
		bad("log format %q is unknown", c.Log.Format)
	}
	if !slices.Contains([]string{"slog", "zap"}, strings.ToLower(c.Log.Backend)) {
		bad("log backend %q is unknown", c.Log.Backend)
	}

	switch c.Upload.Mode {
	case UploadModeStub:
	case UploadModeS3:
		if c.Upload.Bucket == "" || c.Upload.Region == "" {
			bad("upload mode s3 needs bucket and region")
		}
	default:
		bad("upload mode %q must be stub or s3", c.Upload.Mode)
	}

	return errors.Join(errs...)
}
