package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Zero values leave the current setting
// alone so a file may set only a few keys.
type fileConfig struct {
	APIURL              string         `json:"api_url" yaml:"api_url"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	ExpiryCheckInterval timex.Duration `json:"expiry_check_interval" yaml:"expiry_check_interval"`
	DBPath              string         `json:"db_path" yaml:"db_path"`
	PageSize            int            `json:"page_size" yaml:"page_size"`
	FetchErrorPolicy    string         `json:"fetch_error_policy" yaml:"fetch_error_policy"`
	Log                 struct {
		Level   string `json:"level" yaml:"level"`
		Format  string `json:"format" yaml:"format"`
		Backend string `json:"backend" yaml:"backend"`
	} `json:"log" yaml:"log"`
	Upload struct {
		Mode      string `json:"mode" yaml:"mode"`
		BaseURL   string `json:"base_url" yaml:"base_url"`
		Bucket    string `json:"bucket" yaml:"bucket"`
		Region    string `json:"region" yaml:"region"`
		Endpoint  string `json:"endpoint" yaml:"endpoint"`
		AccessKey string `json:"access_key" yaml:"access_key"`
		SecretKey string `json:"secret_key" yaml:"secret_key"`
		PublicURL string `json:"public_url" yaml:"public_url"`
		Prefix    string `json:"prefix" yaml:"prefix"`
	} `json:"upload" yaml:"upload"`
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		return fmt.Errorf("config file %s: unsupported extension (want .json, .yaml or .yml)", path)
	}
	if err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.APIURL, fc.APIURL)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	setDuration(&cfg.ExpiryCheckInterval, fc.ExpiryCheckInterval)
	setString(&cfg.DBPath, fc.DBPath)
	if fc.PageSize != 0 {
		cfg.PageSize = fc.PageSize
	}
	setString(&cfg.FetchErrorPolicy, fc.FetchErrorPolicy)

	setString(&cfg.Log.Level, fc.Log.Level)
	setString(&cfg.Log.Format, fc.Log.Format)
	setString(&cfg.Log.Backend, fc.Log.Backend)

	setString(&cfg.Upload.Mode, fc.Upload.Mode)
	setString(&cfg.Upload.BaseURL, fc.Upload.BaseURL)
	setString(&cfg.Upload.Bucket, fc.Upload.Bucket)
	setString(&cfg.Upload.Region, fc.Upload.Region)
	setString(&cfg.Upload.Endpoint, fc.Upload.Endpoint)
	setString(&cfg.Upload.AccessKey, fc.Upload.AccessKey)
	setString(&cfg.Upload.SecretKey, fc.Upload.SecretKey)
	setString(&cfg.Upload.PublicURL, fc.Upload.PublicURL)
	setString(&cfg.Upload.Prefix, fc.Upload.Prefix)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
