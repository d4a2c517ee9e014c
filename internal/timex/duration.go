// Package timex provides a time.Duration wrapper that config files can spell
// either as a Go duration string ("60s", "1m30s") or as integer nanoseconds.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Duration struct {
	time.Duration
}

var errBadDuration = errors.New("duration must be a string like \"3s\" or integer nanoseconds")

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errBadDuration
	}
	if n, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		d.Duration = time.Duration(n)
		return nil
	}
	return d.set(node.Value)
}

func (d *Duration) set(v any) error {
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		p, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %v", errBadDuration, err)
		}
		d.Duration = p
		return nil
	default:
		return errBadDuration
	}
}
