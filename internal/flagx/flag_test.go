package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-page", "2", "-a", "localhost"},
			allowedFlags: []string{"-page", "--page"},
			want:         []string{"-page", "2"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "both short and long present, preserve order",
			args:         []string{"--config=first.json", "-c", "second.json", "-x", "1"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=first.json", "-c", "second.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-c"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag (no value)",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "value that looks like a flag but with equals form",
			args:         []string{"--config=--weird.json"},
			allowedFlags: []string{"--config"},
			want:         []string{"--config=--weird.json"},
		},
		{
			name:         "multiple allowed flags kept",
			args:         []string{"-a", "localhost:8080", "-c", "conf.json", "--other", "x"},
			allowedFlags: []string{"-c", "-a"},
			want:         []string{"-a", "localhost:8080", "-c", "conf.json"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "path with spaces remains single arg",
			args:         []string{"-c", "/home/user/conf.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "/home/user/conf.json"},
		},
		{
			name:         "do not treat next dash-starting token as value",
			args:         []string{"-c", "--config=alt.json"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "--config=alt.json"},
		},
		{
			name:         "repeated allowed flag is preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPositional(t *testing.T) {
	got := Positional([]string{"42", "-page", "2", "--limit=25", "extra", "-x"}, []string{"-page", "--limit"})
	assert.Equal(t, []string{"42", "extra", "-x"}, got)
}

func TestParseIntOptions(t *testing.T) {
	t.Run("separate and equals forms", func(t *testing.T) {
		page, limit := 1, 10
		rest, err := ParseIntOptions([]string{"-page", "3", "--limit=25"}, map[string]*int{"page": &page, "limit": &limit})
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, 3, page)
		assert.Equal(t, 25, limit)
	})

	t.Run("defaults survive when absent", func(t *testing.T) {
		page, limit := 1, 10
		rest, err := ParseIntOptions([]string{"abc"}, map[string]*int{"page": &page, "limit": &limit})
		require.NoError(t, err)
		assert.Equal(t, []string{"abc"}, rest)
		assert.Equal(t, 1, page)
		assert.Equal(t, 10, limit)
	})

	t.Run("non numeric value fails", func(t *testing.T) {
		page := 1
		_, err := ParseIntOptions([]string{"-page", "two"}, map[string]*int{"page": &page})
		assert.Error(t, err)
	})
}
