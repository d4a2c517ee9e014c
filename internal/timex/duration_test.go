package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_JSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `{"d":"60s"}`, want: time.Minute},
		{name: "compound string", in: `{"d":"1m30s"}`, want: 90 * time.Second},
		{name: "nanoseconds", in: `{"d":3000000000}`, want: 3 * time.Second},
		{name: "garbage string", in: `{"d":"soon"}`, wantErr: true},
		{name: "bool", in: `{"d":true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				D Duration `json:"d"`
			}
			err := json.Unmarshal([]byte(tt.in), &v)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.D.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}

func TestDuration_YAML(t *testing.T) {
	var v struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 45s\nb: 2000000000\n"), &v))
	assert.Equal(t, 45*time.Second, v.A.Duration)
	assert.Equal(t, 2*time.Second, v.B.Duration)

	err := yaml.Unmarshal([]byte("a: later\n"), &v)
	assert.Error(t, err)
}
