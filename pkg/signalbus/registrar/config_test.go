package registrar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/signalbus/pkg/signalbus/config"
	"github.com/randalmurphal/signalbus/pkg/signalbus/registrar"
)

func TestConfigFrom(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want registrar.Config
	}{
		{
			name: "empty file keeps defaults",
			yaml: "",
			want: registrar.DefaultConfig(),
		},
		{
			name: "missing section keeps defaults",
			yaml: "other:\n  key: value\n",
			want: registrar.DefaultConfig(),
		},
		{
			name: "full section",
			yaml: "registrar:\n  register_on_activate: false\n  unregister_on_deactivate: false\n",
			want: registrar.Config{},
		},
		{
			name: "partial section keeps remaining defaults",
			yaml: "registrar:\n  register_on_activate: false\n",
			want: registrar.Config{
				RegisterOnActivate:     false,
				UnregisterOnDeactivate: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromYAML([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.want, registrar.ConfigFrom(cfg))
		})
	}
}
