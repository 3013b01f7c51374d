package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/signalbus/pkg/signalbus/config"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromFileYAML(t *testing.T) {
	path := writeTempFile(t, "bus.yaml", `
registrar:
  register_on_activate: false
listeners:
  priorities:
    OnGoalScored: 10
`)

	c, err := config.FromFile(path)
	require.NoError(t, err)

	assert.False(t, c.Sub("registrar").Bool("register_on_activate", true))
	assert.Equal(t, map[string]int{"OnGoalScored": 10},
		c.Sub("listeners").IntMap("priorities"))
}

func TestFromFileJSON(t *testing.T) {
	path := writeTempFile(t, "bus.json",
		`{"registrar": {"unregister_on_deactivate": false}}`)

	c, err := config.FromFile(path)
	require.NoError(t, err)
	assert.False(t, c.Sub("registrar").Bool("unregister_on_deactivate", true))
}

func TestFromFileErrors(t *testing.T) {
	_, err := config.FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	path := writeTempFile(t, "bus.toml", "key = 1")
	_, err = config.FromFile(path)
	assert.ErrorContains(t, err, "unsupported config file extension")
}

func TestFromYAMLInvalid(t *testing.T) {
	_, err := config.FromYAML([]byte("[1, 2]"))
	assert.ErrorContains(t, err, "parse yaml")
}

func TestFromJSONInvalid(t *testing.T) {
	_, err := config.FromJSON([]byte("{"))
	assert.ErrorContains(t, err, "parse json")
}

// TestNestedSectionsNormalize verifies deep YAML nesting is reachable
// through chained Sub calls, same as JSON.
func TestNestedSectionsNormalize(t *testing.T) {
	c, err := config.FromYAML([]byte(`
a:
  b:
    c:
      leaf: 1
`))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Sub("a").Sub("b").Sub("c").Int("leaf", 0))
}
