package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoZeroFields(t *testing.T) {
	cfg := Default()

	for _, field := range visit(newVar(*cfg), "Config", false) {
		assert.Fail(t, "zero-value field", field)
	}
}

func TestParse(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		cfg, err := Parse([]byte(`
proxy:
  trusted: ["10.0.0.0/8", "::1"]
headers:
  default:
    Server: message
log:
  level: debug
`))
		require.NoError(t, err)
		require.Equal(t, []string{"10.0.0.0/8", "::1"}, cfg.Proxy.Trusted)
		require.Equal(t, map[string]string{"Server": "message"}, cfg.Headers.Default)
		require.Equal(t, Default().Body.MaxSize, cfg.Body.MaxSize)

		logger, ok := cfg.Logger.(*logrus.Logger)
		require.True(t, ok)
		require.Equal(t, logrus.DebugLevel, logger.GetLevel())
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		require.Same(t, logrus.StandardLogger(), cfg.Logger)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := Parse([]byte("log:\n  level: loud\n"))
		require.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Parse([]byte("proxy: [unclosed"))
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "message.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("body:\n  max_size: 1024\n"), 0o600))

	cfg, err := Load(filename)
	require.NoError(t, err)
	require.Equal(t, int64(1024), cfg.Body.MaxSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

type variable struct {
	Type  reflect.Type
	Value reflect.Value
}

func newVar(a any) variable {
	return variable{reflect.TypeOf(a), reflect.ValueOf(a)}
}

func visit(a variable, name string, nullable bool) (fields []string) {
	if a.Type.Kind() == reflect.Struct {
		for field := 0; field < a.Value.NumField(); field++ {
			v1 := variable{a.Type.Field(field).Type, a.Value.Field(field)}
			fieldname := a.Type.Field(field).Name
			isNullable := a.Type.Field(field).Tag.Get("test") == "nullable"
			fields = append(fields, visit(v1, name+"."+fieldname, isNullable)...)
		}

		return fields
	}

	if a.Value.IsZero() && !nullable {
		return []string{name}
	}

	return nil
}
