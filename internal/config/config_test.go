package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIBaseURL, "")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("product_ids: [438457, 18]\n"))
	require.NoError(t, err)

	assert.Equal(t, "prices.csv", cfg.Destination)
	assert.Equal(t, filepath.Join("data", "prices.csv"), cfg.DestinationPath())
	assert.True(t, cfg.Backups())
	assert.Equal(t, ',', cfg.Separator())
	assert.Equal(t, '|', cfg.Quote())
	assert.Equal(t, FormatCSV, cfg.OutputFormat)
	assert.Equal(t, "http://lcboapi.com", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.KeepMissing)
	assert.Equal(t, []string{"438457", "18"}, cfg.ProductIDs)
	assert.Empty(t, cfg.StoreIDs)
	assert.False(t, cfg.InventoryEnabled())
}

func TestParse_AllFields(t *testing.T) {
	clearEnv(t)

	yamlContent := `
destination: out/export.csv
data_dir: /srv/prices
keep_backups: false
csv_separator: ";"
csv_quote: '"'
product_ids: ["1", "2", "1"]
store_ids: [10, 511]
keep_missing: true
api_base_url: http://localhost:8080
request_timeout: 5s
output_format: xlsx
log_level: debug
`
	cfg, err := Parse([]byte(yamlContent))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/srv/prices", "out/export.csv"), cfg.DestinationPath())
	assert.False(t, cfg.Backups())
	assert.Equal(t, ';', cfg.Separator())
	assert.Equal(t, '"', cfg.Quote())
	assert.Equal(t, []string{"1", "2", "1"}, cfg.ProductIDs, "duplicates are kept")
	assert.Equal(t, []string{"10", "511"}, cfg.StoreIDs)
	assert.True(t, cfg.InventoryEnabled())
	assert.True(t, cfg.KeepMissing)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, FormatXLSX, cfg.OutputFormat)
}

func TestParse_AbsoluteDestinationIgnoresDataDir(t *testing.T) {
	clearEnv(t)

	abs := filepath.Join(t.TempDir(), "prices.csv")
	cfg, err := Parse([]byte("destination: " + abs + "\n"))
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.DestinationPath())
}

func TestParse_SeparatorIsTrimmed(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(`csv_separator: " ; "`))
	require.NoError(t, err)
	assert.Equal(t, ';', cfg.Separator())

	cfg, err = Parse([]byte(`csv_separator: "\t"`))
	require.NoError(t, err)
	assert.Equal(t, '\t', cfg.Separator())
}

func TestParse_InvalidSettings(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		yaml string
	}{
		{"multi-character separator", `csv_separator: ",,"`},
		{"multi-character quote", `csv_quote: "||"`},
		{"separator equals quote", "csv_separator: \"|\"\ncsv_quote: \"|\""},
		{"newline quote", `csv_quote: "\n"`},
		{"dot separator", `csv_separator: "."`},
		{"minus separator", `csv_separator: "-"`},
		{"digit separator", `csv_separator: "0"`},
		{"digit quote", `csv_quote: "7"`},
		{"bad timeout", `request_timeout: soon`},
		{"negative timeout", `request_timeout: -1s`},
		{"unknown format", `output_format: json`},
		{"empty product id", `product_ids: ["1", ""]`},
		{"empty store id", `store_ids: [" "]`},
		{"malformed yaml", `product_ids: [1, 2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "http://mirror.local")
	t.Setenv(EnvDataDir, "elsewhere")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Parse([]byte("api_base_url: http://ignored\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://mirror.local", cfg.APIBaseURL)
	assert.Equal(t, filepath.Join("elsewhere", "prices.csv"), cfg.DestinationPath())
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "product_ids.yaml")
	require.NoError(t, os.WriteFile(path, []byte("product_ids: [1]\nstore_ids: [10]\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, cfg.ProductIDs)
	assert.Equal(t, []string{"10"}, cfg.StoreIDs)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	// missing file is fine
	require.NoError(t, LoadEnvFile(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvLogLevel+"=debug\n"), 0644))

	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvLogLevel)

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "debug", os.Getenv(EnvLogLevel))
}
