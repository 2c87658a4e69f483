package campaign_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/bughunt/internal/campaign"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)
}

func Test_DefaultConfig_Is_Valid_When_Unmodified(t *testing.T) {
	t.Parallel()

	require.NoError(t, campaign.DefaultConfig().Validate())
}

func Test_LoadConfig_Returns_Defaults_When_No_File_Exists(t *testing.T) {
	t.Parallel()

	cfg, source, err := campaign.LoadConfig(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, source)
	assert.Equal(t, campaign.DefaultConfig(), cfg)
}

func Test_LoadConfig_Reads_JSONC_When_Project_File_Has_Comments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".bughunt.json"), `{
		// fuzz the deque with a cyclic stream
		"target": "deque",
		"policy": "cyclic",
		"runs": 7,
	}`)

	cfg, source, err := campaign.LoadConfig(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".bughunt.json"), source)
	assert.Equal(t, "deque", cfg.Target)
	assert.Equal(t, "cyclic", cfg.Policy)
	assert.Equal(t, 7, cfg.Runs)

	// Untouched fields keep their defaults.
	assert.Equal(t, campaign.DefaultConfig().InputSize, cfg.InputSize)
	assert.True(t, cfg.ContentCheck)
}

func Test_LoadConfig_Reads_YAML_When_Extension_Is_Yaml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "hunt.yaml"), `
target: hashmap-wide
hasher: xxhash
content_check: false
memory:
  limit_bytes: 1048576
log:
  level: debug
`)

	cfg, source, err := campaign.LoadConfig(dir, "hunt.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hunt.yaml"), source)
	assert.Equal(t, "hashmap-wide", cfg.Target)
	assert.Equal(t, campaign.HasherXXHash, cfg.Hasher)
	assert.False(t, cfg.ContentCheck)
	assert.Equal(t, int64(1<<20), cfg.Memory.LimitBytes)
	assert.Equal(t, -1, cfg.Memory.GCPercent)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func Test_LoadConfig_Prefers_Explicit_File_When_Project_File_Exists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".bughunt.json"), `{"target": "deque"}`)
	writeFile(t, filepath.Join(dir, "other.json"), `{"target": "repeat"}`)

	cfg, _, err := campaign.LoadConfig(dir, "other.json")
	require.NoError(t, err)
	assert.Equal(t, "repeat", cfg.Target)
}

func Test_LoadConfig_Returns_Error_When_Config_Is_Broken(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		file    string
		content string
		path    string
		wantErr error
	}{
		{name: "MissingExplicit", path: "nope.json", wantErr: campaign.ErrConfigNotFound},
		{name: "BadJSON", file: ".bughunt.json", content: `{"target": `, wantErr: campaign.ErrConfigInvalid},
		{name: "UnknownJSONField", file: ".bughunt.json", content: `{"tagret": "deque"}`, wantErr: campaign.ErrConfigInvalid},
		{name: "UnknownYAMLField", file: ".bughunt.yml", content: "tagret: deque\n", wantErr: campaign.ErrConfigInvalid},
		{name: "WrongType", file: ".bughunt.json", content: `{"runs": "many"}`, wantErr: campaign.ErrConfigInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tc.file != "" {
				writeFile(t, filepath.Join(dir, tc.file), tc.content)
			}

			_, _, err := campaign.LoadConfig(dir, tc.path)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func Test_Config_Validate_Rejects_Setting_When_Out_Of_Range(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*campaign.Config)
		wantErr error
	}{
		{name: "Target", mutate: func(c *campaign.Config) { c.Target = "btree" }, wantErr: campaign.ErrUnknownTarget},
		{name: "Policy", mutate: func(c *campaign.Config) { c.Policy = "looping" }, wantErr: campaign.ErrConfigInvalid},
		{name: "Hasher", mutate: func(c *campaign.Config) { c.Hasher = "sha1" }, wantErr: campaign.ErrUnknownHasher},
		{name: "Level", mutate: func(c *campaign.Config) { c.Log.Level = "loud" }, wantErr: campaign.ErrUnknownLevel},
		{name: "MaxBytes", mutate: func(c *campaign.Config) { c.MaxBytes = 0 }, wantErr: campaign.ErrConfigInvalid},
		{name: "Runs", mutate: func(c *campaign.Config) { c.Runs = -1 }, wantErr: campaign.ErrConfigInvalid},
		{name: "InputSize", mutate: func(c *campaign.Config) { c.InputSize = 0 }, wantErr: campaign.ErrConfigInvalid},
		{name: "Workers", mutate: func(c *campaign.Config) { c.Workers = 0 }, wantErr: campaign.ErrConfigInvalid},
		{name: "Memory", mutate: func(c *campaign.Config) { c.Memory.LimitBytes = -5 }, wantErr: campaign.ErrConfigInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := campaign.DefaultConfig()
			tc.mutate(&cfg)

			require.ErrorIs(t, cfg.Validate(), tc.wantErr)
		})
	}
}

func Test_FormatConfig_Emits_Snake_Case_Keys_When_Formatted(t *testing.T) {
	t.Parallel()

	out, err := campaign.FormatConfig(campaign.DefaultConfig())
	require.NoError(t, err)

	for _, key := range []string{`"target": "hashmap"`, `"max_bytes": 16384`, `"hash_modulus": 8`, `"gc_percent": -1`} {
		assert.Contains(t, out, key)
	}

	assert.NotContains(t, out, "report_path")
}

func Test_ParseConfig_Accepts_Empty_YAML_When_Document_Is_Blank(t *testing.T) {
	t.Parallel()

	cfg := campaign.DefaultConfig()

	err := campaign.ParseConfig([]byte("# nothing here\n"), ".yaml", &cfg)
	require.NoError(t, err)
	assert.Equal(t, campaign.DefaultConfig(), cfg)
}
