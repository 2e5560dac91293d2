package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethpandaops/previewdiag/internal/testutil"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadCLIConfig_Defaults(t *testing.T) {
	cfg, err := LoadCLIConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 2, cfg.CacheDB.SampleRows)
	assert.Equal(t, []string{".safetensors", ".ckpt"}, cfg.Models.Extensions)
	assert.Equal(t, 256, cfg.Icon.Size)
	assert.Equal(t, []int{256}, cfg.Icon.ICOSizes)
	assert.Equal(t, "sd_icon.png", cfg.Icon.OutputPNG)

	// No model directories configured
	assert.Error(t, cfg.Validate())
}

func TestLoadCLIConfig_File(t *testing.T) {
	path := writeConfig(t, `
logging: debug
workers: 8
models:
  dirs:
    - /models/Stable-diffusion
    - ~/models/Lora
  extensions: [SAFETENSORS, pt]
cacheDB:
  path: /sd/cache.db
  stalePathPattern: "%AntiGravity%"
settings:
  path: /sd/config.json
  keys: [lora_dir]
trace:
  model: /models/Lora/x.safetensors
metrics:
  textfile: /tmp/previewdiag.prom
icon:
  text: AB
`)

	cfg, err := LoadCLIConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	home, err := homedir.Dir()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{"/models/Stable-diffusion", filepath.Join(home, "models", "Lora")}, cfg.Models.Dirs)
	assert.Equal(t, []string{".safetensors", ".pt"}, cfg.Models.Extensions)
	assert.Equal(t, "%AntiGravity%", cfg.CacheDB.StalePathPattern)
	assert.Equal(t, []string{"/sd/hashes", "/sd/hashes-addnet"}, cfg.Models.HashCacheDirs)
	assert.Equal(t, []string{"lora_dir"}, cfg.Settings.Keys)
	assert.Equal(t, "/models/Lora/x.safetensors", cfg.Trace.Model)
	assert.Equal(t, "/tmp/previewdiag.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "AB", cfg.Icon.Text)
	assert.Equal(t, 160.0, cfg.Icon.FontSize)
}

func TestLoadCLIConfig_InvalidYAML(t *testing.T) {
	_, err := LoadCLIConfig(writeConfig(t, "models: [unterminated"))
	assert.Error(t, err)
}

func TestCLIConfig_ValidateWorkers(t *testing.T) {
	cfg, err := LoadCLIConfig(writeConfig(t, "workers: 0\nmodels:\n  dirs: [/m]\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestRunDiagnose_JSON(t *testing.T) {
	dir := testutil.NewModelDir(t, "models", "a.safetensors", "a.preview.png")
	cfgFile = writeConfig(t, "models:\n  dirs: ["+dir+"]\n")

	var out bytes.Buffer
	diagnoseCmd.SetOut(&out)
	t.Cleanup(func() { diagnoseCmd.SetOut(nil) })
	require.NoError(t, diagnoseCmd.Flags().Set("format", "json"))
	t.Cleanup(func() { _ = diagnoseCmd.Flags().Set("format", "text") })

	require.NoError(t, runDiagnose(diagnoseCmd, nil))
	assert.Contains(t, out.String(), `"run_id"`)
	assert.Contains(t, out.String(), `"found": 1`)
}

func TestRunResolve_MissingArg(t *testing.T) {
	assert.ErrorIs(t, runResolve(resolveCmd, nil), ErrModelPathRequired)
}

func TestRunIcon(t *testing.T) {
	dir := t.TempDir()
	cfgFile = writeConfig(t, "icon:\n  size: 32\n  fontSize: 20\n")

	var out bytes.Buffer
	iconCmd.SetOut(&out)
	t.Cleanup(func() { iconCmd.SetOut(nil) })

	pngPath := filepath.Join(dir, "icon.png")
	require.NoError(t, iconCmd.Flags().Set("out-png", pngPath))
	require.NoError(t, iconCmd.Flags().Set("out-ico", ""))

	require.NoError(t, runIcon(iconCmd, nil))
	assert.Equal(t, "Generated "+pngPath+"\n", out.String())
	assert.FileExists(t, pngPath)
}
