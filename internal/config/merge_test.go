package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/m2t/internal/config"
)

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SectionKeysMerged(t *testing.T) {
	target := config.Defaults()
	target.Convert.MaxSamples = 42

	overlay := writeOverlay(t, `
convert:
  block_size: 1024
`)
	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, 1024, target.Convert.BlockSize)
	assert.Equal(t, 42, target.Convert.MaxSamples)
	assert.Equal(t, config.CompressionDeflate, target.Convert.Compression)
	assert.Equal(t, config.DefaultLogLevel, target.Logging.Level)
}

func TestShallowMergeYAML_SingleKeySectionStaysValid(t *testing.T) {
	target := config.Defaults()
	overlay := writeOverlay(t, `
convert:
  failure_policy: continue
logging:
  level: debug
`)
	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, config.FailurePolicyContinue, target.Convert.FailurePolicy)
	assert.Equal(t, config.DefaultBlockSize, target.Convert.BlockSize)
	assert.Equal(t, "debug", target.Logging.Level)
	assert.Equal(t, config.DefaultLogFormat, target.Logging.Format)
	require.NoError(t, target.Validate())
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := config.Defaults()
	overlay := writeOverlay(t, `
plugins:
  foo: bar
logging:
  level: error
`)
	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "error", target.Logging.Level)
	assert.Equal(t, config.DefaultBlockSize, target.Convert.BlockSize)
}

func TestShallowMergeYAML_EmptyFile(t *testing.T) {
	target := config.Defaults()
	require.NoError(t, config.ShallowMergeYAML(target, writeOverlay(t, "# nothing here\n")))
	assert.Equal(t, config.Defaults(), target)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		assert.Error(t, config.ShallowMergeYAML(nil, "whatever.yaml"))
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(config.Defaults(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "reading overlay file")
	})

	t.Run("wrong section type", func(t *testing.T) {
		err := config.ShallowMergeYAML(config.Defaults(), writeOverlay(t, "convert:\n  block_size: lots\n"))
		assert.ErrorContains(t, err, `applying overlay section "convert"`)
	})
}
