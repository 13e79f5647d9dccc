package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/writingsystems/ldmlfile/ldml"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "strict", c.Compatibility)
	assert.Equal(t, "\t", c.Indent)
	assert.True(t, c.BackupEnabled())
	assert.Equal(t, ldml.Strict, c.CompatibilityMode())
	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)
	assert.NoError(t, c.Validate())
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte("compatibility: flex7v0\nindent: \"  \"\nbackup: false\nlogLevel: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, ldml.Flex7V0Compatible, c.CompatibilityMode())
	assert.Equal(t, "  ", c.Indent)
	assert.False(t, c.BackupEnabled())
	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	c, err = Parse([]byte("logLevel: info\n"))
	require.NoError(t, err)
	assert.Equal(t, "strict", c.Compatibility, "unset fields take defaults")
	assert.True(t, c.BackupEnabled())
}

func TestParseErrors(t *testing.T) {
	for _, doc := range []string{
		"compatibility: loose\n",
		"indent: xx\n",
		"logLevel: loud\n",
		"backup: [1, 2]\n",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := filepath.Join(t.TempDir(), "ldmlfmt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compatibility: flex7v0\n"), 0o600))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, ldml.Flex7V0Compatible, c.CompatibilityMode())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
