package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ui5-tools/odatasync/api"
)

// resetFlags restores the command's flag state between tests; the descriptor
// and config globals are shared across generate and remove.
func resetFlags(t *testing.T) {
	t.Helper()
	configFile = ""
	metadataFile = ""
	descriptor = api.ServiceDescriptor{}
	generateCmd.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "service.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDescriptor_ConfigFileVersionSurvivesFlagDefault(t *testing.T) {
	resetFlags(t)
	cfg := writeConfig(t, "url: https://services.odata.org\npath: /V2/Northwind/Northwind.svc\nversion: \"4\"\n")
	require.NoError(t, generateCmd.ParseFlags([]string{"--config", cfg}))

	desc, _, err := loadDescriptor(generateCmd)
	require.NoError(t, err)
	assert.Equal(t, "4", desc.Version)
	assert.Equal(t, "https://services.odata.org", desc.URL)
}

func TestLoadDescriptor_ExplicitVersionFlagWinsOverConfig(t *testing.T) {
	resetFlags(t)
	cfg := writeConfig(t, "url: https://services.odata.org\npath: /V2/Northwind/Northwind.svc\nversion: \"4\"\n")
	require.NoError(t, generateCmd.ParseFlags([]string{"--config", cfg, "--version", "2"}))

	desc, _, err := loadDescriptor(generateCmd)
	require.NoError(t, err)
	assert.Equal(t, "2", desc.Version)
}

func TestLoadDescriptor_FlagsOverlayConfig(t *testing.T) {
	resetFlags(t)
	cfg := writeConfig(t, "name: fromFile\nurl: https://file.example.com\npath: /file/\nversion: \"2\"\n")
	require.NoError(t, generateCmd.ParseFlags([]string{"--config", cfg, "--name", "fromFlag", "--client", "012"}))

	desc, _, err := loadDescriptor(generateCmd)
	require.NoError(t, err)
	assert.Equal(t, "fromFlag", desc.Name)
	assert.Equal(t, "https://file.example.com", desc.URL)
	assert.Equal(t, "012", desc.Client)
}

func TestLoadDescriptor_VersionDefaultAppliesWithoutConfig(t *testing.T) {
	resetFlags(t)
	require.NoError(t, generateCmd.ParseFlags([]string{"--url", "https://services.odata.org", "--path", "/V2/Northwind/Northwind.svc"}))

	desc, _, err := loadDescriptor(generateCmd)
	require.NoError(t, err)
	assert.Equal(t, "2", desc.Version)
}
