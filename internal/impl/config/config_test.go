package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnvironmentVariable(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	t.Setenv("ARTEMIS_TEST_TOKEN", "secret-value")

	resolved, err := cfg.ResolveEnvironmentVariable("#{ARTEMIS_TEST_TOKEN}#")
	require.NoError(t, err)
	assert.Equal(t, "secret-value", resolved)
}

func TestResolveEnvironmentVariableRawPassthrough(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	resolved, err := cfg.ResolveEnvironmentVariable("plain-token")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", resolved)
}

func TestResolveEnvironmentVariableMissing(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	os.Unsetenv("ARTEMIS_TEST_UNSET")
	_, err = cfg.ResolveEnvironmentVariable("#{ARTEMIS_TEST_UNSET}#")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARTEMIS_TEST_UNSET")
}

func TestResolveEnvironmentVariableEmptyName(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	_, err = cfg.ResolveEnvironmentVariable("#{}#")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty variable name")
}

func TestResolveConfiguration(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	t.Setenv("ARTEMIS_TEST_API_KEY", "pat-123")

	resolved, err := cfg.ResolveConfiguration(map[string]string{
		"api_key":  "#{ARTEMIS_TEST_API_KEY}#",
		"base_url": "https://api.hubapi.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "pat-123", resolved["api_key"])
	assert.Equal(t, "https://api.hubapi.com", resolved["base_url"])
}

func TestResolveConfigurationFailsOnBadReference(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	os.Unsetenv("ARTEMIS_TEST_UNSET")
	_, err = cfg.ResolveConfiguration(map[string]string{"token": "#{ARTEMIS_TEST_UNSET}#"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key 'token'")
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", maskKey("abcd"))
	assert.Equal(t, "********3456", maskKey("pat-12123456"))
	assert.Equal(t, "", maskKey(""))
}

func TestLoadConnectorsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connectors.yaml")
	content := `profiles:
  - name: eng-jira
    connector: jira
    configuration:
      base_url: https://x.atlassian.net
      email: dev@example.com
      api_token: "#{JIRA_API_TOKEN}#"
  - name: local-engine
    connector: camunda
    configuration:
      base_url: http://localhost:8080/engine-rest
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	profiles, err := LoadConnectorsFile(path)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, "eng-jira", profiles[0].Name)
	assert.Equal(t, "jira", profiles[0].Connector)
	assert.Equal(t, "#{JIRA_API_TOKEN}#", profiles[0].Configuration["api_token"])
	assert.Equal(t, "camunda", profiles[1].Connector)
}

func TestLoadConnectorsFileMissing(t *testing.T) {
	_, err := LoadConnectorsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
