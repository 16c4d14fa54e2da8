package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.Models)
	assert.NotEmpty(t, cfg.Models.Writer)
	assert.NotEmpty(t, cfg.Storage.DBPath)

	// The file should exist on disk after first load.
	_, err = os.Stat(filepath.Join(dir, ProjectConfigDir, "config.json"))
	require.NoError(t, err)

	// A second load round-trips the saved file.
	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Models.Writer, again.Models.Writer)
}

func TestLoadRejectsUnparseableFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ProjectConfigDir), 0o755))
	path := filepath.Join(dir, ProjectConfigDir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)

	// The broken file must be left untouched.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(data))
}

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ProjectConfigDir), 0o755))
	path := filepath.Join(dir, ProjectConfigDir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"models":{"writer":"gpt-4o"}}`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Models.Writer)
	assert.NotEmpty(t, cfg.Models.Critic, "missing roles get defaults")
	assert.NotEmpty(t, cfg.Storage.DBPath)
}

func TestGetModelProvider(t *testing.T) {
	tests := []struct {
		model    string
		provider string
		wantErr  bool
	}{
		{"claude-sonnet-4-5", ProviderAnthropic, false},
		{"claude-future-model", ProviderAnthropic, false},
		{"gpt-4o", ProviderOpenAI, false},
		{"o4-mini", ProviderOpenAI, false},
		{"gemini-2.5-flash", ProviderGoogle, false},
		{"llama3.3", ProviderOllama, false},
		{"ollama:phi4", ProviderOllama, false},
		{"mystery-model", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			provider, err := GetModelProvider(tt.model)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsFatal(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, provider)
		})
	}
}

func TestAPIKeyFor(t *testing.T) {
	t.Setenv(EnvAnthropicKey, "test-key-123")
	SetDecryptedSecrets(nil)

	key, err := APIKeyFor(ProviderAnthropic)
	require.NoError(t, err)
	assert.Equal(t, "test-key-123", key)

	// Ollama never needs a key.
	key, err = APIKeyFor(ProviderOllama)
	require.NoError(t, err)
	assert.Empty(t, key)

	// Missing key is fatal.
	t.Setenv(EnvOpenAIKey, "")
	_, err = APIKeyFor(ProviderOpenAI)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestSecretPrecedence(t *testing.T) {
	t.Setenv("SF_TEST_SECRET", "from-env")
	SetDecryptedSecrets(map[string]string{"SF_TEST_SECRET": "from-file"})
	t.Cleanup(func() { SetDecryptedSecrets(nil) })

	value, err := GetSecret("SF_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-file", value, "secrets file wins over environment")
}

func TestSecretsFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	secrets := map[string]string{
		EnvAnthropicKey: "sk-ant-test",
		EnvOpenAIKey:    "sk-test",
	}

	require.NoError(t, EncryptSecretsFile(dir, "hunter2", secrets))
	assert.True(t, SecretsFileExists(dir))

	decrypted, err := DecryptSecretsFile(dir, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, secrets, decrypted)

	_, err = DecryptSecretsFile(dir, "wrong-password")
	require.Error(t, err)
}
