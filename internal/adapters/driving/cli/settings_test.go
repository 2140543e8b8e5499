package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty", "", "(not set)"},
		{"With password", "postgres://docchat:secret@db:5432/docchat?sslmode=disable", "postgres://docchat:****@db:5432/docchat?sslmode=disable"},
		{"Without password", "postgres://docchat@db/docchat", "postgres://docchat@db/docchat"},
		{"Without credentials", "postgres://db/docchat", "postgres://db/docchat"},
		{"Key value form", "host=db password=secret", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskDSN(tt.input))
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.LLM.APIKey = "gsk_1234567890abcdef"

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "Model: llama3-8b-8192")
	assert.Contains(t, out, "API Key: gsk_...cdef")
	assert.NotContains(t, out, "gsk_1234567890abcdef")
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Chunk size: 1000")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Multi-turn k: 5")
	assert.Contains(t, out, "Address: :8000")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsCmd_DefaultsToShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = domain.ErrLLMUnavailable

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "docchat settings set-key")
}

func TestSettingsShowCmd_MasksPostgresDSN(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Storage = domain.StorageSettings{
		Backend:     domain.StoragePostgres,
		PostgresDSN: "postgres://docchat:secret@db/docchat",
	}

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "DSN: postgres://docchat:****@db/docchat")
	assert.NotContains(t, out, "secret")
}

func TestSettingsValidateCmd(t *testing.T) {
	t.Run("all providers reachable", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		out, err := execute(t, "settings", "validate")

		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(out, "OK"))
	})

	t.Run("embedding provider unreachable", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.settings.embedErr = errBoom

		out, err := execute(t, "settings", "validate")

		require.Error(t, err)
		assert.Contains(t, out, "Embedding provider... FAILED: boom")
	})
}

func TestSettingsLLMCmd_Wizard(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("3\n\nsk-ant-test-key\n"))
	out, err := execute(t, "settings", "llm")

	require.NoError(t, err)
	assert.Contains(t, out, "Validating configuration... OK")
	assert.Equal(t, domain.AIProviderAnthropic, ts.settings.llmProvider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], ts.settings.llmModel)
	assert.Equal(t, "sk-ant-test-key", ts.settings.llmKey)
}

func TestSettingsEmbeddingCmd_LocalProviderSkipsKey(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("2\nnomic-embed-text\n"))
	_, err := execute(t, "settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.embedProvider)
	assert.Equal(t, "nomic-embed-text", ts.settings.embedModel)
	assert.Empty(t, ts.settings.embedKey)
}

func TestSettingsEmbeddingCmd_MissingKey(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("1\n\n\n"))
	_, err := execute(t, "settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
	assert.Empty(t, ts.settings.embedProvider)
}

func TestSettingsSetKeyCmd_ValidationFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.llmErr = errBoom

	rootCmd.SetIn(strings.NewReader("5\n\n"))
	_, err := execute(t, "settings", "set-key")

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.llmProvider)
}
