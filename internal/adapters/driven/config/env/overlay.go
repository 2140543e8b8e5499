// Package env overlays process environment variables on top of a ConfigStore.
//
// Every dot-notation key maps to a DOCCHAT_ variable, e.g. llm.api_key is
// read from DOCCHAT_LLM_API_KEY. API keys additionally fall back to the
// conventional variable of the selected provider (GROQ_API_KEY,
// OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY).
package env

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Prefix is prepended to every mapped variable name.
const Prefix = "DOCCHAT_"

// providerKeyVars lists the conventional API key variables per provider,
// in lookup order.
var providerKeyVars = map[domain.AIProvider][]string{
	domain.AIProviderGroq:      {"GROQ_API_KEY"},
	domain.AIProviderOpenAI:    {"OPENAI_API_KEY"},
	domain.AIProviderAnthropic: {"ANTHROPIC_API_KEY"},
	domain.AIProviderGoogle:    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
}

// providerSetting names the setting that selects a provider and the
// provider used when it is unset.
type providerSetting struct {
	key      string
	fallback domain.AIProvider
}

// apiKeyProviders maps an API key setting to its provider setting.
var apiKeyProviders = map[string]providerSetting{
	"llm.api_key":       {key: "llm.provider", fallback: domain.DefaultAppSettings().LLM.Provider},
	"embedding.api_key": {key: "embedding.provider", fallback: domain.DefaultAppSettings().Embedding.Provider},
}

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Overlay is a driven.ConfigStore whose reads prefer environment variables.
// Writes go to the wrapped store only.
type Overlay struct {
	base   driven.ConfigStore
	lookup func(string) (string, bool)
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithLookup replaces os.LookupEnv, mainly for tests.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(o *Overlay) {
		o.lookup = lookup
	}
}

// New wraps base with an environment overlay.
func New(base driven.ConfigStore, opts ...Option) *Overlay {
	o := &Overlay{base: base, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// Variables already present in the environment are not overwritten, and
// missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// VarName returns the environment variable mapped to key.
func VarName(key string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return Prefix + strings.ToUpper(r.Replace(key))
}

func (o *Overlay) fromEnv(key string) (string, bool) {
	if v, ok := o.lookup(VarName(key)); ok && v != "" {
		return v, true
	}

	setting, ok := apiKeyProviders[key]
	if !ok {
		return "", false
	}
	provider := domain.AIProvider(o.GetString(setting.key))
	if provider == "" {
		provider = setting.fallback
	}
	for _, name := range providerKeyVars[provider] {
		if v, ok := o.lookup(name); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Get returns the environment value when set, otherwise the stored value.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.fromEnv(key); ok {
		return v, true
	}
	return o.base.Get(key)
}

// GetString retrieves a string configuration value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.fromEnv(key); ok {
		return v
	}
	return o.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
// An unparsable environment value is ignored.
func (o *Overlay) GetInt(key string) int {
	if v, ok := o.fromEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return o.base.GetInt(key)
}

// GetFloat retrieves a floating point configuration value.
func (o *Overlay) GetFloat(key string) float64 {
	if v, ok := o.fromEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return o.base.GetFloat(key)
}

// GetBool retrieves a boolean configuration value.
func (o *Overlay) GetBool(key string) bool {
	if v, ok := o.fromEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return o.base.GetBool(key)
}

// GetStringSlice splits a comma-separated environment value.
func (o *Overlay) GetStringSlice(key string) []string {
	if v, ok := o.fromEnv(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return o.base.GetStringSlice(key)
}

// Set stores a value in the wrapped store. An environment variable for the
// same key keeps taking precedence on reads.
func (o *Overlay) Set(key string, value any) error {
	return o.base.Set(key, value)
}

// Save persists the wrapped store.
func (o *Overlay) Save() error {
	return o.base.Save()
}

// Load reloads the wrapped store.
func (o *Overlay) Load() error {
	return o.base.Load()
}

// Path returns the wrapped store's path.
func (o *Overlay) Path() string {
	return o.base.Path()
}

// Overridden reports whether key currently comes from the environment.
func (o *Overlay) Overridden(key string) bool {
	_, ok := o.fromEnv(key)
	return ok
}
