package driven

// ConfigStore is a flat key/value view over docchat's settings file.
//
// Keys are dotted paths mirroring the file's sections, such as
// "llm.provider" or "retrieval.multi_turn_k". Typed getters return the zero
// value for missing keys and for values of another kind.
type ConfigStore interface {
	// Get returns the raw value and whether the key is present.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integer values.
	GetFloat(key string) float64

	GetBool(key string) bool

	// GetStringSlice keeps only the string items of a list.
	GetStringSlice(key string) []string

	// Set records a value. File backed stores write through.
	Set(key string, value any) error

	// Save writes every value back to storage.
	Save() error

	// Load replaces the in-memory values with what storage holds.
	Load() error

	// Path names where the values live, or ":memory:".
	Path() string
}
