package postprocessors

import (
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/postprocessors/chunker"
)

// ChunkerName is the registry name of the text splitter.
const ChunkerName = "chunker"

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) error {
	return r.Register(ChunkerName, buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
			opts = append(opts, chunker.WithOverlap(overlap))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/YAML/JSON parsing.
// The boolean is false when the key is absent or not numeric.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
