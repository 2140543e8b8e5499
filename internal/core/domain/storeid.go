package domain

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	unsafeStoreChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	storeIDPattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*_[0-9a-f]{32}$`)
)

// maxStoreStem bounds the readable part of a store id.
const maxStoreStem = 64

// NewStoreID issues a fresh identifier for a store built from the named upload.
// The identifier is "<stem>_<32 hex chars>"; only the random suffix makes it unique.
func NewStoreID(source string) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	stem = unsafeStoreChars.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "._-")
	if len(stem) > maxStoreStem {
		stem = stem[:maxStoreStem]
	}
	if stem == "" {
		stem = "document"
	}
	return stem + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsValidStoreID reports whether id has the shape NewStoreID produces.
// Adapters use it before touching the filesystem so ids can never escape
// the storage root.
func IsValidStoreID(id string) bool {
	return storeIDPattern.MatchString(id)
}
