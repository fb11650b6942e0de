package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Namespaces used by the record cache.
const (
	NamespaceRecord  = "pokemon"
	NamespaceSpecies = "species"
)

// defaultKeySerializer produces lowercase, trimmed keys so that "Pikachu",
// " pikachu " and "pikachu" share a slot.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey joins the namespace and the normalized args with KeySeparator.
func (s *defaultKeySerializer) SerializeKey(namespace string, args ...any) string {
	if len(args) == 0 {
		return namespace
	}

	parts := make([]string, 0, len(args)+1)
	if namespace != "" {
		parts = append(parts, namespace)
	}

	for _, arg := range args {
		parts = append(parts, NormalizeKey(arg))
	}

	return strings.Join(parts, KeySeparator)
}

// NormalizeKey renders a single key segment. Strings are trimmed and lowercased,
// integers use their decimal form.
func NormalizeKey(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return strings.ToLower(strings.TrimSpace(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(val.String()))
	default:
		return strings.ToLower(fmt.Sprintf("%v", val))
	}
}
