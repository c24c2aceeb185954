package settings

import (
	"strconv"
	"strings"
)

// Namespace prefixes every key the core reads, mirroring the host convention
// of namespacing module settings.
const Namespace = "loregen"

// Keys recognized by the core. Hosts may store additional keys; the core
// never enumerates a store, it only reads these.
const (
	KeyPayloadTemplate = Namespace + ".payloadTemplate"
	KeyBaseURL         = Namespace + ".baseURL"
	KeyHTTPS           = Namespace + ".https"
	KeyAPIKey          = Namespace + ".apiKey"
	KeyTryLimit        = Namespace + ".tryLimit"
	KeyResponsePath    = Namespace + ".responsePath"
	KeyReasoningEndTag = Namespace + ".reasoningEndTag"
	KeyModel           = Namespace + ".model"
	KeyModelFilter     = Namespace + ".modelFilter"
	KeyGlobalContext   = Namespace + ".globalContext"
)

// Store is the read contract against the host's settings persistence.
// Get returns the raw string value for a namespaced key and whether the key
// is present. Values are fetched fresh on every call; the core never caches
// them across requests.
type Store interface {
	Get(key string) (string, bool)
}

// GetString returns the value for key, or fallback when the key is absent or
// empty.
func GetString(s Store, key, fallback string) string {
	if value, ok := s.Get(key); ok && value != "" {
		return value
	}
	return fallback
}

// GetInt returns the integer value for key, or fallback when the key is
// absent or not parseable as an integer.
func GetInt(s Store, key string, fallback int) int {
	value, ok := s.Get(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// GetBool returns the boolean value for key, or fallback when the key is
// absent or not parseable as a boolean.
func GetBool(s Store, key string, fallback bool) bool {
	value, ok := s.Get(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// Static is a map-backed Store for tests and programmatic wiring.
type Static map[string]string

// Get implements [Store].
func (s Static) Get(key string) (string, bool) {
	value, ok := s[key]
	return value, ok
}

// Ensure Static implements Store at compile time.
var _ Store = (Static)(nil)
