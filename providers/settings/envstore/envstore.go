// Package envstore provides a [settings.Store] backed by environment
// variables, with optional .env loading via godotenv. Namespaced keys are
// mapped to environment variable names by uppercasing and replacing the
// namespace separator, so "loregen.baseURL" resolves to "LOREGEN_BASE_URL".
package envstore

import (
	"os"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
)

// Store reads settings from the process environment.
type Store struct{}

// New returns an environment-backed store. When dotenvFiles are given they
// are loaded first; missing files are ignored so a checked-in default and an
// optional local override can both be listed.
func New(dotenvFiles ...string) Store {
	for _, file := range dotenvFiles {
		// Ignore load errors: an absent .env simply means the environment
		// is expected to be populated already.
		_ = godotenv.Load(file)
	}
	return Store{}
}

// Get implements [settings.Store] by resolving key to its environment
// variable name.
func (Store) Get(key string) (string, bool) {
	return os.LookupEnv(EnvName(key))
}

// EnvName converts a namespaced settings key to its environment variable
// form: "loregen.payloadTemplate" becomes "LOREGEN_PAYLOAD_TEMPLATE".
func EnvName(key string) string {
	var sb strings.Builder
	for i, r := range key {
		switch {
		case r == '.':
			sb.WriteByte('_')
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(rune(key[i-1])):
			sb.WriteByte('_')
			sb.WriteRune(r)
		default:
			sb.WriteRune(unicode.ToUpper(r))
		}
	}
	return strings.ToUpper(sb.String())
}
