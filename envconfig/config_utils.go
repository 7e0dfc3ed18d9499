// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault/Bool: Boolean-Getter mit Default-Wert
// - String: String-Getter
// - Uint: Integer-Getter mit Default-Wert
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
)

// =============================================================================
// Boolean-Getter
// =============================================================================

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// =============================================================================
// String-Getter
// =============================================================================

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// =============================================================================
// Integer-Getter
// =============================================================================

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
// HF_TOKEN wird bewusst nicht aufgenommen, damit Values() keine
// Zugangsdaten in Logs schreibt
func AsMap() map[string]EnvVar {
	ret := map[string]EnvVar{
		"MASKFORM_DEBUG":        {"MASKFORM_DEBUG", LogLevel(), "Show additional debug information (e.g. MASKFORM_DEBUG=1)"},
		"MASKFORM_HOST":         {"MASKFORM_HOST", Host(), "IP Address for the maskform server (default 127.0.0.1:11437)"},
		"MASKFORM_ORIGINS":      {"MASKFORM_ORIGINS", AllowedOrigins(), "A comma separated list of allowed origins"},
		"MASKFORM_CACHE":        {"MASKFORM_CACHE", CacheDir(), "Override for the huggingface hub cache directory"},
		"MASKFORM_STORE":        {"MASKFORM_STORE", StorePath(), "The path to the model database"},
		"MASKFORM_OFFLINE":      {"MASKFORM_OFFLINE", Offline(), "Do not access the hub, use cached files only"},
		"MASKFORM_PULL_TIMEOUT": {"MASKFORM_PULL_TIMEOUT", PullTimeout(), "How long to allow hub pulls before giving up (default \"5m\")"},
		"MASKFORM_RETRIES":      {"MASKFORM_RETRIES", Retries(), "Number of retries for hub downloads (default 3)"},

		// Proxy-Einstellungen
		"HTTP_PROXY":  {"HTTP_PROXY", String("HTTP_PROXY")(), "HTTP proxy"},
		"HTTPS_PROXY": {"HTTPS_PROXY", String("HTTPS_PROXY")(), "HTTPS proxy"},
		"NO_PROXY":    {"NO_PROXY", String("NO_PROXY")(), "No proxy"},
	}

	// Nicht-Windows: Case-sensitive Proxy-Variablen
	if runtime.GOOS != "windows" {
		ret["http_proxy"] = EnvVar{"http_proxy", String("http_proxy")(), "HTTP proxy"}
		ret["https_proxy"] = EnvVar{"https_proxy", String("https_proxy")(), "HTTPS proxy"}
		ret["no_proxy"] = EnvVar{"no_proxy", String("no_proxy")(), "No proxy"}
	}

	return ret
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
