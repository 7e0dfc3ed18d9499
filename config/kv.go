// Package config - KV (Key-Value) Metadaten
//
// Dieses Modul enthaelt den KV-Typ und alle zugehoerigen Methoden:
// - KV: Flache Map fuer Konfigurations-Metadaten mit Punkt-Keys
// - Architektur-Methoden (Architecture, ParameterCount)
// - Generische Getter (String, Int, Float, Bool, Ints)
package config

import (
	"iter"
	"log/slog"
	"maps"
	"strings"
)

// KV repraesentiert flache Konfigurations-Metadaten.
// Keys sind mit der Architektur gepraefixt ("swin.embed_dim"),
// Ausnahme sind "general."-Keys.
type KV map[string]any

// Architecture gibt die Modell-Architektur zurueck
func (kv KV) Architecture() string {
	return kv.String("general.architecture", "unknown")
}

// ParameterCount gibt die geschaetzte Anzahl der Parameter zurueck
func (kv KV) ParameterCount() uint64 {
	val, _ := keyValue(kv, "general.parameter_count", uint64(0))
	return val
}

// Generische Getter

// String gibt einen String-Wert zurueck
func (kv KV) String(key string, defaultValue ...string) string {
	val, _ := keyValue(kv, key, append(defaultValue, "")...)
	return val
}

// Int gibt einen int-Wert zurueck
func (kv KV) Int(key string, defaultValue ...int) int {
	val, _ := keyValue(kv, key, append(defaultValue, 0)...)
	return val
}

// Float gibt einen float64-Wert zurueck
func (kv KV) Float(key string, defaultValue ...float64) float64 {
	val, _ := keyValue(kv, key, append(defaultValue, 0)...)
	return val
}

// Bool gibt einen bool-Wert zurueck
func (kv KV) Bool(key string, defaultValue ...bool) bool {
	val, _ := keyValue(kv, key, append(defaultValue, false)...)
	return val
}

// Ints gibt ein int-Array zurueck
func (kv KV) Ints(key string, defaultValue ...[]int) []int {
	val, _ := keyValue(kv, key, append(defaultValue, []int(nil))...)
	return val
}

// Len gibt die Anzahl der KV-Paare zurueck
func (kv KV) Len() int {
	return len(kv)
}

// Keys gibt einen Iterator ueber alle Keys zurueck
func (kv KV) Keys() iter.Seq[string] {
	return maps.Keys(kv)
}

// Value gibt den Wert fuer einen Key zurueck, ohne Praefix-Aufloesung
func (kv KV) Value(key string) any {
	return kv[key]
}

// Type Constraints fuer keyValue

type valueTypes interface {
	int | int64 | uint64 | float32 | float64 |
		string | bool | []int | []float64 | []string
}

// keyValue ist eine generische Hilfsfunktion zum Lesen von KV-Werten.
// Keys ohne "general."-Praefix werden mit der Architektur erweitert.
func keyValue[T valueTypes](kv KV, key string, defaultValue ...T) (T, bool) {
	if !strings.HasPrefix(key, "general.") {
		key = kv.Architecture() + "." + key
	}

	if val, ok := kv[key].(T); ok {
		return val, true
	}

	slog.Debug("key with type not found", "key", key, "default", defaultValue[0])
	return defaultValue[0], false
}
