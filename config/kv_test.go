// kv_test.go - Unit Tests fuer KV-Metadaten
//
// Testet Architektur-Praefix-Aufloesung, typisierte Getter und Defaults.
package config

import (
	"slices"
	"testing"
)

func testKV() KV {
	return KV{
		"general.architecture":    "swin",
		"general.parameter_count": uint64(87000000),
		"swin.image_size":         224,
		"swin.embed_dim":          96,
		"swin.mlp_ratio":          4.0,
		"swin.qkv_bias":           true,
		"swin.hidden_act":         "gelu",
		"swin.depths":             []int{2, 2, 6, 2},
	}
}

// TestKVArchitecture testet das Lesen der Architektur
func TestKVArchitecture(t *testing.T) {
	kv := testKV()
	if got := kv.Architecture(); got != "swin" {
		t.Errorf("Architecture() = %q, want %q", got, "swin")
	}

	// Ohne Architektur-Key kommt "unknown" zurueck
	empty := KV{}
	if got := empty.Architecture(); got != "unknown" {
		t.Errorf("Architecture() = %q, want %q", got, "unknown")
	}
}

// TestKVPrefix testet die automatische Praefix-Aufloesung
func TestKVPrefix(t *testing.T) {
	kv := testKV()

	// Kurzer Key wird mit Architektur erweitert
	if got := kv.Int("image_size"); got != 224 {
		t.Errorf("Int(image_size) = %d, want 224", got)
	}

	// general.-Keys werden nicht erweitert
	if got := kv.ParameterCount(); got != 87000000 {
		t.Errorf("ParameterCount() = %d, want 87000000", got)
	}
}

// TestKVGetter testet die typisierten Getter mit Defaults
func TestKVGetter(t *testing.T) {
	kv := testKV()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"int vorhanden", kv.Int("embed_dim"), 96},
		{"int default", kv.Int("missing", 42), 42},
		{"int ohne default", kv.Int("missing"), 0},
		{"float vorhanden", kv.Float("mlp_ratio"), 4.0},
		{"float default", kv.Float("missing", 1.5), 1.5},
		{"bool vorhanden", kv.Bool("qkv_bias"), true},
		{"bool default", kv.Bool("missing", true), true},
		{"string vorhanden", kv.String("hidden_act"), "gelu"},
		{"string default", kv.String("missing", "relu"), "relu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

// TestKVGetterFalscherTyp testet dass Typ-Mismatch den Default liefert
func TestKVGetterFalscherTyp(t *testing.T) {
	kv := testKV()

	// image_size ist int, als String gelesen kommt der Default
	if got := kv.String("image_size", "fallback"); got != "fallback" {
		t.Errorf("String(image_size) = %q, want %q", got, "fallback")
	}
}

// TestKVInts testet das Lesen von int-Arrays
func TestKVInts(t *testing.T) {
	kv := testKV()

	if got := kv.Ints("depths"); !slices.Equal(got, []int{2, 2, 6, 2}) {
		t.Errorf("Ints(depths) = %v, want [2 2 6 2]", got)
	}

	if got := kv.Ints("missing", []int{1}); !slices.Equal(got, []int{1}) {
		t.Errorf("Ints(missing) = %v, want [1]", got)
	}
}

// TestKVLenKeysValue testet Len, Keys und Value
func TestKVLenKeysValue(t *testing.T) {
	kv := testKV()

	if kv.Len() != 8 {
		t.Errorf("Len() = %d, want 8", kv.Len())
	}

	found := false
	for key := range kv.Keys() {
		if key == "swin.embed_dim" {
			found = true
		}
	}
	if !found {
		t.Error("Keys() enthaelt swin.embed_dim nicht")
	}

	// Value loest keine Praefixe auf
	if got := kv.Value("swin.embed_dim"); got != 96 {
		t.Errorf("Value(swin.embed_dim) = %v, want 96", got)
	}
	if got := kv.Value("embed_dim"); got != nil {
		t.Errorf("Value(embed_dim) = %v, want nil", got)
	}
}
