// maskformer_test.go - Unit Tests fuer die MaskFormer-Konfiguration
//
// Testet Defaults, Backbone-Aufloesung ueber die Registry, Validierung,
// Map- und JSON-Serialisierung sowie die abgeleiteten Werte.
package maskformer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/maskform/maskform/config/detr"
	"github.com/maskform/maskform/config/swin"
)

// TestDefault testet die dokumentierten Standard-Werte
func TestDefault(t *testing.T) {
	c := Default()

	if err := c.Validate(); err != nil {
		t.Fatalf("Default() sollte gueltig sein: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"fpn_feature_size", c.FPNFeatureSize, 256},
		{"mask_feature_size", c.MaskFeatureSize, 256},
		{"no_object_weight", c.NoObjectWeight, 0.1},
		{"use_auxilary_loss", c.UseAuxiliaryLoss, false},
		{"init_std", c.InitStd, 0.02},
		{"init_xavier_std", c.InitXavierStd, 1.0},
		{"dice_weight", c.DiceWeight, 1.0},
		{"cross_entropy_weight", c.CrossEntropyWeight, 1.0},
		{"mask_weight", c.MaskWeight, 20.0},
		{"num_labels", c.NumLabels, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if c.ModelType() != "maskformer" {
		t.Errorf("ModelType() = %q, want %q", c.ModelType(), "maskformer")
	}

	// Default-Backbone ist swin-base mit 384px Eingaben
	backbone, ok := c.Backbone.(*swin.Config)
	if !ok {
		t.Fatalf("Backbone hat Typ %T, want *swin.Config", c.Backbone)
	}
	if backbone.ImageSize != 384 || backbone.EmbedDim != 128 || backbone.WindowSize != 12 {
		t.Errorf("Backbone = %d/%d/%d, want 384/128/12",
			backbone.ImageSize, backbone.EmbedDim, backbone.WindowSize)
	}
	if backbone.DropPathRate != 0.3 {
		t.Errorf("DropPathRate = %v, want 0.3", backbone.DropPathRate)
	}

	if c.Decoder.DModel != 256 || c.Decoder.EncoderLayers != 6 {
		t.Errorf("Decoder = %d/%d, want 256/6", c.Decoder.DModel, c.Decoder.EncoderLayers)
	}
}

// TestAbgeleiteteWerte testet die aus dem Decoder uebernommenen Werte
func TestAbgeleiteteWerte(t *testing.T) {
	c := Default()

	if c.NumAttentionHeads() != 8 {
		t.Errorf("NumAttentionHeads = %d, want 8", c.NumAttentionHeads())
	}
	if c.NumHiddenLayers() != 6 {
		t.Errorf("NumHiddenLayers = %d, want 6", c.NumHiddenLayers())
	}
	if c.HiddenSize() != 256 {
		t.Errorf("HiddenSize = %d, want 256", c.HiddenSize())
	}

	// Ein anderer Decoder aendert die abgeleiteten Werte mit
	d, err := detr.New(detr.WithEncoderAttentionHeads(16), detr.WithEncoderLayers(4))
	if err != nil {
		t.Fatalf("detr.New: %v", err)
	}
	c2, err := New(WithDecoder(d))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c2.NumAttentionHeads() != 16 || c2.NumHiddenLayers() != 4 {
		t.Errorf("abgeleitete Werte = %d/%d, want 16/4",
			c2.NumAttentionHeads(), c2.NumHiddenLayers())
	}
}

// TestNewMitOptions testet das Functional Options Pattern
func TestNewMitOptions(t *testing.T) {
	c, err := New(
		WithFPNFeatureSize(128),
		WithMaskFeatureSize(64),
		WithNoObjectWeight(0.2),
		WithAuxiliaryLoss(true),
		WithLossWeights(2.0, 3.0, 4.0),
		WithNumLabels(19),
		WithExtra("torch_dtype", "float32"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if c.FPNFeatureSize != 128 || c.MaskFeatureSize != 64 {
		t.Errorf("Feature-Groessen = %d/%d, want 128/64", c.FPNFeatureSize, c.MaskFeatureSize)
	}
	if c.NoObjectWeight != 0.2 || !c.UseAuxiliaryLoss {
		t.Errorf("NoObjectWeight/Aux = %v/%v, want 0.2/true", c.NoObjectWeight, c.UseAuxiliaryLoss)
	}
	if c.CrossEntropyWeight != 2.0 || c.DiceWeight != 3.0 || c.MaskWeight != 4.0 {
		t.Errorf("Loss-Gewichte = %v/%v/%v, want 2/3/4",
			c.CrossEntropyWeight, c.DiceWeight, c.MaskWeight)
	}
	if c.NumLabels != 19 {
		t.Errorf("NumLabels = %d, want 19", c.NumLabels)
	}
	if val, ok := c.Extra("torch_dtype"); !ok || val != "float32" {
		t.Errorf("Extra(torch_dtype) = %v, %v, want float32, true", val, ok)
	}
}

// TestValidateFehler testet die Ablehnung ungueltiger Konfigurationen
func TestValidateFehler(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"nil backbone", func(c *Config) { c.Backbone = nil }, ErrNilBackbone},
		{"nil decoder", func(c *Config) { c.Decoder = nil }, ErrNilDecoder},
		{"fpn feature size null", func(c *Config) { c.FPNFeatureSize = 0 }, ErrInvalidFeatureSize},
		{"mask feature size negativ", func(c *Config) { c.MaskFeatureSize = -1 }, ErrInvalidFeatureSize},
		{"no object weight zu gross", func(c *Config) { c.NoObjectWeight = 1.5 }, ErrInvalidNoObjectWeight},
		{"no object weight negativ", func(c *Config) { c.NoObjectWeight = -0.1 }, ErrInvalidNoObjectWeight},
		{"init std null", func(c *Config) { c.InitStd = 0 }, ErrInvalidInitStd},
		{"xavier std negativ", func(c *Config) { c.InitXavierStd = -0.1 }, ErrInvalidInitStd},
		{"dice weight negativ", func(c *Config) { c.DiceWeight = -1 }, ErrInvalidLossWeight},
		{"mask weight negativ", func(c *Config) { c.MaskWeight = -0.5 }, ErrInvalidLossWeight},
		{"num labels null", func(c *Config) { c.NumLabels = 0 }, ErrInvalidNumLabels},
		{"backbone-fehler propagiert", func(c *Config) { c.Backbone.(*swin.Config).ImageSize = 0 }, swin.ErrInvalidImageSize},
		{"decoder-fehler propagiert", func(c *Config) { c.Decoder.DModel = 0 }, detr.ErrInvalidDModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)

			err := c.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestFromMap testet das Einlesen einer config.json Map
func TestFromMap(t *testing.T) {
	raw := `{
		"architectures": ["MaskFormerForInstanceSegmentation"],
		"backbone_config": {
			"model_type": "swin",
			"image_size": 384,
			"embed_dim": 128,
			"depths": [2, 2, 18, 2],
			"num_heads": [4, 8, 16, 32],
			"window_size": 12,
			"drop_path_rate": 0.3
		},
		"detr_config": {
			"model_type": "detr",
			"d_model": 256,
			"encoder_layers": 6,
			"decoder_layers": 6
		},
		"mask_feature_size": 256,
		"no_object_weight": 0.1,
		"num_labels": 19,
		"model_type": "maskformer",
		"transformers_version": "4.17.0.dev0"
	}`

	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("JSON-Fixture ungueltig: %v", err)
	}

	c, err := FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	if c.NumLabels != 19 {
		t.Errorf("NumLabels = %d, want 19", c.NumLabels)
	}
	// Nicht gesetzte Skalare behalten ihre Default-Werte
	if c.MaskWeight != 20.0 || c.FPNFeatureSize != 256 {
		t.Errorf("Defaults = %v/%d, want 20/256", c.MaskWeight, c.FPNFeatureSize)
	}

	backbone, ok := c.Backbone.(*swin.Config)
	if !ok {
		t.Fatalf("Backbone hat Typ %T, want *swin.Config", c.Backbone)
	}
	if backbone.EmbedDim != 128 || backbone.WindowSize != 12 {
		t.Errorf("Backbone = %d/%d, want 128/12", backbone.EmbedDim, backbone.WindowSize)
	}

	if c.Decoder.DModel != 256 {
		t.Errorf("Decoder DModel = %d, want 256", c.Decoder.DModel)
	}

	// Unbekannte Keys landen in den Zusatzfeldern
	if _, ok := c.Extra("transformers_version"); !ok {
		t.Error("Extra(transformers_version) fehlt")
	}
	if _, ok := c.Extra("architectures"); !ok {
		t.Error("Extra(architectures) fehlt")
	}
	// Abgeleitete und feste Keys nicht
	if _, ok := c.Extra("model_type"); ok {
		t.Error("model_type darf kein Zusatzfeld sein")
	}
}

// TestFromMapUnsupportedBackbone testet die Ablehnung fremder Backbone-Typen
func TestFromMapUnsupportedBackbone(t *testing.T) {
	_, err := FromMap(map[string]any{
		"backbone_config": map[string]any{"model_type": "resnet"},
	})
	if !errors.Is(err, ErrUnsupportedBackbone) {
		t.Fatalf("err = %v, want ErrUnsupportedBackbone", err)
	}
	if !strings.Contains(err.Error(), "please use one of") {
		t.Errorf("Fehlermeldung nennt die unterstuetzten Typen nicht: %v", err)
	}
	if !strings.Contains(err.Error(), "swin") {
		t.Errorf("Fehlermeldung nennt swin nicht: %v", err)
	}

	// Tippfehler bekommen einen Korrektur-Vorschlag
	_, err = FromMap(map[string]any{
		"backbone_config": map[string]any{"model_type": "swim"},
	})
	if !errors.Is(err, ErrUnsupportedBackbone) {
		t.Fatalf("err = %v, want ErrUnsupportedBackbone", err)
	}
	if !strings.Contains(err.Error(), `did you mean "swin"?`) {
		t.Errorf("Fehlermeldung ohne Vorschlag: %v", err)
	}
}

// TestFromMapFehler testet fehlende Typen und falsche Feld-Typen
func TestFromMapFehler(t *testing.T) {
	tests := []struct {
		name    string
		m       map[string]any
		wantErr error
	}{
		{
			"backbone ohne model_type",
			map[string]any{"backbone_config": map[string]any{"image_size": 224.0}},
			ErrMissingBackboneType,
		},
		{
			"model_type kein string",
			map[string]any{"backbone_config": map[string]any{"model_type": 7.0}},
			ErrMissingBackboneType,
		},
		{
			"ungueltiger backbone-wert",
			map[string]any{"backbone_config": map[string]any{"model_type": "swin", "image_size": 0.0}},
			swin.ErrInvalidImageSize,
		},
		{
			"ungueltiger skalar",
			map[string]any{"num_labels": 0.0},
			ErrInvalidNumLabels,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.m)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("FromMap() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Falsche Typen der Container-Felder
	_, err := FromMap(map[string]any{"backbone_config": "swin"})
	if err == nil || !strings.Contains(err.Error(), "must be a mapping") {
		t.Errorf("backbone_config als String nicht abgelehnt: %v", err)
	}
	_, err = FromMap(map[string]any{"num_labels": "viele"})
	if err == nil || !strings.Contains(err.Error(), "must be of type integer") {
		t.Errorf("num_labels als String nicht abgelehnt: %v", err)
	}
}

// TestHiddenSizeAlias testet das Attribut-Mapping hidden_size -> mask_feature_size
func TestHiddenSizeAlias(t *testing.T) {
	c, err := FromMap(map[string]any{"hidden_size": 512.0})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if c.MaskFeatureSize != 512 || c.HiddenSize() != 512 {
		t.Errorf("MaskFeatureSize = %d, HiddenSize = %d, want 512/512",
			c.MaskFeatureSize, c.HiddenSize())
	}

	// Das explizite Feld hat Vorrang vor dem Alias
	c, err = FromMap(map[string]any{"hidden_size": 512.0, "mask_feature_size": 300.0})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if c.MaskFeatureSize != 300 {
		t.Errorf("MaskFeatureSize = %d, want 300", c.MaskFeatureSize)
	}
}

// TestFromBackboneAndDecoderConfigs testet den Bau aus Teil-Konfigurationen
func TestFromBackboneAndDecoderConfigs(t *testing.T) {
	c, err := FromBackboneAndDecoderConfigs(swin.Default(), detr.Default(), WithNumLabels(21))
	if err != nil {
		t.Fatalf("FromBackboneAndDecoderConfigs: %v", err)
	}

	backbone, ok := c.Backbone.(*swin.Config)
	if !ok {
		t.Fatalf("Backbone hat Typ %T, want *swin.Config", c.Backbone)
	}
	if backbone.EmbedDim != 96 || backbone.ImageSize != 224 {
		t.Errorf("Backbone = %d/%d, want 96/224", backbone.EmbedDim, backbone.ImageSize)
	}
	if c.NumLabels != 21 {
		t.Errorf("NumLabels = %d, want 21", c.NumLabels)
	}

	// Eine Konfiguration ohne registrierten Backbone-Typ wird abgelehnt,
	// auch wenn sie das Config-Interface erfuellt
	_, err = FromBackboneAndDecoderConfigs(detr.Default(), detr.Default())
	if !errors.Is(err, ErrUnsupportedBackbone) {
		t.Errorf("detr als Backbone: err = %v, want ErrUnsupportedBackbone", err)
	}

	// Nil-Eingaben
	if _, err := FromBackboneAndDecoderConfigs(nil, detr.Default()); !errors.Is(err, ErrNilBackbone) {
		t.Errorf("nil backbone: err = %v, want ErrNilBackbone", err)
	}
	if _, err := FromBackboneAndDecoderConfigs(swin.Default(), nil); !errors.Is(err, ErrNilDecoder) {
		t.Errorf("nil decoder: err = %v, want ErrNilDecoder", err)
	}
}

// TestToMapRoundTrip testet ToMap -> FromMap auf Verlustfreiheit
func TestToMapRoundTrip(t *testing.T) {
	orig, err := New(
		WithNumLabels(19),
		WithNoObjectWeight(0.05),
		WithExtra("transformers_version", "4.17.0.dev0"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m := orig.ToMap()
	if m["model_type"] != "maskformer" {
		t.Errorf("model_type = %v, want maskformer", m["model_type"])
	}
	if m["num_attention_heads"] != 8 || m["num_hidden_layers"] != 6 {
		t.Errorf("abgeleitete Werte = %v/%v, want 8/6",
			m["num_attention_heads"], m["num_hidden_layers"])
	}
	bm, ok := m["backbone_config"].(map[string]any)
	if !ok || bm["model_type"] != "swin" {
		t.Fatalf("backbone_config = %v", m["backbone_config"])
	}

	decoded, err := FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if diff := cmp.Diff(orig.ToMap(), decoded.ToMap()); diff != "" {
		t.Errorf("Round-Trip veraendert die Map (-orig +decoded):\n%s", diff)
	}
}

// TestJSONRoundTrip testet Marshal/Unmarshal inkl. Reihenfolge der Zusatzfelder
func TestJSONRoundTrip(t *testing.T) {
	// Zusatzfelder bewusst nicht in alphabetischer Reihenfolge
	raw := `{
		"backbone_config": {"model_type": "swin"},
		"detr_config": {"model_type": "detr"},
		"num_labels": 150,
		"transformers_version": "4.17.0.dev0",
		"torch_dtype": "float32",
		"architectures": ["MaskFormerForInstanceSegmentation"]
	}`

	var c Config
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	first, err := json.Marshal(&c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// Dokument-Reihenfolge der Zusatzfelder bleibt erhalten
	iVersion := bytes.Index(first, []byte(`"transformers_version"`))
	iDtype := bytes.Index(first, []byte(`"torch_dtype"`))
	iArch := bytes.Index(first, []byte(`"architectures"`))
	if iVersion < 0 || iDtype < 0 || iArch < 0 {
		t.Fatalf("Zusatzfelder fehlen im Output: %s", first)
	}
	if !(iVersion < iDtype && iDtype < iArch) {
		t.Errorf("Reihenfolge der Zusatzfelder nicht erhalten: %s", first)
	}
	// model_type steht am Ende
	if !bytes.HasSuffix(first, []byte(`"model_type":"maskformer"}`)) {
		t.Errorf("model_type nicht am Ende: %s", first)
	}

	// Zweiter Durchlauf muss Byte-identisch sein
	var c2 Config
	if err := json.Unmarshal(first, &c2); err != nil {
		t.Fatalf("Unmarshal(first): %v", err)
	}
	second, err := json.Marshal(&c2)
	if err != nil {
		t.Fatalf("Marshal(c2): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Round-Trip nicht stabil:\nfirst  = %s\nsecond = %s", first, second)
	}
}

// TestUnmarshalUngueltig testet die Fehler-Weitergabe beim JSON-Einlesen
func TestUnmarshalUngueltig(t *testing.T) {
	var c Config
	err := json.Unmarshal([]byte(`{"backbone_config": {"model_type": "beit"}}`), &c)
	if !errors.Is(err, ErrUnsupportedBackbone) {
		t.Errorf("err = %v, want ErrUnsupportedBackbone", err)
	}
}

// TestKVExport testet den flachen Metadaten-Export
func TestKVExport(t *testing.T) {
	kv := Default().KV()

	if kv.Architecture() != "maskformer" {
		t.Errorf("Architecture = %q, want maskformer", kv.Architecture())
	}
	if kv.ParameterCount() == 0 {
		t.Error("ParameterCount = 0")
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"fpn_feature_size", kv.Int("fpn_feature_size"), 256},
		{"num_labels", kv.Int("num_labels"), 150},
		{"loss.mask_weight", kv.Float("loss.mask_weight"), 20.0},
		{"attention.head_count", kv.Int("attention.head_count"), 8},
		{"block_count", kv.Int("block_count"), 6},
		{"embedding_length", kv.Int("embedding_length"), 256},
		{"backbone.architecture", kv.String("backbone.architecture"), "swin"},
		{"backbone.embed_dim", kv.Int("backbone.embed_dim"), 128},
		{"backbone.block_count", kv.Int("backbone.block_count"), 24},
		{"decoder.architecture", kv.String("decoder.architecture"), "detr"},
		{"decoder.embedding_length", kv.Int("decoder.embedding_length"), 256},
		{"decoder.encoder.block_count", kv.Int("decoder.encoder.block_count"), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

// TestParameterCount testet die Groessenordnung der Parameter-Schaetzung
func TestParameterCount(t *testing.T) {
	count := Default().ParameterCount()

	// maskformer-swin-base liegt bei rund 102M Parametern
	if count < 95_000_000 || count > 120_000_000 {
		t.Errorf("ParameterCount = %d, want 95M..120M", count)
	}
}

// TestExtras testet Zugriff und Reihenfolge der Zusatzfelder
func TestExtras(t *testing.T) {
	c := Default()

	if _, ok := c.Extra("id2label"); ok {
		t.Error("Extra auf leerer Konfiguration liefert einen Wert")
	}

	c.SetExtra("zebra", 1)
	c.SetExtra("alpha", 2)

	var keys []string
	for key := range c.Extras() {
		keys = append(keys, key)
	}
	if len(keys) != 2 || keys[0] != "zebra" || keys[1] != "alpha" {
		t.Errorf("Extras-Reihenfolge = %v, want [zebra alpha]", keys)
	}
}
