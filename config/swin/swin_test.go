// swin_test.go - Unit Tests fuer die Swin-Konfiguration
//
// Testet Defaults, Presets, Validierung, Map-Serialisierung und
// die abgeleiteten Groessen.
package swin

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/maskform/maskform/config"
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
		{"image_size", c.ImageSize, 224},
		{"patch_size", c.PatchSize, 4},
		{"num_channels", c.NumChannels, 3},
		{"embed_dim", c.EmbedDim, 96},
		{"window_size", c.WindowSize, 7},
		{"mlp_ratio", c.MLPRatio, 4.0},
		{"qkv_bias", c.QKVBias, true},
		{"hidden_dropout_prob", c.HiddenDropoutProb, 0.0},
		{"attention_probs_dropout_prob", c.AttentionProbsDropoutProb, 0.0},
		{"drop_path_rate", c.DropPathRate, 0.1},
		{"hidden_act", c.HiddenAct, "gelu"},
		{"use_absolute_embeddings", c.UseAbsoluteEmbeddings, false},
		{"patch_norm", c.PatchNorm, true},
		{"initializer_range", c.InitializerRange, 0.02},
		{"layer_norm_eps", c.LayerNormEps, 1e-5},
		{"encoder_stride", c.EncoderStride, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if !slices.Equal(c.Depths, []int{2, 2, 6, 2}) {
		t.Errorf("Depths = %v, want [2 2 6 2]", c.Depths)
	}
	if !slices.Equal(c.NumHeads, []int{3, 6, 12, 24}) {
		t.Errorf("NumHeads = %v, want [3 6 12 24]", c.NumHeads)
	}
	if c.ModelType() != "swin" {
		t.Errorf("ModelType() = %q, want %q", c.ModelType(), "swin")
	}
}

// TestBase384 testet das swin-base Preset
func TestBase384(t *testing.T) {
	c := Base384()

	if err := c.Validate(); err != nil {
		t.Fatalf("Base384() sollte gueltig sein: %v", err)
	}
	if c.ImageSize != 384 || c.EmbedDim != 128 || c.WindowSize != 12 {
		t.Errorf("Base384() = {ImageSize: %d, EmbedDim: %d, WindowSize: %d}", c.ImageSize, c.EmbedDim, c.WindowSize)
	}
	if !slices.Equal(c.Depths, []int{2, 2, 18, 2}) {
		t.Errorf("Depths = %v, want [2 2 18 2]", c.Depths)
	}
	if !slices.Equal(c.NumHeads, []int{4, 8, 16, 32}) {
		t.Errorf("NumHeads = %v, want [4 8 16 32]", c.NumHeads)
	}
	if c.DropPathRate != 0.3 {
		t.Errorf("DropPathRate = %v, want 0.3", c.DropPathRate)
	}
}

// TestNewMitOptions testet die Konstruktion mit Options
func TestNewMitOptions(t *testing.T) {
	c, err := New(
		WithImageSize(384),
		WithEmbedDim(128),
		WithDepths([]int{2, 2, 18, 2}),
		WithNumHeads([]int{4, 8, 16, 32}),
		WithWindowSize(12),
		WithDropPathRate(0.3),
	)
	if err != nil {
		t.Fatalf("New fehlgeschlagen: %v", err)
	}

	if diff := cmp.Diff(Base384(), c); diff != "" {
		t.Errorf("New entspricht nicht Base384 (-want +got):\n%s", diff)
	}
}

// TestValidateFehler testet die Validierungs-Fehler
func TestValidateFehler(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"image size null", func(c *Config) { c.ImageSize = 0 }, ErrInvalidImageSize},
		{"patch teilt nicht", func(c *Config) { c.ImageSize = 225 }, ErrInvalidPatchSize},
		{"patch size negativ", func(c *Config) { c.PatchSize = -1 }, ErrInvalidPatchSize},
		{"keine kanaele", func(c *Config) { c.NumChannels = 0 }, ErrInvalidNumChannels},
		{"embed dim null", func(c *Config) { c.EmbedDim = 0 }, ErrInvalidEmbedDim},
		{"stages ungleich", func(c *Config) { c.NumHeads = []int{3, 6} }, ErrStageMismatch},
		{"keine stages", func(c *Config) { c.Depths = nil; c.NumHeads = nil }, ErrStageMismatch},
		{"heads null", func(c *Config) { c.NumHeads = []int{0, 6, 12, 24} }, ErrInvalidNumHeads},
		{"heads negativ", func(c *Config) { c.NumHeads = []int{3, 6, -12, 24} }, ErrInvalidNumHeads},
		{"window null", func(c *Config) { c.WindowSize = 0 }, ErrInvalidWindowSize},
		{"mlp ratio null", func(c *Config) { c.MLPRatio = 0 }, ErrInvalidMLPRatio},
		{"dropout negativ", func(c *Config) { c.HiddenDropoutProb = -0.1 }, ErrInvalidDropout},
		{"dropout ueber eins", func(c *Config) { c.AttentionProbsDropoutProb = 1.5 }, ErrInvalidDropout},
		{"drop path ueber eins", func(c *Config) { c.DropPathRate = 2 }, ErrInvalidDropout},
		{"unbekannte aktivierung", func(c *Config) { c.HiddenAct = "tanh" }, ErrInvalidHiddenAct},
		{"layer norm eps null", func(c *Config) { c.LayerNormEps = 0 }, ErrInvalidLayerNormEps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestFromMap testet das Einlesen einer config.json Map
func TestFromMap(t *testing.T) {
	// JSON-Dekodierung liefert float64 fuer Zahlen und []any fuer Arrays
	raw := `{
		"model_type": "swin",
		"image_size": 384,
		"embed_dim": 128,
		"depths": [2, 2, 18, 2],
		"num_heads": [4, 8, 16, 32],
		"window_size": 12,
		"drop_path_rate": 0.3,
		"transformers_version": "4.17.0"
	}`
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatal(err)
	}

	c, err := FromMap(m)
	if err != nil {
		t.Fatalf("FromMap fehlgeschlagen: %v", err)
	}

	if diff := cmp.Diff(Base384(), c); diff != "" {
		t.Errorf("FromMap entspricht nicht Base384 (-want +got):\n%s", diff)
	}
}

// TestFromMapUngueltig testet dass ungueltige Maps abgewiesen werden
func TestFromMapUngueltig(t *testing.T) {
	_, err := FromMap(map[string]any{"image_size": -10.0})
	if !errors.Is(err, ErrInvalidImageSize) {
		t.Errorf("FromMap = %v, want ErrInvalidImageSize", err)
	}

	_, err = FromMap(map[string]any{"image_size": "gross"})
	if err == nil {
		t.Error("FromMap sollte bei falschem Typ fehlschlagen")
	}
}

// TestFromMapTeilweiseUeberschreibung testet dass Maps, die nur einzelne
// Felder ueberschreiben, mit den Default-Werten der uebrigen Felder
// gueltig bleiben. Hub-Checkpoints setzen haeufig embed_dim ohne die
// num_heads mitzuliefern.
func TestFromMapTeilweiseUeberschreibung(t *testing.T) {
	c, err := FromMap(map[string]any{"embed_dim": 128.0})
	if err != nil {
		t.Fatalf("FromMap fehlgeschlagen: %v", err)
	}
	if c.EmbedDim != 128 {
		t.Errorf("EmbedDim = %d, want 128", c.EmbedDim)
	}
	// Default-Heads [3 6 12 24] bleiben erhalten, auch wenn 128 nicht
	// durch 3 teilbar ist
	if !slices.Equal(c.NumHeads, []int{3, 6, 12, 24}) {
		t.Errorf("NumHeads = %v, want [3 6 12 24]", c.NumHeads)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

// TestToMapRoundTrip testet ToMap -> FromMap Erhaltung
func TestToMapRoundTrip(t *testing.T) {
	orig := Base384()

	m := orig.ToMap()
	if m["model_type"] != "swin" {
		t.Errorf("ToMap model_type = %v, want swin", m["model_type"])
	}

	restored, err := FromMap(m)
	if err != nil {
		t.Fatalf("FromMap fehlgeschlagen: %v", err)
	}
	if diff := cmp.Diff(orig, restored); diff != "" {
		t.Errorf("Round-Trip Abweichung (-want +got):\n%s", diff)
	}
}

// TestAbgeleiteteGroessen testet ChannelSizes, HiddenSize und NumLayers
func TestAbgeleiteteGroessen(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		c := Default()
		if got := c.ChannelSizes(); !slices.Equal(got, []int{96, 192, 384, 768}) {
			t.Errorf("ChannelSizes() = %v", got)
		}
		if got := c.HiddenSize(); got != 768 {
			t.Errorf("HiddenSize() = %d, want 768", got)
		}
		if got := c.NumLayers(); got != 12 {
			t.Errorf("NumLayers() = %d, want 12", got)
		}
	})

	t.Run("base384", func(t *testing.T) {
		c := Base384()
		if got := c.ChannelSizes(); !slices.Equal(got, []int{128, 256, 512, 1024}) {
			t.Errorf("ChannelSizes() = %v", got)
		}
		if got := c.HiddenSize(); got != 1024 {
			t.Errorf("HiddenSize() = %d, want 1024", got)
		}
		if got := c.NumLayers(); got != 24 {
			t.Errorf("NumLayers() = %d, want 24", got)
		}
	})
}

// TestParameterCount testet die Parameter-Schaetzung gegen die
// bekannten Groessenordnungen der Checkpoints
func TestParameterCount(t *testing.T) {
	// swin-tiny hat ~28M Parameter
	if got := Default().ParameterCount(); got < 25_000_000 || got > 30_000_000 {
		t.Errorf("Default().ParameterCount() = %d, want ~28M", got)
	}

	// swin-base hat ~88M Parameter
	if got := Base384().ParameterCount(); got < 80_000_000 || got > 95_000_000 {
		t.Errorf("Base384().ParameterCount() = %d, want ~88M", got)
	}
}

// TestKVExport testet den flachen Metadaten-Export
func TestKVExport(t *testing.T) {
	kv := Base384().KV()

	if got := kv.Architecture(); got != "swin" {
		t.Errorf("Architecture() = %q, want swin", got)
	}
	if got := kv.Int("embed_dim"); got != 128 {
		t.Errorf("Int(embed_dim) = %d, want 128", got)
	}
	if got := kv.Ints("depths"); !slices.Equal(got, []int{2, 2, 18, 2}) {
		t.Errorf("Ints(depths) = %v", got)
	}
	if got := kv.Int("block_count"); got != 24 {
		t.Errorf("Int(block_count) = %d, want 24", got)
	}
	if kv.ParameterCount() == 0 {
		t.Error("ParameterCount() sollte > 0 sein")
	}
}

// TestRegistrierung testet die automatische init()-Registrierung
func TestRegistrierung(t *testing.T) {
	if !config.HasInDefault("swin") {
		t.Fatal("swin sollte in der DefaultRegistry registriert sein")
	}

	b, err := config.BuildFromDefault("swin", map[string]any{"embed_dim": 128.0})
	if err != nil {
		t.Fatalf("BuildFromDefault fehlgeschlagen: %v", err)
	}
	if b.ModelType() != "swin" {
		t.Errorf("ModelType() = %q, want swin", b.ModelType())
	}
	if !slices.Equal(b.ChannelSizes(), []int{128, 256, 512, 1024}) {
		t.Errorf("ChannelSizes() = %v", b.ChannelSizes())
	}
}
