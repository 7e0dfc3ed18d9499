// Package swin - Konfiguration der Swin-Transformer Backbone-Architektur.
//
// MODUL: swin
// ZWECK: Typisierte Konfiguration fuer hierarchische Swin-Encoder
// INPUT: Functional Options oder Konfigurations-Maps (config.json)
// OUTPUT: Validierte Swin-Konfiguration mit abgeleiteten Groessen
// NEBENEFFEKTE: Keine (rein speicherbasiert)
// ABHAENGIGKEITEN: config (Interfaces, KV, ApplyMap)
// HINWEISE: Registriert sich via init() in register.go unter "swin"
package swin

import (
	"errors"
	"slices"

	"github.com/maskform/maskform/config"
)

const modelType = "swin"

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	ErrInvalidImageSize    = errors.New("config/swin: image size must be > 0")
	ErrInvalidPatchSize    = errors.New("config/swin: patch size must be > 0 and divide the image size")
	ErrInvalidNumChannels  = errors.New("config/swin: channel count must be > 0")
	ErrInvalidEmbedDim     = errors.New("config/swin: embed dim must be > 0")
	ErrStageMismatch       = errors.New("config/swin: depths and num_heads must have the same non-zero length")
	ErrInvalidNumHeads     = errors.New("config/swin: num_heads must be > 0")
	ErrInvalidWindowSize   = errors.New("config/swin: window size must be > 0")
	ErrInvalidMLPRatio     = errors.New("config/swin: mlp ratio must be > 0")
	ErrInvalidDropout      = errors.New("config/swin: dropout probabilities must be within [0, 1]")
	ErrInvalidHiddenAct    = errors.New("config/swin: invalid hidden activation, must be gelu, relu, silu or gelu_new")
	ErrInvalidLayerNormEps = errors.New("config/swin: layer norm epsilon must be > 0")
)

// ============================================================================
// Config - Swin-Konfiguration
// ============================================================================

// Config enthaelt alle Hyperparameter eines Swin-Encoders.
// Die json-Tags entsprechen den Keys der config.json des Hubs.
type Config struct {
	ImageSize                 int     `json:"image_size"`
	PatchSize                 int     `json:"patch_size"`
	NumChannels               int     `json:"num_channels"`
	EmbedDim                  int     `json:"embed_dim"`
	Depths                    []int   `json:"depths"`
	NumHeads                  []int   `json:"num_heads"`
	WindowSize                int     `json:"window_size"`
	MLPRatio                  float64 `json:"mlp_ratio"`
	QKVBias                   bool    `json:"qkv_bias"`
	HiddenDropoutProb         float64 `json:"hidden_dropout_prob"`
	AttentionProbsDropoutProb float64 `json:"attention_probs_dropout_prob"`
	DropPathRate              float64 `json:"drop_path_rate"`
	HiddenAct                 string  `json:"hidden_act"`
	UseAbsoluteEmbeddings     bool    `json:"use_absolute_embeddings"`
	PatchNorm                 bool    `json:"patch_norm"`
	InitializerRange          float64 `json:"initializer_range"`
	LayerNormEps              float64 `json:"layer_norm_eps"`
	EncoderStride             int     `json:"encoder_stride"`
}

// ============================================================================
// Konstruktoren
// ============================================================================

// Default gibt die Standard-Konfiguration zurueck.
// Entspricht dem swin-tiny-patch4-window7-224 Checkpoint.
func Default() *Config {
	return &Config{
		ImageSize:                 224,
		PatchSize:                 4,
		NumChannels:               3,
		EmbedDim:                  96,
		Depths:                    []int{2, 2, 6, 2},
		NumHeads:                  []int{3, 6, 12, 24},
		WindowSize:                7,
		MLPRatio:                  4.0,
		QKVBias:                   true,
		HiddenDropoutProb:         0.0,
		AttentionProbsDropoutProb: 0.0,
		DropPathRate:              0.1,
		HiddenAct:                 "gelu",
		UseAbsoluteEmbeddings:     false,
		PatchNorm:                 true,
		InitializerRange:          0.02,
		LayerNormEps:              1e-5,
		EncoderStride:             32,
	}
}

// Base384 gibt die swin-base Konfiguration fuer 384px Eingaben zurueck.
// Entspricht dem microsoft/swin-base-patch4-window12-384-in22k Checkpoint,
// dem ueblichen Backbone fuer Segmentierungs-Koepfe.
func Base384() *Config {
	c := Default()
	c.ImageSize = 384
	c.EmbedDim = 128
	c.Depths = []int{2, 2, 18, 2}
	c.NumHeads = []int{4, 8, 16, 32}
	c.WindowSize = 12
	c.DropPathRate = 0.3
	return c
}

// Tiny384 gibt die swin-tiny Konfiguration fuer 384px Eingaben zurueck.
// Segmentierungs-Checkpoints behalten die tiny-Tiefen, skalieren aber
// die Eingabeaufloesung auf 384px.
func Tiny384() *Config {
	c := Default()
	c.ImageSize = 384
	c.DropPathRate = 0.3
	return c
}

// Small384 gibt die swin-small Konfiguration fuer 384px Eingaben zurueck.
func Small384() *Config {
	c := Tiny384()
	c.Depths = []int{2, 2, 18, 2}
	return c
}

// Large384 gibt die swin-large Konfiguration fuer 384px Eingaben zurueck.
func Large384() *Config {
	c := Base384()
	c.EmbedDim = 192
	c.NumHeads = []int{6, 12, 24, 48}
	return c
}

// New erstellt eine validierte Konfiguration aus den Standard-Werten
// und den uebergebenen Options.
func New(opts ...Option) (*Config, error) {
	c := Default()
	c.Apply(opts...)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromMap erstellt eine validierte Konfiguration aus einer Map
// (JSON-dekodierter config.json Inhalt). Unbekannte Keys werden
// ignoriert, fehlende Keys behalten ihre Default-Werte.
func FromMap(m map[string]any) (*Config, error) {
	c := Default()
	if err := config.ApplyMap(c, m); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ============================================================================
// Config Interface Implementation
// ============================================================================

// ModelType gibt den Architektur-Bezeichner zurueck.
func (c *Config) ModelType() string {
	return modelType
}

// Validate prueft alle Felder auf Konsistenz.
func (c *Config) Validate() error {
	if c.ImageSize <= 0 {
		return ErrInvalidImageSize
	}
	if c.PatchSize <= 0 || c.ImageSize%c.PatchSize != 0 {
		return ErrInvalidPatchSize
	}
	if c.NumChannels <= 0 {
		return ErrInvalidNumChannels
	}
	if c.EmbedDim <= 0 {
		return ErrInvalidEmbedDim
	}

	// Stages pruefen: depths und num_heads muessen zusammenpassen
	if len(c.Depths) == 0 || len(c.Depths) != len(c.NumHeads) {
		return ErrStageMismatch
	}
	// Nur die Stage-Anzahl muss passen. Ob die Heads die Stage-Dimension
	// teilen wird nicht erzwungen: Hub-Checkpoints ueberschreiben embed_dim
	// haeufig ohne num_heads anzufassen.
	for _, heads := range c.NumHeads {
		if heads <= 0 {
			return ErrInvalidNumHeads
		}
	}

	if c.WindowSize <= 0 {
		return ErrInvalidWindowSize
	}
	if c.MLPRatio <= 0 {
		return ErrInvalidMLPRatio
	}

	// Dropout-Raten pruefen
	for _, p := range []float64{c.HiddenDropoutProb, c.AttentionProbsDropoutProb, c.DropPathRate} {
		if p < 0 || p > 1 {
			return ErrInvalidDropout
		}
	}

	switch c.HiddenAct {
	case "gelu", "relu", "silu", "gelu_new":
		// gueltig
	default:
		return ErrInvalidHiddenAct
	}

	if c.LayerNormEps <= 0 {
		return ErrInvalidLayerNormEps
	}

	return nil
}

// ToMap serialisiert die Konfiguration in eine Map im config.json Format.
func (c *Config) ToMap() map[string]any {
	return map[string]any{
		"model_type":                   modelType,
		"image_size":                   c.ImageSize,
		"patch_size":                   c.PatchSize,
		"num_channels":                 c.NumChannels,
		"embed_dim":                    c.EmbedDim,
		"depths":                       slices.Clone(c.Depths),
		"num_heads":                    slices.Clone(c.NumHeads),
		"window_size":                  c.WindowSize,
		"mlp_ratio":                    c.MLPRatio,
		"qkv_bias":                     c.QKVBias,
		"hidden_dropout_prob":          c.HiddenDropoutProb,
		"attention_probs_dropout_prob": c.AttentionProbsDropoutProb,
		"drop_path_rate":               c.DropPathRate,
		"hidden_act":                   c.HiddenAct,
		"use_absolute_embeddings":      c.UseAbsoluteEmbeddings,
		"patch_norm":                   c.PatchNorm,
		"initializer_range":            c.InitializerRange,
		"layer_norm_eps":               c.LayerNormEps,
		"encoder_stride":               c.EncoderStride,
	}
}

// KV exportiert die Konfiguration als flache Metadaten-Map.
// block_count und embedding_length folgen dem ueblichen
// Metadaten-Schema flacher Modell-Exporte.
func (c *Config) KV() config.KV {
	return config.KV{
		"general.architecture":         modelType,
		"general.parameter_count":      c.ParameterCount(),
		"swin.image_size":              c.ImageSize,
		"swin.patch_size":              c.PatchSize,
		"swin.num_channels":            c.NumChannels,
		"swin.embed_dim":               c.EmbedDim,
		"swin.depths":                  slices.Clone(c.Depths),
		"swin.num_heads":               slices.Clone(c.NumHeads),
		"swin.window_size":             c.WindowSize,
		"swin.mlp_ratio":               c.MLPRatio,
		"swin.qkv_bias":                c.QKVBias,
		"swin.hidden_dropout_prob":     c.HiddenDropoutProb,
		"swin.attention_dropout_prob":  c.AttentionProbsDropoutProb,
		"swin.drop_path_rate":          c.DropPathRate,
		"swin.hidden_act":              c.HiddenAct,
		"swin.use_absolute_embeddings": c.UseAbsoluteEmbeddings,
		"swin.patch_norm":              c.PatchNorm,
		"swin.initializer_range":       c.InitializerRange,
		"swin.layer_norm_eps":          c.LayerNormEps,
		"swin.encoder_stride":          c.EncoderStride,
		"swin.block_count":             c.NumLayers(),
		"swin.embedding_length":        c.HiddenSize(),
		"swin.feature_channels":        c.ChannelSizes(),
	}
}

// ============================================================================
// Abgeleitete Groessen
// ============================================================================

// ChannelSizes gibt die Feature-Dimensionen der einzelnen Stages zurueck.
// Stage i arbeitet mit embed_dim * 2^i Kanaelen.
func (c *Config) ChannelSizes() []int {
	sizes := make([]int, len(c.Depths))
	for i := range c.Depths {
		sizes[i] = c.EmbedDim << i
	}
	return sizes
}

// HiddenSize gibt die Feature-Dimension der letzten Stage zurueck.
func (c *Config) HiddenSize() int {
	if len(c.Depths) == 0 {
		return c.EmbedDim
	}
	return c.EmbedDim << (len(c.Depths) - 1)
}

// NumLayers gibt die Gesamtzahl der Transformer-Bloecke zurueck.
func (c *Config) NumLayers() int {
	total := 0
	for _, d := range c.Depths {
		total += d
	}
	return total
}

// ParameterCount schaetzt die Parameter-Anzahl des Encoders.
// Deckt Patch-Embedding, Attention- und MLP-Bloecke, relative
// Positions-Bias, Normen und Patch-Merging ab.
func (c *Config) ParameterCount() uint64 {
	var count uint64

	// Patch-Embedding: Conv(num_channels -> embed_dim) + Norm
	count += uint64(c.NumChannels*c.PatchSize*c.PatchSize*c.EmbedDim + 3*c.EmbedDim)

	for i, depth := range c.Depths {
		dim := c.EmbedDim << i

		heads := 0
		if i < len(c.NumHeads) {
			heads = c.NumHeads[i]
		}
		relBias := (2*c.WindowSize - 1) * (2*c.WindowSize - 1) * heads

		attention := 4*dim*dim + 4*dim + relBias
		mlpDim := int(float64(dim) * c.MLPRatio)
		mlp := 2*dim*mlpDim + mlpDim + dim
		norms := 4 * dim

		count += uint64(depth * (attention + mlp + norms))

		// Patch-Merging zwischen den Stages: Linear(4*dim -> 2*dim) + Norm
		if i < len(c.Depths)-1 {
			count += uint64(8*dim*dim + 4*dim)
		}
	}

	return count
}
