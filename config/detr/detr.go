// Package detr - Konfiguration des DETR Transformer-Decoders.
//
// MODUL: detr
// ZWECK: Typisierte Konfiguration fuer den DETR Encoder-Decoder-Stack
// INPUT: Functional Options oder Konfigurations-Maps (config.json)
// OUTPUT: Validierte DETR-Konfiguration
// NEBENEFFEKTE: Keine (rein speicherbasiert)
// ABHAENGIGKEITEN: config (Interfaces, KV, ApplyMap)
// HINWEISE: DETR ist kein Backbone und registriert sich nicht in der Registry
package detr

import (
	"errors"

	"github.com/maskform/maskform/config"
)

const modelType = "detr"

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	ErrInvalidDModel            = errors.New("config/detr: d_model must be > 0 and divisible by the attention heads")
	ErrInvalidLayers            = errors.New("config/detr: encoder and decoder layer counts must be > 0")
	ErrInvalidFFNDim            = errors.New("config/detr: feed forward dims must be > 0")
	ErrInvalidNumQueries        = errors.New("config/detr: num_queries must be > 0")
	ErrInvalidDropout           = errors.New("config/detr: dropout rates must be within [0, 1]")
	ErrInvalidActivation        = errors.New("config/detr: invalid activation function, must be relu, gelu, silu or gelu_new")
	ErrInvalidPositionEmbedding = errors.New("config/detr: invalid position embedding type, must be sine or learned")
	ErrInvalidCoefficient       = errors.New("config/detr: matcher costs and loss coefficients must be >= 0")
)

// ============================================================================
// Config - DETR-Konfiguration
// ============================================================================

// Config enthaelt alle Hyperparameter des DETR Encoder-Decoder-Stacks.
// Die json-Tags entsprechen den Keys der config.json des Hubs.
type Config struct {
	DModel                int     `json:"d_model"`
	EncoderLayers         int     `json:"encoder_layers"`
	DecoderLayers         int     `json:"decoder_layers"`
	EncoderAttentionHeads int     `json:"encoder_attention_heads"`
	DecoderAttentionHeads int     `json:"decoder_attention_heads"`
	EncoderFFNDim         int     `json:"encoder_ffn_dim"`
	DecoderFFNDim         int     `json:"decoder_ffn_dim"`
	NumQueries            int     `json:"num_queries"`
	Dropout               float64 `json:"dropout"`
	AttentionDropout      float64 `json:"attention_dropout"`
	ActivationDropout     float64 `json:"activation_dropout"`
	ActivationFunction    string  `json:"activation_function"`
	InitStd               float64 `json:"init_std"`
	InitXavierStd         float64 `json:"init_xavier_std"`
	AuxiliaryLoss         bool    `json:"auxiliary_loss"`
	PositionEmbeddingType string  `json:"position_embedding_type"`
	Backbone              string  `json:"backbone"`
	Dilation              bool    `json:"dilation"`
	ClassCost             float64 `json:"class_cost"`
	BBoxCost              float64 `json:"bbox_cost"`
	GIoUCost              float64 `json:"giou_cost"`
	MaskLossCoefficient   float64 `json:"mask_loss_coefficient"`
	DiceLossCoefficient   float64 `json:"dice_loss_coefficient"`
	BBoxLossCoefficient   float64 `json:"bbox_loss_coefficient"`
	GIoULossCoefficient   float64 `json:"giou_loss_coefficient"`
	EOSCoefficient        float64 `json:"eos_coefficient"`
}

// ============================================================================
// Konstruktoren
// ============================================================================

// Default gibt die Standard-Konfiguration zurueck.
// Entspricht dem facebook/detr-resnet-50 Checkpoint.
func Default() *Config {
	return &Config{
		DModel:                256,
		EncoderLayers:         6,
		DecoderLayers:         6,
		EncoderAttentionHeads: 8,
		DecoderAttentionHeads: 8,
		EncoderFFNDim:         2048,
		DecoderFFNDim:         2048,
		NumQueries:            100,
		Dropout:               0.1,
		AttentionDropout:      0.0,
		ActivationDropout:     0.0,
		ActivationFunction:    "relu",
		InitStd:               0.02,
		InitXavierStd:         1.0,
		AuxiliaryLoss:         false,
		PositionEmbeddingType: "sine",
		Backbone:              "resnet50",
		Dilation:              false,
		ClassCost:             1,
		BBoxCost:              5,
		GIoUCost:              2,
		MaskLossCoefficient:   1,
		DiceLossCoefficient:   1,
		BBoxLossCoefficient:   5,
		GIoULossCoefficient:   2,
		EOSCoefficient:        0.1,
	}
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
	if c.DModel <= 0 ||
		c.EncoderAttentionHeads <= 0 || c.DModel%c.EncoderAttentionHeads != 0 ||
		c.DecoderAttentionHeads <= 0 || c.DModel%c.DecoderAttentionHeads != 0 {
		return ErrInvalidDModel
	}
	if c.EncoderLayers <= 0 || c.DecoderLayers <= 0 {
		return ErrInvalidLayers
	}
	if c.EncoderFFNDim <= 0 || c.DecoderFFNDim <= 0 {
		return ErrInvalidFFNDim
	}
	if c.NumQueries <= 0 {
		return ErrInvalidNumQueries
	}

	// Dropout-Raten pruefen
	for _, p := range []float64{c.Dropout, c.AttentionDropout, c.ActivationDropout, c.EOSCoefficient} {
		if p < 0 || p > 1 {
			return ErrInvalidDropout
		}
	}

	switch c.ActivationFunction {
	case "relu", "gelu", "silu", "gelu_new":
		// gueltig
	default:
		return ErrInvalidActivation
	}

	switch c.PositionEmbeddingType {
	case "sine", "learned":
		// gueltig
	default:
		return ErrInvalidPositionEmbedding
	}

	// Matcher-Kosten und Loss-Gewichte pruefen
	for _, w := range []float64{
		c.ClassCost, c.BBoxCost, c.GIoUCost,
		c.MaskLossCoefficient, c.DiceLossCoefficient,
		c.BBoxLossCoefficient, c.GIoULossCoefficient,
	} {
		if w < 0 {
			return ErrInvalidCoefficient
		}
	}

	return nil
}

// ToMap serialisiert die Konfiguration in eine Map im config.json Format.
func (c *Config) ToMap() map[string]any {
	return map[string]any{
		"model_type":              modelType,
		"d_model":                 c.DModel,
		"encoder_layers":          c.EncoderLayers,
		"decoder_layers":          c.DecoderLayers,
		"encoder_attention_heads": c.EncoderAttentionHeads,
		"decoder_attention_heads": c.DecoderAttentionHeads,
		"encoder_ffn_dim":         c.EncoderFFNDim,
		"decoder_ffn_dim":         c.DecoderFFNDim,
		"num_queries":             c.NumQueries,
		"dropout":                 c.Dropout,
		"attention_dropout":       c.AttentionDropout,
		"activation_dropout":      c.ActivationDropout,
		"activation_function":     c.ActivationFunction,
		"init_std":                c.InitStd,
		"init_xavier_std":         c.InitXavierStd,
		"auxiliary_loss":          c.AuxiliaryLoss,
		"position_embedding_type": c.PositionEmbeddingType,
		"backbone":                c.Backbone,
		"dilation":                c.Dilation,
		"class_cost":              c.ClassCost,
		"bbox_cost":               c.BBoxCost,
		"giou_cost":               c.GIoUCost,
		"mask_loss_coefficient":   c.MaskLossCoefficient,
		"dice_loss_coefficient":   c.DiceLossCoefficient,
		"bbox_loss_coefficient":   c.BBoxLossCoefficient,
		"giou_loss_coefficient":   c.GIoULossCoefficient,
		"eos_coefficient":         c.EOSCoefficient,
	}
}

// KV exportiert die Konfiguration als flache Metadaten-Map.
func (c *Config) KV() config.KV {
	return config.KV{
		"general.architecture":              modelType,
		"general.parameter_count":           c.ParameterCount(),
		"detr.embedding_length":             c.DModel,
		"detr.encoder.block_count":          c.EncoderLayers,
		"detr.decoder.block_count":          c.DecoderLayers,
		"detr.encoder.attention.head_count": c.EncoderAttentionHeads,
		"detr.decoder.attention.head_count": c.DecoderAttentionHeads,
		"detr.encoder.feed_forward_length":  c.EncoderFFNDim,
		"detr.decoder.feed_forward_length":  c.DecoderFFNDim,
		"detr.num_queries":                  c.NumQueries,
		"detr.dropout":                      c.Dropout,
		"detr.attention_dropout":            c.AttentionDropout,
		"detr.activation_dropout":           c.ActivationDropout,
		"detr.activation_function":          c.ActivationFunction,
		"detr.init_std":                     c.InitStd,
		"detr.init_xavier_std":              c.InitXavierStd,
		"detr.auxiliary_loss":               c.AuxiliaryLoss,
		"detr.position_embedding_type":      c.PositionEmbeddingType,
		"detr.backbone":                     c.Backbone,
		"detr.dilation":                     c.Dilation,
		"detr.matcher.class_cost":           c.ClassCost,
		"detr.matcher.bbox_cost":            c.BBoxCost,
		"detr.matcher.giou_cost":            c.GIoUCost,
		"detr.loss.mask_coefficient":        c.MaskLossCoefficient,
		"detr.loss.dice_coefficient":        c.DiceLossCoefficient,
		"detr.loss.bbox_coefficient":        c.BBoxLossCoefficient,
		"detr.loss.giou_coefficient":        c.GIoULossCoefficient,
		"detr.loss.eos_coefficient":         c.EOSCoefficient,
	}
}

// ============================================================================
// Abgeleitete Groessen
// ============================================================================

// HiddenSize gibt die Modell-Dimension zurueck.
// hidden_size ist in Hub-Konfigurationen ein Alias fuer d_model.
func (c *Config) HiddenSize() int {
	return c.DModel
}

// NumAttentionHeads gibt die Encoder-Attention-Heads zurueck.
func (c *Config) NumAttentionHeads() int {
	return c.EncoderAttentionHeads
}

// NumHiddenLayers gibt die Encoder-Layer-Anzahl zurueck.
func (c *Config) NumHiddenLayers() int {
	return c.EncoderLayers
}

// ParameterCount schaetzt die Parameter-Anzahl des Transformer-Stacks.
// Der Conv-Backbone des DETR ist nicht enthalten, nur Encoder,
// Decoder und Query-Embeddings.
func (c *Config) ParameterCount() uint64 {
	d := c.DModel

	// Encoder-Layer: Self-Attention + FFN + Normen
	attention := 4*d*d + 4*d
	encFFN := 2*d*c.EncoderFFNDim + c.EncoderFFNDim + d
	encLayer := attention + encFFN + 4*d

	// Decoder-Layer: Self- und Cross-Attention + FFN + Normen
	decFFN := 2*d*c.DecoderFFNDim + c.DecoderFFNDim + d
	decLayer := 2*attention + decFFN + 6*d

	total := c.EncoderLayers*encLayer + c.DecoderLayers*decLayer + c.NumQueries*d
	return uint64(total)
}
