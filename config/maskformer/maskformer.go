// Package maskformer - Konfiguration der MaskFormer Segmentierungs-Architektur.
//
// MODUL: maskformer
// ZWECK: Zentrale Konfiguration aus Backbone, Transformer-Decoder und Kopf-Hyperparametern
// INPUT: Functional Options, Konfigurations-Maps (config.json) oder fertige Teil-Konfigurationen
// OUTPUT: Validierte MaskFormer-Konfiguration inkl. Map-, JSON- und KV-Serialisierung
// NEBENEFFEKTE: Keine (rein speicherbasiert)
// ABHAENGIGKEITEN: config (Registry, KV, ApplyMap), config/swin (Default-Backbone), config/detr (Decoder)
// HINWEISE: Unterstuetzte Backbone-Typen ergeben sich aus der Default-Registry
package maskformer

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/maskform/maskform/config"
	"github.com/maskform/maskform/config/detr"
	"github.com/maskform/maskform/config/swin"
	"github.com/maskform/maskform/internal/orderedmap"
)

const modelType = "maskformer"

// DefaultHubID ist der Referenz-Checkpoint, dessen Werte die
// Standard-Konfiguration liefert (ADE20k-150, Swin-Base Backbone).
const DefaultHubID = "Francesco/maskformer-swin-base-ade"

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	ErrUnsupportedBackbone   = errors.New("config/maskformer: backbone not supported")
	ErrMissingBackboneType   = errors.New("config/maskformer: backbone config missing model_type")
	ErrNilBackbone           = errors.New("config/maskformer: backbone must not be nil")
	ErrNilDecoder            = errors.New("config/maskformer: decoder must not be nil")
	ErrInvalidFeatureSize    = errors.New("config/maskformer: feature sizes must be > 0")
	ErrInvalidNoObjectWeight = errors.New("config/maskformer: no_object_weight must be within [0, 1]")
	ErrInvalidInitStd        = errors.New("config/maskformer: init std values must be > 0")
	ErrInvalidLossWeight     = errors.New("config/maskformer: loss weights must be >= 0")
	ErrInvalidNumLabels      = errors.New("config/maskformer: num_labels must be > 0")
)

// ============================================================================
// Config - MaskFormer-Konfiguration
// ============================================================================

// Config buendelt die Hyperparameter des MaskFormer-Kopfes mit den
// Konfigurationen des Backbones und des Transformer-Decoders.
// Die json-Tags entsprechen den Keys der config.json des Hubs;
// use_auxilary_loss behaelt die historische Schreibweise des
// Wire-Formats bei.
type Config struct {
	FPNFeatureSize     int     `json:"fpn_feature_size"`
	MaskFeatureSize    int     `json:"mask_feature_size"`
	NoObjectWeight     float64 `json:"no_object_weight"`
	UseAuxiliaryLoss   bool    `json:"use_auxilary_loss"`
	InitStd            float64 `json:"init_std"`
	InitXavierStd      float64 `json:"init_xavier_std"`
	DiceWeight         float64 `json:"dice_weight"`
	CrossEntropyWeight float64 `json:"cross_entropy_weight"`
	MaskWeight         float64 `json:"mask_weight"`
	NumLabels          int     `json:"num_labels"`

	// Backbone ist der hierarchische Encoder unter dem Pixel-Decoder.
	// Wird bei FromMap ueber die Registry aus backbone_config aufgeloest.
	Backbone config.Backbone `json:"-"`

	// Decoder ist der DETR Transformer-Stack (detr_config).
	Decoder *detr.Config `json:"-"`

	// extras sammelt unbekannte Keys der Quell-Map, damit Hub-Felder
	// wie id2label oder transformers_version einen Round-Trip
	// ueberleben. Die Reihenfolge bleibt erhalten.
	extras *orderedmap.Map[string, any]
}

// scalarKeys enthaelt die json-Tags der Skalar-Felder von Config.
var scalarKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, field := range reflect.VisibleFields(reflect.TypeOf(Config{})) {
		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag != "" && tag != "-" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}()

// reservedKey meldet, ob ein Key von einem festen Feld oder einem
// abgeleiteten Wert belegt ist und daher nie als Zusatzfeld gefuehrt wird.
func reservedKey(key string) bool {
	switch key {
	case "model_type", "backbone_config", "detr_config",
		"num_attention_heads", "num_hidden_layers", "hidden_size":
		return true
	}
	_, ok := scalarKeys[key]
	return ok
}

// ============================================================================
// Konstruktoren
// ============================================================================

// Default gibt die Standard-Konfiguration zurueck. Die Werte entsprechen
// dem Francesco/maskformer-swin-base-ade Checkpoint: Swin-Base Backbone
// mit 384px Eingaben, DETR-Decoder und 150 ADE20k-Klassen.
func Default() *Config {
	return &Config{
		FPNFeatureSize:     256,
		MaskFeatureSize:    256,
		NoObjectWeight:     0.1,
		UseAuxiliaryLoss:   false,
		InitStd:            0.02,
		InitXavierStd:      1.0,
		DiceWeight:         1.0,
		CrossEntropyWeight: 1.0,
		MaskWeight:         20.0,
		NumLabels:          150,
		Backbone:           swin.Base384(),
		Decoder:            detr.Default(),
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
// (JSON-dekodierter config.json Inhalt). backbone_config wird ueber die
// Registry aufgeloest, ein nicht unterstuetzter Backbone-Typ wird
// abgelehnt. detr_config wird direkt dekodiert. Unbekannte Keys bleiben
// als Zusatzfelder erhalten, fehlende Keys behalten ihre Default-Werte.
// Die Eingabe-Map wird nicht veraendert.
func FromMap(m map[string]any) (*Config, error) {
	return fromMapOrdered(m, slices.Sorted(maps.Keys(m)))
}

// fromMapOrdered ist FromMap mit expliziter Key-Reihenfolge fuer die
// Zusatzfelder. UnmarshalJSON reicht hier die Dokument-Reihenfolge durch.
func fromMapOrdered(m map[string]any, order []string) (*Config, error) {
	c := Default()

	fields := make(map[string]any, len(m))
	extras := orderedmap.New[string, any]()

	for _, key := range order {
		val := m[key]
		switch key {
		case "model_type":
			// Typ-Bezeichner der Map selbst, kein Feld

		case "num_attention_heads", "num_hidden_layers":
			// Abgeleitete Werte, werden aus der Decoder-Konfiguration berechnet

		case "hidden_size":
			// Attribut-Alias der Hub-Konfigurationen fuer mask_feature_size
			if _, present := m["mask_feature_size"]; !present {
				fields["mask_feature_size"] = val
			}

		case "backbone_config":
			if val == nil {
				continue
			}
			bm, ok := val.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("config/maskformer: field %q must be a mapping", key)
			}
			backbone, err := resolveBackbone(bm)
			if err != nil {
				return nil, err
			}
			c.Backbone = backbone

		case "detr_config":
			if val == nil {
				continue
			}
			dm, ok := val.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("config/maskformer: field %q must be a mapping", key)
			}
			// Der Decoder ist fest DETR; ein abweichender model_type wird
			// nur gemeldet, die uebrigen Felder werden trotzdem uebernommen.
			if mt, ok := dm["model_type"].(string); ok && mt != "detr" {
				slog.Warn("decoder config declares foreign model type", "model_type", mt)
			}
			decoder, err := detr.FromMap(dm)
			if err != nil {
				return nil, err
			}
			c.Decoder = decoder

		default:
			if _, known := scalarKeys[key]; known {
				fields[key] = val
			} else {
				extras.Set(key, val)
			}
		}
	}

	if err := config.ApplyMap(c, fields); err != nil {
		return nil, err
	}
	if extras.Len() > 0 {
		c.extras = extras
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromBackboneAndDecoderConfigs erstellt eine Konfiguration aus einer
// fertigen Backbone- und Decoder-Konfiguration. Das Backbone durchlaeuft
// dieselbe Registry-Pruefung wie bei FromMap, ein nicht unterstuetzter
// Typ wird also auch hier abgelehnt.
func FromBackboneAndDecoderConfigs(backbone config.Config, decoder *detr.Config, opts ...Option) (*Config, error) {
	if backbone == nil {
		return nil, ErrNilBackbone
	}
	if decoder == nil {
		return nil, ErrNilDecoder
	}

	resolved, err := resolveBackbone(backbone.ToMap())
	if err != nil {
		return nil, err
	}

	c := Default()
	c.Backbone = resolved
	d := *decoder
	c.Decoder = &d
	c.Apply(opts...)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveBackbone loest eine backbone_config Map ueber die Registry in
// eine typisierte Backbone-Konfiguration auf. Der model_type Key wird
// dabei entnommen, die uebrigen Felder gehen an die Factory.
func resolveBackbone(m map[string]any) (config.Backbone, error) {
	rawType, ok := m["model_type"]
	if !ok {
		return nil, ErrMissingBackboneType
	}

	backboneType, ok := rawType.(string)
	if !ok || backboneType == "" {
		return nil, fmt.Errorf("%w: model_type must be a non-empty string", ErrMissingBackboneType)
	}

	if !config.HasInDefault(backboneType) {
		supported := strings.Join(config.NamesFromDefault(), ",")
		if suggestion, ok := config.DefaultRegistry.Suggest(backboneType); ok {
			return nil, fmt.Errorf("%w: %s, please use one of %s (did you mean %q?)",
				ErrUnsupportedBackbone, backboneType, supported, suggestion)
		}
		return nil, fmt.Errorf("%w: %s, please use one of %s",
			ErrUnsupportedBackbone, backboneType, supported)
	}

	fields := maps.Clone(m)
	delete(fields, "model_type")
	return config.BuildFromDefault(backboneType, fields)
}

// ============================================================================
// Config Interface Implementation
// ============================================================================

// ModelType gibt den Architektur-Bezeichner zurueck.
func (c *Config) ModelType() string {
	return modelType
}

// Validate prueft alle Felder auf Konsistenz und validiert die
// eingebetteten Teil-Konfigurationen mit.
func (c *Config) Validate() error {
	if c.Backbone == nil {
		return ErrNilBackbone
	}
	if c.Decoder == nil {
		return ErrNilDecoder
	}

	if c.FPNFeatureSize <= 0 || c.MaskFeatureSize <= 0 {
		return ErrInvalidFeatureSize
	}
	if c.NoObjectWeight < 0 || c.NoObjectWeight > 1 {
		return ErrInvalidNoObjectWeight
	}
	if c.InitStd <= 0 || c.InitXavierStd <= 0 {
		return ErrInvalidInitStd
	}
	for _, w := range []float64{c.DiceWeight, c.CrossEntropyWeight, c.MaskWeight} {
		if w < 0 {
			return ErrInvalidLossWeight
		}
	}
	if c.NumLabels <= 0 {
		return ErrInvalidNumLabels
	}

	if err := c.Backbone.Validate(); err != nil {
		return err
	}
	return c.Decoder.Validate()
}

// ToMap serialisiert die Konfiguration in eine Map im config.json
// Format. Die Teil-Konfigurationen liegen unter backbone_config und
// detr_config, die abgeleiteten Werte num_attention_heads und
// num_hidden_layers werden mit ausgegeben, Zusatzfelder ebenfalls.
func (c *Config) ToMap() map[string]any {
	m := make(map[string]any, 16)
	if c.extras != nil {
		for key, val := range c.extras.All() {
			if reservedKey(key) {
				continue
			}
			m[key] = val
		}
	}

	m["model_type"] = modelType
	m["fpn_feature_size"] = c.FPNFeatureSize
	m["mask_feature_size"] = c.MaskFeatureSize
	m["no_object_weight"] = c.NoObjectWeight
	m["use_auxilary_loss"] = c.UseAuxiliaryLoss
	m["init_std"] = c.InitStd
	m["init_xavier_std"] = c.InitXavierStd
	m["dice_weight"] = c.DiceWeight
	m["cross_entropy_weight"] = c.CrossEntropyWeight
	m["mask_weight"] = c.MaskWeight
	m["num_labels"] = c.NumLabels
	m["num_attention_heads"] = c.NumAttentionHeads()
	m["num_hidden_layers"] = c.NumHiddenLayers()

	if c.Backbone != nil {
		m["backbone_config"] = c.Backbone.ToMap()
	}
	if c.Decoder != nil {
		m["detr_config"] = c.Decoder.ToMap()
	}
	return m
}

// KV exportiert die Konfiguration als flache Metadaten-Map. Backbone-
// und Decoder-Metadaten haengen unter maskformer.backbone.* bzw.
// maskformer.decoder.*, der jeweilige Architektur-Praefix der
// Teil-Konfiguration wird dabei ersetzt.
func (c *Config) KV() config.KV {
	kv := config.KV{
		"general.architecture":                 modelType,
		"general.parameter_count":              c.ParameterCount(),
		"maskformer.fpn_feature_size":          c.FPNFeatureSize,
		"maskformer.mask_feature_size":         c.MaskFeatureSize,
		"maskformer.no_object_weight":          c.NoObjectWeight,
		"maskformer.use_auxiliary_loss":        c.UseAuxiliaryLoss,
		"maskformer.init_std":                  c.InitStd,
		"maskformer.init_xavier_std":           c.InitXavierStd,
		"maskformer.loss.dice_weight":          c.DiceWeight,
		"maskformer.loss.cross_entropy_weight": c.CrossEntropyWeight,
		"maskformer.loss.mask_weight":          c.MaskWeight,
		"maskformer.num_labels":                c.NumLabels,
		"maskformer.attention.head_count":      c.NumAttentionHeads(),
		"maskformer.block_count":               c.NumHiddenLayers(),
		"maskformer.embedding_length":          c.HiddenSize(),
	}

	if c.Backbone != nil {
		mergeKV(kv, "maskformer.backbone", c.Backbone.KV())
	}
	if c.Decoder != nil {
		mergeKV(kv, "maskformer.decoder", c.Decoder.KV())
	}
	return kv
}

// mergeKV haengt die Metadaten einer Teil-Konfiguration unter einem
// neuen Praefix in dst ein. Der Architektur-Praefix der Quelle
// (z.B. "swin.") wird durch prefix ersetzt, die general.* Keys werden
// zu architecture und parameter_count unter dem Praefix.
func mergeKV(dst config.KV, prefix string, src config.KV) {
	arch := src.Architecture()
	for key := range src.Keys() {
		val := src.Value(key)
		switch key {
		case "general.architecture":
			dst[prefix+".architecture"] = val
		case "general.parameter_count":
			dst[prefix+".parameter_count"] = val
		default:
			if rest, ok := strings.CutPrefix(key, arch+"."); ok {
				dst[prefix+"."+rest] = val
			} else {
				dst[prefix+"."+key] = val
			}
		}
	}
}

// ============================================================================
// Zusatzfelder
// ============================================================================

// Extra liefert ein Zusatzfeld der Quell-Konfiguration (z.B. id2label).
func (c *Config) Extra(key string) (any, bool) {
	if c.extras == nil {
		return nil, false
	}
	return c.extras.Get(key)
}

// SetExtra setzt ein Zusatzfeld, das bei der Serialisierung erhalten
// bleibt. Keys fester Felder haben bei der Serialisierung Vorrang.
func (c *Config) SetExtra(key string, value any) {
	if c.extras == nil {
		c.extras = orderedmap.New[string, any]()
	}
	c.extras.Set(key, value)
}

// Extras iteriert ueber alle Zusatzfelder in stabiler Reihenfolge.
func (c *Config) Extras() iter.Seq2[string, any] {
	if c.extras == nil {
		return func(yield func(string, any) bool) {}
	}
	return c.extras.All()
}

// ============================================================================
// Abgeleitete Groessen
// ============================================================================

// NumAttentionHeads gibt die Attention-Heads des Decoder-Encoders zurueck.
func (c *Config) NumAttentionHeads() int {
	if c.Decoder == nil {
		return 0
	}
	return c.Decoder.NumAttentionHeads()
}

// NumHiddenLayers gibt die Encoder-Layer-Anzahl des Decoders zurueck.
func (c *Config) NumHiddenLayers() int {
	if c.Decoder == nil {
		return 0
	}
	return c.Decoder.NumHiddenLayers()
}

// HiddenSize gibt die Masken-Feature-Groesse zurueck.
// hidden_size ist in Hub-Konfigurationen ein Alias fuer mask_feature_size.
func (c *Config) HiddenSize() int {
	return c.MaskFeatureSize
}

// ParameterCount schaetzt die Parameter-Anzahl des Gesamt-Modells:
// Backbone, Pixel-Decoder (FPN), Transformer-Decoder sowie Klassen-
// und Masken-Kopf.
func (c *Config) ParameterCount() uint64 {
	var count uint64

	if c.Backbone != nil {
		count += c.Backbone.ParameterCount()

		// Pixel-Decoder: laterale 1x1-Projektionen und 3x3-Convs je Stage
		f := c.FPNFeatureSize
		for _, ch := range c.Backbone.ChannelSizes() {
			count += uint64(ch*f + f)
			count += uint64(9*f*f + f)
		}
		count += uint64(9*f*c.MaskFeatureSize + c.MaskFeatureSize)
	}

	if c.Decoder != nil {
		count += c.Decoder.ParameterCount()

		// Klassen-Kopf: hidden -> num_labels + "no object"
		d := c.Decoder.HiddenSize()
		count += uint64(d*(c.NumLabels+1) + c.NumLabels + 1)

		// Masken-Embedding-MLP: drei Schichten bis mask_feature_size
		count += uint64(2*(d*d+d) + d*c.MaskFeatureSize + c.MaskFeatureSize)
	}

	return count
}
