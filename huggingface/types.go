// types.go - Gemeinsame Typen fuer das huggingface Paket
//
// Enthaelt Modell-Typ-Konstanten, die Strukturen fuer config.json und
// preprocessor_config.json sowie den Fehler-Typ des Pakets.
package huggingface

import (
	"bytes"
	"encoding/json"
)

// Modell-Typen, die bei der Erkennung von config.json Dateien auftreten
const (
	ModelTypeMaskFormer  = "maskformer"
	ModelTypeMask2Former = "mask2former"
	ModelTypeOneFormer   = "oneformer"
	ModelTypeSegFormer   = "segformer"
	ModelTypeSwin        = "swin"
	ModelTypeDetr        = "detr"
)

// Standard-Werte fuer die Bildvorverarbeitung
// Mean/Std sind die ueblichen ImageNet-Normalisierungswerte
var (
	DefaultImageMean = []float32{0.485, 0.456, 0.406}
	DefaultImageStd  = []float32{0.229, 0.224, 0.225}
)

const (
	DefaultImageSize   = 512  // shortest edge der ADE20k-Checkpoints
	DefaultMaxSize     = 2048 // longest edge
	DefaultSizeDivisor = 32   // Eingaben werden auf Vielfache hiervon gepolstert
	DefaultIgnoreIndex = 255
	DefaultNumLabels   = 150 // ADE20k Klassenanzahl
	DefaultFeatureSize = 256 // fpn_feature_size/mask_feature_size Standard
)

// Datensaetze, auf denen die bekannten Checkpoints trainiert wurden
const (
	DatasetADE20K       = "ade20k"
	DatasetCOCOPanoptic = "coco-panoptic"
)

// ConfigInfo enthaelt die fuer die Erkennung relevanten Felder einer
// config.json. Raw haelt das vollstaendige Dokument fuer die
// anschliessende Konstruktion einer Konfiguration.
type ConfigInfo struct {
	ModelID             string            `json:"-"`
	ModelType           string            `json:"model_type"`
	Architectures       []string          `json:"architectures"`
	BackboneConfig      map[string]any    `json:"backbone_config"`
	DecoderConfig       map[string]any    `json:"detr_config"`
	NumLabels           int               `json:"num_labels"`
	ID2Label            map[string]string `json:"id2label"`
	FPNFeatureSize      int               `json:"fpn_feature_size"`
	MaskFeatureSize     int               `json:"mask_feature_size"`
	TorchDtype          string            `json:"torch_dtype"`
	TransformersVersion string            `json:"transformers_version"`
	Raw                 map[string]any    `json:"-"`
}

// PreprocessorConfig enthaelt die Felder einer preprocessor_config.json.
// Aeltere Checkpoints verwenden die Schreibweisen reduce_labels,
// size_divisibility und max_size, neuere do_reduce_labels, size_divisor
// und size.longest_edge; beide Formen werden gelesen.
type PreprocessorConfig struct {
	ImageProcessorType   string           `json:"image_processor_type"`
	FeatureExtractorType string           `json:"feature_extractor_type"`
	ProcessorClass       string           `json:"processor_class"`
	DoResize             bool             `json:"do_resize"`
	DoRescale            bool             `json:"do_rescale"`
	DoNormalize          bool             `json:"do_normalize"`
	DoReduceLabels       bool             `json:"do_reduce_labels"`
	ReduceLabels         bool             `json:"reduce_labels"`
	Size                 *ImageSizeConfig `json:"size"`
	MaxSize              int              `json:"max_size"`
	SizeDivisor          int              `json:"size_divisor"`
	SizeDivisibility     int              `json:"size_divisibility"`
	IgnoreIndex          *int             `json:"ignore_index"`
	Resample             int              `json:"resample"`
	RescaleFactor        float32          `json:"rescale_factor"`
	ImageMean            []float32        `json:"image_mean"`
	ImageStd             []float32        `json:"image_std"`
}

// ImageSizeConfig repraesentiert einen size-Block einer
// preprocessor_config.json.
type ImageSizeConfig struct {
	Height       int `json:"height"`
	Width        int `json:"width"`
	ShortestEdge int `json:"shortest_edge"`
	LongestEdge  int `json:"longest_edge"`
}

// UnmarshalJSON akzeptiert neben dem Objekt-Format auch die alte
// Skalar-Schreibweise ("size": 512), die als shortest_edge gelesen wird.
func (s *ImageSizeConfig) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] != '{' {
		var edge float64
		if err := json.Unmarshal(trimmed, &edge); err != nil {
			return err
		}
		*s = ImageSizeConfig{ShortestEdge: int(edge)}
		return nil
	}
	type plain ImageSizeConfig
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = ImageSizeConfig(p)
	return nil
}

// KnownModel beschreibt einen bekannten Checkpoint auf dem Hub
type KnownModel struct {
	Pattern        string   // exakte Model-ID oder Glob-Pattern
	ModelType      string   // Architektur des Checkpoints
	Dataset        string   // Trainings-Datensatz
	NumLabels      int      // Anzahl Label-Klassen des Datensatzes
	BackbonePreset string   // Name des Swin-Presets
	Description    string   // Kurzbeschreibung
	Tags           []string // Suchbare Tags
}

// HuggingFaceError ist der Fehler-Typ des Pakets mit Operations-Kontext
type HuggingFaceError struct {
	Op      string // Operation die fehlgeschlagen ist
	ModelID string // Betroffenes Modell (optional)
	Err     error  // Zugrundeliegender Fehler
}

// Error implementiert das error Interface
func (e *HuggingFaceError) Error() string {
	msg := "huggingface " + e.Op
	if e.ModelID != "" {
		msg += " [" + e.ModelID + "]"
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap gibt den zugrundeliegenden Fehler zurueck
func (e *HuggingFaceError) Unwrap() error { return e.Err }
