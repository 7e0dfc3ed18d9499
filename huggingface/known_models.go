// known_models.go - Registry bekannter MaskFormer-Checkpoints
//
// Definiert die offiziellen Hub-Checkpoints mit Datensatz, Label-Anzahl
// und Backbone-Preset, sodass Konfigurationen auch ohne Hub-Zugriff
// gebaut werden koennen.
package huggingface

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/maskform/maskform/config"
	"github.com/maskform/maskform/config/maskformer"
	"github.com/maskform/maskform/config/swin"
)

// Namen der Backbone-Presets
const (
	PresetSwinTiny  = "swin-tiny"
	PresetSwinSmall = "swin-small"
	PresetSwinBase  = "swin-base"
	PresetSwinLarge = "swin-large"
)

// KnownModels enthaelt alle bekannten MaskFormer-Checkpoints.
// facebook/* sind die offiziellen Releases, Francesco/* der Community-
// Mirror, unter dem die Architektur urspruenglich veroeffentlicht wurde.
var KnownModels = map[string]KnownModel{
	// ADE20k semantische Segmentierung (150 Klassen)
	"facebook/maskformer-swin-tiny-ade": newADEModel("facebook/maskformer-swin-tiny-ade", PresetSwinTiny,
		"MaskFormer Swin-Tiny auf ADE20k"),
	"facebook/maskformer-swin-small-ade": newADEModel("facebook/maskformer-swin-small-ade", PresetSwinSmall,
		"MaskFormer Swin-Small auf ADE20k"),
	"facebook/maskformer-swin-base-ade": newADEModel("facebook/maskformer-swin-base-ade", PresetSwinBase,
		"MaskFormer Swin-Base auf ADE20k"),
	"facebook/maskformer-swin-large-ade": newADEModel("facebook/maskformer-swin-large-ade", PresetSwinLarge,
		"MaskFormer Swin-Large auf ADE20k"),

	// COCO panoptische Segmentierung (133 Klassen)
	"facebook/maskformer-swin-tiny-coco": newCOCOModel("facebook/maskformer-swin-tiny-coco", PresetSwinTiny,
		"MaskFormer Swin-Tiny auf COCO panoptic"),
	"facebook/maskformer-swin-small-coco": newCOCOModel("facebook/maskformer-swin-small-coco", PresetSwinSmall,
		"MaskFormer Swin-Small auf COCO panoptic"),
	"facebook/maskformer-swin-base-coco": newCOCOModel("facebook/maskformer-swin-base-coco", PresetSwinBase,
		"MaskFormer Swin-Base auf COCO panoptic"),
	"facebook/maskformer-swin-large-coco": newCOCOModel("facebook/maskformer-swin-large-coco", PresetSwinLarge,
		"MaskFormer Swin-Large auf COCO panoptic"),

	// Der Checkpoint, dessen Defaults die Standard-Konfiguration bilden
	maskformer.DefaultHubID: newADEModel(maskformer.DefaultHubID, PresetSwinBase,
		"MaskFormer Swin-Base auf ADE20k (Erstveroeffentlichung)"),
	"Francesco/maskformer-*": newADEModel("Francesco/maskformer-*", PresetSwinBase,
		"Community-Mirror der MaskFormer-Checkpoints"),
}

// Factory-Funktionen fuer bekannte Checkpoints
func newADEModel(pattern, preset, desc string) KnownModel {
	return KnownModel{
		Pattern: pattern, ModelType: ModelTypeMaskFormer,
		Dataset: DatasetADE20K, NumLabels: 150, BackbonePreset: preset,
		Description: desc,
		Tags:        []string{"segmentation", "semantic-segmentation", "ade20k"},
	}
}

func newCOCOModel(pattern, preset, desc string) KnownModel {
	return KnownModel{
		Pattern: pattern, ModelType: ModelTypeMaskFormer,
		Dataset: DatasetCOCOPanoptic, NumLabels: 133, BackbonePreset: preset,
		Description: desc,
		Tags:        []string{"segmentation", "panoptic-segmentation", "coco"},
	}
}

// LookupKnownModel sucht einen bekannten Checkpoint anhand der Model-ID
func LookupKnownModel(modelID string) (*KnownModel, bool) {
	if model, ok := KnownModels[modelID]; ok {
		return &model, true
	}
	for pattern, model := range KnownModels {
		if matchPattern(pattern, modelID) {
			return &model, true
		}
	}
	return nil, false
}

// BackboneForPreset baut die Swin-Konfiguration eines benannten Presets
func BackboneForPreset(preset string) (config.Backbone, bool) {
	switch preset {
	case PresetSwinTiny:
		return swin.Tiny384(), true
	case PresetSwinSmall:
		return swin.Small384(), true
	case PresetSwinBase:
		return swin.Base384(), true
	case PresetSwinLarge:
		return swin.Large384(), true
	default:
		return nil, false
	}
}

// PresetConfig baut die Konfiguration eines bekannten Checkpoints aus
// Backbone-Preset und Label-Anzahl, ohne den Hub zu kontaktieren.
func PresetConfig(modelID string) (*maskformer.Config, bool) {
	model, found := LookupKnownModel(modelID)
	if !found {
		return nil, false
	}
	backbone, ok := BackboneForPreset(model.BackbonePreset)
	if !ok {
		return nil, false
	}
	cfg, err := maskformer.New(
		maskformer.WithBackbone(backbone),
		maskformer.WithNumLabels(model.NumLabels),
	)
	if err != nil {
		return nil, false
	}
	return cfg, true
}

// matchPattern prueft ob eine Model-ID einem Glob-Pattern entspricht
func matchPattern(pattern, modelID string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == modelID
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(modelID, strings.TrimSuffix(pattern, "*"))
	}
	parts := strings.Split(pattern, "*")
	if len(parts) == 2 {
		return strings.HasPrefix(modelID, parts[0]) && strings.HasSuffix(modelID, parts[1])
	}
	matched, _ := filepath.Match(pattern, modelID)
	return matched
}

// GetAllKnownPatterns gibt alle registrierten Patterns sortiert zurueck
func GetAllKnownPatterns() []string {
	patterns := make([]string, 0, len(KnownModels))
	for p := range KnownModels {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// GetModelsByDataset gibt alle bekannten Checkpoints eines Datensatzes zurueck
func GetModelsByDataset(dataset string) []KnownModel {
	var models []KnownModel
	for _, m := range KnownModels {
		if m.Dataset == dataset {
			models = append(models, m)
		}
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Pattern < models[j].Pattern })
	return models
}

// GetModelsByTag gibt alle bekannten Checkpoints mit einem Tag zurueck
func GetModelsByTag(tag string) []KnownModel {
	var models []KnownModel
	for _, m := range KnownModels {
		for _, t := range m.Tags {
			if t == tag {
				models = append(models, m)
				break
			}
		}
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Pattern < models[j].Pattern })
	return models
}

// IsKnownModel prueft ob eine Model-ID bekannt ist
func IsKnownModel(modelID string) bool {
	_, found := LookupKnownModel(modelID)
	return found
}

// KnownDatasets gibt die Datensaetze der bekannten Checkpoints zurueck
func KnownDatasets() []string {
	return []string{DatasetADE20K, DatasetCOCOPanoptic}
}
