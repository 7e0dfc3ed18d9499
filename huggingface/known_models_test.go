// known_models_test.go - Unit Tests fuer die Registry bekannter Checkpoints
//
// Testet LookupKnownModel, die Preset-Aufloesung und die Offline-
// Konstruktion via PresetConfig.
package huggingface

import (
	"testing"

	"github.com/maskform/maskform/config/maskformer"
)

// TestLookupKnownModel testet die Suche nach bekannten Checkpoints
func TestLookupKnownModel(t *testing.T) {
	tests := []struct {
		modelID        string
		expectFound    bool
		expectedPreset string
		expectedLabels int
	}{
		{"facebook/maskformer-swin-tiny-ade", true, PresetSwinTiny, 150},
		{"facebook/maskformer-swin-small-ade", true, PresetSwinSmall, 150},
		{"facebook/maskformer-swin-base-ade", true, PresetSwinBase, 150},
		{"facebook/maskformer-swin-large-ade", true, PresetSwinLarge, 150},
		{"facebook/maskformer-swin-base-coco", true, PresetSwinBase, 133},
		{"facebook/maskformer-swin-large-coco", true, PresetSwinLarge, 133},
		{maskformer.DefaultHubID, true, PresetSwinBase, 150},
		// Pattern-Treffer ueber den Community-Mirror
		{"Francesco/maskformer-swin-tiny-ade", true, PresetSwinBase, 150},
		{"openai/clip-vit-base-patch32", false, "", 0},
		{"unknown/random-model", false, "", 0},
		{"", false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			model, found := LookupKnownModel(tt.modelID)
			if found != tt.expectFound {
				t.Fatalf("found = %v, erwartet %v", found, tt.expectFound)
			}
			if !found {
				return
			}
			if model.ModelType != ModelTypeMaskFormer {
				t.Errorf("ModelType = %q", model.ModelType)
			}
			if model.BackbonePreset != tt.expectedPreset {
				t.Errorf("BackbonePreset = %q, erwartet %q", model.BackbonePreset, tt.expectedPreset)
			}
			if model.NumLabels != tt.expectedLabels {
				t.Errorf("NumLabels = %d, erwartet %d", model.NumLabels, tt.expectedLabels)
			}
		})
	}
}

// TestBackboneForPreset testet die Aufloesung der Swin-Presets
func TestBackboneForPreset(t *testing.T) {
	tests := []struct {
		preset   string
		embedDim int
	}{
		{PresetSwinTiny, 96},
		{PresetSwinSmall, 96},
		{PresetSwinBase, 128},
		{PresetSwinLarge, 192},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			backbone, ok := BackboneForPreset(tt.preset)
			if !ok {
				t.Fatalf("Preset %q nicht aufloesbar", tt.preset)
			}
			if backbone.ModelType() != "swin" {
				t.Errorf("ModelType = %q", backbone.ModelType())
			}
			if got := backbone.ChannelSizes()[0]; got != tt.embedDim {
				t.Errorf("embed_dim = %d, erwartet %d", got, tt.embedDim)
			}
		})
	}

	if _, ok := BackboneForPreset("resnet-50"); ok {
		t.Error("Unbekanntes Preset sollte nicht aufloesbar sein")
	}
}

// TestPresetConfig testet die Offline-Konstruktion bekannter Checkpoints
func TestPresetConfig(t *testing.T) {
	cfg, ok := PresetConfig("facebook/maskformer-swin-large-coco")
	if !ok {
		t.Fatal("PresetConfig sollte den Checkpoint kennen")
	}
	if cfg.NumLabels != 133 {
		t.Errorf("NumLabels = %d, erwartet 133", cfg.NumLabels)
	}
	if cfg.Backbone.ChannelSizes()[0] != 192 {
		t.Errorf("Backbone embed_dim = %d, erwartet 192", cfg.Backbone.ChannelSizes()[0])
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Preset-Konfiguration ungueltig: %v", err)
	}

	if _, ok := PresetConfig("unknown/random-model"); ok {
		t.Error("Unbekannte Model-ID sollte keine Konfiguration liefern")
	}
}

// TestMatchPattern testet das Glob-Matching der Registry
func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, modelID string
		expected         bool
	}{
		{"facebook/maskformer-swin-base-ade", "facebook/maskformer-swin-base-ade", true},
		{"facebook/maskformer-swin-base-ade", "facebook/maskformer-swin-base-coco", false},
		{"Francesco/maskformer-*", "Francesco/maskformer-swin-base-ade", true},
		{"Francesco/maskformer-*", "facebook/maskformer-swin-base-ade", false},
		{"facebook/*-ade", "facebook/maskformer-swin-tiny-ade", true},
		{"facebook/*-ade", "facebook/maskformer-swin-tiny-coco", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.modelID, func(t *testing.T) {
			if got := matchPattern(tt.pattern, tt.modelID); got != tt.expected {
				t.Errorf("matchPattern(%q, %q) = %v, erwartet %v", tt.pattern, tt.modelID, got, tt.expected)
			}
		})
	}
}

// TestGetModelsByDataset testet die Datensatz-Filterung
func TestGetModelsByDataset(t *testing.T) {
	ade := GetModelsByDataset(DatasetADE20K)
	coco := GetModelsByDataset(DatasetCOCOPanoptic)

	if len(ade) == 0 || len(coco) == 0 {
		t.Fatalf("Erwartet Checkpoints fuer beide Datensaetze, erhalten %d/%d", len(ade), len(coco))
	}
	for _, m := range ade {
		if m.NumLabels != 150 {
			t.Errorf("%s: NumLabels = %d, erwartet 150", m.Pattern, m.NumLabels)
		}
	}
	for _, m := range coco {
		if m.NumLabels != 133 {
			t.Errorf("%s: NumLabels = %d, erwartet 133", m.Pattern, m.NumLabels)
		}
	}

	// Sortierung nach Pattern ist stabil fuer die Tabellen-Ausgabe
	for i := 1; i < len(ade); i++ {
		if ade[i-1].Pattern > ade[i].Pattern {
			t.Errorf("Liste nicht sortiert: %q > %q", ade[i-1].Pattern, ade[i].Pattern)
		}
	}
}

// TestGetModelsByTag testet die Tag-Suche
func TestGetModelsByTag(t *testing.T) {
	panoptic := GetModelsByTag("panoptic-segmentation")
	if len(panoptic) == 0 {
		t.Fatal("Erwartet Checkpoints mit panoptic-segmentation Tag")
	}
	for _, m := range panoptic {
		if m.Dataset != DatasetCOCOPanoptic {
			t.Errorf("%s: Dataset = %q", m.Pattern, m.Dataset)
		}
	}

	if models := GetModelsByTag("object-detection"); len(models) != 0 {
		t.Errorf("Unbekannter Tag sollte leer sein, erhalten %d", len(models))
	}
}

// TestKnownDatasets testet die Datensatz-Liste
func TestKnownDatasets(t *testing.T) {
	datasets := KnownDatasets()
	if len(datasets) != 2 {
		t.Fatalf("Erwartet 2 Datensaetze, erhalten %v", datasets)
	}
	if !IsKnownModel("facebook/maskformer-swin-base-ade") {
		t.Error("Offizieller Checkpoint sollte bekannt sein")
	}
	if IsKnownModel("google/vit-base-patch16-224") {
		t.Error("Fremder Checkpoint sollte unbekannt sein")
	}
}
