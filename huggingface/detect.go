// detect.go - Architektur-Erkennung aus config.json Dateien
//
// Erkennt die Modell-Architektur anhand von model_type und architectures
// und prueft die transformers-Versionsangabe eines Checkpoints.
package huggingface

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/mod/semver"
)

// MinTransformersVersion ist die aelteste transformers-Version, deren
// MaskFormer-Checkpoints das hier erwartete config.json Layout schreiben.
const MinTransformersVersion = "4.17.0"

// Fehler-Definitionen
var (
	ErrConfigNotFound      = errors.New("config.json nicht gefunden")
	ErrInvalidConfig       = errors.New("ungueltige config.json Struktur")
	ErrUnknownModelType    = errors.New("unbekannter model_type")
	ErrNoBackboneConfig    = errors.New("keine backbone_config gefunden")
	ErrIncompatibleVersion = errors.New("transformers-version zu alt")
)

// DetectModelType erkennt die Architektur aus einer config.json Datei.
// Gibt den normalisierten Typ-String zurueck (z.B. "maskformer", "swin").
func DetectModelType(configPath string) (string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &HuggingFaceError{Op: "detect", Err: ErrConfigNotFound}
		}
		return "", &HuggingFaceError{Op: "detect", Err: fmt.Errorf("lesen: %w", err)}
	}

	info, err := ParseConfig(data)
	if err != nil {
		return "", err
	}
	return normalizeModelType(info), nil
}

// ParseConfig parst die rohen JSON-Bytes einer config.json in ConfigInfo.
// Das vollstaendige Dokument bleibt in Raw erhalten.
func ParseConfig(data []byte) (*ConfigInfo, error) {
	var info ConfigInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, &HuggingFaceError{Op: "parse", Err: fmt.Errorf("%w: %v", ErrInvalidConfig, err)}
	}
	if info.ModelType == "" && len(info.Architectures) == 0 {
		return nil, &HuggingFaceError{Op: "parse", Err: ErrInvalidConfig}
	}
	if err := json.Unmarshal(data, &info.Raw); err != nil {
		return nil, &HuggingFaceError{Op: "parse", Err: fmt.Errorf("%w: %v", ErrInvalidConfig, err)}
	}
	return &info, nil
}

// GetBackboneConfig extrahiert das Backbone-Mapping aus einer ConfigInfo.
// Ist das Dokument selbst ein reiner Backbone-Checkpoint (z.B. ein
// standalone Swin), wird das Top-Level-Dokument zurueckgegeben.
func GetBackboneConfig(info *ConfigInfo) (map[string]any, error) {
	if info == nil {
		return nil, &HuggingFaceError{Op: "backbone_config", Err: errors.New("nil")}
	}
	if info.BackboneConfig != nil {
		return info.BackboneConfig, nil
	}
	if isBackboneOnlyModel(info) {
		return info.Raw, nil
	}
	return nil, &HuggingFaceError{Op: "backbone_config", ModelID: info.ModelID, Err: ErrNoBackboneConfig}
}

// normalizeModelType konvertiert model_type in einen internen Typ-String.
func normalizeModelType(info *ConfigInfo) string {
	modelType := strings.ToLower(info.ModelType)

	// Direkte Mappings inkl. Alias-Schreibweisen aelterer Checkpoints
	typeMap := map[string]string{
		"maskformer": ModelTypeMaskFormer, "mask_former": ModelTypeMaskFormer,
		"mask2former": ModelTypeMask2Former, "oneformer": ModelTypeOneFormer,
		"segformer": ModelTypeSegFormer,
		"swin":      ModelTypeSwin, "maskformer-swin": ModelTypeSwin,
		"detr": ModelTypeDetr,
	}
	if t, ok := typeMap[modelType]; ok {
		return t
	}

	// Aus Architectures ableiten
	for _, arch := range info.Architectures {
		archLower := strings.ToLower(arch)
		switch {
		case strings.Contains(archLower, "mask2former"):
			return ModelTypeMask2Former
		case strings.Contains(archLower, "maskformer"):
			return ModelTypeMaskFormer
		case strings.Contains(archLower, "oneformer"):
			return ModelTypeOneFormer
		case strings.Contains(archLower, "segformer"):
			return ModelTypeSegFormer
		case strings.Contains(archLower, "swin"):
			return ModelTypeSwin
		case strings.Contains(archLower, "detr"):
			return ModelTypeDetr
		}
	}
	if modelType != "" {
		return modelType
	}
	return "unknown"
}

// isBackboneOnlyModel prueft ob das Dokument ein reiner Backbone-Checkpoint
// ohne Segmentierungs-Kopf ist.
func isBackboneOnlyModel(info *ConfigInfo) bool {
	if containsAny(strings.ToLower(info.ModelType), "swin", "resnet", "convnext", "focalnet") {
		return true
	}
	for _, arch := range info.Architectures {
		if containsAny(strings.ToLower(arch), "backbone", "imageclass") {
			return true
		}
	}
	return false
}

// containsAny prueft ob str mindestens einen der Substrings enthaelt.
func containsAny(str string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(str, sub) {
			return true
		}
	}
	return false
}

// DetectFromDirectory erkennt die Architektur aus einem Modell-Verzeichnis.
func DetectFromDirectory(dirPath string) (string, *ConfigInfo, error) {
	configPath := dirPath + "/config.json"
	modelType, err := DetectModelType(configPath)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return modelType, nil, nil
	}
	info, err := ParseConfig(data)
	if err != nil {
		return modelType, nil, nil
	}
	return modelType, info, nil
}

// IsSegmentationConfig prueft ob eine ConfigInfo ein Segmentierungs-Modell
// mit Masken-Kopf beschreibt.
func IsSegmentationConfig(info *ConfigInfo) bool {
	if info == nil {
		return false
	}
	if containsAny(strings.ToLower(info.ModelType), "maskformer", "mask2former", "oneformer", "segformer", "upernet") {
		return true
	}
	for _, arch := range info.Architectures {
		if strings.Contains(strings.ToLower(arch), "segmentation") {
			return true
		}
	}
	return false
}

// GetNumLabels gibt die Label-Anzahl eines Checkpoints zurueck.
// Faellt auf die Laenge von id2label und zuletzt auf den ADE20k-Standard
// zurueck, da aeltere Checkpoints num_labels nicht serialisieren.
func GetNumLabels(info *ConfigInfo) int {
	if info == nil {
		return DefaultNumLabels
	}
	if info.NumLabels > 0 {
		return info.NumLabels
	}
	if len(info.ID2Label) > 0 {
		return len(info.ID2Label)
	}
	return DefaultNumLabels
}

// GetMaskFeatureSize gibt die Masken-Feature-Dimension zurueck.
func GetMaskFeatureSize(info *ConfigInfo) int {
	if info != nil && info.MaskFeatureSize > 0 {
		return info.MaskFeatureSize
	}
	return DefaultFeatureSize
}

// CheckTransformersVersion prueft die in einer config.json hinterlegte
// transformers_version gegen MinTransformersVersion. Eine fehlende oder
// nicht parsbare Angabe ist kein Fehler.
func CheckTransformersVersion(info *ConfigInfo) error {
	if info == nil || info.TransformersVersion == "" {
		return nil
	}
	v := strings.TrimPrefix(info.TransformersVersion, "v")
	// dev-Suffixe wie "4.30.0.dev0" abschneiden
	if parts := strings.SplitN(v, ".", 4); len(parts) == 4 {
		v = strings.Join(parts[:3], ".")
	}
	if !semver.IsValid("v" + v) {
		slog.Debug("transformers_version nicht parsbar", "version", info.TransformersVersion)
		return nil
	}
	if semver.Compare("v"+v, "v"+MinTransformersVersion) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrIncompatibleVersion, info.TransformersVersion, MinTransformersVersion)
	}
	return nil
}
