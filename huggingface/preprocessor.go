// preprocessor.go - Parser fuer preprocessor_config.json
//
// Extrahiert die Bildvorverarbeitungs-Parameter eines Checkpoints:
// Normalisierung, Zielgroesse, Padding-Divisor und Label-Behandlung.
package huggingface

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Resampling-Konstanten (PIL/Pillow Werte)
const (
	ResampleNearest  = 0
	ResampleLanczos  = 1
	ResampleBilinear = 2
	ResampleBicubic  = 3
)

// Fehler
var (
	ErrPreprocessorNotFound = errors.New("preprocessor_config.json nicht gefunden")
	ErrInvalidPreprocessor  = errors.New("ungueltige preprocessor_config.json")
)

// ParsePreprocessorConfig parst JSON-Bytes einer preprocessor_config.json.
func ParsePreprocessorConfig(data []byte) (*PreprocessorConfig, error) {
	var config PreprocessorConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &HuggingFaceError{Op: "parse_preprocessor", Err: fmt.Errorf("%w: %v", ErrInvalidPreprocessor, err)}
	}
	if !hasValidPreprocessorData(&config) {
		return nil, &HuggingFaceError{Op: "parse_preprocessor", Err: ErrInvalidPreprocessor}
	}
	return &config, nil
}

// LoadPreprocessorConfig laedt und parst eine preprocessor_config.json.
func LoadPreprocessorConfig(path string) (*PreprocessorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &HuggingFaceError{Op: "load_preprocessor", Err: ErrPreprocessorNotFound}
		}
		return nil, &HuggingFaceError{Op: "load_preprocessor", Err: fmt.Errorf("lesen: %w", err)}
	}
	return ParsePreprocessorConfig(data)
}

// LoadPreprocessorFromDir laedt die preprocessor_config.json eines
// Modell-Verzeichnisses.
func LoadPreprocessorFromDir(dirPath string) (*PreprocessorConfig, error) {
	return LoadPreprocessorConfig(filepath.Join(dirPath, "preprocessor_config.json"))
}

// GetImageMean gibt die Normalisierungs-Mittelwerte zurueck.
func GetImageMean(config *PreprocessorConfig) []float32 {
	if config != nil && len(config.ImageMean) >= 3 {
		return config.ImageMean
	}
	return DefaultImageMean
}

// GetImageStd gibt die Normalisierungs-Standardabweichungen zurueck.
func GetImageStd(config *PreprocessorConfig) []float32 {
	if config != nil && len(config.ImageStd) >= 3 {
		return config.ImageStd
	}
	return DefaultImageStd
}

// GetImageSize gibt kuerzeste und laengste Bildkante zurueck. Bilder
// werden auf die kuerzeste Kante skaliert und an der laengsten gekappt.
func GetImageSize(config *PreprocessorConfig) (shortest, longest int) {
	if config == nil {
		return DefaultImageSize, DefaultMaxSize
	}
	shortest, longest = DefaultImageSize, DefaultMaxSize
	if config.Size != nil {
		if config.Size.ShortestEdge > 0 {
			shortest = config.Size.ShortestEdge
		} else if config.Size.Height > 0 && config.Size.Width > 0 {
			shortest = min(config.Size.Height, config.Size.Width)
			longest = max(config.Size.Height, config.Size.Width)
			return shortest, longest
		}
		if config.Size.LongestEdge > 0 {
			return shortest, config.Size.LongestEdge
		}
	}
	// alte Schreibweise: top-level max_size
	if config.MaxSize > 0 {
		longest = config.MaxSize
	}
	return shortest, longest
}

// GetSizeDivisor gibt den Padding-Divisor zurueck. Eingaben werden auf
// Vielfache dieses Werts gepolstert, damit alle Backbone-Stufen glatte
// Aufloesungen sehen.
func GetSizeDivisor(config *PreprocessorConfig) int {
	if config != nil {
		if config.SizeDivisor > 0 {
			return config.SizeDivisor
		}
		if config.SizeDivisibility > 0 {
			return config.SizeDivisibility
		}
	}
	return DefaultSizeDivisor
}

// GetIgnoreIndex gibt den Label-Wert zurueck, der beim Training
// uebersprungen wird.
func GetIgnoreIndex(config *PreprocessorConfig) int {
	if config != nil && config.IgnoreIndex != nil {
		return *config.IgnoreIndex
	}
	return DefaultIgnoreIndex
}

// GetRescaleFactor gibt den Rescale-Faktor zurueck (Standard: 1/255).
func GetRescaleFactor(config *PreprocessorConfig) float32 {
	if config == nil || config.RescaleFactor == 0 {
		return 1.0 / 255.0
	}
	return config.RescaleFactor
}

// GetResampleMethod gibt die Resampling-Methode als String zurueck.
func GetResampleMethod(config *PreprocessorConfig) string {
	if config == nil {
		return "bilinear"
	}
	methods := map[int]string{ResampleNearest: "nearest", ResampleLanczos: "lanczos",
		ResampleBilinear: "bilinear", ResampleBicubic: "bicubic"}
	if m, ok := methods[config.Resample]; ok {
		return m
	}
	return "bilinear"
}

// ShouldResize prueft ob Resize durchgefuehrt werden soll.
func ShouldResize(config *PreprocessorConfig) bool {
	return config == nil || config.DoResize
}

// ShouldNormalize prueft ob Normalisierung durchgefuehrt werden soll.
func ShouldNormalize(config *PreprocessorConfig) bool {
	return config == nil || config.DoNormalize
}

// ShouldReduceLabels prueft ob Label-Indizes beim Laden um eins reduziert
// werden (ADE20k reserviert 0 fuer den Hintergrund). Beide Schreibweisen
// der Checkpoints werden akzeptiert.
func ShouldReduceLabels(config *PreprocessorConfig) bool {
	return config != nil && (config.DoReduceLabels || config.ReduceLabels)
}

// hasValidPreprocessorData prueft ob mindestens ein gueltiges Feld gesetzt ist.
func hasValidPreprocessorData(config *PreprocessorConfig) bool {
	hasSize := config.Size != nil || config.MaxSize > 0 || config.SizeDivisor > 0 || config.SizeDivisibility > 0
	return hasSize || len(config.ImageMean) > 0 || len(config.ImageStd) > 0 ||
		config.ImageProcessorType != "" || config.FeatureExtractorType != "" || config.ProcessorClass != ""
}
