// MODUL: huggingface/loader
// ZWECK: Aufloesung einer Modell-Referenz zu einer validierten Konfiguration
// INPUT: Model-ID oder lokaler Pfad, Lade-Optionen (Revision, Timeout)
// OUTPUT: LoadResult mit Konfiguration, Herkunft und Preprocessor-Daten
// NEBENEFFEKTE: Schreibt heruntergeladene Dateien in das Cache-Layout
// ABHAENGIGKEITEN: config/maskformer, envconfig, Client/Cache dieses Pakets

package huggingface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maskform/maskform/config/maskformer"
	"github.com/maskform/maskform/envconfig"
)

// Timeout-Grenzen fuer Hub-Zugriffe beim Laden
const (
	LoadMinTimeout = 10 * time.Second
	LoadMaxTimeout = 24 * time.Hour
)

// Dateinamen eines Checkpoints
const (
	ConfigFileName       = "config.json"
	PreprocessorFileName = "preprocessor_config.json"
)

// Herkunft einer geladenen Konfiguration
const (
	SourceLocal = "local"
	SourceCache = "cache"
	SourceHub   = "hub"
)

// Fehler-Typen
var (
	ErrNotMaskFormer = errors.New("checkpoint ist kein maskformer-modell")
)

// LoadOptions steuert das Laden einer Konfiguration
type LoadOptions struct {
	Revision     string        // Git-Revision (Standard: main)
	Timeout      time.Duration // Max. Dauer fuer Hub-Zugriffe
	Preprocessor bool          // preprocessor_config.json mitladen
}

// LoadResult enthaelt die geladene Konfiguration samt Herkunft
type LoadResult struct {
	ModelID      string              // Aufgeloeste Model-ID (leer bei lokalen Pfaden)
	Revision     string              // Verwendete Revision
	Source       string              // local, cache oder hub
	ConfigPath   string              // Lokaler Pfad der config.json
	ModelType    string              // Normalisierter Architektur-Typ
	NumLabels    int                 // Label-Anzahl des Checkpoints
	SizeBytes    int64               // Groesse der config.json
	Config       *maskformer.Config  // Validierte Konfiguration
	Preprocessor *PreprocessorConfig // Optional, nil wenn nicht vorhanden
	Duration     time.Duration       // Dauer des Ladevorgangs
}

// Loader loest Modell-Referenzen zu validierten Konfigurationen auf
type Loader struct {
	client *Client
}

// NewLoader erstellt einen Loader. nil verwendet einen Standard-Client.
func NewLoader(client *Client) *Loader {
	if client == nil {
		client = NewClient()
	}
	return &Loader{client: client}
}

// LoadConfig laedt die Konfiguration eines Modells mit Standard-Optionen.
func LoadConfig(modelID string) (*maskformer.Config, error) {
	result, err := NewLoader(nil).Load(context.Background(), modelID, LoadOptions{})
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// Load loest eine Referenz zu einer validierten Konfiguration auf.
// Referenzen sind lokale config.json-Pfade, Checkpoint-Verzeichnisse
// oder owner/model IDs; fuer IDs gilt Cache vor Hub.
func (l *Loader) Load(ctx context.Context, ref string, opts LoadOptions) (*LoadResult, error) {
	startTime := time.Now()
	l.validateOpts(&opts)

	result, err := l.resolve(ctx, ref, &opts)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(result.ConfigPath)
	if err != nil {
		return nil, &HuggingFaceError{Op: "load", ModelID: result.ModelID, Err: fmt.Errorf("lesen: %w", err)}
	}
	info, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	info.ModelID = result.ModelID

	if err := CheckTransformersVersion(info); err != nil {
		slog.Warn("checkpoint stammt aus einer nicht unterstuetzten transformers-version",
			"model", result.ModelID, "version", info.TransformersVersion, "minimum", MinTransformersVersion)
	}

	modelType := normalizeModelType(info)
	if modelType != ModelTypeMaskFormer {
		return nil, &HuggingFaceError{Op: "load", ModelID: result.ModelID,
			Err: fmt.Errorf("%w: %s", ErrNotMaskFormer, modelType)}
	}

	cfg, err := maskformer.FromMap(info.Raw)
	if err != nil {
		return nil, &HuggingFaceError{Op: "load", ModelID: result.ModelID, Err: err}
	}
	result.ModelType = modelType
	result.NumLabels = cfg.NumLabels
	result.Config = cfg
	if stat, err := os.Stat(result.ConfigPath); err == nil {
		result.SizeBytes = stat.Size()
	}

	if opts.Preprocessor {
		result.Preprocessor = l.loadPreprocessor(ctx, result, &opts)
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// DownloadSnapshot laedt den kompletten Snapshot eines Modells inklusive
// Checkpoint-Gewichten in das Cache-Layout. Bereits vorhandene Dateien
// werden uebersprungen.
func (l *Loader) DownloadSnapshot(ctx context.Context, modelID string, opts LoadOptions) (*ModelDownloadResult, error) {
	l.validateOpts(&opts)
	if envconfig.Offline() {
		return nil, &HuggingFaceError{Op: "snapshot", ModelID: modelID,
			Err: fmt.Errorf("%w: snapshot nicht abrufbar", ErrOfflineMode)}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	result, err := l.client.DownloadModelWithContext(ctx, modelID,
		WithDownloadRevision(opts.Revision), WithAllFiles())
	if err != nil {
		return nil, &HuggingFaceError{Op: "snapshot", ModelID: modelID, Err: err}
	}
	return result, nil
}

// resolve ermittelt den lokalen Pfad der config.json fuer eine Referenz.
func (l *Loader) resolve(ctx context.Context, ref string, opts *LoadOptions) (*LoadResult, error) {
	// Lokale Pfade haben Vorrang vor Model-IDs
	if stat, err := os.Stat(ref); err == nil {
		configPath := ref
		if stat.IsDir() {
			configPath = filepath.Join(ref, ConfigFileName)
			if _, err := os.Stat(configPath); err != nil {
				return nil, &HuggingFaceError{Op: "resolve", Err: ErrConfigNotFound}
			}
		}
		return &LoadResult{Source: SourceLocal, ConfigPath: configPath, Revision: opts.Revision}, nil
	}

	if err := validateModelID(ref); err != nil {
		return nil, err
	}
	if path, found := GetCachedFileWithRevision(ref, ConfigFileName, opts.Revision); found {
		return &LoadResult{ModelID: ref, Source: SourceCache, ConfigPath: path, Revision: opts.Revision}, nil
	}
	if envconfig.Offline() {
		return nil, &HuggingFaceError{Op: "resolve", ModelID: ref,
			Err: fmt.Errorf("%w: %s nicht im cache", ErrOfflineMode, ConfigFileName)}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	path, err := l.client.DownloadFileWithContext(ctx, ref, ConfigFileName, opts.Revision)
	if err != nil {
		return nil, &HuggingFaceError{Op: "resolve", ModelID: ref, Err: err}
	}
	return &LoadResult{ModelID: ref, Source: SourceHub, ConfigPath: path, Revision: opts.Revision}, nil
}

// loadPreprocessor laedt die preprocessor_config.json neben der config.json.
// Fehlende oder unbrauchbare Dateien sind kein Fehler.
func (l *Loader) loadPreprocessor(ctx context.Context, result *LoadResult, opts *LoadOptions) *PreprocessorConfig {
	path := filepath.Join(filepath.Dir(result.ConfigPath), PreprocessorFileName)
	if _, err := os.Stat(path); err != nil {
		if result.Source != SourceHub || envconfig.Offline() {
			return nil
		}
		ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		downloaded, err := l.client.DownloadFileWithContext(ctx, result.ModelID, PreprocessorFileName, opts.Revision)
		if err != nil {
			slog.Debug("preprocessor_config.json nicht verfuegbar", "model", result.ModelID, "error", err)
			return nil
		}
		path = downloaded
	}
	pp, err := LoadPreprocessorConfig(path)
	if err != nil {
		slog.Debug("preprocessor_config.json nicht lesbar", "path", path, "error", err)
		return nil
	}
	return pp
}

// validateOpts ergaenzt Standard-Werte und begrenzt den Timeout.
func (l *Loader) validateOpts(opts *LoadOptions) {
	if opts.Revision == "" {
		opts.Revision = "main"
	}
	opts.Revision = strings.TrimSpace(opts.Revision)
	if opts.Timeout == 0 {
		opts.Timeout = envconfig.PullTimeout()
	}
	if opts.Timeout < LoadMinTimeout {
		opts.Timeout = LoadMinTimeout
	} else if opts.Timeout > LoadMaxTimeout {
		opts.Timeout = LoadMaxTimeout
	}
}
