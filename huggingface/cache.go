// cache.go - Cache-Verwaltung fuer Hub-Downloads
// Kompatibel mit dem Cache-Layout der Python huggingface_hub Tools,
// damit bereits vorhandene Snapshots wiederverwendet werden.
package huggingface

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/maskform/maskform/envconfig"
)

// Verzeichnis-Layout innerhalb eines Modell-Cache-Eintrags
const (
	CacheSnapshotDir = "snapshots"
	CacheModelPrefix = "models--"
)

// Cache-Fehler
var (
	ErrModelNotInCache   = errors.New("modell nicht im cache")
	ErrCacheAccessDenied = errors.New("zugriff auf cache verweigert")
)

// CachedModel repraesentiert ein gecachtes Modell
type CachedModel struct {
	ModelID   string
	CacheDir  string
	Revisions []string
	TotalSize int64
	FileCount int
}

// CacheInfo enthaelt Informationen ueber den gesamten Cache
type CacheInfo struct {
	CacheDir   string
	TotalSize  int64
	ModelCount int
	Models     []CachedModel
}

// GetCacheDir gibt das Cache-Verzeichnis zurueck.
// Aufloesung: MASKFORM_CACHE > HF_HUB_CACHE > HF_HOME/hub > Benutzer-Cache.
func GetCacheDir() string {
	if dir := envconfig.CacheDir(); dir != "" {
		return dir
	}
	if dir := os.Getenv("HF_HUB_CACHE"); dir != "" {
		return dir
	}
	if hfHome := os.Getenv(EnvHFHome); hfHome != "" {
		return filepath.Join(hfHome, "hub")
	}
	return filepath.Join(userCacheBase(), "huggingface", "hub")
}

// userCacheBase liefert das Benutzer-Cache-Verzeichnis der Plattform,
// mit einem Temp-Verzeichnis als letzter Ausweichmoeglichkeit
func userCacheBase() string {
	if runtime.GOOS == "windows" {
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			return filepath.Join(profile, ".cache")
		}
		return filepath.Join(os.TempDir(), "huggingface_cache")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache")
	}
	return filepath.Join(os.TempDir(), "huggingface_cache")
}

// modelCachePath gibt das Cache-Verzeichnis eines Modells zurueck
func modelCachePath(modelID string) string {
	return filepath.Join(GetCacheDir(), modelIDToCacheDir(modelID))
}

// GetCachedModel prueft ob die main-Revision eines Modells im Cache ist
func GetCachedModel(modelID string) (string, bool) {
	return GetCachedModelWithRevision(modelID, "main")
}

// GetCachedModelWithRevision prueft den Cache fuer eine spezifische Revision.
// Leere Snapshot-Verzeichnisse zaehlen nicht als Treffer.
func GetCachedModelWithRevision(modelID, revision string) (string, bool) {
	snapshotPath := filepath.Join(modelCachePath(modelID), CacheSnapshotDir, revision)
	entries, err := os.ReadDir(snapshotPath)
	if err != nil || len(entries) == 0 {
		return "", false
	}
	return snapshotPath, true
}

// GetCachedFile gibt den Pfad zu einer Datei der main-Revision zurueck
func GetCachedFile(modelID, filename string) (string, bool) {
	return GetCachedFileWithRevision(modelID, filename, "main")
}

// GetCachedFileWithRevision gibt den Pfad zu einer Datei mit Revision zurueck
func GetCachedFileWithRevision(modelID, filename, revision string) (string, bool) {
	filePath := filepath.Join(modelCachePath(modelID), CacheSnapshotDir, revision, filename)
	if _, err := os.Stat(filePath); err != nil {
		return "", false
	}
	return filePath, true
}

// modelCacheEntries listet die models-- Verzeichnisse des Caches auf.
// Ein fehlendes Cache-Verzeichnis ist kein Fehler, sondern ein leerer Cache.
func modelCacheEntries(cacheDir string) ([]string, error) {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		if os.IsPermission(err) {
			return nil, ErrCacheAccessDenied
		}
		return nil, fmt.Errorf("cache lesen fehlgeschlagen: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), CacheModelPrefix) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// ClearCache loescht alle Modell-Verzeichnisse aus dem Cache.
// Fremde Eintraege ohne models-- Prefix bleiben unangetastet.
func ClearCache() error {
	cacheDir := GetCacheDir()
	names, err := modelCacheEntries(cacheDir)
	if err != nil {
		return err
	}
	var lastErr error
	for _, name := range names {
		if err := os.RemoveAll(filepath.Join(cacheDir, name)); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// ClearModelCache loescht den Cache eines spezifischen Modells
func ClearModelCache(modelID string) error {
	modelPath := modelCachePath(modelID)
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return ErrModelNotInCache
	}
	return os.RemoveAll(modelPath)
}

// EnsureCacheDir stellt sicher, dass das Cache-Verzeichnis existiert
func EnsureCacheDir() error {
	return os.MkdirAll(GetCacheDir(), 0755)
}

// GetCacheSize berechnet die Gesamtgroesse des Caches in Bytes
func GetCacheSize() (int64, error) {
	size, _, err := dirStats(GetCacheDir())
	return size, err
}

// GetModelCacheSize berechnet die Groesse eines Modells im Cache
func GetModelCacheSize(modelID string) (int64, error) {
	modelPath := modelCachePath(modelID)
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return 0, ErrModelNotInCache
	}
	size, _, err := dirStats(modelPath)
	return size, err
}

// GetCacheInfo gibt detaillierte Informationen ueber den Cache zurueck
func GetCacheInfo() (*CacheInfo, error) {
	cacheDir := GetCacheDir()
	names, err := modelCacheEntries(cacheDir)
	if err != nil {
		return nil, err
	}
	info := &CacheInfo{CacheDir: cacheDir, Models: make([]CachedModel, 0, len(names))}
	for _, name := range names {
		modelPath := filepath.Join(cacheDir, name)
		model := CachedModel{ModelID: cacheDirToModelID(name), CacheDir: modelPath}
		if revisions, err := os.ReadDir(filepath.Join(modelPath, CacheSnapshotDir)); err == nil {
			for _, rev := range revisions {
				if rev.IsDir() {
					model.Revisions = append(model.Revisions, rev.Name())
				}
			}
		}
		model.TotalSize, model.FileCount, _ = dirStats(modelPath)
		info.Models = append(info.Models, model)
		info.TotalSize += model.TotalSize
		info.ModelCount++
	}
	return info, nil
}

// ListCachedModels gibt eine Liste aller gecachten Modelle zurueck
func ListCachedModels() ([]string, error) {
	names, err := modelCacheEntries(GetCacheDir())
	if err != nil {
		return nil, err
	}
	models := make([]string, 0, len(names))
	for _, name := range names {
		models = append(models, cacheDirToModelID(name))
	}
	return models, nil
}

// modelIDToCacheDir bildet owner/name auf models--owner--name ab
func modelIDToCacheDir(modelID string) string {
	return CacheModelPrefix + strings.ReplaceAll(modelID, "/", "--")
}

// cacheDirToModelID kehrt modelIDToCacheDir um. Nur der erste Trenner
// wird zurueckuebersetzt, Modellnamen duerfen selbst "--" enthalten.
func cacheDirToModelID(cacheDir string) string {
	return strings.Replace(strings.TrimPrefix(cacheDir, CacheModelPrefix), "--", "/", 1)
}

// dirStats summiert Groesse und Dateianzahl unterhalb eines Verzeichnisses.
// Nicht lesbare Eintraege werden uebersprungen statt den Lauf abzubrechen.
func dirStats(path string) (int64, int, error) {
	var size int64
	var files int
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
			files++
		}
		return nil
	})
	return size, files, err
}
