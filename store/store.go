// store.go - Lokaler Store fuer gepullte Modell-Konfigurationen
// Enthaelt Store-Struct, Datenbank-Initialisierung und die Operationen
// Put, Get, List, Delete.

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maskform/maskform/envconfig"
)

// ErrModelNotFound wird zurueckgegeben wenn ein Modell nicht im Store liegt
var ErrModelNotFound = errors.New("store: model not found")

// Model ist ein Store-Eintrag fuer eine gepullte Konfiguration
type Model struct {
	ID        string    // Zeilen-ID (UUID)
	ModelID   string    // Hub Model-ID (owner/model)
	Revision  string    // Git-Revision des Pulls
	Path      string    // Lokaler Pfad der config.json
	ModelType string    // Architektur-Typ des Checkpoints
	NumLabels int       // Label-Anzahl des Checkpoints
	SizeBytes int64     // Groesse der config.json
	PulledAt  time.Time // Zeitpunkt des Pulls
}

// Store verwaltet die Modell-Datenbank
type Store struct {
	// DBPath erlaubt das Ueberschreiben des Standard-Pfads (vor allem fuer Tests)
	DBPath string

	// dbMu schuetzt nur die Datenbank-Initialisierung
	dbMu sync.Mutex
	db   *database
}

// DefaultDBPath gibt den Standard-Pfad der Modell-Datenbank zurueck.
// MASKFORM_STORE hat Vorrang, sonst ~/.maskform/maskform.db.
func DefaultDBPath() string {
	return envconfig.StorePath()
}

// ensureDB oeffnet die Datenbank beim ersten Zugriff.
// Der Zugriff auf s.db laeuft immer unter dbMu, damit die erste
// Initialisierung auch unter nebenlaeufigen Aufrufen genau einmal passiert.
func (s *Store) ensureDB() error {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db != nil {
		return nil
	}

	dbPath := s.DBPath
	if dbPath == "" {
		dbPath = DefaultDBPath()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	database, err := newDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	s.db = database
	return nil
}

// Put legt einen Modell-Eintrag an oder aktualisiert die Revision.
// Eine leere Revision wird als main gefuehrt, fehlende IDs und
// Zeitstempel werden ergaenzt.
func (s *Store) Put(m Model) (*Model, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}

	m.ModelID = strings.TrimSpace(m.ModelID)
	if m.ModelID == "" {
		return nil, errors.New("store: model id must not be empty")
	}
	if m.Revision == "" {
		m.Revision = "main"
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.PulledAt.IsZero() {
		m.PulledAt = time.Now().UTC()
	}

	if err := s.db.putModel(&m); err != nil {
		return nil, err
	}
	// Upsert behaelt die Zeilen-ID eines bestehenden Eintrags bei
	return s.db.getModel(m.ModelID, m.Revision)
}

// Get liest den Eintrag eines Modells. Eine leere Revision liest main.
func (s *Store) Get(modelID, revision string) (*Model, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	if revision == "" {
		revision = "main"
	}
	return s.db.getModel(modelID, revision)
}

// Has prueft ob ein Modell im Store liegt
func (s *Store) Has(modelID, revision string) bool {
	_, err := s.Get(modelID, revision)
	return err == nil
}

// List gibt alle Eintraege zurueck, neueste zuerst
func (s *Store) List() ([]Model, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return s.db.listModels()
}

// Delete entfernt alle Revisionen eines Modells.
// ErrModelNotFound wenn kein Eintrag existiert.
func (s *Store) Delete(modelID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	affected, err := s.db.deleteModel(modelID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrModelNotFound
	}
	return nil
}

// Count gibt die Anzahl der Eintraege zurueck
func (s *Store) Count() (int, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	return s.db.countModels()
}

// Close schliesst die Datenbank
func (s *Store) Close() error {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}
