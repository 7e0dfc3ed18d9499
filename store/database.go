// database.go - Kern-Datenbank-Funktionen des Modell-Stores
// Enthaelt: database struct, newDatabase, Close, Schema-Initialisierung

package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite-Treiber registrieren
)

// currentSchemaVersion definiert die aktuelle Datenbank-Schema-Version.
// Wird bei Schema-Aenderungen erhoeht, die Migrationen erfordern.
const currentSchemaVersion = 1

// database umhuellt die SQLite-Verbindung.
// SQLite verwaltet sein eigenes Locking fuer konkurrierende Zugriffe:
// - Mehrere Leser koennen gleichzeitig auf die Datenbank zugreifen
// - Schreiber werden serialisiert (nur ein Schreiber gleichzeitig)
// - WAL-Modus erlaubt Lesern, Schreiber nicht zu blockieren
// Daher benoetigt der Store keine Application-Level-Locks fuer
// Datenbankoperationen.
type database struct {
	conn *sql.DB
}

// newDatabase erstellt eine neue Datenbankverbindung
func newDatabase(dbPath string) (*database, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verbindung testen
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &database{conn: conn}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return db, nil
}

// Close schliesst die Datenbankverbindung
func (db *database) Close() error {
	_, _ = db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return db.conn.Close()
}

// init initialisiert das Datenbankschema
func (db *database) init() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL DEFAULT %d
	);

	-- Standard-Meta-Zeile einfuegen falls nicht vorhanden
	INSERT OR IGNORE INTO meta (id) VALUES (1);

	CREATE TABLE IF NOT EXISTS models (
		id TEXT PRIMARY KEY,
		model_id TEXT NOT NULL,
		revision TEXT NOT NULL DEFAULT 'main',
		path TEXT NOT NULL,
		model_type TEXT NOT NULL DEFAULT '',
		num_labels INTEGER NOT NULL DEFAULT 0,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		pulled_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (model_id, revision)
	);

	CREATE INDEX IF NOT EXISTS idx_models_model_id ON models(model_id);
	`, currentSchemaVersion)

	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	return nil
}

// putModel legt einen Modell-Eintrag an oder aktualisiert ihn.
// Konfliktschluessel ist (model_id, revision), die Zeilen-ID eines
// bestehenden Eintrags bleibt dabei erhalten.
func (db *database) putModel(m *Model) error {
	_, err := db.conn.Exec(`
		INSERT INTO models (id, model_id, revision, path, model_type, num_labels, size_bytes, pulled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (model_id, revision) DO UPDATE SET
			path = excluded.path,
			model_type = excluded.model_type,
			num_labels = excluded.num_labels,
			size_bytes = excluded.size_bytes,
			pulled_at = excluded.pulled_at
	`, m.ID, m.ModelID, m.Revision, m.Path, m.ModelType, m.NumLabels, m.SizeBytes, m.PulledAt)
	if err != nil {
		return fmt.Errorf("put model: %w", err)
	}
	return nil
}

// getModel liest einen Modell-Eintrag fuer eine Revision
func (db *database) getModel(modelID, revision string) (*Model, error) {
	row := db.conn.QueryRow(`
		SELECT id, model_id, revision, path, model_type, num_labels, size_bytes, pulled_at
		FROM models WHERE model_id = ? AND revision = ?
	`, modelID, revision)

	var m Model
	var pulledAt string
	err := row.Scan(&m.ID, &m.ModelID, &m.Revision, &m.Path, &m.ModelType, &m.NumLabels, &m.SizeBytes, &pulledAt)
	if err == sql.ErrNoRows {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get model: %w", err)
	}
	m.PulledAt = parseTimestamp(pulledAt)
	return &m, nil
}

// listModels gibt alle Eintraege zurueck, neueste zuerst
func (db *database) listModels() ([]Model, error) {
	rows, err := db.conn.Query(`
		SELECT id, model_id, revision, path, model_type, num_labels, size_bytes, pulled_at
		FROM models ORDER BY pulled_at DESC, model_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var models []Model
	for rows.Next() {
		var m Model
		var pulledAt string
		if err := rows.Scan(&m.ID, &m.ModelID, &m.Revision, &m.Path, &m.ModelType, &m.NumLabels, &m.SizeBytes, &pulledAt); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		m.PulledAt = parseTimestamp(pulledAt)
		models = append(models, m)
	}
	return models, rows.Err()
}

// deleteModel entfernt alle Revisionen eines Modells und gibt die
// Anzahl der geloeschten Zeilen zurueck
func (db *database) deleteModel(modelID string) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM models WHERE model_id = ?`, modelID)
	if err != nil {
		return 0, fmt.Errorf("delete model: %w", err)
	}
	return res.RowsAffected()
}

// countModels gibt die Anzahl der Eintraege zurueck
func (db *database) countModels() (int, error) {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM models`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count models: %w", err)
	}
	return count, nil
}

// parseTimestamp liest einen SQLite-Timestamp. SQLite speichert
// CURRENT_TIMESTAMP im UTC-Format ohne Zeitzone, go-sqlite3 liefert je
// nach Treiber-Parametern RFC3339 oder das SQL-Format.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
