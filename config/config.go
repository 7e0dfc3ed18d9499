// Package config - Kern-Interfaces fuer Architektur-Konfigurationen.
//
// MODUL: config
// ZWECK: Gemeinsame Interfaces fuer Modell-Konfigurationen (MaskFormer, Swin, DETR)
// INPUT: Konfigurations-Maps (entspricht config.json des Hubs)
// OUTPUT: Validierte, serialisierbare Konfigurations-Objekte
// NEBENEFFEKTE: Keine (rein speicherbasiert)
// ABHAENGIGKEITEN: kv.go (KV), registry.go (Registry, BackboneFactory)
// HINWEISE: Backbone-Implementierungen registrieren sich via init() in ihren Packages
package config

// ============================================================================
// Config Interface - Basis aller Konfigurationen
// ============================================================================

// Config ist das zentrale Interface fuer alle Architektur-Konfigurationen.
type Config interface {
	// ModelType gibt den Architektur-Bezeichner zurueck (z.B. "swin", "detr").
	ModelType() string

	// Validate prueft alle Felder auf Konsistenz.
	Validate() error

	// ToMap serialisiert die Konfiguration in eine Map.
	// Das Ergebnis entspricht dem config.json Format des Hubs
	// und enthaelt immer den Key "model_type".
	ToMap() map[string]any

	// KV exportiert die Konfiguration als flache Metadaten-Map
	// mit Punkt-Keys (z.B. "swin.embed_dim").
	KV() KV
}

// ============================================================================
// Backbone Interface - hierarchische Encoder
// ============================================================================

// Backbone erweitert Config um Eigenschaften hierarchischer Encoder,
// die als Feature-Extraktor unter einem Segmentierungs-Kopf laufen.
type Backbone interface {
	Config

	// ChannelSizes gibt die Feature-Dimensionen der einzelnen Stages zurueck.
	ChannelSizes() []int

	// ParameterCount gibt eine Schaetzung der Parameter-Anzahl zurueck.
	ParameterCount() uint64
}

// ============================================================================
// BackboneFactory - Factory-Funktion Typ
// ============================================================================

// BackboneFactory erstellt eine Backbone-Konfiguration aus einer Map.
// Wird von Registry.Register() verwendet. Die Map enthaelt die Felder
// ohne den "model_type" Key, dieser ist bereits ueber die Registry
// aufgeloest.
type BackboneFactory func(m map[string]any) (Backbone, error)
