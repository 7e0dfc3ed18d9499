// Package config - Backbone Registry fuer dynamische Architektur-Registrierung.
//
// MODUL: registry
// ZWECK: Zentrale Registry fuer Backbone-Factories mit Thread-sicherer Verwaltung
// INPUT: Architektur-Name, BackboneFactory-Funktionen, Konfigurations-Maps
// OUTPUT: Konstruierte Backbone-Konfigurationen
// NEBENEFFEKTE: Keine (rein speicherbasiert)
// ABHAENGIGKEITEN: sync (stdlib), config.go (BackboneFactory, Backbone), levenshtein
// HINWEISE: Thread-sicher durch RWMutex
package config

import (
	"math"
	"slices"
	"sync"

	"github.com/agnivade/levenshtein"
)

// ============================================================================
// Registry - Zentrale Backbone-Verwaltung
// ============================================================================

// Registry verwaltet registrierte Backbone-Factories.
// Thread-sicher durch RWMutex.
type Registry struct {
	backbones map[string]BackboneFactory
	mu        sync.RWMutex
}

// NewRegistry erstellt eine neue leere Registry.
func NewRegistry() *Registry {
	return &Registry{
		backbones: make(map[string]BackboneFactory),
	}
}

// ============================================================================
// Registry Methoden - Registrierung
// ============================================================================

// Register registriert eine neue BackboneFactory unter dem Architektur-Namen.
// Ueberschreibt existierende Eintraege ohne Warnung.
func (r *Registry) Register(name string, factory BackboneFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backbones[name] = factory
}

// Unregister entfernt eine Architektur aus der Registry.
// Gibt true zurueck wenn die Architektur existierte, sonst false.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.backbones[name]
	if exists {
		delete(r.backbones, name)
	}
	return exists
}

// ============================================================================
// Registry Methoden - Abfrage
// ============================================================================

// Get gibt die Factory fuer den Architektur-Namen zurueck.
// Gibt (factory, true) wenn gefunden, sonst (nil, false).
func (r *Registry) Get(name string) (BackboneFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.backbones[name]
	return factory, exists
}

// Has prueft ob eine Architektur registriert ist.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.backbones[name]
	return exists
}

// Names gibt alle registrierten Architektur-Namen zurueck,
// alphabetisch sortiert fuer deterministische Fehlermeldungen.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backbones))
	for name := range r.backbones {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Count gibt die Anzahl registrierter Architekturen zurueck.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.backbones)
}

// Suggest sucht den registrierten Namen mit der kleinsten
// Levenshtein-Distanz zu name. Gibt ("", false) zurueck wenn
// kein Name nahe genug liegt.
func (r *Registry) Suggest(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	suggestion := ""
	score := math.MaxInt
	for candidate := range r.backbones {
		if s := levenshtein.ComputeDistance(name, candidate); s < score {
			score = s
			suggestion = candidate
		}
	}

	if score < 3 {
		return suggestion, true
	}

	return "", false
}

// ============================================================================
// Registry Methoden - Konstruktion
// ============================================================================

// Build konstruiert eine Backbone-Konfiguration ueber die registrierte Factory.
// Gibt ErrBackboneNotRegistered zurueck wenn der Name nicht gefunden wurde.
// m: Konfigurations-Map ohne den "model_type" Key
func (r *Registry) Build(name string, m map[string]any) (Backbone, error) {
	factory, exists := r.Get(name)
	if !exists {
		return nil, &RegistryError{
			Op:   "build",
			Name: name,
			Err:  ErrBackboneNotRegistered,
		}
	}

	return factory(m)
}
