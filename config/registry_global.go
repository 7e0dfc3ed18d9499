// Package config - Globale Registry-Instanz und Package-Level Funktionen.
//
// MODUL: registry_global
// ZWECK: Stellt eine globale DefaultRegistry bereit und Package-Funktionen als Convenience-Wrapper
// INPUT: Architektur-Name, BackboneFactory, Konfigurations-Maps
// OUTPUT: Konstruierte Backbone-Konfigurationen
// NEBENEFFEKTE: Aendert globale DefaultRegistry
// ABHAENGIGKEITEN: registry.go (Registry), config.go (BackboneFactory)
// HINWEISE: Backbones koennen via init() in ihren Packages automatisch registriert werden
package config

import "errors"

// ============================================================================
// Registry Errors - Fehlercodes fuer Registry-Operationen
// ============================================================================

// ErrBackboneNotRegistered wird zurueckgegeben wenn eine Architektur nicht registriert ist.
var ErrBackboneNotRegistered = errors.New("config: backbone not registered")

// RegistryError repraesentiert einen Registry-spezifischen Fehler.
type RegistryError struct {
	Op   string // Operation (z.B. "build", "get")
	Name string // Architektur-Name
	Err  error  // Urspruenglicher Fehler
}

// Error implementiert das error Interface.
func (e *RegistryError) Error() string {
	return "config: " + e.Op + " backbone '" + e.Name + "': " + e.Err.Error()
}

// Unwrap gibt den urspruenglichen Fehler zurueck.
func (e *RegistryError) Unwrap() error {
	return e.Err
}

// ============================================================================
// Globale Registry-Instanz
// ============================================================================

// DefaultRegistry ist die globale Registry fuer Backbone-Architekturen.
// Backbones registrieren sich typischerweise via init() in ihren Packages.
var DefaultRegistry = NewRegistry()

// ============================================================================
// Package-Level Convenience-Funktionen - Registrierung
// ============================================================================

// RegisterToDefault registriert eine BackboneFactory in der DefaultRegistry.
// Wrapper fuer DefaultRegistry.Register().
func RegisterToDefault(name string, factory BackboneFactory) {
	DefaultRegistry.Register(name, factory)
}

// UnregisterFromDefault entfernt eine Architektur aus der DefaultRegistry.
// Wrapper fuer DefaultRegistry.Unregister().
func UnregisterFromDefault(name string) bool {
	return DefaultRegistry.Unregister(name)
}

// ============================================================================
// Package-Level Convenience-Funktionen - Abfrage
// ============================================================================

// GetFromDefault gibt die Factory fuer den Namen aus der DefaultRegistry zurueck.
// Wrapper fuer DefaultRegistry.Get().
func GetFromDefault(name string) (BackboneFactory, bool) {
	return DefaultRegistry.Get(name)
}

// HasInDefault prueft ob eine Architektur in der DefaultRegistry registriert ist.
// Wrapper fuer DefaultRegistry.Has().
func HasInDefault(name string) bool {
	return DefaultRegistry.Has(name)
}

// NamesFromDefault gibt alle registrierten Architektur-Namen zurueck.
// Wrapper fuer DefaultRegistry.Names().
func NamesFromDefault() []string {
	return DefaultRegistry.Names()
}

// CountInDefault gibt die Anzahl registrierter Architekturen zurueck.
// Wrapper fuer DefaultRegistry.Count().
func CountInDefault() int {
	return DefaultRegistry.Count()
}

// ============================================================================
// Package-Level Convenience-Funktionen - Konstruktion
// ============================================================================

// BuildFromDefault konstruiert eine Backbone-Konfiguration mit der DefaultRegistry.
// Wrapper fuer DefaultRegistry.Build().
func BuildFromDefault(name string, m map[string]any) (Backbone, error) {
	return DefaultRegistry.Build(name, m)
}

// ============================================================================
// Registrierungs-Helfer
// ============================================================================

// MustRegisterToDefault registriert eine Factory und panict bei nil-Factory.
// Nuetzlich fuer init()-Funktionen wo Fehler fatal sein sollten.
func MustRegisterToDefault(name string, factory BackboneFactory) {
	if factory == nil {
		panic("config: nil factory for backbone '" + name + "'")
	}
	RegisterToDefault(name, factory)
}
