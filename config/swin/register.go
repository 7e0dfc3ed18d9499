// MODUL: swin/register
// ZWECK: Automatische Registrierung der Swin-Architektur in der globalen Registry
// INPUT: Keine
// OUTPUT: Keine (Seiteneffekt: Registry-Eintrag)
// NEBENEFFEKTE: Registriert "swin" Factory in config.DefaultRegistry
// ABHAENGIGKEITEN: config (RegisterToDefault), swin.go (FromMap)
// HINWEISE: Wird automatisch durch init() beim Import ausgefuehrt

package swin

import (
	"github.com/maskform/maskform/config"
)

// ============================================================================
// Auto-Registrierung via init()
// ============================================================================

// init registriert die Swin-Architektur automatisch beim Package-Import.
// Nach dem Import von "github.com/maskform/maskform/config/swin" ist die
// Architektur unter dem Namen "swin" in der DefaultRegistry verfuegbar.
func init() {
	config.RegisterToDefault(modelType, swinFactory)
}

// swinFactory ist die Factory-Funktion fuer Swin-Konfigurationen.
func swinFactory(m map[string]any) (config.Backbone, error) {
	return FromMap(m)
}
