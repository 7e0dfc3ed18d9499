// config_features.go - Feature-Flags und Hub-Konfiguration
//
// Dieses Modul enthaelt:
// - Feature-Flags (Offline-Modus)
// - Hub-bezogene Environment-Variablen (Token, Retries)
package envconfig

// =============================================================================
// Feature-Flags
// =============================================================================

var (
	// Offline unterbindet alle Netzwerkzugriffe auf den Hub
	// Konfigurierbar via MASKFORM_OFFLINE
	Offline = Bool("MASKFORM_OFFLINE")
)

// =============================================================================
// Hub-Einstellungen
// =============================================================================

var (
	// Token ist das Zugriffstoken fuer private Hub-Repositories
	// Standard-Variable der huggingface_hub Tools
	Token = String("HF_TOKEN")

	// Retries setzt die Anzahl Wiederholungen fuer Hub-Downloads
	// Konfigurierbar via MASKFORM_RETRIES
	Retries = Uint("MASKFORM_RETRIES", 3)
)
