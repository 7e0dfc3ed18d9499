// MODUL: maskformer/options
// ZWECK: Functional Options Pattern fuer die MaskFormer-Konfiguration
// INPUT: Optionale Hyperparameter, Backbone- und Decoder-Konfigurationen
// OUTPUT: Veraenderte Config-Felder
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: config (Backbone Interface), config/detr
// HINWEISE: Ungueltige Kombinationen werden erst in Validate() abgewiesen

package maskformer

import (
	"github.com/maskform/maskform/config"
	"github.com/maskform/maskform/config/detr"
)

// Option ist eine funktionale Option fuer die MaskFormer-Konfiguration.
type Option func(*Config)

// ============================================================================
// Functional Options - Builder-Funktionen
// ============================================================================

// WithFPNFeatureSize setzt die Feature-Dimension des Pixel-Decoders.
func WithFPNFeatureSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.FPNFeatureSize = n
		}
	}
}

// WithMaskFeatureSize setzt die Feature-Dimension der Masken-Embeddings.
func WithMaskFeatureSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaskFeatureSize = n
		}
	}
}

// WithNoObjectWeight setzt das Gewicht der Null-Klasse im Matcher.
func WithNoObjectWeight(w float64) Option {
	return func(c *Config) {
		c.NoObjectWeight = w
	}
}

// WithAuxiliaryLoss schaltet die Hilfs-Verluste der Zwischen-Layer.
func WithAuxiliaryLoss(v bool) Option {
	return func(c *Config) {
		c.UseAuxiliaryLoss = v
	}
}

// WithInitStd setzt die Standardabweichung der Gewichts-Initialisierung.
func WithInitStd(v float64) Option {
	return func(c *Config) {
		c.InitStd = v
	}
}

// WithInitXavierStd setzt den Xavier-Gain der HM-Attention-Initialisierung.
func WithInitXavierStd(v float64) Option {
	return func(c *Config) {
		c.InitXavierStd = v
	}
}

// WithLossWeights setzt die Gewichte der drei Verlust-Terme.
func WithLossWeights(crossEntropy, dice, mask float64) Option {
	return func(c *Config) {
		c.CrossEntropyWeight = crossEntropy
		c.DiceWeight = dice
		c.MaskWeight = mask
	}
}

// WithNumLabels setzt die Anzahl der Klassen.
func WithNumLabels(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.NumLabels = n
		}
	}
}

// WithBackbone setzt die Backbone-Konfiguration. Der Typ wird hier
// nicht gegen die Registry geprueft, dafuer ist FromMap bzw.
// FromBackboneAndDecoderConfigs zustaendig.
func WithBackbone(b config.Backbone) Option {
	return func(c *Config) {
		if b != nil {
			c.Backbone = b
		}
	}
}

// WithDecoder setzt die Decoder-Konfiguration.
func WithDecoder(d *detr.Config) Option {
	return func(c *Config) {
		if d != nil {
			c.Decoder = d
		}
	}
}

// WithExtra setzt ein Zusatzfeld, das bei der Serialisierung
// erhalten bleibt.
func WithExtra(key string, value any) Option {
	return func(c *Config) {
		c.SetExtra(key, value)
	}
}

// ============================================================================
// Apply - Options auf Config anwenden
// ============================================================================

// Apply wendet alle Options auf die Konfiguration an.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
