// MODUL: detr/options
// ZWECK: Functional Options Pattern fuer die DETR-Konfiguration
// INPUT: Optionale Hyperparameter (Dimensionen, Layer, Queries, Gewichte)
// OUTPUT: Veraenderte Config-Felder
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: keine (reine Setter)
// HINWEISE: Ungueltige Kombinationen werden erst in Validate() abgewiesen

package detr

// Option ist eine funktionale Option fuer die DETR-Konfiguration.
type Option func(*Config)

// ============================================================================
// Functional Options - Builder-Funktionen
// ============================================================================

// WithDModel setzt die Modell-Dimension.
func WithDModel(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.DModel = n
		}
	}
}

// WithEncoderLayers setzt die Anzahl der Encoder-Layer.
func WithEncoderLayers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.EncoderLayers = n
		}
	}
}

// WithDecoderLayers setzt die Anzahl der Decoder-Layer.
func WithDecoderLayers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.DecoderLayers = n
		}
	}
}

// WithEncoderAttentionHeads setzt die Encoder-Attention-Heads.
func WithEncoderAttentionHeads(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.EncoderAttentionHeads = n
		}
	}
}

// WithDecoderAttentionHeads setzt die Decoder-Attention-Heads.
func WithDecoderAttentionHeads(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.DecoderAttentionHeads = n
		}
	}
}

// WithEncoderFFNDim setzt die Feed-Forward-Dimension des Encoders.
func WithEncoderFFNDim(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.EncoderFFNDim = n
		}
	}
}

// WithDecoderFFNDim setzt die Feed-Forward-Dimension des Decoders.
func WithDecoderFFNDim(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.DecoderFFNDim = n
		}
	}
}

// WithNumQueries setzt die Anzahl der Objekt-Queries.
func WithNumQueries(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.NumQueries = n
		}
	}
}

// WithDropout setzt die allgemeine Dropout-Rate.
func WithDropout(p float64) Option {
	return func(c *Config) {
		c.Dropout = p
	}
}

// WithAttentionDropout setzt die Dropout-Rate der Attention-Gewichte.
func WithAttentionDropout(p float64) Option {
	return func(c *Config) {
		c.AttentionDropout = p
	}
}

// WithActivationDropout setzt die Dropout-Rate nach der Aktivierung.
func WithActivationDropout(p float64) Option {
	return func(c *Config) {
		c.ActivationDropout = p
	}
}

// WithActivationFunction setzt die Aktivierungsfunktion.
// Gueltige Werte: "relu", "gelu", "silu", "gelu_new"
func WithActivationFunction(act string) Option {
	return func(c *Config) {
		c.ActivationFunction = act
	}
}

// WithAuxiliaryLoss aktiviert Hilfs-Losses in jedem Decoder-Layer.
func WithAuxiliaryLoss(enabled bool) Option {
	return func(c *Config) {
		c.AuxiliaryLoss = enabled
	}
}

// WithPositionEmbeddingType setzt die Positions-Kodierung.
// Gueltige Werte: "sine", "learned"
func WithPositionEmbeddingType(t string) Option {
	return func(c *Config) {
		c.PositionEmbeddingType = t
	}
}

// WithDilation aktiviert Dilation in der letzten Conv-Stage.
func WithDilation(enabled bool) Option {
	return func(c *Config) {
		c.Dilation = enabled
	}
}

// WithMatcherCosts setzt die Kosten des Hungarian-Matchers.
func WithMatcherCosts(class, bbox, giou float64) Option {
	return func(c *Config) {
		c.ClassCost = class
		c.BBoxCost = bbox
		c.GIoUCost = giou
	}
}

// WithEOSCoefficient setzt das Gewicht der No-Object-Klasse.
func WithEOSCoefficient(w float64) Option {
	return func(c *Config) {
		c.EOSCoefficient = w
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
