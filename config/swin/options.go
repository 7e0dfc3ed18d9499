// MODUL: swin/options
// ZWECK: Functional Options Pattern fuer die Swin-Konfiguration
// INPUT: Optionale Hyperparameter (Groessen, Stages, Dropout, Aktivierung)
// OUTPUT: Veraenderte Config-Felder
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: keine (reine Setter)
// HINWEISE: Ungueltige Kombinationen werden erst in Validate() abgewiesen

package swin

import "slices"

// Option ist eine funktionale Option fuer die Swin-Konfiguration.
type Option func(*Config)

// ============================================================================
// Functional Options - Builder-Funktionen
// ============================================================================

// WithImageSize setzt die Eingabe-Aufloesung in Pixeln.
func WithImageSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ImageSize = n
		}
	}
}

// WithPatchSize setzt die Patch-Kantenlaenge.
func WithPatchSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.PatchSize = n
		}
	}
}

// WithNumChannels setzt die Anzahl der Eingabe-Kanaele.
func WithNumChannels(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.NumChannels = n
		}
	}
}

// WithEmbedDim setzt die Embedding-Dimension der ersten Stage.
func WithEmbedDim(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.EmbedDim = n
		}
	}
}

// WithDepths setzt die Block-Anzahl pro Stage.
func WithDepths(depths []int) Option {
	return func(c *Config) {
		c.Depths = slices.Clone(depths)
	}
}

// WithNumHeads setzt die Attention-Heads pro Stage.
func WithNumHeads(heads []int) Option {
	return func(c *Config) {
		c.NumHeads = slices.Clone(heads)
	}
}

// WithWindowSize setzt die Fenstergroesse der Window-Attention.
func WithWindowSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.WindowSize = n
		}
	}
}

// WithMLPRatio setzt das Verhaeltnis von MLP- zu Embedding-Dimension.
func WithMLPRatio(r float64) Option {
	return func(c *Config) {
		if r > 0 {
			c.MLPRatio = r
		}
	}
}

// WithQKVBias aktiviert/deaktiviert den Bias der QKV-Projektion.
func WithQKVBias(enabled bool) Option {
	return func(c *Config) {
		c.QKVBias = enabled
	}
}

// WithHiddenDropout setzt die Dropout-Rate der versteckten Schichten.
func WithHiddenDropout(p float64) Option {
	return func(c *Config) {
		c.HiddenDropoutProb = p
	}
}

// WithAttentionDropout setzt die Dropout-Rate der Attention-Gewichte.
func WithAttentionDropout(p float64) Option {
	return func(c *Config) {
		c.AttentionProbsDropoutProb = p
	}
}

// WithDropPathRate setzt die stochastische Tiefen-Rate.
func WithDropPathRate(p float64) Option {
	return func(c *Config) {
		c.DropPathRate = p
	}
}

// WithHiddenAct setzt die Aktivierungsfunktion.
// Gueltige Werte: "gelu", "relu", "silu", "gelu_new"
func WithHiddenAct(act string) Option {
	return func(c *Config) {
		c.HiddenAct = act
	}
}

// WithAbsoluteEmbeddings aktiviert absolute Positions-Embeddings.
func WithAbsoluteEmbeddings(enabled bool) Option {
	return func(c *Config) {
		c.UseAbsoluteEmbeddings = enabled
	}
}

// WithPatchNorm aktiviert die Normalisierung nach dem Patch-Embedding.
func WithPatchNorm(enabled bool) Option {
	return func(c *Config) {
		c.PatchNorm = enabled
	}
}

// WithInitializerRange setzt die Standardabweichung der Initialisierung.
func WithInitializerRange(r float64) Option {
	return func(c *Config) {
		if r > 0 {
			c.InitializerRange = r
		}
	}
}

// WithLayerNormEps setzt das Layer-Norm Epsilon.
func WithLayerNormEps(eps float64) Option {
	return func(c *Config) {
		if eps > 0 {
			c.LayerNormEps = eps
		}
	}
}

// WithEncoderStride setzt den Stride fuer das Upsampling im Decoder-Pfad.
func WithEncoderStride(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.EncoderStride = n
		}
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
