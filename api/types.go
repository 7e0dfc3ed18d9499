// types.go - Request- und Response-Typen der maskform HTTP-API
// Diese Typen bilden den Wire-Kontrakt zwischen Client und Server.
package api

import (
	"fmt"
	"net/http"
	"time"
)

// StatusError ist der Fehler-Typ fuer HTTP-Fehlerantworten des Servers
type StatusError struct {
	StatusCode   int    `json:"-"`
	Status       string `json:"-"`
	ErrorMessage string `json:"error"`
}

// Error implementiert das error Interface
func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// VersionResponse ist die Antwort von GET /api/version
type VersionResponse struct {
	Version string `json:"version"`
}

// BackboneInfo beschreibt eine registrierte Backbone-Architektur
type BackboneInfo struct {
	ModelType      string `json:"model_type"`
	HiddenSize     int    `json:"hidden_size"`
	NumLayers      int    `json:"num_layers,omitempty"`
	ChannelSizes   []int  `json:"channel_sizes,omitempty"`
	ParameterCount uint64 `json:"parameter_count"`
}

// BackbonesResponse ist die Antwort von GET /api/backbones
type BackbonesResponse struct {
	Backbones []BackboneInfo `json:"backbones"`
}

// DecoderInfo beschreibt den Transformer-Decoder einer Konfiguration
type DecoderInfo struct {
	ModelType      string `json:"model_type"`
	HiddenSize     int    `json:"hidden_size"`
	NumQueries     int    `json:"num_queries"`
	EncoderLayers  int    `json:"encoder_layers"`
	DecoderLayers  int    `json:"decoder_layers"`
	ParameterCount uint64 `json:"parameter_count"`
}

// ShowRequest ist der Body von POST /api/show.
// Entweder ModelID (Cache/Hub-Aufloesung) oder Config (Inline-Map)
// muss gesetzt sein.
type ShowRequest struct {
	ModelID  string         `json:"model_id,omitempty"`
	Revision string         `json:"revision,omitempty"`
	Config   map[string]any `json:"config,omitempty"`

	// KV fordert zusaetzlich den flachen Metadaten-Export an
	KV bool `json:"kv,omitempty"`
}

// ShowResponse ist die aufgeloeste Zusammenfassung einer Konfiguration
type ShowResponse struct {
	ModelType          string         `json:"model_type"`
	ModelID            string         `json:"model_id,omitempty"`
	Source             string         `json:"source,omitempty"`
	NumLabels          int            `json:"num_labels"`
	FPNFeatureSize     int            `json:"fpn_feature_size"`
	MaskFeatureSize    int            `json:"mask_feature_size"`
	NumAttentionHeads  int            `json:"num_attention_heads"`
	NumHiddenLayers    int            `json:"num_hidden_layers"`
	UseAuxiliaryLoss   bool           `json:"use_auxilary_loss"`
	NoObjectWeight     float64        `json:"no_object_weight"`
	DiceWeight         float64        `json:"dice_weight"`
	CrossEntropyWeight float64        `json:"cross_entropy_weight"`
	MaskWeight         float64        `json:"mask_weight"`
	ParameterCount     uint64         `json:"parameter_count"`
	Backbone           BackboneInfo   `json:"backbone"`
	Decoder            DecoderInfo    `json:"decoder"`
	Config             map[string]any `json:"config"`
	KV                 map[string]any `json:"kv,omitempty"`
}

// ValidateRequest ist der Body von POST /api/validate
type ValidateRequest struct {
	Configs []map[string]any `json:"configs"`
}

// ValidateResult ist das Einzel-Ergebnis einer Validierung
type ValidateResult struct {
	Index     int    `json:"index"`
	Valid     bool   `json:"valid"`
	ModelType string `json:"model_type,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ValidateResponse ist die Antwort von POST /api/validate.
// Results hat dieselbe Reihenfolge wie die Eingabe.
type ValidateResponse struct {
	Results []ValidateResult `json:"results"`
}

// ModelResponse ist ein Store-Eintrag in GET /api/models
type ModelResponse struct {
	ModelID   string    `json:"model_id"`
	Revision  string    `json:"revision"`
	ModelType string    `json:"model_type"`
	NumLabels int       `json:"num_labels"`
	SizeBytes int64     `json:"size_bytes"`
	PulledAt  time.Time `json:"pulled_at"`
}

// ListResponse ist die Antwort von GET /api/models
type ListResponse struct {
	Models []ModelResponse `json:"models"`
}

// PullRequest ist der Body von POST /api/pull.
// AllFiles laedt zusaetzlich zum config.json den kompletten Snapshot
// inklusive Checkpoint-Gewichten.
type PullRequest struct {
	ModelID  string `json:"model_id"`
	Revision string `json:"revision,omitempty"`
	AllFiles bool   `json:"all_files,omitempty"`
}

// PullResponse ist die Antwort von POST /api/pull.
// SnapshotFiles und SnapshotBytes sind nur bei all_files gesetzt.
type PullResponse struct {
	ModelID       string `json:"model_id"`
	Revision      string `json:"revision"`
	Source        string `json:"source"`
	Path          string `json:"path"`
	ModelType     string `json:"model_type"`
	NumLabels     int    `json:"num_labels"`
	SizeBytes     int64  `json:"size_bytes"`
	SnapshotFiles int    `json:"snapshot_files,omitempty"`
	SnapshotBytes int64  `json:"snapshot_bytes,omitempty"`
}

// DeleteRequest ist der Body von DELETE /api/models
type DeleteRequest struct {
	ModelID string `json:"model_id"`
}
