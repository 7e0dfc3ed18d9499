// handlers.go - HTTP-Handler der maskform API
// Enthaelt: Backbones-, Defaults-, Show-, Validate-, List-, Pull- und
// Delete-Handler samt Fehler-Mapping auf HTTP-Statuscodes.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/maskform/maskform/api"
	"github.com/maskform/maskform/config"
	"github.com/maskform/maskform/config/maskformer"
	"github.com/maskform/maskform/huggingface"
	"github.com/maskform/maskform/store"
)

// maxValidateConfigs begrenzt die Anzahl Konfigurationen je Validate-Aufruf
const maxValidateConfigs = 64

// validateParallelism begrenzt die parallele Validierung
const validateParallelism = 8

// errStatus bildet bekannte Fehler auf HTTP-Statuscodes ab
func errStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrModelNotFound),
		errors.Is(err, huggingface.ErrModelNotFound),
		errors.Is(err, huggingface.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, huggingface.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, huggingface.ErrOfflineMode):
		return http.StatusServiceUnavailable
	case errors.Is(err, config.ErrBackboneNotRegistered),
		errors.Is(err, maskformer.ErrUnsupportedBackbone),
		errors.Is(err, maskformer.ErrMissingBackboneType),
		errors.Is(err, huggingface.ErrInvalidModelID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError schreibt eine JSON-Fehlerantwort
func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// backboneInfo fasst eine Backbone-Konfiguration zusammen
func backboneInfo(b config.Backbone) api.BackboneInfo {
	info := api.BackboneInfo{
		ModelType:      b.ModelType(),
		ChannelSizes:   b.ChannelSizes(),
		ParameterCount: b.ParameterCount(),
	}
	if channels := b.ChannelSizes(); len(channels) > 0 {
		info.HiddenSize = channels[len(channels)-1]
	}
	// Stage-Tiefe nur wenn die Architektur sie ausweist
	if nl, ok := b.(interface{ NumLayers() int }); ok {
		info.NumLayers = nl.NumLayers()
	}
	return info
}

// showResponse baut die Zusammenfassung einer Konfiguration
func showResponse(cfg *maskformer.Config, withKV bool) *api.ShowResponse {
	resp := &api.ShowResponse{
		ModelType:          cfg.ModelType(),
		NumLabels:          cfg.NumLabels,
		FPNFeatureSize:     cfg.FPNFeatureSize,
		MaskFeatureSize:    cfg.MaskFeatureSize,
		NumAttentionHeads:  cfg.NumAttentionHeads(),
		NumHiddenLayers:    cfg.NumHiddenLayers(),
		UseAuxiliaryLoss:   cfg.UseAuxiliaryLoss,
		NoObjectWeight:     cfg.NoObjectWeight,
		DiceWeight:         cfg.DiceWeight,
		CrossEntropyWeight: cfg.CrossEntropyWeight,
		MaskWeight:         cfg.MaskWeight,
		ParameterCount:     cfg.ParameterCount(),
		Backbone:           backboneInfo(cfg.Backbone),
		Decoder: api.DecoderInfo{
			ModelType:      cfg.Decoder.ModelType(),
			HiddenSize:     cfg.Decoder.HiddenSize(),
			NumQueries:     cfg.Decoder.NumQueries,
			EncoderLayers:  cfg.Decoder.EncoderLayers,
			DecoderLayers:  cfg.Decoder.DecoderLayers,
			ParameterCount: cfg.Decoder.ParameterCount(),
		},
		Config: cfg.ToMap(),
	}
	if withKV {
		resp.KV = cfg.KV()
	}
	return resp
}

// BackbonesHandler listet die registrierten Backbone-Architekturen auf
func (s *Server) BackbonesHandler(c *gin.Context) {
	var resp api.BackbonesResponse
	for _, name := range config.NamesFromDefault() {
		backbone, err := config.BuildFromDefault(name, map[string]any{})
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err)
			return
		}
		resp.Backbones = append(resp.Backbones, backboneInfo(backbone))
	}
	c.JSON(http.StatusOK, resp)
}

// DefaultsHandler gibt die Standard-Konfiguration im config.json Format zurueck
func (s *Server) DefaultsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, maskformer.Default().ToMap())
}

// ShowHandler loest eine Konfiguration zu einer Zusammenfassung auf.
// Die Konfiguration kommt entweder inline als Map oder wird ueber die
// Model-ID aus Cache bzw. Hub geladen.
func (s *Server) ShowHandler(c *gin.Context) {
	var req api.ShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	switch {
	case req.Config != nil:
		cfg, err := maskformer.FromMap(req.Config)
		if err != nil {
			// Inline-Konfigurationen kommen aus dem Request-Body,
			// jeder Konstruktions-Fehler ist ein Client-Fehler
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
		c.JSON(http.StatusOK, showResponse(cfg, req.KV))

	case req.ModelID != "":
		result, err := s.loader.Load(c.Request.Context(), req.ModelID, huggingface.LoadOptions{Revision: req.Revision})
		if err != nil {
			abortWithError(c, errStatus(err), err)
			return
		}
		resp := showResponse(result.Config, req.KV)
		resp.ModelID = req.ModelID
		resp.Source = result.Source
		c.JSON(http.StatusOK, resp)

	default:
		abortWithError(c, http.StatusBadRequest, errors.New("either config or model_id is required"))
	}
}

// ValidateHandler prueft mehrere Konfigurations-Maps parallel.
// Die Ergebnis-Reihenfolge entspricht der Eingabe-Reihenfolge.
func (s *Server) ValidateHandler(c *gin.Context) {
	var req api.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Configs) == 0 {
		abortWithError(c, http.StatusBadRequest, errors.New("configs must not be empty"))
		return
	}
	if len(req.Configs) > maxValidateConfigs {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("too many configs: %d > %d", len(req.Configs), maxValidateConfigs))
		return
	}

	results := make([]api.ValidateResult, len(req.Configs))

	g, _ := errgroup.WithContext(c.Request.Context())
	g.SetLimit(validateParallelism)
	for i, m := range req.Configs {
		g.Go(func() error {
			results[i] = validateOne(i, m)
			return nil
		})
	}
	g.Wait()

	c.JSON(http.StatusOK, api.ValidateResponse{Results: results})
}

// validateOne prueft eine einzelne Konfigurations-Map
func validateOne(index int, m map[string]any) api.ValidateResult {
	cfg, err := maskformer.FromMap(m)
	if err != nil {
		return api.ValidateResult{Index: index, Valid: false, Error: err.Error()}
	}
	return api.ValidateResult{Index: index, Valid: true, ModelType: cfg.ModelType()}
}

// ListHandler gibt die Eintraege des Modell-Stores zurueck
func (s *Server) ListHandler(c *gin.Context) {
	models, err := s.store.List()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	resp := api.ListResponse{Models: []api.ModelResponse{}}
	for _, m := range models {
		resp.Models = append(resp.Models, api.ModelResponse{
			ModelID:   m.ModelID,
			Revision:  m.Revision,
			ModelType: m.ModelType,
			NumLabels: m.NumLabels,
			SizeBytes: m.SizeBytes,
			PulledAt:  m.PulledAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// PullHandler laedt eine Konfiguration vom Hub und traegt sie in den
// Store ein. Bereits gecachte Dateien werden nicht erneut geladen.
func (s *Server) PullHandler(c *gin.Context) {
	var req api.PullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if req.ModelID == "" {
		abortWithError(c, http.StatusBadRequest, errors.New("model_id is required"))
		return
	}

	result, err := s.loader.Load(c.Request.Context(), req.ModelID, huggingface.LoadOptions{
		Revision:     req.Revision,
		Preprocessor: true,
	})
	if err != nil {
		abortWithError(c, errStatus(err), err)
		return
	}

	// Der volle Snapshot kommt erst nach der Validierung der config.json,
	// damit kein Nicht-MaskFormer-Checkpoint Gewichte in den Cache zieht
	var snapshot *huggingface.ModelDownloadResult
	if req.AllFiles {
		snapshot, err = s.loader.DownloadSnapshot(c.Request.Context(), req.ModelID, huggingface.LoadOptions{
			Revision: result.Revision,
		})
		if err != nil {
			abortWithError(c, errStatus(err), err)
			return
		}
	}

	if _, err := s.store.Put(store.Model{
		ModelID:   req.ModelID,
		Revision:  result.Revision,
		Path:      result.ConfigPath,
		ModelType: result.ModelType,
		NumLabels: result.NumLabels,
		SizeBytes: result.SizeBytes,
	}); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	resp := api.PullResponse{
		ModelID:   req.ModelID,
		Revision:  result.Revision,
		Source:    result.Source,
		Path:      result.ConfigPath,
		ModelType: result.ModelType,
		NumLabels: result.NumLabels,
		SizeBytes: result.SizeBytes,
	}
	if snapshot != nil {
		resp.SnapshotFiles = len(snapshot.Files)
		resp.SnapshotBytes = snapshot.TotalSize
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteHandler entfernt ein Modell aus dem Store
func (s *Server) DeleteHandler(c *gin.Context) {
	var req api.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if req.ModelID == "" {
		abortWithError(c, http.StatusBadRequest, errors.New("model_id is required"))
		return
	}

	if err := s.store.Delete(req.ModelID); err != nil {
		abortWithError(c, errStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": req.ModelID})
}
