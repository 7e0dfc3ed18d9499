// routes_test.go - HTTP-Tests fuer Router und Handler
//
// Testet die API-Endpoints ueber httptest, ohne Netzwerk- oder
// Hub-Zugriffe: Inline-Konfigurationen und ein Store in einem
// Temp-Verzeichnis.
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maskform/maskform/api"
	"github.com/maskform/maskform/config/maskformer"
	"github.com/maskform/maskform/huggingface"
	"github.com/maskform/maskform/store"
	"github.com/maskform/maskform/version"
)

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	st := &store.Store{DBPath: filepath.Join(t.TempDir(), "models.sqlite")}
	t.Cleanup(func() { st.Close() })

	s := NewServer(st, huggingface.NewLoader(nil))
	h, err := s.GenerateRoutes()
	if err != nil {
		t.Fatalf("GenerateRoutes: %v", err)
	}
	return h, st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// TestVersionHandler testet GET /api/version
func TestVersionHandler(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/version", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp api.VersionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Version != version.Version {
		t.Errorf("version = %q, want %q", resp.Version, version.Version)
	}
}

// TestBackbonesHandler testet GET /api/backbones
func TestBackbonesHandler(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/backbones", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp api.BackbonesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Backbones) == 0 {
		t.Fatal("backbones sollte mindestens swin enthalten")
	}

	var found bool
	for _, b := range resp.Backbones {
		if b.ModelType == "swin" {
			found = true
			if len(b.ChannelSizes) != 4 {
				t.Errorf("swin channel_sizes = %v, want 4 Stages", b.ChannelSizes)
			}
		}
	}
	if !found {
		t.Error("swin fehlt in der Backbone-Liste")
	}
}

// TestDefaultsHandler testet dass GET /api/defaults eine gueltige
// Konfiguration liefert, die durch FromMap zurueck konstruierbar ist
func TestDefaultsHandler(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/defaults", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["model_type"] != "maskformer" {
		t.Errorf("model_type = %v, want maskformer", m["model_type"])
	}

	cfg, err := maskformer.FromMap(m)
	if err != nil {
		t.Fatalf("FromMap(defaults): %v", err)
	}
	if cfg.NumLabels != 150 {
		t.Errorf("num_labels = %d, want 150", cfg.NumLabels)
	}
}

// TestShowHandlerInlineConfig testet POST /api/show mit Inline-Map
func TestShowHandlerInlineConfig(t *testing.T) {
	h, _ := newTestRouter(t)

	req := api.ShowRequest{Config: maskformer.Default().ToMap(), KV: true}
	w := doJSON(t, h, http.MethodPost, "/api/show", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp api.ShowResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ModelType != "maskformer" {
		t.Errorf("model_type = %q, want maskformer", resp.ModelType)
	}
	if resp.Backbone.ModelType != "swin" {
		t.Errorf("backbone.model_type = %q, want swin", resp.Backbone.ModelType)
	}
	if resp.Decoder.NumQueries != 100 {
		t.Errorf("decoder.num_queries = %d, want 100", resp.Decoder.NumQueries)
	}
	if resp.NumAttentionHeads != 8 || resp.NumHiddenLayers != 6 {
		t.Errorf("abgeleitete Werte = %d/%d, want 8/6", resp.NumAttentionHeads, resp.NumHiddenLayers)
	}
	if resp.ParameterCount == 0 {
		t.Error("parameter_count sollte > 0 sein")
	}
	if resp.KV["general.architecture"] != "maskformer" {
		t.Errorf("kv general.architecture = %v", resp.KV["general.architecture"])
	}
}

// TestShowHandlerUnsupportedBackbone testet die Ablehnung eines nicht
// unterstuetzten Backbone-Typs
func TestShowHandlerUnsupportedBackbone(t *testing.T) {
	h, _ := newTestRouter(t)

	req := api.ShowRequest{Config: map[string]any{
		"backbone_config": map[string]any{"model_type": "resnet"},
	}}
	w := doJSON(t, h, http.MethodPost, "/api/show", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "resnet") {
		t.Errorf("Fehlermeldung sollte den Backbone-Typ nennen: %s", w.Body.String())
	}
}

// TestShowHandlerMissingInput testet den Fehler bei leerem Request
func TestShowHandlerMissingInput(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/show", api.ShowRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// TestValidateHandler testet die parallele Validierung mit stabiler
// Ergebnis-Reihenfolge
func TestValidateHandler(t *testing.T) {
	h, _ := newTestRouter(t)

	req := api.ValidateRequest{Configs: []map[string]any{
		maskformer.Default().ToMap(),
		{"backbone_config": map[string]any{"model_type": "vit"}},
		{"num_labels": float64(19)},
	}}
	w := doJSON(t, h, http.MethodPost, "/api/validate", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp api.ValidateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(resp.Results))
	}
	if !resp.Results[0].Valid || resp.Results[0].ModelType != "maskformer" {
		t.Errorf("results[0] = %+v, want valid maskformer", resp.Results[0])
	}
	if resp.Results[1].Valid {
		t.Error("results[1] sollte invalid sein (vit backbone)")
	}
	if !resp.Results[2].Valid {
		t.Errorf("results[2] sollte valid sein (Defaults greifen): %+v", resp.Results[2])
	}
	for i, r := range resp.Results {
		if r.Index != i {
			t.Errorf("results[%d].index = %d", i, r.Index)
		}
	}
}

// TestValidateHandlerEmpty testet die Ablehnung leerer Eingaben
func TestValidateHandlerEmpty(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/validate", api.ValidateRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// TestListAndDeleteHandlers testet Store-Listing und Loeschen
func TestListAndDeleteHandlers(t *testing.T) {
	h, st := newTestRouter(t)

	if _, err := st.Put(store.Model{ModelID: "owner/model", ModelType: "maskformer", NumLabels: 150}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	w := doJSON(t, h, http.MethodGet, "/api/models", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	var list api.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Models) != 1 || list.Models[0].ModelID != "owner/model" {
		t.Errorf("models = %+v, want owner/model", list.Models)
	}

	w = doJSON(t, h, http.MethodDelete, "/api/models", api.DeleteRequest{ModelID: "owner/model"})
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodDelete, "/api/models", api.DeleteRequest{ModelID: "owner/model"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete (geloescht) status = %d, want 404", w.Code)
	}
}

// TestPullHandlerMissingModelID testet die Ablehnung ohne model_id
func TestPullHandlerMissingModelID(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/pull", api.PullRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// TestPullHandlerAllFiles testet den Snapshot-Pull gegen einen Hub-Stub:
// config.json wird validiert, die Gewichte landen im Cache und der
// Store-Eintrag wird angelegt
func TestPullHandlerAllFiles(t *testing.T) {
	t.Setenv("MASKFORM_CACHE", t.TempDir())
	modelID := "test-org/test-model"
	files := map[string]string{
		"config.json":       `{"model_type": "maskformer", "num_labels": 150, "backbone_config": {"model_type": "swin"}}`,
		"model.safetensors": "WGHT",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/"+modelID, func(w http.ResponseWriter, r *http.Request) {
		siblings := make([]map[string]any, 0, len(files))
		for name, content := range files {
			siblings = append(siblings, map[string]any{"rfilename": name, "size": len(content)})
		}
		json.NewEncoder(w).Encode(map[string]any{"id": modelID, "siblings": siblings})
	})
	mux.HandleFunc("/"+modelID+"/resolve/main/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/"+modelID+"/resolve/main/")
		content, ok := files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(content))
	})
	hub := httptest.NewServer(mux)
	t.Cleanup(hub.Close)

	st := &store.Store{DBPath: filepath.Join(t.TempDir(), "models.sqlite")}
	t.Cleanup(func() { st.Close() })
	loader := huggingface.NewLoader(huggingface.NewClient(huggingface.WithBaseURL(hub.URL)))
	s := NewServer(st, loader)
	h, err := s.GenerateRoutes()
	if err != nil {
		t.Fatalf("GenerateRoutes: %v", err)
	}

	w := doJSON(t, h, http.MethodPost, "/api/pull", api.PullRequest{ModelID: modelID, AllFiles: true})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp api.PullResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ModelType != "maskformer" {
		t.Errorf("model_type = %q, want maskformer", resp.ModelType)
	}
	if resp.SnapshotFiles != 2 {
		t.Errorf("snapshot_files = %d, want 2", resp.SnapshotFiles)
	}
	if resp.SnapshotBytes == 0 {
		t.Error("snapshot_bytes sollte > 0 sein")
	}
	if !st.Has(modelID, "main") {
		t.Error("Store-Eintrag fehlt nach Pull")
	}
}

// TestAllowedHost testet die Host-Pruefung der Middleware
func TestAllowedHost(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{"", true},
		{"localhost", true},
		{"Localhost", true},
		{"api.localhost", true},
		{"printer.local", true},
		{"db.internal", true},
		{"example.com", false},
	}
	for _, tt := range cases {
		if got := allowedHost(tt.host); got != tt.want {
			t.Errorf("allowedHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
