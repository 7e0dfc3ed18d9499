// client_test.go - Tests fuer den API-Client
//
// Testet die Request/Response-Verarbeitung des Clients gegen einen
// httptest-Server sowie das Fehler-Mapping von checkError.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return NewClient(base, srv.Client())
}

// TestClientVersion testet GET /api/version
func TestClientVersion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/version", r.URL.Path)
		json.NewEncoder(w).Encode(VersionResponse{Version: "1.2.3"})
	})

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.2.3", version)
}

// TestClientShow testet das Marshalling von Request und Response
func TestClientShow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/show", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ShowRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "facebook/maskformer-swin-base-ade", req.ModelID)
		require.True(t, req.KV)

		json.NewEncoder(w).Encode(ShowResponse{
			ModelType: "maskformer",
			NumLabels: 150,
			Backbone:  BackboneInfo{ModelType: "swin"},
		})
	})

	resp, err := client.Show(context.Background(), &ShowRequest{
		ModelID: "facebook/maskformer-swin-base-ade",
		KV:      true,
	})
	require.NoError(t, err)
	require.Equal(t, "maskformer", resp.ModelType)
	require.Equal(t, 150, resp.NumLabels)
	require.Equal(t, "swin", resp.Backbone.ModelType)
}

// TestClientValidate testet den Validate-Aufruf
func TestClientValidate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ValidateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Configs, 2)

		json.NewEncoder(w).Encode(ValidateResponse{Results: []ValidateResult{
			{Index: 0, Valid: true, ModelType: "maskformer"},
			{Index: 1, Valid: false, Error: "backbone not supported"},
		}})
	})

	resp, err := client.Validate(context.Background(), &ValidateRequest{
		Configs: []map[string]any{{}, {"backbone_config": map[string]any{"model_type": "vit"}}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	require.True(t, resp.Results[0].Valid)
	require.False(t, resp.Results[1].Valid)
}

// TestClientStatusError testet das Fehler-Mapping fuer HTTP-Fehler
func TestClientStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "model not found"})
	})

	_, err := client.List(context.Background())
	require.Error(t, err)

	var statusErr StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Contains(t, statusErr.Error(), "model not found")
}

// TestClientStatusErrorPlainBody testet nicht-JSON Fehlerantworten
func TestClientStatusErrorPlainBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream gone"))
	})

	_, err := client.Defaults(context.Background())
	require.Error(t, err)

	var statusErr StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	require.Contains(t, statusErr.Error(), "upstream gone")
}

// TestClientDelete testet DELETE /api/models
func TestClientDelete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/models", r.URL.Path)

		var req DeleteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "owner/model", req.ModelID)
		w.WriteHeader(http.StatusOK)
	})

	err := client.Delete(context.Background(), &DeleteRequest{ModelID: "owner/model"})
	require.NoError(t, err)
}
