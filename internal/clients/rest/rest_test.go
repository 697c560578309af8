package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_JSON_RoundTrip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/inventory/makes/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 3, "name": in["name"]})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", srv.Client())

	var out struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	err := c.JSON(context.Background(), http.MethodPost, "/inventory/makes/", map[string]string{"name": "Tesla"}, &out)
	require.NoError(t, err)
	require.Equal(t, 3, out.ID)
	require.Equal(t, "Tesla", out.Name)
}

func TestClient_Non2xx_ReturnsHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"detail":"You do not have permission."}`)
	}))
	defer srv.Close()

	err := New(srv.URL, srv.Client()).JSON(context.Background(), http.MethodGet, "/sales", nil, nil)
	require.Error(t, err)
	require.True(t, IsStatus(err, http.StatusForbidden))

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, "You do not have permission.", he.Detail)
}

func TestClient_NoContentAndEmptyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())

	var out map[string]any
	require.NoError(t, c.JSON(context.Background(), http.MethodDelete, "/sales/1", nil, &out))
	require.NoError(t, c.JSON(context.Background(), http.MethodGet, "/empty", nil, &out))
	require.Nil(t, out)
}

func TestClient_BytesOutKeepsBodyVerbatim(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var raw []byte
	require.NoError(t, New(srv.URL, srv.Client()).JSON(context.Background(), http.MethodPost, "/x", nil, &raw))
	require.Equal(t, "not json", string(raw))

	var out map[string]any
	err := New(srv.URL, srv.Client()).JSON(context.Background(), http.MethodPost, "/x", nil, &out)
	require.ErrorContains(t, err, "decode response")
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url, nil).JSON(context.Background(), http.MethodGet, "/x", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "do request")
	require.Equal(t, 0, StatusOf(err))
}
