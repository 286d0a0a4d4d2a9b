package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Sydney, Australia", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "atlas-test/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"-33.8688197","lon":"151.2092955","display_name":"Sydney, NSW, Australia"}]`))
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL+"/", "atlas-test/1.0", srv.Client())
	got, err := c.Search(context.Background(), "Sydney, Australia")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "-33.8688197", got[0].Lat)
	assert.Equal(t, "151.2092955", got[0].Lon)
}

func TestNominatimEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	got, err := NewNominatimClient(srv.URL, "ua", nil).Search(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNominatimBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewNominatimClient(srv.URL, "ua", nil).Search(context.Background(), "Sydney")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadStatus))
}

func TestNominatimDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewNominatimClient(srv.URL, "ua", nil).Search(context.Background(), "Sydney")
	require.Error(t, err)
}
