package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
)

func TestFetchExportsTab(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sheet-123/export", r.URL.Path)
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		assert.Equal(t, "42", r.URL.Query().Get("gid"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("Name,Phone Number\nAsha,9876543210\n"))
	}))
	defer srv.Close()

	c := New("leads", "sheet-123", "42", WithToken("tok"), WithBaseURL(srv.URL))
	raws, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "Asha", raws[0].Values["Name"])
}

func TestFetchEmptyTab(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	raws, err := New("leads", "s", "0", WithBaseURL(srv.URL)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestFetchAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New("leads", "s", "0", WithBaseURL(srv.URL)).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAuthFailed)
}

func TestFetchWorksheetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New("leads", "s", "0", WithBaseURL(srv.URL)).Fetch(context.Background())
	var fe *errors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}
