package csvapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/errors"
)

func TestFetchDecodesRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte("Phone Number,Amount\n9876543210,500\n"))
	}))
	defer srv.Close()

	raws, err := New("transactions", srv.URL, "secret").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "500", raws[0].Values["Amount"])
}

func TestFetchKeepsExistingAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "embedded", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(""))
	}))
	defer srv.Close()

	c := New("transactions", srv.URL+"?api_key=embedded", "other")
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)
}

func TestFetchEmptyBodyYieldsZeroRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	raws, err := New("transactions", srv.URL, "").Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestFetchNon2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New("transactions", srv.URL, "").Fetch(context.Background())
	require.Error(t, err)
	var fe *errors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
}
