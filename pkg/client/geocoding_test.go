package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Auckland", "Auckland"},
		{"New York", "New+York"},
		{"Rock & Roll", "Rock+%26+Roll"},
		{"a-b_c.d~e", "a-b_c.d~e"},
		{"São Paulo", "S%C3%A3o+Paulo"},
		{"x/y?z=1", "x%2Fy%3Fz%3D1"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeName(tt.in))
		})
	}
}

func TestGeocodingSearch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"name":"New York","country":"United States","latitude":40.71427,"longitude":-74.00597},{"name":"Other","latitude":1,"longitude":1}]}`))
	}))
	defer server.Close()

	c := NewGeocodingClient(server.URL, ClientConfig{}, nil)
	result, err := c.Search(context.Background(), "New York")
	require.NoError(t, err)

	assert.Equal(t, "name=New+York&count=1&language=en&format=json", gotQuery)
	assert.Equal(t, "New York", result.Name)
	assert.Equal(t, "United States", result.Country)
	assert.InDelta(t, 40.71427, result.Latitude, 1e-9)
	assert.InDelta(t, -74.00597, result.Longitude, 1e-9)
}

func TestGeocodingSearchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "no results key",
			status: http.StatusOK,
			body:   `{"generationtime_ms":0.5}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoResults)
			},
		},
		{
			name:   "empty results",
			status: http.StatusOK,
			body:   `{"results":[]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoResults)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
			check: func(t *testing.T, err error) {
				var netErr *NetworkError
				require.True(t, errors.As(err, &netErr))
				assert.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"results":[`,
			check: func(t *testing.T, err error) {
				var decErr *DecodeError
				assert.True(t, errors.As(err, &decErr))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewGeocodingClient(server.URL, ClientConfig{}, nil)
			_, err := c.Search(context.Background(), "Nowhere")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
