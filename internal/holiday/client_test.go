package holiday

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{BaseURL: srv.URL + "/"}), &calls
}

func TestClient_Fetch(t *testing.T) {
	var gotPath string
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date":"2025-01-01","localName":"Neujahr","name":"New Year's Day","countryCode":"AT","fixed":true,"global":true},
			{"date":"2025-01-06","localName":"Heilige Drei Könige","name":"Epiphany","countryCode":"AT"}
		]`))
	})

	set, err := client.Fetch(context.Background(), "at", 2025)
	require.NoError(t, err)

	assert.Equal(t, "/api/v3/publicholidays/2025/AT", gotPath)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "AT", set.Country())
	assert.Equal(t, []string{"Neujahr", "Heilige Drei Könige"}, set.Names())
	assert.Equal(t, "Epiphany", set.Records()[1].Name)
}

func TestClient_FetchEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	set, err := client.Fetch(context.Background(), "AT", 2025)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestClient_FetchFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "unknown country", http.StatusNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"date":`))
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestClient(t, tt.handler)

			set, err := client.Fetch(context.Background(), "AT", 2025)
			require.Error(t, err)
			assert.Nil(t, set)
			assert.True(t, errors.Is(err, ErrFetch))
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "no retry expected")

			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.wantStatus, fe.Status)
			assert.Equal(t, "AT", fe.Country)
			assert.Equal(t, 2025, fe.Year)
		})
	}
}

func TestClient_FetchRejectsBadInput(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.Fetch(context.Background(), "AUT", 2025)
	assert.ErrorIs(t, err, ErrFetch)

	_, err = client.Fetch(context.Background(), "AT", 0)
	assert.ErrorIs(t, err, ErrFetch)

	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestClient_FetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.Fetch(context.Background(), "AT", 2025)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 0, fe.Status)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestClient_Observer(t *testing.T) {
	var statuses []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"date":"2025-01-01","localName":"Neujahr"}]`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Observer: func(country, status string, elapsed time.Duration) {
			statuses = append(statuses, country+":"+status)
		},
	})

	_, err := client.Fetch(context.Background(), "at", 2025)
	require.NoError(t, err)
	_, err = client.Fetch(context.Background(), "xx1", 2025)
	require.Error(t, err)

	assert.Equal(t, []string{"AT:success", "XX1:error"}, statuses)
}

func TestFetchError_Error(t *testing.T) {
	err := &FetchError{Country: "AT", Year: 2025, Status: 503, Cause: errors.New("unavailable")}
	assert.Equal(t, "fetch holidays AT/2025 (status 503): unavailable", err.Error())

	err = &FetchError{Country: "AT", Year: 2025}
	assert.Equal(t, "fetch holidays AT/2025", err.Error())
}
