package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecord_Success(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/app123/Property%20Leads", r.URL.EscapedPath())
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"records":[{"id":"rec1"}]}`))
	}))
	defer srv.Close()

	client := NewClient("key", "app123", WithBaseURL(srv.URL))
	err := client.CreateRecord(context.Background(), "Property Leads", map[string]interface{}{"firstName": "Jane"})
	require.NoError(t, err)

	records := got["records"].([]interface{})
	require.Len(t, records, 1)
	fields := records[0].(map[string]interface{})["fields"].(map[string]interface{})
	assert.Equal(t, "Jane", fields["firstName"])
	assert.Equal(t, true, got["typecast"])
}

func TestCreateRecord_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"INVALID_VALUE"}`))
	}))
	defer srv.Close()

	client := NewClient("key", "app123", WithBaseURL(srv.URL))
	err := client.CreateRecord(context.Background(), "Leads", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "INVALID_VALUE")
}

func TestCreateRecord_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient("key", "app123", WithBaseURL(srv.URL))
	err := client.CreateRecord(context.Background(), "Leads", nil)

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
