package wire

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_GetSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schemas/ids/9", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(map[string]string{"schema": testUserSchema})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	got, err := client.GetSchema(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, testUserSchema, got)
}

func TestHTTPClient_GetLatestSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subjects/users-value/versions/latest", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"subject": "users-value",
			"id":      3,
			"version": 2,
			"schema":  testUserSchema,
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	id, version, schemaJSON, err := client.GetLatestSchema(context.Background(), "users-value")
	require.NoError(t, err)
	assert.EqualValues(t, 3, id)
	assert.Equal(t, 2, version)
	assert.Equal(t, testUserSchema, schemaJSON)
}

func TestHTTPClient_GetSchemaByVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subjects/users-value/versions/1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"schema": testUserSchema})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	got, err := client.GetSchemaByVersion(context.Background(), "users-value", 1)
	require.NoError(t, err)
	assert.Equal(t, testUserSchema, got)
}

func TestHTTPClient_RegisterSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subjects/users-value/versions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, testUserSchema, body["schema"])
		json.NewEncoder(w).Encode(map[string]int32{"id": 11})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	id, err := client.RegisterSchema(context.Background(), "users-value", testUserSchema)
	require.NoError(t, err)
	assert.EqualValues(t, 11, id)
}

func TestHTTPClient_GetSchemaID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subjects/users-value", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 4})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	id, err := client.GetSchemaID(context.Background(), "users-value", testUserSchema)
	require.NoError(t, err)
	assert.EqualValues(t, 4, id)
}

func TestHTTPClient_ErrorResponseMapsToRegistryErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error_code": ErrCodeSubjectOrVersionNotFound,
			"message":    "subject not found",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	_, err := client.GetSchema(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestHTTPClient_ErrorResponseWithoutBodyFallsBackToStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	_, err := client.GetSchema(context.Background(), 1)
	require.Error(t, err)
	var re *RegistryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusInternalServerError*100, re.Code)
}
