package speechvendor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRecognitionBody(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, recognitionSubmitPath, r.URL.Path)
		assert.Equal(t, resourceBigASR, r.Header.Get("X-Api-Resource-Id"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("X-Api-Status-Code", statusCodeSuccess)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	taskID, err := client.SubmitRecognition(context.Background(), RecognitionRequest{
		AudioURL: "https://host/a.mp3",
		Format:   "mp3",
		Language: "zh-CN",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	audio, ok := body["audio"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://host/a.mp3", audio["url"])
	assert.Equal(t, "mp3", audio["format"])
	request, ok := body["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bigmodel", request["model_name"])
	assert.Equal(t, "zh-CN", request["language"])
}

func TestSubmitRecognitionOmitsEmptyLanguage(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("X-Api-Status-Code", statusCodeSuccess)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.SubmitRecognition(context.Background(), RecognitionRequest{
		AudioURL: "https://host/a.wav",
		Format:   "wav",
	})
	require.NoError(t, err)

	request, ok := body["request"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, request, "language")
}

func TestSubmitRecognitionRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Api-Status-Code", "45000001")
		w.Header().Set("X-Api-Message", "bad audio url")
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.SubmitRecognition(context.Background(), RecognitionRequest{
		AudioURL: "https://host/a.wav",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "45000001")
}

func TestQueryRecognitionReadsStatusHeadersAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, recognitionQueryPath, r.URL.Path)
		w.Header().Set("X-Api-Status-Code", statusCodeSuccess)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"text":"hello there"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	status, err := client.QueryRecognition(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, statusCodeSuccess, status.Code)
	assert.Equal(t, "hello there", status.Text)
	assert.True(t, status.done())
}
