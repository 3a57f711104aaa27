package speechvendor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"

	"shareboard/internal/utils/platformerrors"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	httpClient := resty.New().SetTimeout(5 * time.Second)
	t.Cleanup(func() { _ = httpClient.Close() })
	return &Client{
		http:         httpClient,
		baseURL:      baseURL,
		appID:        "test-app",
		accessToken:  "test-token",
		pollInterval: 5 * time.Millisecond,
		pollBudget:   100 * time.Millisecond,
		log:          zerolog.Nop(),
	}
}

func TestSynthesizeReturnsConcatenatedAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-app", r.Header.Get("X-Api-App-Key"))
		assert.Equal(t, resourceSeedTTS, r.Header.Get("X-Api-Resource-Id"))
		w.Write([]byte("{\"audio\":\"QQ==\"}\n{\"audio\":\"Qg==\"}\n"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	audio, err := client.Synthesize(context.Background(), SynthesizeRequest{
		Text:     "hello",
		Speaker:  "zh_female_cancan",
		Encoding: "mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("AB"), audio)
}

func TestSynthesizeRetriesOnceOnResourceMismatch(t *testing.T) {
	var resourceIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resourceIDs = append(resourceIDs, r.Header.Get("X-Api-Resource-Id"))
		if r.Header.Get("X-Api-Resource-Id") != resourceMegaTTSDefault {
			w.Write([]byte(`{"code":55000001,"message":"resource id mismatched with the speaker"}` + "\n"))
			return
		}
		w.Write([]byte("{\"audio\":\"QQ==\"}\n"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	audio, err := client.Synthesize(context.Background(), SynthesizeRequest{
		Text:     "hello",
		Speaker:  "S_abc123",
		Encoding: "mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), audio)
	// S_ speakers start on the default megatts resource, so the first
	// attempt already succeeds and no fallback fires.
	assert.Equal(t, []string{resourceMegaTTSDefault}, resourceIDs)
}

func TestSynthesizeFallsBackThroughResourceCandidates(t *testing.T) {
	var resourceIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resourceIDs = append(resourceIDs, r.Header.Get("X-Api-Resource-Id"))
		if r.Header.Get("X-Api-Resource-Id") == resourceSeedTTS {
			w.Write([]byte(`{"code":55000001,"message":"resource id mismatched"}` + "\n"))
			return
		}
		w.Write([]byte("{\"audio\":\"QQ==\"}\n"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	audio, err := client.Synthesize(context.Background(), SynthesizeRequest{
		Text:     "hello",
		Speaker:  "zh_female_cancan",
		Encoding: "mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), audio)
	require.Len(t, resourceIDs, 2)
	assert.Equal(t, resourceSeedTTS, resourceIDs[0])
	assert.NotEqual(t, resourceSeedTTS, resourceIDs[1])
}

func TestSynthesizeDoesNotRetryOtherFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":500,"message":"internal error"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Synthesize(context.Background(), SynthesizeRequest{
		Text:     "hello",
		Speaker:  "zh_female_cancan",
		Encoding: "mp3",
	})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeVendorHTTP))
	assert.Equal(t, 1, calls)
}

func TestSynthesizeSpeedFallbackLadder(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)

		audio := body["audio"].(map[string]any)
		_, hasRatio := audio["speed_ratio"]
		_, hasRate := audio["speech_rate"]
		if hasRatio || hasRate {
			w.Write([]byte(`{"code":40000001,"message":"invalid speed parameter"}` + "\n"))
			return
		}
		w.Write([]byte("{\"audio\":\"QQ==\"}\n"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	audio, err := client.Synthesize(context.Background(), SynthesizeRequest{
		Text:       "hello",
		Speaker:    "zh_female_cancan",
		Encoding:   "mp3",
		SpeedRatio: 1.5,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), audio)
	require.Len(t, bodies, 3)

	firstAudio := bodies[0]["audio"].(map[string]any)
	assert.Contains(t, firstAudio, "speed_ratio")
	secondAudio := bodies[1]["audio"].(map[string]any)
	assert.Contains(t, secondAudio, "speech_rate")
	assert.Equal(t, float64(50), secondAudio["speech_rate"])
	thirdAudio := bodies[2]["audio"].(map[string]any)
	assert.NotContains(t, thirdAudio, "speed_ratio")
	assert.NotContains(t, thirdAudio, "speech_rate")
}

func TestSynthesizeEmptyStreamClassification(t *testing.T) {
	t.Run("mismatch frame", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code":55000001,"message":"mismatch"}` + "\n"))
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)
		_, err := client.Synthesize(context.Background(), SynthesizeRequest{
			Text: "hello", Speaker: "ICL_voice", Encoding: "mp3",
		})
		require.Error(t, err)
		// Every candidate reports a mismatch, so the final error keeps
		// the mismatch type.
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeResourceMismatch))
	})

	t.Run("no audio frames", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"event":"done"}` + "\n"))
		}))
		defer srv.Close()

		client := newTestClient(t, srv.URL)
		_, err := client.Synthesize(context.Background(), SynthesizeRequest{
			Text: "hello", Speaker: "zh_female_cancan", Encoding: "mp3",
		})
		require.Error(t, err)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeEmptyAudio))
	})
}

func TestSynthesizeRequiresText(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0")
	_, err := client.Synthesize(context.Background(), SynthesizeRequest{Speaker: "x"})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}
