package speechvendor

import (
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"shareboard/internal/config"
)

// Client talks to the speech vendor's HTTP API: streaming synthesis,
// recognition submit/query, and voice-clone upload/status. Authentication is
// a static app id + access token pair from process configuration.
type Client struct {
	http         *resty.Client
	baseURL      string
	appID        string
	accessToken  string
	pollInterval time.Duration
	pollBudget   time.Duration
	log          zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	logger := log.With().Str("component", "speech-vendor").Logger()

	client := resty.New().SetTimeout(cfg.SpeechHTTPTimeout)
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		logger.Debug().
			Int("status", r.StatusCode()).
			Str("method", r.Request.Method).
			Str("url", r.Request.URL).
			Dur("latency", r.Duration()).
			Msg("vendor HTTP request")
		return nil
	})

	return &Client{
		http:         client,
		baseURL:      cfg.SpeechAPIBase,
		appID:        cfg.SpeechAppID,
		accessToken:  cfg.SpeechAccessToken,
		pollInterval: cfg.SpeechPollEvery,
		pollBudget:   cfg.SpeechPollBudget,
		log:          logger,
	}
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}
