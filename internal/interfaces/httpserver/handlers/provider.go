package handlers

import (
	"github.com/rs/zerolog"

	"shareboard/internal/config"
	"shareboard/internal/domain/content"
	"shareboard/internal/domain/convert"
	"shareboard/internal/domain/speech"
	"shareboard/internal/infrastructure/storage"
)

// Provider wires HTTP handlers.
type Provider struct {
	Content  *ContentHandler
	Convert  *ConvertHandler
	Speech   *SpeechHandler
	Settings *SettingsHandler
}

func NewProvider(
	cfg *config.Config,
	contents *content.Service,
	converts *convert.Service,
	speeches *speech.Service,
	cleanup *content.CleanupCell,
	store *storage.LocalStorage,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Content:  NewContentHandler(cfg, contents, log),
		Convert:  NewConvertHandler(converts, log),
		Speech:   NewSpeechHandler(speeches, log),
		Settings: NewSettingsHandler(contents, cleanup, store, log),
	}
}
