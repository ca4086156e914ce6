package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/matanmalka1/actiongate/internal/adapter/outbound/httpapi"
	"github.com/matanmalka1/actiongate/internal/adapter/outbound/journal"
	"github.com/matanmalka1/actiongate/internal/config"
)

// ErrNoBaseURL is returned when a dispatcher is requested without a
// configured backend.
var ErrNoBaseURL = errors.New("api.base_url is not configured")

// NewDispatcherFromConfig assembles the runtime dispatcher from
// configuration: HTTP timeout, optional dispatch journal (with a prune of
// entries past the retention window). The returned closer releases the
// journal store; it is non-nil even when journaling is disabled.
func NewDispatcherFromConfig(ctx context.Context, cfg *config.EngineConfig, opts ...httpapi.Option) (*httpapi.Dispatcher, func() error, error) {
	if cfg.API.BaseURL == "" {
		return nil, nil, ErrNoBaseURL
	}

	timeout, err := time.ParseDuration(cfg.API.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("parse api.timeout: %w", err)
	}

	closer := func() error { return nil }
	options := []httpapi.Option{httpapi.WithHTTPClient(&http.Client{Timeout: timeout})}

	if cfg.Journal.Enabled {
		store, err := journal.NewSQLiteStore(cfg.Journal.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open dispatch journal: %w", err)
		}
		cutoff := time.Now().AddDate(0, 0, -cfg.Journal.RetentionDays)
		if _, err := store.Prune(ctx, cutoff); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("prune dispatch journal: %w", err)
		}
		options = append(options, httpapi.WithJournal(store))
		closer = store.Close
	}

	options = append(options, opts...)
	return httpapi.NewDispatcher(cfg.API.BaseURL, options...), closer, nil
}
