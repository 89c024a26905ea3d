//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package morph

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Supported analyzer providers.
const (
	ProviderFreeLing = "freeling"
	ProviderSnowball = "snowball"
)

// Options selects and configures an analyzer for one language.
type Options struct {
	Provider   string
	Language   string
	Address    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Fallback   bool
	Logger     *slog.Logger
}

// New creates the analyzer described by opts.
func New(opts Options) (Lemmatizer, error) {
	var (
		l   Lemmatizer
		err error
	)

	switch strings.ToLower(opts.Provider) {
	case ProviderFreeLing, "":
		l, err = NewClient(ClientConfig{
			Address:    opts.Address,
			Timeout:    opts.Timeout,
			MaxRetries: opts.MaxRetries,
			RetryDelay: opts.RetryDelay,
			Logger:     opts.Logger,
		})
	case ProviderSnowball:
		l, err = NewSnowball(opts.Language)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, opts.Provider)
	}
	if err != nil {
		return nil, err
	}

	if opts.Fallback {
		l = WithFallback(l, opts.Logger)
	}
	return l, nil
}
