package cloud

import (
	"context"
	"fmt"
	"strings"
)

const (
	BackendNone     = "none"
	BackendBolt     = "bolt"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	BoltPath    string
	PostgresDSN string
	S3          S3Options
}

// Open builds the configured backend. BackendNone (or empty) returns a nil
// Store, which callers treat as "no cloud mirror".
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendNone:
		return nil, nil
	case BackendBolt:
		s, err := OpenBolt(opts.BoltPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendS3:
		s, err := NewS3Store(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		s, err := OpenPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, newError(OpOpen, "", "", fmt.Errorf("unknown cloud backend %q", opts.Backend))
	}
}
