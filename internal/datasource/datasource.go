// Package datasource opens the raw bytes behind a configured input path.
package datasource

import (
	"context"
	"io"
	"strings"

	"catalogetl/internal/datasource/file"
	"catalogetl/internal/datasource/httpds"
)

// Source yields a fresh reader over one input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// For picks the Source for location: http(s) URLs go through the retrying
// HTTP client, everything else is a local path.
func For(location string, client *httpds.Client) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if client == nil {
			client = httpds.NewClient(httpds.Config{})
		}
		return httpds.NewSource(client, location)
	}
	return file.NewLocal(location)
}
