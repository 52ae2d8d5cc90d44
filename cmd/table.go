package cmd

import (
	"context"

	"github.com/communityhub/importer/internal/fetch"
	"github.com/communityhub/importer/internal/headers"
)

// loadTable reads src from disk, or downloads it when src is a URL.
func loadTable(ctx context.Context, src string, opts ...headers.Option) (*headers.Table, error) {
	if fetch.IsURL(src) {
		return fetch.NewFetcher().Fetch(ctx, src, opts...)
	}
	return headers.NewLoader(src).Load(opts...)
}
