package main

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kopi-vm/kopi/pkg/kopilock/glue"
)

type cacheRefreshOptions struct {
	global *GlobalOptions
	URL    string
}

func newCacheRefreshCommand(global *GlobalOptions) *cobra.Command {
	o := &cacheRefreshOptions{global: global}

	cmd := &cobra.Command{
		Use:   "cache-refresh",
		Short: "Refresh the cached JDK release index, serialized against any concurrent cache write.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&o.URL, "url", "", "release index URL to fetch (required)")
	return cmd
}

func (o *cacheRefreshOptions) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return glue.RefreshCache(ctx, httpFetcher{URL: o.URL}, glue.CacheRefreshOptions{
		Home:          o.global.Home,
		Sources:       o.global.sourcesFor("cache"),
		Resolver:      o.global.resolver(),
		Observer:      o.global.observer(),
		CachePath:     cachePath(o.global.Home),
		SchemaVersion: 1,
	})
}

// httpFetcher is the default glue.MetadataFetcher: a plain net/http GET.
// No HTTP client library appears anywhere in the retrieval pack wired to
// a use this module exercises, so the standard library's client is used
// directly rather than introducing an unused dependency (see DESIGN.md).
type httpFetcher struct {
	URL string
}

func (f httpFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build release index request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch release index")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch release index: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read release index response")
	}
	return data, nil
}
