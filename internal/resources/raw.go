package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bolsillo-claro/cli/internal/client"
)

// Fetch reads any endpoint and returns the body untouched.
func Fetch(ctx context.Context, c *client.Client, endpoint string, query url.Values, noCache bool) (*client.Response, error) {
	req := client.NewRequest(http.MethodGet, ResolveEndpoint(endpoint)).WithQuery(query)
	req.NoCache = noCache
	return c.Do(ctx, req)
}
