package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bolsillo-claro/cli/internal/client"
	"github.com/bolsillo-claro/cli/internal/models"
)

type Dashboard struct {
	client *client.Client
}

func NewDashboard(c *client.Client) *Dashboard {
	return &Dashboard{client: c}
}

// Summary returns the overview for month (YYYY-MM), or the current month
// when month is empty.
func (d *Dashboard) Summary(ctx context.Context, month string) (*models.DashboardSummary, error) {
	req := client.NewRequest(http.MethodGet, EndpointDashboardSummary)
	if len(month) > 0 {
		req.WithQuery(url.Values{"month": []string{month}})
	}

	res, err := d.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var summary models.DashboardSummary
	if err := res.Decode(&summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
