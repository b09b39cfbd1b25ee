// internal/api/provider.go
//
// Provider-facing dashboard and job routes. All transition endpoints
// answer 2xx on success; the status mapping in do covers the rest.

package api

import (
	"context"
	"net/http"

	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

// ProviderStats is the dedicated dashboard summary read. It is an
// independent view from the job lists and is never derived from them; a
// stale value is fixed by refetching, not by counting jobs locally.
type ProviderStats struct {
	JobsCompleted int     `json:"jobsCompleted"`
	ActiveJobs    int     `json:"activeJobs"`
	Rating        float64 `json:"rating"`
	Earnings      float64 `json:"earnings"`
}

type statsEnvelope struct {
	Stats ProviderStats `json:"stats"`
}

type jobsEnvelope struct {
	Jobs []request.ServiceRequest `json:"jobs"`
}

// DashboardSummary fetches the provider's aggregate counters.
func (c *Client) DashboardSummary(ctx context.Context) (ProviderStats, error) {
	var env statsEnvelope
	if err := c.do(ctx, http.MethodGet, "/provider/dashboard/summary", nil, &env); err != nil {
		return ProviderStats{}, err
	}
	return env.Stats, nil
}

// AvailableJobs fetches requests offered to this provider that they have
// neither accepted nor rejected.
func (c *Client) AvailableJobs(ctx context.Context) ([]request.ServiceRequest, error) {
	var env jobsEnvelope
	if err := c.do(ctx, http.MethodGet, "/provider/jobs/available", nil, &env); err != nil {
		return nil, err
	}
	return env.Jobs, nil
}

// MyJobs fetches requests assigned to this provider.
func (c *Client) MyJobs(ctx context.Context) ([]request.ServiceRequest, error) {
	var env jobsEnvelope
	if err := c.do(ctx, http.MethodGet, "/provider/jobs/my", nil, &env); err != nil {
		return nil, err
	}
	return env.Jobs, nil
}

// AcceptOffer claims an offered request for this provider.
func (c *Client) AcceptOffer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/provider/offers/"+id+"/accept", nil, nil)
}

// RejectOffer declines an offer; the request stays visible to others.
func (c *Client) RejectOffer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/provider/offers/"+id+"/reject", nil, nil)
}

// StartJob moves an accepted job to in_progress.
func (c *Client) StartJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/provider/jobs/"+id+"/start", nil, nil)
}

// CompleteJob finishes an in-progress job.
func (c *Client) CompleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/provider/jobs/"+id+"/complete", nil, nil)
}
