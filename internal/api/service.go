// internal/api/service.go
//
// Homeowner-facing lifecycle routes.

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

type requestsEnvelope struct {
	Success  bool                     `json:"success"`
	Message  string                   `json:"message,omitempty"`
	Requests []request.ServiceRequest `json:"requests"`
}

type requestEnvelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Request request.ServiceRequest `json:"request"`
}

// MyRequests fetches every request owned by the current identity.
func (c *Client) MyRequests(ctx context.Context) ([]request.ServiceRequest, error) {
	var env requestsEnvelope
	if err := c.do(ctx, http.MethodGet, "/service/my-requests", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("api: my-requests rejected: %s", env.Message)
	}
	return env.Requests, nil
}

// CreateRequest submits a new service request. The backend captures the
// requester snapshot from the session and returns the stored request with
// status pending.
func (c *Client) CreateRequest(ctx context.Context, in request.NewRequestInput) (request.ServiceRequest, error) {
	var env requestEnvelope
	if err := c.do(ctx, http.MethodPost, "/service/requests", in, &env); err != nil {
		return request.ServiceRequest{}, err
	}
	if !env.Success {
		return request.ServiceRequest{}, fmt.Errorf("api: create request rejected: %s", env.Message)
	}
	return env.Request, nil
}

// CancelRequest triggers the cancel transition for one request id.
func (c *Client) CancelRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/service/requests/"+id+"/cancel", nil, nil)
}
