// internal/homeowner/viewmodel.go
//
// Homeowner dashboard state. The view model owns the homeowner's request
// list, recomputes the summary tiles from it, and is the only place that
// mutates either: fetches replace the list wholesale, and a cancel is
// applied locally only after the backend confirms it.

package homeowner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Sonalgupta2005/QuickFixhub/internal/api"
	"github.com/Sonalgupta2005/QuickFixhub/internal/logbook"
	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
	"github.com/Sonalgupta2005/QuickFixhub/internal/viewmodel"
)

// Backend is the slice of the API client the homeowner view needs.
type Backend interface {
	MyRequests(ctx context.Context) ([]request.ServiceRequest, error)
	CreateRequest(ctx context.Context, in request.NewRequestInput) (request.ServiceRequest, error)
	CancelRequest(ctx context.Context, id string) error
}

var _ Backend = (*api.Client)(nil)

// ViewModel tracks the signed-in homeowner's requests.
type ViewModel struct {
	backend Backend
	log     *logbook.Logbook

	guard viewmodel.Guard

	mu       sync.Mutex
	requests []request.ServiceRequest
}

// New returns an empty view model; call Refresh to populate it.
func New(backend Backend, log *logbook.Logbook) *ViewModel {
	return &ViewModel{backend: backend, log: log}
}

// Refresh replaces the request list with the backend's current view.
// On failure the list degrades to empty rather than showing stale rows.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	reqs, err := vm.backend.MyRequests(ctx)
	vm.mu.Lock()
	if err != nil {
		vm.requests = nil
	} else {
		vm.requests = reqs
	}
	vm.mu.Unlock()
	if err != nil {
		vm.log.Warn("homeowner list refresh failed: %v", err)
		return fmt.Errorf("refresh requests: %w", err)
	}
	return nil
}

// Requests returns a copy of the current list.
func (vm *ViewModel) Requests() []request.ServiceRequest {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]request.ServiceRequest, len(vm.requests))
	copy(out, vm.requests)
	return out
}

// Summary recomputes the dashboard tiles from the current list. It never
// touches the network; stale tiles are fixed by Refresh, not by drift.
func (vm *ViewModel) Summary() request.Summary {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return request.Summarize(vm.requests)
}

// Create submits a new request. The returned request is appended to the
// local list so it shows up immediately with whatever status the backend
// assigned it (a fresh request always comes back pending).
func (vm *ViewModel) Create(ctx context.Context, in request.NewRequestInput) (request.ServiceRequest, error) {
	if err := validateNewRequest(in); err != nil {
		return request.ServiceRequest{}, err
	}
	created, err := vm.backend.CreateRequest(ctx, in)
	if err != nil {
		vm.log.Warn("create request failed: %v", err)
		return request.ServiceRequest{}, fmt.Errorf("create request: %w", err)
	}
	vm.mu.Lock()
	vm.requests = append(vm.requests, created)
	vm.mu.Unlock()
	vm.log.Info("created %s request %s", created.ServiceType, created.ID)
	return created, nil
}

// Cancel withdraws a request. The status window is checked locally before
// any call goes out; a request that is already in progress or settled is
// rejected without touching the network. On backend success the row is
// marked cancelled and its assignment fields cleared; on failure the list
// is resynchronized from the backend instead of trusting local state.
func (vm *ViewModel) Cancel(ctx context.Context, id string) error {
	if err := vm.guard.Begin(id); err != nil {
		return err
	}
	defer vm.guard.End(id)

	vm.mu.Lock()
	idx := -1
	for i := range vm.requests {
		if vm.requests[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		vm.mu.Unlock()
		return fmt.Errorf("cancel %s: %w", id, api.ErrNotFound)
	}
	if !request.Allowed(vm.requests[idx].Status, request.ActionCancel, request.RoleHomeowner) {
		status := vm.requests[idx].Status
		vm.mu.Unlock()
		return fmt.Errorf("cancel %s from %s: %w", id, status, api.ErrInvalidTransition)
	}
	vm.mu.Unlock()

	if err := vm.backend.CancelRequest(ctx, id); err != nil {
		vm.log.Warn("cancel %s rejected: %v", id, err)
		if errors.Is(err, api.ErrInvalidTransition) || errors.Is(err, api.ErrNotFound) {
			// The local row was stale; resync rather than guess.
			_ = vm.Refresh(ctx)
		}
		return fmt.Errorf("cancel %s: %w", id, err)
	}

	vm.mu.Lock()
	for i := range vm.requests {
		if vm.requests[i].ID == id {
			vm.requests[i].Status = request.StatusCancelled
			vm.requests[i].AssignedProviderID = ""
			vm.requests[i].ProviderName = ""
			vm.requests[i].ProviderPhone = ""
			vm.requests[i].ProviderEmail = ""
			break
		}
	}
	vm.mu.Unlock()
	vm.log.Info("cancelled request %s", id)
	return nil
}

// CanCancel reports whether the cancel affordance should be shown for a
// row: the status window must allow it and no call may be in flight.
func (vm *ViewModel) CanCancel(r request.ServiceRequest) bool {
	return request.Allowed(r.Status, request.ActionCancel, request.RoleHomeowner) && !vm.guard.Busy(r.ID)
}

func validateNewRequest(in request.NewRequestInput) error {
	if !in.ServiceType.Valid() {
		return &ValidationError{Field: "serviceType", Reason: "pick a service type"}
	}
	if in.Description == "" {
		return &ValidationError{Field: "description", Reason: "describe the problem"}
	}
	if in.Address == "" {
		return &ValidationError{Field: "address", Reason: "address is required"}
	}
	if in.PreferredDate == "" {
		return &ValidationError{Field: "preferredDate", Reason: "pick a preferred date"}
	}
	return nil
}

// ValidationError reports a new-request field that failed the local check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
