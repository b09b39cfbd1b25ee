// internal/provider/viewmodel.go
//
// Provider dashboard state: the stats tiles, the available-offer list, and
// the accepted-job list. The three are independent backend views fetched in
// parallel; the view model never derives one from another. Accepting an
// offer is two-phase: the accept call claims the job, then my-jobs is
// refetched so the assignment snapshot comes from the backend rather than
// being synthesized locally.

package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Sonalgupta2005/QuickFixhub/internal/api"
	"github.com/Sonalgupta2005/QuickFixhub/internal/logbook"
	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
	"github.com/Sonalgupta2005/QuickFixhub/internal/viewmodel"
)

// Backend is the slice of the API client the provider view needs.
type Backend interface {
	DashboardSummary(ctx context.Context) (api.ProviderStats, error)
	AvailableJobs(ctx context.Context) ([]request.ServiceRequest, error)
	MyJobs(ctx context.Context) ([]request.ServiceRequest, error)
	AcceptOffer(ctx context.Context, id string) error
	RejectOffer(ctx context.Context, id string) error
	StartJob(ctx context.Context, id string) error
	CompleteJob(ctx context.Context, id string) error
}

var _ Backend = (*api.Client)(nil)

// ViewModel tracks the signed-in provider's dashboard.
type ViewModel struct {
	backend Backend
	log     *logbook.Logbook

	guard viewmodel.Guard

	mu        sync.Mutex
	stats     api.ProviderStats
	available []request.ServiceRequest
	jobs      []request.ServiceRequest
}

// New returns an empty view model; call Refresh to populate it.
func New(backend Backend, log *logbook.Logbook) *ViewModel {
	return &ViewModel{backend: backend, log: log}
}

// Refresh fetches the stats, the available offers, and the assigned jobs
// concurrently. Each fetch fails independently: a list whose fetch failed
// degrades to empty, the others keep their fresh results. The first error
// is returned so the view can surface it.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	var (
		stats     api.ProviderStats
		available []request.ServiceRequest
		jobs      []request.ServiceRequest
	)
	var g errgroup.Group
	g.Go(func() error {
		s, err := vm.backend.DashboardSummary(ctx)
		if err != nil {
			return fmt.Errorf("dashboard summary: %w", err)
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		reqs, err := vm.backend.AvailableJobs(ctx)
		if err != nil {
			return fmt.Errorf("available jobs: %w", err)
		}
		available = reqs
		return nil
	})
	g.Go(func() error {
		reqs, err := vm.backend.MyJobs(ctx)
		if err != nil {
			return fmt.Errorf("my jobs: %w", err)
		}
		jobs = reqs
		return nil
	})
	err := g.Wait()

	vm.mu.Lock()
	vm.stats = stats
	vm.available = available
	vm.jobs = jobs
	vm.mu.Unlock()

	if err != nil {
		vm.log.Warn("provider refresh failed: %v", err)
		return fmt.Errorf("refresh dashboard: %w", err)
	}
	return nil
}

// Stats returns the last fetched counters.
func (vm *ViewModel) Stats() api.ProviderStats {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.stats
}

// Available returns a copy of the current offer list.
func (vm *ViewModel) Available() []request.ServiceRequest {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]request.ServiceRequest, len(vm.available))
	copy(out, vm.available)
	return out
}

// Jobs returns a copy of the current assigned-job list.
func (vm *ViewModel) Jobs() []request.ServiceRequest {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]request.ServiceRequest, len(vm.jobs))
	copy(out, vm.jobs)
	return out
}

// Accept claims an offered request. On success the row leaves the offer
// list and my-jobs is refetched so the accepted job arrives with the
// backend's assignment snapshot already populated.
func (vm *ViewModel) Accept(ctx context.Context, id string) error {
	if err := vm.guard.Begin(id); err != nil {
		return err
	}
	defer vm.guard.End(id)

	if err := vm.precheckOffer(ctx, id); err != nil {
		return err
	}
	if err := vm.backend.AcceptOffer(ctx, id); err != nil {
		vm.log.Warn("accept %s rejected: %v", id, err)
		vm.resyncOnConflict(ctx, err)
		return fmt.Errorf("accept %s: %w", id, err)
	}
	vm.removeAvailable(id)

	jobs, err := vm.backend.MyJobs(ctx)
	if err != nil {
		// The accept itself landed; the job shows up on the next refresh.
		vm.log.Warn("my-jobs refetch after accept %s failed: %v", id, err)
		return nil
	}
	vm.mu.Lock()
	vm.jobs = jobs
	vm.mu.Unlock()
	vm.log.Info("accepted job %s", id)
	return nil
}

// Reject declines an offered request. The row leaves the offer list and
// nothing else changes; whether the backend re-offers the request to
// someone else is its business.
func (vm *ViewModel) Reject(ctx context.Context, id string) error {
	if err := vm.guard.Begin(id); err != nil {
		return err
	}
	defer vm.guard.End(id)

	if err := vm.precheckOffer(ctx, id); err != nil {
		return err
	}
	if err := vm.backend.RejectOffer(ctx, id); err != nil {
		vm.log.Warn("reject %s failed: %v", id, err)
		vm.resyncOnConflict(ctx, err)
		return fmt.Errorf("reject %s: %w", id, err)
	}
	vm.removeAvailable(id)
	vm.log.Info("declined offer %s", id)
	return nil
}

// Start moves an accepted job to in_progress. The status window is checked
// locally first; a job that is not accepted is rejected without a call.
func (vm *ViewModel) Start(ctx context.Context, id string) error {
	if err := vm.guard.Begin(id); err != nil {
		return err
	}
	defer vm.guard.End(id)

	if err := vm.precheckJob(id, request.ActionStart); err != nil {
		return err
	}
	if err := vm.backend.StartJob(ctx, id); err != nil {
		vm.log.Warn("start %s rejected: %v", id, err)
		vm.resyncOnConflict(ctx, err)
		return fmt.Errorf("start %s: %w", id, err)
	}
	vm.setJobStatus(id, request.StatusInProgress)
	vm.log.Info("started job %s", id)
	return nil
}

// Complete finishes an in-progress job. On success the row leaves the
// jobs list, which holds only work still in front of the provider, and
// the stats are refetched since completion moves the counters and
// earnings on the backend.
func (vm *ViewModel) Complete(ctx context.Context, id string) error {
	if err := vm.guard.Begin(id); err != nil {
		return err
	}
	defer vm.guard.End(id)

	if err := vm.precheckJob(id, request.ActionComplete); err != nil {
		return err
	}
	if err := vm.backend.CompleteJob(ctx, id); err != nil {
		vm.log.Warn("complete %s rejected: %v", id, err)
		vm.resyncOnConflict(ctx, err)
		return fmt.Errorf("complete %s: %w", id, err)
	}
	vm.removeJob(id)
	vm.log.Info("completed job %s", id)

	if stats, err := vm.backend.DashboardSummary(ctx); err == nil {
		vm.mu.Lock()
		vm.stats = stats
		vm.mu.Unlock()
	}
	return nil
}

// CanAct reports whether the action affordance for a row should be live:
// the status window must allow it and no call may be in flight for the id.
func (vm *ViewModel) CanAct(r request.ServiceRequest, action request.Action) bool {
	return request.Allowed(r.Status, action, request.RoleProvider) && !vm.guard.Busy(r.ID)
}

func (vm *ViewModel) precheckOffer(ctx context.Context, id string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.available {
		if vm.available[i].ID == id {
			if vm.available[i].Status != request.StatusOffered {
				return fmt.Errorf("offer %s is %s: %w", id, vm.available[i].Status, api.ErrInvalidTransition)
			}
			return nil
		}
	}
	return fmt.Errorf("offer %s: %w", id, api.ErrNotFound)
}

func (vm *ViewModel) precheckJob(id string, action request.Action) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.jobs {
		if vm.jobs[i].ID == id {
			if !request.Allowed(vm.jobs[i].Status, action, request.RoleProvider) {
				return fmt.Errorf("%s from %s: %w", action, vm.jobs[i].Status, api.ErrInvalidTransition)
			}
			return nil
		}
	}
	return fmt.Errorf("job %s: %w", id, api.ErrNotFound)
}

// resyncOnConflict refetches both lists after a semantic rejection, e.g.
// an offer that expired or was cancelled while displayed. Optimistic state
// is never trusted past a failed mutation.
func (vm *ViewModel) resyncOnConflict(ctx context.Context, err error) {
	if !errors.Is(err, api.ErrInvalidTransition) && !errors.Is(err, api.ErrNotFound) {
		return
	}
	available, aerr := vm.backend.AvailableJobs(ctx)
	jobs, jerr := vm.backend.MyJobs(ctx)
	vm.mu.Lock()
	if aerr == nil {
		vm.available = available
	}
	if jerr == nil {
		vm.jobs = jobs
	}
	vm.mu.Unlock()
}

func (vm *ViewModel) removeAvailable(id string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.available {
		if vm.available[i].ID == id {
			vm.available = append(vm.available[:i], vm.available[i+1:]...)
			return
		}
	}
}

func (vm *ViewModel) removeJob(id string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.jobs {
		if vm.jobs[i].ID == id {
			vm.jobs = append(vm.jobs[:i], vm.jobs[i+1:]...)
			return
		}
	}
}

func (vm *ViewModel) setJobStatus(id string, status request.Status) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.jobs {
		if vm.jobs[i].ID == id {
			vm.jobs[i].Status = status
			return
		}
	}
}
