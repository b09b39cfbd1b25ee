// internal/homeowner/viewmodel_test.go

package homeowner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sonalgupta2005/QuickFixhub/internal/api"
	"github.com/Sonalgupta2005/QuickFixhub/internal/apitest"
	"github.com/Sonalgupta2005/QuickFixhub/internal/homeowner"
	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

func newViewModel(t *testing.T) (*homeowner.ViewModel, *apitest.Server, *api.Client) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	cfg := api.DefaultConfig()
	cfg.BaseURL = srv.URL()
	cfg.Timeout = 5 * time.Second
	client, err := api.NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)

	srv.SeedHomeowner("Mira Holt", "mira@example.com", "pw", "555-0101")
	if _, err := client.Login(context.Background(), "mira@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return homeowner.New(client, nil), srv, client
}

func create(t *testing.T, vm *homeowner.ViewModel, st request.ServiceType) request.ServiceRequest {
	t.Helper()
	created, err := vm.Create(context.Background(), request.NewRequestInput{
		ServiceType:   st,
		Description:   "leaking pipe under the sink",
		Address:       "12 Elm St",
		PreferredDate: "2026-09-03",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return created
}

func TestCreateAppearsPending(t *testing.T) {
	vm, _, _ := newViewModel(t)

	created := create(t, vm, request.ServicePlumbing)
	if created.Status != request.StatusPending {
		t.Fatalf("new request status = %s, want pending", created.Status)
	}
	if created.HasProvider() {
		t.Fatal("new request must not carry provider fields")
	}

	// Visible locally without a refresh, and on the backend after one.
	if got := vm.Requests(); len(got) != 1 || got[0].ID != created.ID {
		t.Fatalf("local list = %+v, want the created request", got)
	}
	if err := vm.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := vm.Requests(); len(got) != 1 || got[0].Status != request.StatusPending {
		t.Fatalf("refreshed list = %+v", got)
	}
}

func TestCreateValidatesLocally(t *testing.T) {
	vm, _, _ := newViewModel(t)

	_, err := vm.Create(context.Background(), request.NewRequestInput{
		ServiceType: request.ServicePlumbing,
		Address:     "12 Elm St",
	})
	var verr *homeowner.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "description" {
		t.Fatalf("field = %q, want description", verr.Field)
	}
	if got := vm.Requests(); len(got) != 0 {
		t.Fatalf("rejected input must not reach the list, got %+v", got)
	}
}

func TestCancelOfAcceptedClearsAssignment(t *testing.T) {
	vm, srv, _ := newViewModel(t)

	created := create(t, vm, request.ServicePlumbing)

	// A provider picks the job up out of band.
	prov := srv.SeedProvider("Ana Reyes", "ana@example.com", "pw", "555-0102", "4 Oak Ave", request.ServicePlumbing)
	srv.Offer(created.ID, prov.ID)
	acceptAs(t, srv, "ana@example.com", created.ID)

	if err := vm.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	rows := vm.Requests()
	if len(rows) != 1 || rows[0].Status != request.StatusAccepted || !rows[0].HasProvider() {
		t.Fatalf("after accept: %+v", rows)
	}

	if err := vm.Cancel(context.Background(), created.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	rows = vm.Requests()
	if rows[0].Status != request.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", rows[0].Status)
	}
	if rows[0].HasProvider() {
		t.Fatal("cancelled request must not keep provider fields")
	}
	if !rows[0].ConsistentAssignment() {
		t.Fatal("assignment fields inconsistent with status")
	}
	stored, _ := srv.Request(created.ID)
	if stored.Status != request.StatusCancelled || stored.HasProvider() {
		t.Fatalf("backend row after cancel: %+v", stored)
	}
}

func TestCancelRejectedLocallyWhenInProgress(t *testing.T) {
	vm, srv, _ := newViewModel(t)

	created := create(t, vm, request.ServiceElectrical)
	prov := srv.SeedProvider("Ana Reyes", "ana@example.com", "pw", "555-0102", "4 Oak Ave", request.ServiceElectrical)
	srv.Offer(created.ID, prov.ID)
	acceptAs(t, srv, "ana@example.com", created.ID)
	startAs(t, srv, "ana@example.com", created.ID)

	if err := vm.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	err := vm.Cancel(context.Background(), created.ID)
	if !errors.Is(err, api.ErrInvalidTransition) {
		t.Fatalf("cancel in_progress = %v, want ErrInvalidTransition", err)
	}
	// Rejected locally; the row must be untouched.
	if got := vm.Requests(); got[0].Status != request.StatusInProgress {
		t.Fatalf("status = %s, want in_progress", got[0].Status)
	}
	if vm.CanCancel(vm.Requests()[0]) {
		t.Fatal("cancel affordance must be hidden for in_progress")
	}
}

func TestCancelStaleRowResyncs(t *testing.T) {
	vm, srv, _ := newViewModel(t)

	created := create(t, vm, request.ServiceHVAC)
	prov := srv.SeedProvider("Ana Reyes", "ana@example.com", "pw", "555-0102", "4 Oak Ave", request.ServiceHVAC)
	srv.Offer(created.ID, prov.ID)
	acceptAs(t, srv, "ana@example.com", created.ID)
	startAs(t, srv, "ana@example.com", created.ID)

	// The local row still says pending, so the precheck passes and the
	// backend rejects; the list must be resynchronized.
	err := vm.Cancel(context.Background(), created.ID)
	if !errors.Is(err, api.ErrInvalidTransition) {
		t.Fatalf("stale cancel = %v, want ErrInvalidTransition", err)
	}
	if got := vm.Requests(); len(got) != 1 || got[0].Status != request.StatusInProgress {
		t.Fatalf("list after resync = %+v, want in_progress row", got)
	}
}

func TestSummaryCountsActiveAndCompleted(t *testing.T) {
	vm, srv, _ := newViewModel(t)

	a := create(t, vm, request.ServicePlumbing)
	b := create(t, vm, request.ServicePainting)
	create(t, vm, request.ServiceCleaning)

	prov := srv.SeedProvider("Ana Reyes", "ana@example.com", "pw", "555-0102", "4 Oak Ave",
		request.ServicePlumbing, request.ServicePainting)
	srv.Offer(a.ID, prov.ID)
	acceptAs(t, srv, "ana@example.com", a.ID)
	startAs(t, srv, "ana@example.com", a.ID)
	completeAs(t, srv, "ana@example.com", a.ID)
	srv.Offer(b.ID, prov.ID) // offered, not active

	if err := vm.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	sum := vm.Summary()
	if sum.Total != 3 || sum.Completed != 1 || sum.Active != 1 {
		t.Fatalf("summary = %+v, want total 3, completed 1, active 1", sum)
	}
}

func TestRefreshFailureDegradesToEmpty(t *testing.T) {
	vm, srv, _ := newViewModel(t)

	create(t, vm, request.ServiceGeneral)
	if got := vm.Requests(); len(got) != 1 {
		t.Fatalf("list = %+v", got)
	}

	srv.Close()
	if err := vm.Refresh(context.Background()); !errors.Is(err, api.ErrNetwork) {
		t.Fatalf("refresh after shutdown = %v, want ErrNetwork", err)
	}
	if got := vm.Requests(); len(got) != 0 {
		t.Fatalf("list after failed refresh = %+v, want empty", got)
	}
}

// Provider-side helpers drive the backend through its own API so the
// homeowner view only ever sees documented effects.

func providerClient(t *testing.T, srv *apitest.Server, email string) *api.Client {
	t.Helper()
	cfg := api.DefaultConfig()
	cfg.BaseURL = srv.URL()
	c, err := api.NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(c.Close)
	if _, err := c.Login(context.Background(), email, "pw"); err != nil {
		t.Fatalf("provider login: %v", err)
	}
	return c
}

func acceptAs(t *testing.T, srv *apitest.Server, email, id string) {
	t.Helper()
	if err := providerClient(t, srv, email).AcceptOffer(context.Background(), id); err != nil {
		t.Fatalf("accept %s: %v", id, err)
	}
}

func startAs(t *testing.T, srv *apitest.Server, email, id string) {
	t.Helper()
	if err := providerClient(t, srv, email).StartJob(context.Background(), id); err != nil {
		t.Fatalf("start %s: %v", id, err)
	}
}

func completeAs(t *testing.T, srv *apitest.Server, email, id string) {
	t.Helper()
	if err := providerClient(t, srv, email).CompleteJob(context.Background(), id); err != nil {
		t.Fatalf("complete %s: %v", id, err)
	}
}
