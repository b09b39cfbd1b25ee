// internal/apitest/server.go
//
// An in-memory QuickFixHub backend for tests. It implements the same
// HTTP/JSON contract as the real service: cookie sessions, role checks,
// and the request lifecycle rules, with matching left as an explicit test
// step (Offer) since the real matcher is backend policy the client never
// observes.

package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Sonalgupta2005/QuickFixhub/internal/identity"
	"github.com/Sonalgupta2005/QuickFixhub/internal/request"
)

const sessionCookie = "qfh_session"

type account struct {
	identity.Identity
	password string
}

// Server is a fake backend bound to an httptest listener.
type Server struct {
	mu       sync.Mutex
	srv      *httptest.Server
	users    map[string]*account // by user id
	byEmail  map[string]string
	sessions map[string]string // token -> user id
	requests map[string]*request.ServiceRequest
	offers   map[string]map[string]string // request id -> provider id -> offer status
}

// NewServer starts the fake backend. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		users:    map[string]*account{},
		byEmail:  map[string]string{},
		sessions: map[string]string{},
		requests: map[string]*request.ServiceRequest{},
		offers:   map[string]map[string]string{},
	}
	r := mux.NewRouter()
	r.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/service/my-requests", s.handleMyRequests).Methods(http.MethodGet)
	r.HandleFunc("/service/requests", s.handleCreateRequest).Methods(http.MethodPost)
	r.HandleFunc("/service/requests/{id}/cancel", s.handleCancel).Methods(http.MethodPost)
	r.HandleFunc("/provider/dashboard/summary", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/provider/jobs/available", s.handleAvailable).Methods(http.MethodGet)
	r.HandleFunc("/provider/jobs/my", s.handleMyJobs).Methods(http.MethodGet)
	r.HandleFunc("/provider/offers/{id}/accept", s.handleAccept).Methods(http.MethodPost)
	r.HandleFunc("/provider/offers/{id}/reject", s.handleReject).Methods(http.MethodPost)
	r.HandleFunc("/provider/jobs/{id}/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/provider/jobs/{id}/complete", s.handleComplete).Methods(http.MethodPost)
	s.srv = httptest.NewServer(r)
	return s
}

// URL returns the base URL clients should point at.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the listener down.
func (s *Server) Close() { s.srv.Close() }

// SeedHomeowner registers a homeowner account directly.
func (s *Server) SeedHomeowner(name, email, password, phone string) identity.Identity {
	return s.seed(identity.Identity{
		Name: name, Email: email, Phone: phone, Role: request.RoleHomeowner,
	}, password)
}

// SeedProvider registers a provider account with the given specialties.
func (s *Server) SeedProvider(name, email, password, phone, address string, specialties ...request.ServiceType) identity.Identity {
	return s.seed(identity.Identity{
		Name: name, Email: email, Phone: phone, Address: address,
		Role: request.RoleProvider, Specialties: specialties,
		Rating: 4.9, Available: true,
	}, password)
}

func (s *Server) seed(id identity.Identity, password string) identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	id.ID = uuid.NewString()
	id.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.users[id.ID] = &account{Identity: id, password: password}
	s.byEmail[id.Email] = id.ID
	return id
}

// Offer surfaces a pending or offered request to one provider, standing in
// for the backend matcher.
func (s *Server) Offer(requestID, providerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return
	}
	if s.offers[requestID] == nil {
		s.offers[requestID] = map[string]string{}
	}
	s.offers[requestID][providerID] = "offered"
	if req.Status == request.StatusPending {
		req.Status = request.StatusOffered
		req.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
}

// Request returns a snapshot of the stored request, for assertions.
func (s *Server) Request(id string) (request.ServiceRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return request.ServiceRequest{}, false
	}
	return *req, true
}

func (s *Server) caller(r *http.Request) *account {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	uid, ok := s.sessions[cookie.Value]
	if !ok {
		return nil
	}
	return s.users[uid]
}

func (s *Server) openSession(w http.ResponseWriter, userID string) {
	token := uuid.NewString()
	s.sessions[token] = userID
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in identity.SignupProfile
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Phone == "" {
		fail(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if in.Role != request.RoleHomeowner && in.Role != request.RoleProvider {
		fail(w, http.StatusBadRequest, "Invalid role")
		return
	}
	if _, exists := s.byEmail[in.Email]; exists {
		fail(w, http.StatusBadRequest, "User already exists")
		return
	}
	if in.Role == request.RoleProvider && (in.Address == "" || len(in.Specialties) == 0) {
		fail(w, http.StatusBadRequest, "Providers must specify serviceTypes and address")
		return
	}
	id := identity.Identity{
		ID: uuid.NewString(), Name: in.Name, Email: in.Email, Phone: in.Phone,
		Role: in.Role, Address: in.Address, Specialties: in.Specialties,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.users[id.ID] = &account{Identity: id, password: in.Password}
	s.byEmail[id.Email] = id.ID
	s.openSession(w, id.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "user": id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.byEmail[in.Email]
	if !ok || s.users[uid].password != in.Password {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.openSession(w, uid)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": s.users[uid].Identity})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		delete(s.sessions, cookie.Value)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.caller(r)
	if acct == nil {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": acct.Identity})
}

func (s *Server) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.caller(r)
	if acct == nil {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	list := []request.ServiceRequest{}
	for _, req := range s.requests {
		if req.UserID == acct.ID {
			list = append(list, *req)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "requests": list})
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var in request.NewRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.caller(r)
	if acct == nil {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if in.ServiceType == "" || in.Description == "" || in.Address == "" || in.PreferredDate == "" {
		fail(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	req := &request.ServiceRequest{
		ID: uuid.NewString(), UserID: acct.ID, UserName: acct.Name,
		UserEmail: acct.Email, UserPhone: acct.Phone,
		ServiceType: in.ServiceType, Description: in.Description,
		Address: in.Address, PreferredDate: in.PreferredDate,
		PreferredTime: in.PreferredTime,
		Status:        request.StatusPending, CreatedAt: now, UpdatedAt: now,
	}
	s.requests[req.ID] = req
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "request": *req})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.caller(r)
	if acct == nil {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	req, ok := s.requests[id]
	if !ok {
		fail(w, http.StatusNotFound, "No such request")
		return
	}
	if req.UserID != acct.ID {
		fail(w, http.StatusForbidden, "Not your request")
		return
	}
	if !request.Allowed(req.Status, request.ActionCancel, request.RoleHomeowner) {
		fail(w, http.StatusBadRequest, "Cannot cancel now")
		return
	}
	req.Status = request.StatusCancelled
	req.AssignedProviderID = ""
	req.ProviderName = ""
	req.ProviderPhone = ""
	req.ProviderEmail = ""
	req.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	for pid, state := range s.offers[id] {
		if state == "offered" {
			s.offers[id][pid] = "expired"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "request": *req})
}

func (s *Server) providerCaller(w http.ResponseWriter, r *http.Request) *account {
	acct := s.caller(r)
	if acct == nil {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return nil
	}
	if acct.Role != request.RoleProvider {
		fail(w, http.StatusForbidden, "Provider role required")
		return nil
	}
	return acct
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.providerCaller(w, r)
	if acct == nil {
		return
	}
	var completed, active int
	var earnings float64
	for _, req := range s.requests {
		if req.AssignedProviderID != acct.ID {
			continue
		}
		switch req.Status {
		case request.StatusCompleted:
			completed++
			earnings += 50
		case request.StatusAccepted, request.StatusInProgress:
			active++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats": map[string]any{
			"jobsCompleted": completed,
			"activeJobs":    active,
			"rating":        acct.Rating,
			"earnings":      earnings,
		},
	})
}

func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.providerCaller(w, r)
	if acct == nil {
		return
	}
	jobs := []request.ServiceRequest{}
	for reqID, byProvider := range s.offers {
		if byProvider[acct.ID] != "offered" {
			continue
		}
		if req, ok := s.requests[reqID]; ok && req.Status == request.StatusOffered {
			jobs = append(jobs, *req)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "jobs": jobs})
}

func (s *Server) handleMyJobs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.providerCaller(w, r)
	if acct == nil {
		return
	}
	jobs := []request.ServiceRequest{}
	for _, req := range s.requests {
		// Completed work leaves the list; my-jobs only carries jobs the
		// provider still has to act on.
		if req.AssignedProviderID == acct.ID && req.Status.Assigned() && !req.Status.Terminal() {
			jobs = append(jobs, *req)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "jobs": jobs})
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.providerCaller(w, r)
	if acct == nil {
		return
	}
	if s.offers[id][acct.ID] != "offered" {
		fail(w, http.StatusBadRequest, "No active offer")
		return
	}
	req, ok := s.requests[id]
	if !ok {
		fail(w, http.StatusNotFound, "No such request")
		return
	}
	s.offers[id][acct.ID] = "accepted"
	req.Status = request.StatusAccepted
	req.AssignedProviderID = acct.ID
	req.ProviderName = acct.Name
	req.ProviderPhone = acct.Phone
	req.ProviderEmail = acct.Email
	req.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	for pid, state := range s.offers[id] {
		if pid != acct.ID && state == "offered" {
			s.offers[id][pid] = "expired"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.providerCaller(w, r)
	if acct == nil {
		return
	}
	if s.offers[id][acct.ID] != "offered" {
		fail(w, http.StatusBadRequest, "No active offer")
		return
	}
	s.offers[id][acct.ID] = "rejected"
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, request.ActionStart)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, request.ActionComplete)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, action request.Action) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.providerCaller(w, r)
	if acct == nil {
		return
	}
	req, ok := s.requests[id]
	if !ok {
		fail(w, http.StatusNotFound, "No such request")
		return
	}
	// The status window is judged before ownership: a cancel clears the
	// assignment, and a provider acting on that stale row must learn the
	// transition is gone, not that the job belongs to someone else.
	if !request.Allowed(req.Status, action, request.RoleProvider) {
		fail(w, http.StatusBadRequest, "Invalid status for "+string(action))
		return
	}
	if req.AssignedProviderID != acct.ID {
		fail(w, http.StatusForbidden, "Not assigned to you")
		return
	}
	next, _ := request.Result(action)
	req.Status = next
	req.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
