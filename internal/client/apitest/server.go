// Package apitest runs an in-process stand-in for the recipe-ai backend.
//
// It serves /register, /login, /me and /detect-dish with the same status
// codes and "detail" bodies as the real service, and records what it
// receives so tests can assert on headers and uploads.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

const TokenValidity = 24 * time.Hour

type user struct {
	name     string
	password string
}

// Upload is the last file received by /detect-dish.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type Server struct {
	*httptest.Server

	secret []byte

	mu            sync.Mutex
	users         map[string]user
	fixedToken    string
	detectStatus  int
	detectBody    string
	detectCalls   int
	meCalls       int
	lastAuth      string
	lastRequestID string
	lastUpload    Upload
	hold          chan struct{}
	entered       chan struct{}
}

func New() *Server {
	s := &Server{
		secret:       []byte("apitest-secret"),
		users:        make(map[string]user),
		detectStatus: http.StatusOK,
		detectBody:   `{"dish":"Pizza","confidence":93.27}`,
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/detect-dish", s.handleDetect).Methods(http.MethodPost)
	return r
}

func (s *Server) AddUser(name, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = user{name: name, password: password}
}

// SetFixedToken makes /login return tok instead of a signed JWT. The fixed
// token is also accepted by the protected endpoints.
func (s *Server) SetFixedToken(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixedToken = tok
}

// SetDetectResponse sets the status and raw JSON body of /detect-dish.
func (s *Server) SetDetectResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detectStatus, s.detectBody = status, body
}

// HoldDetect makes /detect-dish block after reading the upload. entered
// receives once per held request; release unblocks all of them.
func (s *Server) HoldDetect() (entered <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = make(chan struct{})
	s.entered = make(chan struct{}, 16)
	hold := s.hold
	var once sync.Once
	return s.entered, func() { once.Do(func() { close(hold) }) }
}

func (s *Server) DetectCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detectCalls
}

func (s *Server) MeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meCalls
}

func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

func (s *Server) LastRequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRequestID
}

func (s *Server) LastUpload() Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.lastUpload
	u.Data = append([]byte(nil), u.Data...)
	return u
}

type validationItem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func missing(fields map[string]string, names ...string) []validationItem {
	var items []validationItem
	for _, n := range names {
		if fields[n] == "" {
			items = append(items, validationItem{Loc: []string{"body", n}, Msg: "Field required", Type: "missing"})
		}
	}
	if e, ok := fields["email"]; ok && e != "" && !strings.Contains(e, "@") {
		items = append(items, validationItem{
			Loc:  []string{"body", "email"},
			Msg:  "value is not a valid email address: An email address must have an @-sign.",
			Type: "value_error",
		})
	}
	return items
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	s.lastAuth = r.Header.Get("Authorization")
	s.lastRequestID = r.Header.Get("X-Request-ID")
	s.mu.Unlock()
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	var in map[string]string
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []validationItem{{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}})
		return
	}
	if items := missing(in, "name", "email", "password"); len(items) > 0 {
		writeDetail(w, http.StatusUnprocessableEntity, items)
		return
	}

	s.mu.Lock()
	_, exists := s.users[in["email"]]
	if !exists {
		s.users[in["email"]] = user{name: in["name"], password: in["password"]}
	}
	s.mu.Unlock()

	if exists {
		writeDetail(w, http.StatusBadRequest, "Email already exists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	var in map[string]string
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []validationItem{{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}})
		return
	}
	if items := missing(in, "email", "password"); len(items) > 0 {
		writeDetail(w, http.StatusUnprocessableEntity, items)
		return
	}

	s.mu.Lock()
	u, ok := s.users[in["email"]]
	fixed := s.fixedToken
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid email")
		return
	}
	if u.password != in["password"] {
		writeDetail(w, http.StatusUnauthorized, "Wrong password")
		return
	}

	token := fixed
	if token == "" {
		var err error
		token, err = generateToken(in["email"], u.name, s.secret, TokenValidity)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
		"name":         u.name,
		"email":        in["email"],
	})
}

// authenticate resolves the bearer token to a registered user. It writes the
// 401 response itself and returns ok=false on failure.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (email string, u user, ok bool) {
	h := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(h, "Bearer ")
	if !found || token == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return "", user{}, false
	}

	s.mu.Lock()
	fixed := s.fixedToken
	s.mu.Unlock()

	if fixed != "" && token == fixed {
		s.mu.Lock()
		for e, cand := range s.users {
			email, u = e, cand
			break
		}
		s.mu.Unlock()
		if email != "" {
			return email, u, true
		}
	} else if e, err := emailFromToken(token, s.secret); err == nil {
		s.mu.Lock()
		u, ok = s.users[e]
		s.mu.Unlock()
		if ok {
			return e, u, true
		}
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
	return "", user{}, false
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	s.mu.Lock()
	s.meCalls++
	s.mu.Unlock()

	email, u, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": u.name, "email": email})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	s.mu.Lock()
	s.detectCalls++
	hold, entered := s.hold, s.entered
	status, body := s.detectStatus, s.detectBody
	s.mu.Unlock()

	if _, _, ok := s.authenticate(w, r); !ok {
		return
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []validationItem{{Loc: []string{"body", "file"}, Msg: "Field required", Type: "missing"}})
		return
	}
	defer f.Close()
	data, _ := io.ReadAll(f)

	ct := hdr.Header.Get("Content-Type")
	s.mu.Lock()
	s.lastUpload = Upload{FileName: hdr.Filename, ContentType: ct, Data: data}
	s.mu.Unlock()

	if hold != nil {
		entered <- struct{}{}
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}

	switch ct {
	case "image/jpeg", "image/png", "image/jpg":
	default:
		writeDetail(w, http.StatusBadRequest, "Invalid image format. Use JPEG or PNG.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
