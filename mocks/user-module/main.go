// Stand-in for the university's user module, for local development and e2e
// runs. It mimics the module's envelope shapes, field spellings, and the
// Spanish rejection messages the backend's fallback logic keys on. Tokens
// are accepted on shape alone; this process never sees real credentials.
//
// MOCK_ADDR overrides the listen address (default :8096, matching the
// backend's default USER_MODULE_URL). MOCK_FLAKY=1 makes every third
// request fail with a 500 so degraded-mode behavior can be exercised.
package main

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
)

type store struct {
	mu      sync.Mutex
	people  map[string]map[string]any
	byIdent map[string]string
	reqs    int
	flaky   bool
}

func newStore(flaky bool) *store {
	s := &store{
		people:  make(map[string]map[string]any),
		byIdent: make(map[string]string),
		flaky:   flaky,
	}
	s.put(map[string]any{
		"identification": "0912345678",
		"name":           "Maria",
		"last_name":      "Quinde",
		"email":          "maria.quinde@example.edu.ec",
		"phono":          "0998765432",
		"gender":         "F",
		"direction":      "Av. Delta y Kennedy",
	})
	s.put(map[string]any{
		"identification": "0707070707",
		"name":           "Jorge",
		"last_name":      "Vera",
		"email":          "jorge.vera@example.edu.ec",
		"phono":          "0991112223",
		"gender":         "M",
		"direction":      "Cdla. Universitaria",
	})
	return s
}

func (s *store) put(person map[string]any) map[string]any {
	ref := newRef()
	person["external"] = ref
	s.people[ref] = person
	if ident, ok := person["identification"].(string); ok && ident != "" {
		s.byIdent[ident] = ref
	}
	return person
}

func newRef() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

func main() {
	addr := os.Getenv("MOCK_ADDR")
	if addr == "" {
		addr = ":8096"
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	s := newStore(os.Getenv("MOCK_FLAKY") == "1")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/person/login", s.login)
	mux.HandleFunc("POST /api/person/save-account", s.authed(s.saveAccount))
	mux.HandleFunc("GET /api/person/search_identification/{dni}", s.authed(s.searchIdentification))
	mux.HandleFunc("GET /api/person/search/{ref}", s.authed(s.searchRef))
	mux.HandleFunc("GET /api/person/all_filter", s.authed(s.listAll))
	mux.HandleFunc("POST /api/person/update", s.authed(s.update))

	logger.Info("mock user module listening", "addr", addr, "flaky", s.flaky)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("mock user module stopped", "error", err)
		os.Exit(1)
	}
}

// authed rejects requests without a bearer token and injects the configured
// flakiness. Token contents are not verified.
func (s *store) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token requerido"})
			return
		}
		if s.failThisOne() {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "error interno del modulo de usuarios"})
			return
		}
		next(w, r)
	}
}

func (s *store) failThisOne() bool {
	if !s.flaky {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs++
	return s.reqs%3 == 0
}

func (s *store) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "credenciales invalidas"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "OK",
		"data":   map[string]any{"token": "Bearer mock-" + newRef()},
	})
}

func (s *store) saveAccount(w http.ResponseWriter, r *http.Request) {
	var person map[string]any
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil || len(person) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "datos de persona requeridos"})
		return
	}
	ident, _ := person["identification"].(string)
	if ident == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "identificacion requerida"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byIdent[ident]; exists {
		// Wording matters: the backend detects this rejection by substring.
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "la persona ya esta registrada"})
		return
	}
	stored := s.put(person)
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": stored})
}

func (s *store) searchIdentification(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.byIdent[r.PathValue("dni")]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "message": "persona no encontrada"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": s.people[ref]})
}

func (s *store) searchRef(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	person, ok := s.people[r.PathValue("ref")]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "message": "persona no encontrada"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": person})
}

func (s *store) listAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]map[string]any, 0, len(s.people))
	for _, p := range s.people {
		list = append(list, p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": list})
}

func (s *store) update(w http.ResponseWriter, r *http.Request) {
	var incoming map[string]any
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil || len(incoming) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "datos de persona requeridos"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	person := s.locate(incoming)
	if person == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "persona no encontrada"})
		return
	}
	for k, v := range incoming {
		if k == "external" {
			continue
		}
		person[k] = v
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": person})
}

// locate resolves the update target by external reference first, then by
// identification, mirroring how the real module matches update payloads.
func (s *store) locate(incoming map[string]any) map[string]any {
	for _, key := range []string{"external", "external_id", "external_person", "uuid", "id"} {
		if ref, ok := incoming[key].(string); ok && ref != "" {
			if person, found := s.people[ref]; found {
				return person
			}
		}
	}
	if ident, ok := incoming["identification"].(string); ok && ident != "" {
		if ref, found := s.byIdent[ident]; found {
			return s.people[ref]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
