package rootnroll

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "user"
	testPassword = "secret"
)

// fakeAPI 是内存中的 Root'n'Roll API，资源状态按脚本逐次推进。
type fakeAPI struct {
	mu        sync.Mutex
	nextID    int
	servers   map[ID]*Server
	terminals map[ID]*Terminal
	sandboxes map[ID]*Sandbox
	jobs      map[ID]*CheckerJob

	// 每次 GET 时取出一个状态写入资源，取完后状态保持不变
	serverScript  []ServerStatus
	sandboxScript []SandboxStatus
	jobScript     []CheckerJobStatus

	lastBody map[string]interface{}
	requests int32
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{
		servers:   map[ID]*Server{},
		terminals: map[ID]*Terminal{},
		sandboxes: map[ID]*Sandbox{},
		jobs:      map[ID]*CheckerJob{},
	}

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&api.requests, 1)
			if username, password, ok := r.BasicAuth(); !ok || username != testUsername || password != testPassword {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid username/password."})
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/images/{id}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] != "3" {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusOK, Image{ID: "3", Name: "ubuntu", Description: "Ubuntu 16.04"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/servers", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ImageID ID  `json:"image_id"`
			Memory  int `json:"memory"`
		}
		api.decodeBody(t, r, &body)
		api.mu.Lock()
		server := &Server{ID: api.newID(), Status: ServerStatusBuild, ImageID: body.ImageID, Memory: body.Memory}
		api.servers[server.ID] = server
		copied := *server
		api.mu.Unlock()
		writeJSON(w, http.StatusCreated, copied)
	}).Methods(http.MethodPost)

	router.HandleFunc("/servers", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page != 1 {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Invalid page."})
			return
		}
		api.mu.Lock()
		results := make([]Server, 0, len(api.servers))
		for _, server := range api.servers {
			results = append(results, *server)
		}
		api.mu.Unlock()
		writeJSON(w, http.StatusOK, ServerPage{Count: len(results), Results: results})
	}).Methods(http.MethodGet)

	router.HandleFunc("/servers/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		server, ok := api.servers[ID(mux.Vars(r)["id"])]
		if !ok {
			writeNotFound(w)
			return
		}
		if len(api.serverScript) > 0 {
			server.Status, api.serverScript = api.serverScript[0], api.serverScript[1:]
		}
		writeJSON(w, http.StatusOK, server)
	}).Methods(http.MethodGet)

	router.HandleFunc("/servers/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		id := ID(mux.Vars(r)["id"])
		if _, ok := api.servers[id]; !ok {
			writeNotFound(w)
			return
		}
		delete(api.servers, id)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	router.HandleFunc("/terminals", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ServerID ID `json:"server_id"`
		}
		api.decodeBody(t, r, &body)
		api.mu.Lock()
		defer api.mu.Unlock()
		server, ok := api.servers[body.ServerID]
		if !ok || server.Status != ServerStatusActive {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Server is not active."})
			return
		}
		terminal := &Terminal{ID: api.newID(), ServerID: body.ServerID, Config: map[string]interface{}{"kaylee_url": "wss://kaylee.example/ws"}}
		api.terminals[terminal.ID] = terminal
		writeJSON(w, http.StatusCreated, terminal)
	}).Methods(http.MethodPost)

	router.HandleFunc("/terminals/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		terminal, ok := api.terminals[ID(mux.Vars(r)["id"])]
		if !ok {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusOK, terminal)
	}).Methods(http.MethodGet)

	router.HandleFunc("/terminals/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		id := ID(mux.Vars(r)["id"])
		if _, ok := api.terminals[id]; !ok {
			writeNotFound(w)
			return
		}
		delete(api.terminals, id)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	router.HandleFunc("/sandboxes", func(w http.ResponseWriter, r *http.Request) {
		var body createSandboxRequest
		api.decodeBody(t, r, &body)
		api.mu.Lock()
		sandbox := &Sandbox{ID: api.newID(), Status: SandboxStatusRunning, Profile: body.Profile, Command: body.Command}
		api.sandboxes[sandbox.ID] = sandbox
		copied := *sandbox
		api.mu.Unlock()
		writeJSON(w, http.StatusCreated, copied)
	}).Methods(http.MethodPost)

	router.HandleFunc("/sandboxes/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		sandbox, ok := api.sandboxes[ID(mux.Vars(r)["id"])]
		if !ok {
			writeNotFound(w)
			return
		}
		if len(api.sandboxScript) > 0 {
			sandbox.Status, api.sandboxScript = api.sandboxScript[0], api.sandboxScript[1:]
			if sandbox.Status.IsTerminated() {
				exitCode := 0
				sandbox.ExitCode = &exitCode
				sandbox.Stdout = "Hello, World!\n"
			}
		}
		writeJSON(w, http.StatusOK, sandbox)
	}).Methods(http.MethodGet)

	router.HandleFunc("/checker-jobs", func(w http.ResponseWriter, r *http.Request) {
		var body createCheckerJobRequest
		api.decodeBody(t, r, &body)
		api.mu.Lock()
		defer api.mu.Unlock()
		if _, ok := api.servers[body.Server]; !ok {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"server": []string{"Invalid pk."}})
			return
		}
		job := &CheckerJob{ID: api.newID(), Server: body.Server, TestScenario: body.TestScenario, Status: CheckerJobStatusPending}
		api.jobs[job.ID] = job
		writeJSON(w, http.StatusCreated, job)
	}).Methods(http.MethodPost)

	router.HandleFunc("/checker-jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		job, ok := api.jobs[ID(mux.Vars(r)["id"])]
		if !ok {
			writeNotFound(w)
			return
		}
		if len(api.jobScript) > 0 {
			job.Status, api.jobScript = api.jobScript[0], api.jobScript[1:]
			if job.Status.IsReady() {
				job.Result = CheckerJobResultPassed
				job.FinishedAt = &Time{Time: time.Date(2017, 3, 1, 12, 0, 0, 0, time.UTC)}
			}
		}
		writeJSON(w, http.StatusOK, job)
	}).Methods(http.MethodGet)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return api, server
}

// newID 调用方需持有 api.mu
func (api *fakeAPI) newID() ID {
	api.nextID++
	return IDFromInt(int64(api.nextID))
}

func (api *fakeAPI) decodeBody(t *testing.T, r *http.Request, v interface{}) {
	var raw map[string]interface{}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))

	api.mu.Lock()
	api.lastBody = raw
	api.mu.Unlock()
}

func (api *fakeAPI) requestCount() int {
	return int(atomic.LoadInt32(&api.requests))
}

func (api *fakeAPI) body() map[string]interface{} {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.lastBody
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func newTestClient(t *testing.T, apiURL string) *Client {
	return newTestClientWithConfig(t, &Config{APIURL: apiURL})
}

func newTestClientWithConfig(t *testing.T, config *Config) *Client {
	if config.Username == "" && config.Password == "" && config.CredentialsProvider == nil {
		config.Username = testUsername
		config.Password = testPassword
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = time.Millisecond
	}
	c, err := NewClient(config)
	require.NoError(t, err)
	return c
}

func fastPoll() []PollOption {
	return []PollOption{WithPollInterval(time.Millisecond), WithWaitTimeout(5 * time.Second)}
}

func (api *fakeAPI) setServerScript(statuses ...ServerStatus) {
	api.mu.Lock()
	api.serverScript = statuses
	api.mu.Unlock()
}

func (api *fakeAPI) setSandboxScript(statuses ...SandboxStatus) {
	api.mu.Lock()
	api.sandboxScript = statuses
	api.mu.Unlock()
}

func (api *fakeAPI) setJobScript(statuses ...CheckerJobStatus) {
	api.mu.Lock()
	api.jobScript = statuses
	api.mu.Unlock()
}
