package pipeline

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/billpipe/helper"
	"github.com/relloyd/billpipe/logger"
)

type WebServerConfig struct {
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	Addr             net.IP `errorTxt:"address" mandatory:"no"`
	Port             int    `errorTxt:"port" mandatory:"yes"`
	Configs          map[string]*Config
	StackDumpOnPanic bool
}

// RunWebServer serves HTTP trigger endpoints for the registered pipelines.
// At most one run per pipeline is in flight at a time; a trigger for a busy
// pipeline is rejected with 409.
func RunWebServer(web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	log := logger.NewLogger("billpipe", web.LogLevel, web.StackDumpOnPanic)
	// Check if we have valid input params.
	err := helper.ValidateStructIsPopulated(web)
	if err != nil {
		return err
	}
	srv, chanStopServer := runServer(log, web)
	return waitForServer(log, srv, chanStopServer)
}

// runServer starts the HTTP server and returns it with a channel that can be
// used to stop it.
func runServer(log logger.Logger, web *WebServerConfig) (*http.Server, chan string) {
	chanStopServer := make(chan string, 1)
	locks := newPipelineLocks()
	// Create routes.
	r := mux.NewRouter()
	r.Path("/health").HandlerFunc(getHandlerHealth(log))
	r.Path("/pipelines").Methods(http.MethodGet).HandlerFunc(getHandlerPipelineList(log))
	r.Path("/pipelines/{pipelineName}/run").Methods(http.MethodPost).HandlerFunc(
		getHandlerPipelineRun(log, web, locks))
	r.HandleFunc("/stop", getHandlerStopServer(log, chanStopServer))
	// Configure HTTP server.
	srv := &http.Server{ // Good practice to set timeouts to avoid Slowloris attacks.
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r, // supply our instance of gorilla/mux.
	}
	// Run HTTP server non-blocking.
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Panic(err)
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on http://%v:%v", web.Addr, web.Port))
	return srv, chanStopServer
}

// waitForServer blocks until the server is stopped via /stop or SIGINT.
func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string) error {
	chanSignal := make(chan os.Signal, 1)
	signal.Notify(chanSignal, os.Interrupt)
	select {
	case <-chanSignal:
		log.Info("interrupt received, shutting down")
	case msg := <-chanStopServer:
		log.Info("stop requested: ", msg)
	}
	return srv.Close()
}

// pipelineLocks enforces one in-flight run per pipeline.
type pipelineLocks struct {
	mu      sync.Mutex
	running map[string]bool
}

func newPipelineLocks() *pipelineLocks {
	return &pipelineLocks{running: map[string]bool{}}
}

// acquire returns false when the pipeline already has a run in flight.
func (l *pipelineLocks) acquire(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running[name] {
		return false
	}
	l.running[name] = true
	return true
}

func (l *pipelineLocks) release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.running, name)
}

func getHandlerHealth(log logger.Logger) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("health check from ", r.RemoteAddr)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func getHandlerPipelineList(log logger.Logger) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make(map[string]string, len(Registry))
		for name, p := range Registry {
			out[name] = p.Description
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getHandlerPipelineRun(log logger.Logger, web *WebServerConfig, locks *pipelineLocks) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["pipelineName"]
		if _, ok := Registry[name]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown pipeline %q", name)})
			return
		}
		cfg, ok := web.Configs[name]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("no configuration for pipeline %q", name)})
			return
		}
		if !locks.acquire(name) { // if a run is already in flight...
			writeJSON(w, http.StatusConflict, map[string]string{"error": fmt.Sprintf("pipeline %q is already running", name)})
			return
		}
		go func() {
			defer locks.release(name)
			if err := Run(name, cfg); err != nil {
				log.Error("pipeline ", name, " failed: ", err)
			}
		}()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started", "pipeline": name})
	}
}

func getHandlerStopServer(log logger.Logger, chanStopServer chan string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
		chanStopServer <- fmt.Sprintf("stop requested by %v", r.RemoteAddr)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
