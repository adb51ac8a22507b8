package api

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/admon/ledger-mirror/config"
)

// Namespace is a JSON-RPC namespace of the handler methods.
const Namespace = "admon"

// Server is a RPC server.
type Server struct {
	rpcSrv  *rpc.Server
	httpSrv *http.Server
}

// NewServer creates a new API server. Metrics of gatherer are exposed on
// /metrics.
func NewServer(cfg *config.API, gatherer prometheus.Gatherer) *Server {
	rpcSrv := rpc.NewServer()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer,
		promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", health)
	mux.Handle("/", rpcSrv)

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	return &Server{
		rpcSrv:  rpcSrv,
		httpSrv: httpSrv,
	}
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// AddHandler registers a new RPC handler.
func (s *Server) AddHandler(handler interface{}) error {
	return s.rpcSrv.RegisterName(Namespace, handler)
}

// ListenAndServe starts to listen and to serve requests.
func (s *Server) ListenAndServe() error {
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rpcSrv.Stop()
	return s.httpSrv.Shutdown(ctx)
}
