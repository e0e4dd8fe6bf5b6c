package http

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	srv *http.Server
}

// New собирает сервер: /health, /metrics (если включено) и api на остальных путях.
func New(addr string, exposeMetrics bool, api *Handler) *Server {
	return &Server{srv: &http.Server{Addr: addr, Handler: Routes(exposeMetrics, api)}}
}

func Routes(exposeMetrics bool, api *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	if api != nil {
		mux.HandleFunc("POST /checkout", api.placeOrder)
		mux.HandleFunc("GET /receipts/{id}", api.getReceipt)
		mux.HandleFunc("POST /receipts/{id}/status", api.setStatus)
		mux.HandleFunc("GET /dashboard/summary", api.summary)
		mux.HandleFunc("GET /dashboard/debts", api.debts)
		mux.HandleFunc("GET /dashboard/jobs", api.openJobs)
		mux.HandleFunc("GET /dashboard/analysis", api.analysis)

		mux.HandleFunc("POST /customers", api.createCustomer)
		mux.HandleFunc("GET /customers", api.findCustomers)
		mux.HandleFunc("GET /customers/{id}/receipts", api.customerReceipts)

		mux.HandleFunc("POST /inventory", api.createItem)
		mux.HandleFunc("GET /inventory", api.listStock)
		mux.HandleFunc("PUT /inventory/{id}", api.updateItem)
		mux.HandleFunc("POST /inventory/{id}/restock", api.restock)
		mux.HandleFunc("GET /inventory/{id}/movements", api.movements)

		mux.HandleFunc("POST /expenses", api.addExpense)
		mux.HandleFunc("GET /expenses", api.listExpenses)
	}

	return mux
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
