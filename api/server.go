package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"airbnb-analyzer/models"
	"airbnb-analyzer/services"
	"airbnb-analyzer/utils"
)

// Options tunes request handling.
type Options struct {
	// MaxUploadBytes caps the request body of an upload.
	MaxUploadBytes int64
	// TopCustomers is used when a request does not pass ?top.
	TopCustomers int
}

// Server exposes report sessions over HTTP.
type Server struct {
	store    *services.SessionStore
	loader   *services.Loader
	insights *services.InsightService
	logger   *utils.Logger
	metrics  *Metrics
	opts     Options
}

func NewServer(store *services.SessionStore, loader *services.Loader, insights *services.InsightService,
	logger *utils.Logger, metrics *Metrics, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Server{
		store:    store,
		loader:   loader,
		insights: insights,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Post("/", s.createReport)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getReport)
			r.Put("/", s.replaceReport)
			r.Delete("/", s.deleteReport)

			r.Get("/earnings", s.view("earnings", func(e *services.ReportEngine, _ *http.Request) (any, error) {
				return e.Earnings()
			}))
			r.Get("/performance", s.view("performance", func(e *services.ReportEngine, _ *http.Request) (any, error) {
				return e.Performance()
			}))
			r.Get("/listings", s.view("listings", func(e *services.ReportEngine, _ *http.Request) (any, error) {
				return e.Listings()
			}))
			r.Get("/customers", s.view("customers", func(e *services.ReportEngine, req *http.Request) (any, error) {
				top, err := s.topParam(req)
				if err != nil {
					return nil, err
				}
				return e.Customers(top)
			}))
			r.Get("/bookings", s.view("bookings", func(e *services.ReportEngine, _ *http.Request) (any, error) {
				return e.Bookings()
			}))
			r.Get("/distributions/nights", s.view("nights_distribution", func(e *services.ReportEngine, _ *http.Request) (any, error) {
				return services.NightsDistribution(e)
			}))
			r.Get("/distributions/lead-time", s.view("lead_time_distribution", func(e *services.ReportEngine, _ *http.Request) (any, error) {
				d, err := services.LeadTimeDistribution(e)
				if err != nil {
					return nil, err
				}
				return leadTimeResponse{Distribution: d, Findings: services.FindingsFor(d)}, nil
			}))
		})
	})
	return r
}

type leadTimeResponse struct {
	*models.Distribution
	Findings *models.Findings `json:"findings"`
}

var errInvalidTop = errors.New("top must be an integer")

// topParam reads ?top, falling back to the configured default.
func (s *Server) topParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return s.opts.TopCustomers, nil
	}
	top, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidTop
	}
	return top, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"status": "ok", "reports": s.store.Len()})
}
