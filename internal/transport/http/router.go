package http

import (
	_ "embed"
	"net/http"

	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	websocketTransport "github.com/kahvecikaan/catalog-browser/internal/transport/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed swagger.yaml
var swaggerSpec []byte

func NewRouter(
	bh *BrowserHandler,
	mw *Middleware,
	logger hclog.Logger,
	wsh *websocketTransport.Handler,
) *mux.Router {
	router := mux.NewRouter()

	router.Use(mw.LoggingMiddleware)

	// The websocket route sits outside the web subrouter so that compression
	// and the metrics recorder never wrap the hijacked connection
	router.Handle("/ws", mw.SessionMiddleware(http.HandlerFunc(wsh.HandleWebSocket))).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/healthz", bh.Healthz).Methods("GET")

	// Swagger specification and Redoc UI
	router.HandleFunc("/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(swaggerSpec)
	}).Methods("GET")

	swaggerOpts := middleware.RedocOpts{SpecURL: "/swagger.yaml"}
	router.Handle("/docs", middleware.Redoc(swaggerOpts, nil)).Methods("GET")

	web := router.NewRoute().Subrouter()
	web.Use(handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.StandardLogger(&hclog.StandardLoggerOptions{ForceLevel: hclog.Error})),
		handlers.PrintRecoveryStack(true),
	))
	web.Use(mw.MetricsMiddleware)
	web.Use(handlers.CompressHandler)
	web.Use(mw.SessionMiddleware)

	// Pages
	web.HandleFunc("/", bh.Index).Methods("GET")
	web.HandleFunc("/product/{id}", bh.ShowProduct).Methods("GET")

	// Actions, all answered with 303 See Other
	web.HandleFunc("/select/{id}", bh.Select).Methods("POST")
	web.HandleFunc("/page/next", bh.NextPage).Methods("POST")
	web.HandleFunc("/page/prev", bh.PrevPage).Methods("POST")
	web.HandleFunc("/list/toggle", bh.ToggleList).Methods("POST")

	// JSON API
	api := web.PathPrefix("/api").Subrouter()
	api.Use(mw.CORSMiddleware)
	api.Use(mw.ContentTypeMiddleware)
	api.HandleFunc("/state", bh.GetState).Methods("GET", "OPTIONS")

	return router
}
