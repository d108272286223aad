package runtcp

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/asecurityteam/runhttp"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig is used to alter the behavior of the default router
// and the HTTP endpoint handlers that it manages.
type RouterConfig struct {
	// HealthCheck defines the route on which the service will respond
	// with automatic 200s. This is here to integrate with systems that
	// poll for liveliness. The default value is /healthcheck
	HealthCheck string

	// LogFn is used to extract the request logger from the request
	// context. The default value is runhttp.LoggerFromContext.
	LogFn LogFn
	// StatFn is used to extract the request stat client from the
	// request context. The default value is runhttp.StatFromContext.
	StatFn StatFn
}

func applyDefaults(conf *RouterConfig) *RouterConfig {
	if conf.HealthCheck == "" {
		conf.HealthCheck = "/healthcheck"
	}
	if conf.LogFn == nil {
		conf.LogFn = runhttp.LoggerFromContext
	}
	if conf.StatFn == nil {
		conf.StatFn = runhttp.StatFromContext
	}
	return conf
}

// NewRouter generates a mux with the echo API routes bound. This
// returns a mux from the chi project as a convenience for cases where
// custom middleware or additional routes need to be configured.
func NewRouter(conf *RouterConfig) *chi.Mux {
	conf = applyDefaults(conf)
	router := chi.NewMux()
	router.Use(middleware.Heartbeat(conf.HealthCheck))

	echoHandler := &EchoHTTP{
		LogFn:  conf.LogFn,
		StatFn: conf.StatFn,
	}

	router.Method(http.MethodPost, "/echo", echoHandler)
	return router
}

// echoError is the response body included for exception cases.
type echoError struct {
	Message string `json:"errorMessage"`
	Type    string `json:"errorType"`
}

func responseFromError(err error) echoError {
	errType := reflect.TypeOf(err)
	errTypeName := errType.Name()
	if errType.Kind() == reflect.Ptr {
		errTypeName = errType.Elem().Name()
	}
	return echoError{
		Message: err.Error(),
		Type:    errTypeName,
	}
}

// EchoHTTP is the HTTP flavor of the echo service. It accepts a JSON
// Message body and writes the same frame back.
type EchoHTTP struct {
	LogFn  LogFn
	StatFn StatFn
}

func (h *EchoHTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(responseFromError(err))
		return
	}
	h.LogFn(r.Context()).Info(messageReceived{Content: msg.Content})
	h.StatFn(r.Context()).Count("echo.message", 1)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(msg)
}
