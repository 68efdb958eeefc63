package endpoints

import (
	"fmt"
	"net/http"
)

type UtilsEndpoints interface {
	Health(http.ResponseWriter, *http.Request) error
}

// Liveness is satisfied by the websocket handler.
type Liveness interface {
	Alive() bool
}

type utilsEndpoints struct {
	liveness Liveness
}

func NewUtilsEndpoints(liveness Liveness) UtilsEndpoints {
	return &utilsEndpoints{liveness: liveness}
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *utilsEndpoints) Health(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleHealth,
	})
}

func (h *utilsEndpoints) handleHealth(w http.ResponseWriter, r *http.Request) error {
	if h.liveness != nil && !h.liveness.Alive() {
		return &HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "Signaling hub is not running",
			ErrorLog:   fmt.Errorf("health check: hub stopped"),
		}
	}
	return WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
