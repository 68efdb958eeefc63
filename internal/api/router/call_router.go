package router

import (
	"net/http"

	"signaling-server/internal/api"
	"signaling-server/internal/api/endpoints"
	"signaling-server/internal/api/middleware"
)

func SignalingRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		callEndpoints := endpoints.NewCallEndpoints(s.Auth(), s.Handler(), prefix, s.Logger())
		requireUser := middleware.ValidateJWTMiddleware(s.Auth())

		mux.HandleFunc(prefix+"/signal", s.MakeHTTPHandleFunc(callEndpoints.Signal))
		mux.HandleFunc(prefix+"/calls", s.MakeHTTPHandleFunc(callEndpoints.Calls, requireUser))
		mux.HandleFunc(prefix+"/calls/", s.MakeHTTPHandleFunc(callEndpoints.Call, requireUser))
	}
}
