package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/live", handler.ListLiveMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}/live", handler.GetLiveMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/stream", handler.StreamMatch)
	mux.HandleFunc("GET /v1/schedules", handler.ListSchedules)
	mux.HandleFunc("POST /v1/schedules/refresh", handler.RefreshSchedules)
}
