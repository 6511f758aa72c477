package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/sessions", handler.ListSessions)
	mux.HandleFunc("POST /v1/sessions/{gameID}", handler.AttachSession)
	mux.HandleFunc("DELETE /v1/sessions/{gameID}", handler.DetachSession)
	mux.HandleFunc("GET /v1/sessions/{gameID}/view", handler.GetSessionView)
	mux.HandleFunc("GET /v1/sessions/{gameID}/events", handler.ListSessionEvents)
	// Server-sent stream of store notifications for one attached game.
	mux.HandleFunc("GET /v1/sessions/{gameID}/notifications", handler.StreamSessionNotifications)
}

func registerLiveActivityRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/live-activities", handler.ListLiveActivities)
	mux.HandleFunc("GET /v1/live-activities/{gameID}", handler.GetLiveActivity)
	mux.HandleFunc("DELETE /v1/live-activities/{gameID}", handler.DismissLiveActivity)
}

func registerFavoriteRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/favorites/team", handler.GetFavoriteTeam)
	mux.HandleFunc("PUT /v1/favorites/team", handler.SetFavoriteTeam)
	mux.HandleFunc("DELETE /v1/favorites/team", handler.ClearFavoriteTeam)
	mux.HandleFunc("GET /v1/favorites/{kind}", handler.ListFavorites)
	mux.HandleFunc("PUT /v1/favorites/{kind}/{id}", handler.AddFavorite)
	mux.HandleFunc("DELETE /v1/favorites/{kind}/{id}", handler.RemoveFavorite)
	mux.HandleFunc("GET /v1/navigation/stream", handler.StreamNavigation)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games/{gameID}/players/{playerID}/stats", handler.GetPlayerGameStats)
}
