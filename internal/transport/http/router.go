package http

import (
	"log"

	"github.com/gorilla/mux"
)

// NewRouter configures HTTP routes. The streaming endpoint is public; write
// operations on the catalog and the user list sit behind the admin token.
func NewRouter(handler *Handler, adminToken string, logger *log.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogging(logger))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handler.Health).Methods("GET")

	api.HandleFunc("/stream/{videoId}", handler.StreamVideo).Methods("GET")
	api.HandleFunc("/stream/{videoId}", handler.StreamPreflight).Methods("OPTIONS")

	api.HandleFunc("/videos", handler.ListVideos).Methods("GET")
	api.HandleFunc("/videos/{id}", handler.GetVideo).Methods("GET")
	api.HandleFunc("/videos/{id}/views", handler.RecordView).Methods("POST")
	api.HandleFunc("/genres", handler.ListGenres).Methods("GET")

	api.HandleFunc("/auth/register", handler.Register).Methods("POST")
	api.HandleFunc("/auth/login", handler.Login).Methods("POST")
	api.HandleFunc("/auth/logout", handler.Logout).Methods("POST")
	api.HandleFunc("/auth/profile", handler.Profile).Methods("GET")

	admin := api.NewRoute().Subrouter()
	admin.Use(adminOnly(adminToken))
	admin.HandleFunc("/videos", handler.UploadVideo).Methods("POST")
	admin.HandleFunc("/videos/{id}", handler.UpdateVideo).Methods("PUT")
	admin.HandleFunc("/videos/{id}", handler.DeleteVideo).Methods("DELETE")
	admin.HandleFunc("/genres", handler.CreateGenre).Methods("POST")
	admin.HandleFunc("/users", handler.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id}/active", handler.SetUserActive).Methods("PATCH")

	return r
}
