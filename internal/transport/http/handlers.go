package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"streamz/internal/application/catalog"
	"streamz/internal/domain/account"
	"streamz/internal/domain/video"
)

const maxUploadBytes = 700 << 20 // matches the upstream proxy body limit

type catalogUseCases interface {
	Upload(ctx context.Context, in catalog.UploadInput) (*video.Video, error)
	Videos(ctx context.Context) ([]video.Video, error)
	VideoByID(ctx context.Context, id string) (*video.Video, error)
	UpdateVideo(ctx context.Context, id string, in catalog.UpdateInput) (*video.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	CreateGenre(ctx context.Context, name, slug, description string) (*video.Genre, error)
	Genres(ctx context.Context) ([]video.Genre, error)
	RecordView(ctx context.Context, videoID, userID string, watchTime int) error
}

type authUseCases interface {
	Register(ctx context.Context, email, name, password string) (*account.User, error)
	Login(ctx context.Context, email, password string) (string, *account.User, error)
	Authenticate(ctx context.Context, token string) (*account.User, error)
	Logout(token string)
	Users(ctx context.Context) ([]account.User, error)
	SetUserActive(ctx context.Context, id string, active bool) error
}

// Handler wires HTTP handlers with application use cases.
type Handler struct {
	relay   streamUseCases
	catalog catalogUseCases
	auth    authUseCases
	logger  *log.Logger
}

// NewHandler creates the transport handler set.
func NewHandler(relay streamUseCases, catalogService catalogUseCases, authService authUseCases, logger *log.Logger) *Handler {
	return &Handler{relay: relay, catalog: catalogService, auth: authService, logger: logger}
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"service":   "streamz-api",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type videoResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	StreamURL    string `json:"streamUrl"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Duration     int    `json:"duration,omitempty"`
	MimeType     string `json:"mimeType"`
	GenreID      string `json:"genreId,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func toVideoResponse(v *video.Video) videoResponse {
	return videoResponse{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		StreamURL:    "/api/stream/" + v.ID,
		ThumbnailURL: v.ThumbnailURL,
		Duration:     v.Duration,
		MimeType:     v.MimeType,
		GenreID:      v.GenreID,
		CreatedAt:    v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ListVideos handles GET /api/videos.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	records, err := h.catalog.Videos(r.Context())
	if err != nil {
		h.logger.Printf("list videos: %v", err)
		writeError(w, http.StatusInternalServerError, "list failed", "unable to list videos")
		return
	}

	videos := make([]videoResponse, 0, len(records))
	for i := range records {
		videos = append(videos, toVideoResponse(&records[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// GetVideo handles GET /api/videos/{id}.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	record, err := h.catalog.VideoByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.catalogError(w, err, "unable to read video")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"video": toVideoResponse(record)})
}

// UploadVideo handles POST /api/videos (admin): multipart upload of the video
// file plus its metadata fields.
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload", "malformed multipart form")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload", "missing video file field")
		return
	}
	defer file.Close()

	record, err := h.catalog.Upload(r.Context(), catalog.UploadInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		GenreID:     r.FormValue("genreId"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.catalogError(w, err, "unable to upload video")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "video uploaded",
		"video":   toVideoResponse(record),
	})
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	GenreID     *string `json:"genreId"`
}

// UpdateVideo handles PUT /api/videos/{id} (admin).
func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "malformed JSON body")
		return
	}

	record, err := h.catalog.UpdateVideo(r.Context(), mux.Vars(r)["id"], catalog.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		GenreID:     req.GenreID,
	})
	if err != nil {
		h.catalogError(w, err, "unable to update video")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "video updated",
		"video":   toVideoResponse(record),
	})
}

// DeleteVideo handles DELETE /api/videos/{id} (admin).
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteVideo(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.catalogError(w, err, "unable to delete video")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "video deleted"})
}

type recordViewRequest struct {
	UserID    string `json:"userId"`
	WatchTime int    `json:"watchTime"`
}

// RecordView handles POST /api/videos/{id}/views.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req recordViewRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.catalog.RecordView(r.Context(), mux.Vars(r)["id"], req.UserID, req.WatchTime); err != nil {
		h.catalogError(w, err, "unable to record view")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "view recorded"})
}

type genreResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// ListGenres handles GET /api/genres.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	records, err := h.catalog.Genres(r.Context())
	if err != nil {
		h.logger.Printf("list genres: %v", err)
		writeError(w, http.StatusInternalServerError, "list failed", "unable to list genres")
		return
	}

	genres := make([]genreResponse, 0, len(records))
	for _, g := range records {
		genres = append(genres, genreResponse{ID: g.ID, Name: g.Name, Slug: g.Slug, Description: g.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"genres": genres})
}

type createGenreRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// CreateGenre handles POST /api/genres (admin).
func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req createGenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "malformed JSON body")
		return
	}

	genre, err := h.catalog.CreateGenre(r.Context(), req.Name, req.Slug, req.Description)
	if errors.Is(err, video.ErrGenreExists) {
		writeError(w, http.StatusConflict, "genre exists", "a genre with this name or slug already exists")
		return
	}
	if err != nil {
		h.catalogError(w, err, "unable to create genre")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "genre created",
		"genre":   genreResponse{ID: genre.ID, Name: genre.Name, Slug: genre.Slug, Description: genre.Description},
	})
}

func (h *Handler) catalogError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "video not found", "no video with this id")
	case errors.Is(err, catalog.ErrGenreNotFound):
		writeError(w, http.StatusBadRequest, "genre not found", "no genre with this id")
	case errors.Is(err, catalog.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input", err.Error())
	default:
		h.logger.Printf("catalog: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", fallback)
	}
}
