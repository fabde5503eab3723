package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/lists"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/gorilla/mux"
)

// ContentHandler creates movies, series, episodes and collections for importers.
type ContentHandler struct {
	svc    *lists.Service
	logger *log.Logger
}

// NewContentHandler creates a [ContentHandler].
func NewContentHandler(svc *lists.Service, logger *log.Logger) *ContentHandler {
	return &ContentHandler{svc: svc, logger: logger}
}

// Register implements [Handler].
func (h *ContentHandler) Register(r *mux.Router) {
	r.HandleFunc("/collections", h.createCollection).Methods(http.MethodPost)
	r.HandleFunc("/movies", h.createMovie).Methods(http.MethodPost)
	r.HandleFunc("/series", h.createSeries).Methods(http.MethodPost)
	r.HandleFunc("/series/{id:[0-9]+}/episodes", h.createEpisode).Methods(http.MethodPost)
}

type collectionBody struct {
	Name       string `json:"name"`
	ExternalID string `json:"external_id"`
}

type movieBody struct {
	Title        string `json:"title"`
	Year         int    `json:"year"`
	ExternalID   string `json:"external_id"`
	CollectionID *int64 `json:"collection_id"`
	Watched      bool   `json:"watched"`
}

type seriesBody struct {
	Title      string `json:"title"`
	Year       int    `json:"year"`
	ExternalID string `json:"external_id"`
}

type episodeBody struct {
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Title         string `json:"title"`
}

func (h *ContentHandler) createCollection(w http.ResponseWriter, r *http.Request) {
	var body collectionBody
	if err := decode(r, &body); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	c := &models.Collection{Name: body.Name, ExternalID: body.ExternalID}
	if err := h.svc.CreateCollection(r.Context(), c); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, c)
}

func (h *ContentHandler) createMovie(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		WriteError(w, r, h.logger, shared.ErrUnauthenticated)
		return
	}
	var body movieBody
	if err := decode(r, &body); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	m := &models.Movie{
		Title:        body.Title,
		Year:         body.Year,
		ExternalID:   body.ExternalID,
		CollectionID: body.CollectionID,
		Watched:      body.Watched,
	}
	if err := h.svc.CreateMovie(r.Context(), userID, m); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, m)
}

func (h *ContentHandler) createSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		WriteError(w, r, h.logger, shared.ErrUnauthenticated)
		return
	}
	var body seriesBody
	if err := decode(r, &body); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	s := &models.Series{Title: body.Title, Year: body.Year, ExternalID: body.ExternalID}
	if err := h.svc.CreateSeries(r.Context(), userID, s); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, s)
}

func (h *ContentHandler) createEpisode(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		WriteError(w, r, h.logger, shared.ErrUnauthenticated)
		return
	}
	seriesID, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	var body episodeBody
	if err := decode(r, &body); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	e := &models.Episode{SeasonNumber: body.SeasonNumber, EpisodeNumber: body.EpisodeNumber, Title: body.Title}
	if err := h.svc.CreateEpisode(r.Context(), userID, seriesID, e); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, e)
}
