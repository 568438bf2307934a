package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/metrics"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
	"github.com/Clark-Hu/movie-ratings/internal/validation"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Client-facing error messages.
const (
	msgInvalidFields     = "Invalid fields"
	msgInvalidYear       = "Invalid year"
	msgInvalidID         = "Invalid ID"
	msgInvalidRating     = "Invalid rating"
	msgNotFound          = "Not found"
	msgFetchMoviesFailed = "Failed to fetch movies"
	msgFetchMovieFailed  = "Failed to fetch movie"
	msgAddMovieFailed    = "Failed to add movie"
	msgAddRatingFailed   = "Failed to add rating"
	msgUnavailable       = "Service unavailable"
)

type errorResponse struct {
	Error string `json:"error"`
}

type movieResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Genre     string    `json:"genre"`
	CreatedAt time.Time `json:"createdAt"`
}

type ratingStatsResponse struct {
	AvgRating    float64 `json:"avgRating"`
	TotalRatings int64   `json:"totalRatings"`
}

type movieWithStatsResponse struct {
	movieResponse
	ratingStatsResponse
}

type movieDetailResponse struct {
	movieResponse
	ratingStatsResponse
	Ratings []int `json:"ratings"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.repo.Movies.ListWithStats(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("list movies failed")
		s.respondError(w, http.StatusInternalServerError, msgFetchMoviesFailed)
		return
	}

	items := make([]movieWithStatsResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, movieWithStatsResponse{
			movieResponse:       toMovieResponse(movie.Movie),
			ratingStatsResponse: toStatsResponse(movie.Stats),
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, msgInvalidFields)
		return
	}

	input, res := validation.ValidateMovie(body)
	if !res.OK {
		s.respondError(w, http.StatusBadRequest, msgInvalidFields)
		return
	}
	if !validation.IsValidYear(input.RawYear) {
		s.respondError(w, http.StatusBadRequest, msgInvalidYear)
		return
	}

	movie, err := s.repo.Movies.Create(r.Context(), repository.MovieCreateParams{
		Title: input.Title,
		Year:  int(input.Year),
		Genre: input.Genre,
	})
	if err != nil {
		s.logger.WithError(err).Error("create movie failed")
		s.respondError(w, http.StatusInternalServerError, msgAddMovieFailed)
		return
	}

	metrics.RecordMovieCreated()
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, res := validation.ParseID(chi.URLParam(r, "id"))
	if !res.OK {
		s.respondError(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, msgNotFound)
			return
		}
		s.logger.WithError(err).WithField("movie_id", id).Error("fetch movie failed")
		s.respondError(w, http.StatusInternalServerError, msgFetchMovieFailed)
		return
	}

	scores, err := s.repo.Ratings.ScoresForMovie(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).WithField("movie_id", id).Error("fetch ratings failed")
		s.respondError(w, http.StatusInternalServerError, msgFetchMovieFailed)
		return
	}
	if scores == nil {
		scores = []int{}
	}

	s.respondJSON(w, http.StatusOK, movieDetailResponse{
		movieResponse:       toMovieResponse(movie),
		ratingStatsResponse: toStatsResponse(domain.Summarize(scores)),
		Ratings:             scores,
	})
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	id, res := validation.ParseID(chi.URLParam(r, "id"))
	if !res.OK {
		s.respondError(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, msgInvalidRating)
		return
	}
	input, res := validation.ValidateRating(id, body)
	if !res.OK || !validation.IsValidRating(input.RawScore) {
		s.respondError(w, http.StatusBadRequest, msgInvalidRating)
		return
	}
	score := int(input.Score)

	entry := s.logger.WithFields(logrus.Fields{"movie_id": id, "score": score})

	if _, err := s.repo.Movies.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, msgNotFound)
			return
		}
		entry.WithError(err).Error("fetch movie for rating failed")
		s.respondError(w, http.StatusInternalServerError, msgAddRatingFailed)
		return
	}

	stats, err := s.repo.Ratings.Add(r.Context(), id, score)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, msgNotFound)
			return
		}
		entry.WithError(err).Error("add rating failed")
		s.respondError(w, http.StatusInternalServerError, msgAddRatingFailed)
		return
	}

	metrics.RecordRating(score)
	s.respondJSON(w, http.StatusOK, toStatsResponse(stats))
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.WithError(err).Warn("failed to encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:        movie.ID,
		Title:     movie.Title,
		Year:      movie.Year,
		Genre:     movie.Genre,
		CreatedAt: movie.CreatedAt,
	}
}

func toStatsResponse(stats domain.RatingStats) ratingStatsResponse {
	return ratingStatsResponse{
		AvgRating:    stats.Average,
		TotalRatings: stats.Count,
	}
}
