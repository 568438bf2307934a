package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/Clark-Hu/movie-ratings/internal/repository"
)

func BenchmarkHandleSubmitRating(b *testing.B) {
	srv := buildTestServer(b)

	movie, err := srv.repo.Movies.Create(context.Background(), repository.MovieCreateParams{
		Title: "Benchmark Movie",
		Year:  2020,
		Genre: "Action",
	})
	if err != nil {
		b.Fatalf("create movie: %v", err)
	}
	path := fmt.Sprintf("/api/movies/%d/rate", movie.ID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := doRequest(srv, http.MethodPost, path, fmt.Sprintf(`{"score":%d}`, i%5+1))
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkHandleListMovies(b *testing.B) {
	srv := buildTestServer(b)
	if _, err := srv.repo.Seed(context.Background()); err != nil {
		b.Fatalf("seed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := doRequest(srv, http.MethodGet, "/api/movies", "")
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
