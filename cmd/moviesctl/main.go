// Command moviesctl runs one-off maintenance tasks against the movies database.
//
// Usage:
//
//	moviesctl [-db URL] migrate
//	moviesctl [-db URL] seed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/movie-ratings/internal/repository"
	"github.com/Clark-Hu/movie-ratings/internal/store"
)

func main() {
	_ = godotenv.Load()

	var (
		dbURL   = flag.String("db", os.Getenv("DB_URL"), "postgres connection URL (defaults to $DB_URL)")
		timeout = flag.Duration("timeout", 30*time.Second, "overall deadline for the command")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] migrate|seed\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if flag.NArg() != 1 || *dbURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, flag.Arg(0), *dbURL, logger); err != nil {
		logger.WithError(err).Fatal(flag.Arg(0) + " failed")
	}
}

func run(ctx context.Context, cmd, dbURL string, logger *logrus.Logger) error {
	switch cmd {
	case "migrate":
		return store.Migrate(dbURL, logger)
	case "seed":
		st, err := store.New(ctx, dbURL, store.Options{MaxConns: 2, Logger: logger})
		if err != nil {
			return err
		}
		defer st.Close()

		result, err := repository.New(st).Seed(ctx)
		if err != nil {
			return err
		}
		if !result.Seeded {
			logger.Info("movies already present, nothing to seed")
			return nil
		}
		logger.WithFields(logrus.Fields{"movies": result.Movies, "ratings": result.Ratings}).Info("seeded starter catalog")
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
