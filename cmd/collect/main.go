package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/chesslab/bookforge/internal/artifact"
	"github.com/chesslab/bookforge/internal/corpus"
	"github.com/chesslab/bookforge/internal/extract"
	"github.com/chesslab/bookforge/internal/logx"
)

type position struct {
	fen   string
	score float64
}

func main() {
	defaultRatingMin := 1800
	if env := os.Getenv("BOOKFORGE_RATING_MIN"); env != "" {
		if rating, err := strconv.Atoi(env); err == nil {
			defaultRatingMin = rating
		}
	}

	var (
		ratingMin    = flag.Int("rating-min", defaultRatingMin, "Rating floor for both players")
		minPly       = flag.Int("min-ply", 10, "First ply (1-based) eligible for extraction")
		maxPly       = flag.Int("max-ply", 50, "Last eligible ply")
		perGame      = flag.Int("per-game", 5, "Maximum positions taken from one game")
		maxPositions = flag.Int("max-positions", 20000, "Stop after collecting this many positions")
		outPath      = flag.String("out", "", "Output path (.zst compresses; empty = stdout)")
	)
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: collect [options] <file.pgn[.zst]>...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger()
	logger.Info().
		Int("rating_min", *ratingMin).
		Int("min_ply", *minPly).
		Int("max_ply", *maxPly).
		Int("per_game", *perGame).
		Int("max_positions", *maxPositions).
		Msg("collecting training positions from decisive games")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := extract.Config{MinPly: *minPly, MaxPly: *maxPly, PerGame: *perGame}

	// Collected in memory and written only once every input is fully
	// processed; an interrupted run emits nothing.
	var positions []position
	var stats corpus.Stats
	gamesWithPositions := 0

	for _, path := range files {
		if len(positions) >= *maxPositions {
			break
		}
		st, n, err := collectFile(ctx, logger, path, *ratingMin, cfg, *maxPositions, &positions)
		if err != nil {
			logger.Fatal().Err(err).Str("file", path).Msg("collect aborted, no output written")
		}
		stats.Add(st)
		gamesWithPositions += n
		logger.Info().
			Str("file", path).
			Int64("games", st.Parsed).
			Int("positions", len(positions)).
			Msg("file done")
	}

	if err := writePositions(positions, *outPath); err != nil {
		logger.Fatal().Err(err).Msg("write output")
	}

	avg := 0.0
	if gamesWithPositions > 0 {
		avg = float64(len(positions)) / float64(gamesWithPositions)
	}
	logger.Info().
		Int64("games_parsed", stats.Parsed).
		Int64("games_used", stats.Used).
		Int64("games_malformed", stats.Malformed).
		Int64("games_excluded", stats.Excluded).
		Int("games_with_positions", gamesWithPositions).
		Int("positions", len(positions)).
		Float64("avg_per_game", avg).
		Msg("collection complete")
}

func collectFile(ctx context.Context, logger zerolog.Logger, path string, ratingMin int, cfg extract.Config, maxPositions int, positions *[]position) (corpus.Stats, int, error) {
	sc, err := corpus.Open(path, ratingMin)
	if err != nil {
		return corpus.Stats{}, 0, err
	}
	defer sc.Close()

	gamesWithPositions := 0
	lastLog := time.Now()
	for sc.Next() {
		select {
		case <-ctx.Done():
			return sc.Stats(), gamesWithPositions, ctx.Err()
		default:
		}
		if len(*positions) >= maxPositions {
			break
		}

		n, err := extract.Training(sc.Game(), cfg, func(fen string, score float64) bool {
			if len(*positions) >= maxPositions {
				return false
			}
			*positions = append(*positions, position{fen: fen, score: score})
			return true
		})
		if err != nil {
			sc.CountMalformed()
			continue
		}
		if n > 0 {
			gamesWithPositions++
		}

		if time.Since(lastLog) > 10*time.Second {
			logger.Info().
				Str("file", path).
				Int64("games", sc.Stats().Parsed).
				Int("positions", len(*positions)).
				Msg("collect progress")
			lastLog = time.Now()
		}
	}
	if err := sc.Err(); err != nil {
		return sc.Stats(), gamesWithPositions, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc.Stats(), gamesWithPositions, nil
}

// writePositions emits one EPD-style line per position: "<fen>; <score>;".
func writePositions(positions []position, outPath string) error {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if outPath != "" {
		f, err := artifact.Create(outPath)
		if err != nil {
			return err
		}
		w = f
		closer = f
	}

	bw := bufio.NewWriter(w)
	for _, p := range positions {
		fmt.Fprintf(bw, "%s; %s;\n", p.fen, strconv.FormatFloat(p.score, 'f', 1, 64))
	}
	if err := bw.Flush(); err != nil {
		if closer != nil {
			closer.Close()
		}
		return err
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}
