package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chesslab/bookforge/internal/artifact"
	"github.com/chesslab/bookforge/internal/book"
	"github.com/chesslab/bookforge/internal/corpus"
	"github.com/chesslab/bookforge/internal/extract"
	"github.com/chesslab/bookforge/internal/logx"
)

func main() {
	defaultRatingMin := 2200
	if env := os.Getenv("BOOKFORGE_RATING_MIN"); env != "" {
		if rating, err := strconv.Atoi(env); err == nil {
			defaultRatingMin = rating
		}
	}

	var (
		ratingMin = flag.Int("rating-min", defaultRatingMin, "Rating floor for both players")
		maxPly    = flag.Int("max-ply", 12, "Last ply (1-based) included in the book")
		minGames  = flag.Int("min-games", 20, "Minimum games behind a retained position")
		minFreq   = flag.Float64("min-freq", 0.05, "Minimum share of a position's games a move must reach")
		topK      = flag.Int("top-k", book.DefaultTopK, "Maximum moves kept per position")
		maxGames  = flag.Int("max-games", 0, "Maximum games to use per input file (0 = unlimited)")
		workers   = flag.Int("workers", runtime.NumCPU(), "Parallel input files")
		outPath   = flag.String("out", "book.jsonl", "Book artifact path (.zst compresses)")
		statsPath = flag.String("stats", "book_stats.md", "Statistics summary path")
	)
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: buildbook [options] <file.pgn[.zst]>...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger()
	logger.Info().
		Int("files", len(files)).
		Int("rating_min", *ratingMin).
		Int("max_ply", *maxPly).
		Int("min_games", *minGames).
		Float64("min_freq", *minFreq).
		Msg("starting book build")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One frequency table per file, merged after the group finishes.
	// Tables are explicit values, so the parallel batches stay independent
	// until the merge.
	total := book.NewFrequencyTable()
	var stats corpus.Stats
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	for _, path := range files {
		g.Go(func() error {
			t, st, err := scanFile(ctx, logger, path, *ratingMin, *maxPly, *maxGames)
			if err != nil {
				return err
			}
			mu.Lock()
			total.Merge(t)
			stats.Add(st)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("book build aborted, no artifact written")
	}

	logger.Info().
		Int64("games_parsed", stats.Parsed).
		Int64("games_used", stats.Used).
		Int64("games_malformed", stats.Malformed).
		Int64("games_excluded", stats.Excluded).
		Int("positions", total.Positions()).
		Int64("observations", total.Observations()).
		Msg("aggregation complete, filtering")

	b := book.Filter(total, book.Thresholds{
		MinGames: *minGames,
		MinFreq:  *minFreq,
		TopK:     *topK,
	})

	if err := writeBook(b, *outPath, *statsPath); err != nil {
		logger.Fatal().Err(err).Msg("write artifacts")
	}

	logger.Info().
		Int("book_positions", len(b.Entries)).
		Str("out", *outPath).
		Str("stats", *statsPath).
		Msg("book build complete")
}

// scanFile aggregates one PGN file into its own frequency table.
func scanFile(ctx context.Context, logger zerolog.Logger, path string, ratingMin, maxPly, maxGames int) (*book.FrequencyTable, corpus.Stats, error) {
	sc, err := corpus.Open(path, ratingMin)
	if err != nil {
		return nil, corpus.Stats{}, err
	}
	defer sc.Close()

	table := book.NewFrequencyTable()
	startTime := time.Now()
	lastLog := time.Now()
	var games int64

	for sc.Next() {
		select {
		case <-ctx.Done():
			return nil, sc.Stats(), ctx.Err()
		default:
		}

		_, err := extract.Openings(sc.Game(), 1, maxPly, func(pos pgn.PackedPosition, mv pgn.Mv) bool {
			table.Observe(pos, book.MoveFromMv(mv))
			return true
		})
		if err != nil {
			sc.CountMalformed()
			continue
		}
		games++
		if maxGames > 0 && games >= int64(maxGames) {
			logger.Info().Str("file", path).Int64("games", games).Msg("reached max games limit")
			break
		}

		if time.Since(lastLog) > 10*time.Second {
			st := sc.Stats()
			elapsed := time.Since(startTime)
			logger.Info().
				Str("file", path).
				Int64("games", st.Used).
				Int64("skipped", st.Malformed+st.Excluded).
				Int("positions", table.Positions()).
				Float64("games_per_sec", float64(st.Used)/elapsed.Seconds()).
				Msg("scan progress")
			lastLog = time.Now()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, sc.Stats(), fmt.Errorf("parse %s: %w", path, err)
	}
	return table, sc.Stats(), nil
}

// writeBook emits both artifacts, only after aggregation has fully
// completed: an interrupted run leaves nothing partial behind.
func writeBook(b *book.Book, outPath, statsPath string) error {
	out, err := artifact.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := book.Write(out, b); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	stats, err := artifact.Create(statsPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", statsPath, err)
	}
	if err := book.WriteStats(stats, b); err != nil {
		stats.Close()
		return err
	}
	return stats.Close()
}
