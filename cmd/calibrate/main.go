package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/chesslab/bookforge/internal/artifact"
	"github.com/chesslab/bookforge/internal/calib"
	"github.com/chesslab/bookforge/internal/elo"
	"github.com/chesslab/bookforge/internal/logx"
)

func main() {
	var (
		logsDir  = flag.String("logs", "", "Directory of d<depth>_sf<rating>.log match logs")
		csvPath  = flag.String("csv", "", "CSV of depth,opponent,wins,losses,draws,points")
		minGames = flag.Int("min-games", 10, "Minimum games behind a depth's estimate")
		outPath  = flag.String("out", "depth_ratings.json", "Lookup artifact path")
	)
	flag.Parse()

	if (*logsDir == "") == (*csvPath == "") {
		fmt.Fprintln(os.Stderr, "Usage: calibrate (--logs <dir> | --csv <file>) [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger()

	var samples []elo.Sample
	var skipped int
	var err error
	if *logsDir != "" {
		samples, skipped, err = calib.ParseLogDir(*logsDir)
	} else {
		var f *os.File
		f, err = os.Open(*csvPath)
		if err == nil {
			samples, skipped, err = calib.ReadCSV(f)
			f.Close()
		}
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("read calibration results")
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("unreadable or incomplete match records skipped")
	}
	if len(samples) == 0 {
		logger.Fatal().Msg("no calibration samples found")
	}

	cal := elo.NewCalibrator(*minGames)
	for _, s := range samples {
		cal.Add(s)
		if s.Games() > 0 {
			logger.Debug().
				Int("depth", s.Depth).
				Int("opponent", s.Opponent).
				Str("record", fmt.Sprintf("W%d-L%d-D%d", s.Wins, s.Losses, s.Draws)).
				Float64("score", s.Score()).
				Int("estimate", elo.Estimate(s.Opponent, s.Score())).
				Msg("sample")
		}
	}

	res := cal.Result()
	for _, note := range res.Omitted {
		logger.Warn().Msg(note)
	}
	for _, warn := range res.Warnings {
		logger.Warn().Str("problem", "non-monotonic calibration").Msg(warn)
	}

	lookup, err := elo.DeriveLookup(res.Table)
	if err != nil {
		logger.Fatal().Err(err).Msg("derive lookup table")
	}

	for _, e := range res.Table {
		logger.Info().Int("depth", e.Depth).Int("rating", e.Rating).Msg("calibrated")
	}

	out, err := artifact.Create(*outPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("create artifact")
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	writeErr := enc.Encode(elo.Artifact{
		Entries:    res.Table,
		Boundaries: lookup.Boundaries,
		MaxDepth:   lookup.MaxDepth,
		Omitted:    res.Omitted,
		Warnings:   res.Warnings,
	})
	if err := out.Close(); writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		logger.Fatal().Err(writeErr).Msg("write artifact")
	}

	logger.Info().
		Int("depths", len(res.Table)).
		Int("warnings", len(res.Warnings)).
		Str("out", *outPath).
		Msg("calibration complete")
}
