// Package calib reads calibration match results produced by external
// harnesses: either a directory of per-match log files named
// d<depth>_sf<rating>.log, or a CSV export.
package calib

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/chesslab/bookforge/internal/elo"
)

var (
	logNameRe = regexp.MustCompile(`^d(\d+)_sf(\d+)\.log$`)
	winsRe    = regexp.MustCompile(`Wins: (\d+)`)
	lossesRe  = regexp.MustCompile(`Losses: (\d+)`)
	drawsRe   = regexp.MustCompile(`Draws: (\d+)`)
	pointsRe  = regexp.MustCompile(`Points: ([\d.]+)`)
)

// ParseLogDir scans dir for match logs and extracts one sample per file.
// Files that are unreadable or missing a result line are skipped and
// counted, never fatal. Samples come back ordered by depth then opponent
// so downstream output is deterministic.
func ParseLogDir(dir string) ([]elo.Sample, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read calibration dir: %w", err)
	}

	var samples []elo.Sample
	skipped := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := logNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			skipped++
			continue
		}
		s, ok := parseLog(string(content))
		if !ok {
			skipped++
			continue
		}
		s.Depth, _ = strconv.Atoi(m[1])
		s.Opponent, _ = strconv.Atoi(m[2])
		samples = append(samples, s)
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Depth != samples[j].Depth {
			return samples[i].Depth < samples[j].Depth
		}
		return samples[i].Opponent < samples[j].Opponent
	})
	return samples, skipped, nil
}

// parseLog pulls the result lines out of one match log.
func parseLog(content string) (elo.Sample, bool) {
	var s elo.Sample
	wins := winsRe.FindStringSubmatch(content)
	losses := lossesRe.FindStringSubmatch(content)
	draws := drawsRe.FindStringSubmatch(content)
	points := pointsRe.FindStringSubmatch(content)
	if wins == nil || losses == nil || draws == nil || points == nil {
		return s, false
	}
	s.Wins, _ = strconv.Atoi(wins[1])
	s.Losses, _ = strconv.Atoi(losses[1])
	s.Draws, _ = strconv.Atoi(draws[1])
	p, err := strconv.ParseFloat(points[1], 64)
	if err != nil {
		return s, false
	}
	s.Points = p
	return s, true
}

// ReadCSV reads samples from rows of
// depth,opponent,wins,losses,draws,points. A header row is tolerated.
// Malformed rows are skipped and counted.
func ReadCSV(r io.Reader) ([]elo.Sample, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	var samples []elo.Sample
	skipped := 0
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		s, ok := parseRow(row)
		if !ok {
			// Allow a header line, but only as the first row.
			if !first {
				skipped++
			}
			first = false
			continue
		}
		first = false
		samples = append(samples, s)
	}
	return samples, skipped, nil
}

func parseRow(row []string) (elo.Sample, bool) {
	var s elo.Sample
	ints := []*int{&s.Depth, &s.Opponent, &s.Wins, &s.Losses, &s.Draws}
	for i, dst := range ints {
		v, err := strconv.Atoi(row[i])
		if err != nil {
			return s, false
		}
		*dst = v
	}
	p, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return s, false
	}
	s.Points = p
	return s, true
}
