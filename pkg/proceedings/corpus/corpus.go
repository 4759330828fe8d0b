// Package corpus drives extraction across a directory of session
// files: year-range file selection, one parse task per file on a
// bounded pool, and collation of the results by trial date.
package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oldbailey/proceedings/pkg/proceedings/markup"
	"github.com/oldbailey/proceedings/pkg/proceedings/occupation"
	"github.com/oldbailey/proceedings/pkg/proceedings/trial"
)

// DefaultWorkers bounds the parse pool when Options.Workers is unset.
const DefaultWorkers = 8

// Session file names embed a four-digit year followed by word
// characters, e.g. 18450505_sessions.xml or 1845_sessions.xml.
var fileYearRe = regexp.MustCompile(`^(\d{4})\w+\.xml$`)

// SelectFiles lists the session files in dir whose embedded year falls
// within the inclusive range, lexicographically sorted.
func SelectFiles(dir string, minYear, maxYear int) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileYearRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if year >= minYear && year <= maxYear {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ParseFile extracts every trial record of one session file. Discarded
// records stay in the result as nil entries, preserving record order.
// The first structural failure aborts the file and is wrapped with its
// path.
func ParseFile(path string, occ occupation.Table, log *zap.Logger) ([]*trial.TrialData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := markup.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	records := root.Find("div1", map[string]string{"type": "trialAccount"})
	trials := make([]*trial.TrialData, 0, len(records))
	for _, rec := range records {
		td, err := trial.Parse(rec, occ, log)
		if err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
		trials = append(trials, td)
	}
	return trials, nil
}

// ByDate maps a session date to that day's trial records, nils
// included. A file is assumed to contain only same-dated records.
type ByDate map[time.Time][]*trial.TrialData

// Options configures a corpus run.
type Options struct {
	Dir              string
	MinYear, MaxYear int
	Occupations      occupation.Table
	Workers          int
	Logger           *zap.Logger
}

// Run parses every selected file on a bounded worker pool and collates
// the per-file results by date. Tasks share nothing mutable; each is a
// pure function of its file path and the read-only occupation table.
// The first hard failure cancels outstanding work and fails the run.
func Run(ctx context.Context, opts Options) (ByDate, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	files, err := SelectFiles(opts.Dir, opts.MinYear, opts.MaxYear)
	if err != nil {
		return nil, err
	}

	results := make([][]*trial.TrialData, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			trials, err := ParseFile(path, opts.Occupations, log)
			if err != nil {
				return err
			}
			results[i] = trials
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byDate := ByDate{}
	for i, trials := range results {
		date, ok := firstDate(trials)
		if !ok {
			log.Warn("file produced no usable records, skipping in collation",
				zap.String("file", files[i]))
			continue
		}
		byDate[date] = trials
	}
	return byDate, nil
}

func firstDate(trials []*trial.TrialData) (time.Time, bool) {
	for _, td := range trials {
		if td != nil {
			return td.Date, true
		}
	}
	return time.Time{}, false
}
