package app

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"nobounce_admin/internal/domain"
)

// ImportEntry is one court to load, with local image files and an optional rating.
type ImportEntry struct {
	Court  CourtForm
	Images []string
	Rating *RatingForm
}

type ImportOutcome struct {
	Line     int // 1-based position in the manifest
	CourtID  int64
	Images   int
	Warnings []string
	Err      error
}

type ImportReport struct {
	Outcomes []ImportOutcome
}

func (r ImportReport) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// FileLoader reads one local image into an upload.
type FileLoader func(path string) (domain.Upload, error)

func LoadLocalFile(path string) (domain.Upload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Upload{}, err
	}
	return domain.Upload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        b,
	}, nil
}

// Importer runs entries through CourtService with bounded concurrency.
// Each entry stays sequential: create, upload, attach, rate.
type Importer struct {
	courts  *CourtService
	load    FileLoader
	workers int64
	admin   string
}

func NewImporter(courts *CourtService, load FileLoader, workers int, admin string) *Importer {
	if load == nil {
		load = LoadLocalFile
	}
	if workers <= 0 {
		workers = 1
	}
	return &Importer{courts: courts, load: load, workers: int64(workers), admin: admin}
}

func (im *Importer) Run(ctx context.Context, entries []ImportEntry) ImportReport {
	out := make([]ImportOutcome, len(entries))
	sem := semaphore.NewWeighted(im.workers)
	var wg sync.WaitGroup

	for i, e := range entries {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(entries); j++ {
				out[j] = ImportOutcome{Line: j + 1, Err: err}
			}
			break
		}
		wg.Add(1)
		go func(i int, e ImportEntry) {
			defer wg.Done()
			defer sem.Release(1)
			out[i] = im.one(ctx, i+1, e)
		}(i, e)
	}
	wg.Wait()
	return ImportReport{Outcomes: out}
}

func (im *Importer) one(ctx context.Context, line int, e ImportEntry) ImportOutcome {
	o := ImportOutcome{Line: line}

	fields, err := ParseCourtForm(e.Court)
	if err != nil {
		o.Err = err
		return o
	}

	var files []domain.Upload
	for _, p := range e.Images {
		u, err := im.load(p)
		if err != nil {
			o.Warnings = append(o.Warnings, fmt.Sprintf("skipped %s: %v", p, err))
			continue
		}
		files = append(files, u)
	}

	res, err := im.courts.CreateCourt(ctx, im.admin, fields, files)
	o.CourtID = res.Court.ID
	if res.Batch != nil {
		o.Images = len(res.Batch.URLs())
		o.Warnings = append(o.Warnings, res.Batch.Warnings()...)
	}
	if err != nil {
		o.Err = err
		return o
	}

	if e.Rating != nil {
		rf := *e.Rating
		rf.CourtID = strconv.FormatInt(o.CourtID, 10)
		parsed, err := ParseRatingForm(rf)
		if err != nil {
			o.Err = fmt.Errorf("court %d rating: %w", o.CourtID, err)
			return o
		}
		if _, err := im.courts.SaveRating(ctx, im.admin, parsed); err != nil {
			o.Err = fmt.Errorf("court %d rating: %w", o.CourtID, err)
			return o
		}
	}

	log.Info().Int("line", line).Int64("court_id", o.CourtID).Int("images", o.Images).Msg("court imported")
	return o
}
