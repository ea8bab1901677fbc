package app_test

import (
	"context"
	"errors"
	"testing"

	"nobounce_admin/internal/app"
	"nobounce_admin/internal/domain"
)

func fakeLoader(missing string) app.FileLoader {
	return func(path string) (domain.Upload, error) {
		if path == missing {
			return domain.Upload{}, errors.New("no such file")
		}
		return domain.Upload{Filename: path, ContentType: "image/jpeg", Data: []byte(path)}, nil
	}
}

func TestImporter_Run(t *testing.T) {
	repo, st := newFakeRepo(), newFakeStorage()
	courts := newCourtService(repo, st, nil)
	im := app.NewImporter(courts, fakeLoader("gone.jpg"), 2, "importer")

	report := im.Run(context.Background(), []app.ImportEntry{
		{Court: app.CourtForm{Name: "A"}, Images: []string{"a.jpg", "gone.jpg", "b.png"},
			Rating: &app.RatingForm{Overall: "9.999", Rim: "7"}},
		{Court: app.CourtForm{Name: ""}},
		{Court: app.CourtForm{Name: "C", Latitude: "38,7"}},
	})

	if len(report.Outcomes) != 3 {
		t.Fatalf("outcomes = %d", len(report.Outcomes))
	}
	if report.Failed() != 1 {
		t.Fatalf("failed = %d, want 1", report.Failed())
	}

	a := report.Outcomes[0]
	if a.Err != nil || a.Images != 2 || len(a.Warnings) != 1 {
		t.Fatalf("entry A: %+v", a)
	}
	c := repo.courts[a.CourtID]
	if len(c.ImageURLs) != 2 {
		t.Fatalf("court A images = %v", c.ImageURLs)
	}
	r, err := repo.GetRating(context.Background(), a.CourtID, domain.SourceNoBounce)
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if r.Scores.Overall != 10 || r.Scores.Rim != 7 {
		t.Fatalf("scores = %+v", r.Scores)
	}
	if deref(r.AdminCreatedBy) != "importer" {
		t.Fatalf("admin = %q", deref(r.AdminCreatedBy))
	}

	if !app.IsValidation(report.Outcomes[1].Err) {
		t.Fatalf("entry 2 should fail validation, got %v", report.Outcomes[1].Err)
	}
	if report.Outcomes[2].Err != nil || report.Outcomes[2].Line != 3 {
		t.Fatalf("entry 3: %+v", report.Outcomes[2])
	}
}

func TestImporter_CancelledContext(t *testing.T) {
	courts := newCourtService(newFakeRepo(), newFakeStorage(), nil)
	im := app.NewImporter(courts, fakeLoader(""), 1, "importer")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := im.Run(ctx, []app.ImportEntry{{Court: app.CourtForm{Name: "A"}}, {Court: app.CourtForm{Name: "B"}}})
	if report.Failed() != 2 {
		t.Fatalf("failed = %d, want 2", report.Failed())
	}
}
