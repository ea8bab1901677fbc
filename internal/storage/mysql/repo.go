package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"nobounce_admin/internal/domain"
)

// MySQL error numbers we translate.
const (
	errNoReferencedRow = 1452
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
func f64Ptr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func imagesJSON(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	return string(b), err
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) InsertCourt(ctx context.Context, f domain.CourtFields, admin string) (domain.Court, error) {
	imgs, _ := imagesJSON(nil)
	res, err := r.db.ExecContext(ctx, insertCourtSQL,
		f.Name,
		valStr(f.Address),
		valStr(f.City),
		valStr(f.District),
		valF64(f.Latitude),
		valF64(f.Longitude),
		valStr(f.InstagramURL),
		valStr(f.TikTokURL),
		imgs,
		nullIfEmpty(admin),
	)
	if err != nil {
		return domain.Court{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Court{}, fmt.Errorf("court id: %w", err)
	}
	return r.GetCourt(ctx, id)
}

// UpdateCourt writes u and returns the number of affected rows (0 or 1).
// version always moves forward, so a matched row always counts as affected.
func (r *Repo) UpdateCourt(ctx context.Context, id int64, u domain.CourtUpdate) (int64, error) {
	var (
		sets []string
		args []any
	)
	if f := u.Fields; f != nil {
		sets = append(sets, updateCourtFields)
		args = append(args,
			f.Name,
			valStr(f.Address),
			valStr(f.City),
			valStr(f.District),
			valF64(f.Latitude),
			valF64(f.Longitude),
			valStr(f.InstagramURL),
			valStr(f.TikTokURL),
		)
	}
	if u.ImageURLs != nil {
		imgs, err := imagesJSON(u.ImageURLs)
		if err != nil {
			return 0, err
		}
		sets = append(sets, updateCourtImages)
		args = append(args, imgs)
	}
	sets = append(sets, updateCourtTrailer)
	args = append(args, nullIfEmpty(u.AdminCreatedBy))

	q := updateCourtPrefix + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	if u.ExpectedVersion != nil {
		q += " AND version = ?"
		args = append(args, *u.ExpectedVersion)
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) GetCourt(ctx context.Context, id int64) (domain.Court, error) {
	row := r.db.QueryRowContext(ctx, getCourtSQL, id)

	var (
		c                       domain.Court
		address, city, district sql.NullString
		insta, tiktok, admin    sql.NullString
		lat, lon                sql.NullFloat64
		imagesRaw               []byte
	)
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&address, &city, &district,
		&lat, &lon,
		&insta, &tiktok,
		&imagesRaw,
		&admin,
		&c.Version,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Court{}, domain.ErrNotFound
		}
		return domain.Court{}, err
	}

	c.Address, c.City, c.District = strPtr(address), strPtr(city), strPtr(district)
	c.Latitude, c.Longitude = f64Ptr(lat), f64Ptr(lon)
	c.InstagramURL, c.TikTokURL = strPtr(insta), strPtr(tiktok)
	c.AdminCreatedBy = strPtr(admin)

	c.ImageURLs = []string{}
	if len(imagesRaw) > 0 {
		if err := json.Unmarshal(imagesRaw, &c.ImageURLs); err != nil {
			return domain.Court{}, fmt.Errorf("court %d image_urls: %w", id, err)
		}
		if c.ImageURLs == nil { // JSON null
			c.ImageURLs = []string{}
		}
	}
	return c, nil
}

func (r *Repo) ListCourts(ctx context.Context) ([]domain.CourtSummary, error) {
	rows, err := r.db.QueryContext(ctx, listCourtsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.CourtSummary{}
	for rows.Next() {
		var cs domain.CourtSummary
		var city, district sql.NullString
		if err := rows.Scan(&cs.ID, &cs.Name, &city, &district); err != nil {
			return nil, err
		}
		cs.City, cs.District = strPtr(city), strPtr(district)
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) UpsertRating(ctx context.Context, rt domain.Rating) (domain.Rating, error) {
	s := rt.Scores
	_, err := r.db.ExecContext(ctx, upsertRatingSQL,
		rt.CourtID,
		string(rt.Source),
		s.Overall, s.Rim, s.Floor, s.CourtSpacing, s.Bench, s.Water, s.Backboard,
		valStr(rt.AdminCreatedBy),
	)
	if err != nil {
		var me *mysqldrv.MySQLError
		if errors.As(err, &me) && me.Number == errNoReferencedRow {
			return domain.Rating{}, fmt.Errorf("court %d: %w", rt.CourtID, domain.ErrNotFound)
		}
		return domain.Rating{}, err
	}
	return r.GetRating(ctx, rt.CourtID, rt.Source)
}

func (r *Repo) GetRating(ctx context.Context, courtID int64, source domain.Source) (domain.Rating, error) {
	var (
		rt    domain.Rating
		src   string
		admin sql.NullString
	)
	err := r.db.QueryRowContext(ctx, getRatingSQL, courtID, string(source)).Scan(
		&rt.CourtID,
		&src,
		&rt.Scores.Overall,
		&rt.Scores.Rim,
		&rt.Scores.Floor,
		&rt.Scores.CourtSpacing,
		&rt.Scores.Bench,
		&rt.Scores.Water,
		&rt.Scores.Backboard,
		&admin,
		&rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Rating{}, domain.ErrNotFound
		}
		return domain.Rating{}, err
	}
	rt.Source = domain.Source(src)
	rt.AdminCreatedBy = strPtr(admin)
	return rt, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
