package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"nobounce_admin/internal/domain"
)

// ValidationError is returned for bad user input, before any store or storage call.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// CourtForm holds raw court inputs as typed by the admin.
type CourtForm struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	District     string `json:"district"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	InstagramURL string `json:"instagram_url"`
	TikTokURL    string `json:"tiktok_url"`
}

// RatingForm holds raw rating inputs. Empty scores read as 0.
type RatingForm struct {
	CourtID      string `json:"court_id"`
	Source       string `json:"source"`
	Overall      string `json:"overall"`
	Rim          string `json:"rim"`
	Floor        string `json:"floor"`
	CourtSpacing string `json:"court_spacing"`
	Bench        string `json:"bench"`
	Water        string `json:"water"`
	Backboard    string `json:"backboard"`
}

/********** tiny helpers **********/

// ptrStr trims s and returns nil when nothing is left.
func ptrStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ParseFloatOrNil: "" -> nil, "38,7" and "38.7" -> 38.7, garbage -> error.
func ParseFloatOrNil(s string) (*float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%q is not a finite number", s)
	}
	return &f, nil
}

// NormalizeScore clamps to [0,10] and rounds to two decimals.
// Rounding works on the exact binary value with ties to even, so 2.675 becomes 2.67.
func NormalizeScore(f float64) float64 {
	if f < domain.MinScore {
		f = domain.MinScore
	}
	if f > domain.MaxScore {
		f = domain.MaxScore
	}
	v, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	return v
}

/********** court form **********/

func ParseCourtForm(in CourtForm) (domain.CourtFields, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.CourtFields{}, invalid("name", "name is required")
	}

	lat, err := ParseFloatOrNil(in.Latitude)
	if err != nil {
		return domain.CourtFields{}, invalid("latitude", "must be a valid number (or empty)")
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		return domain.CourtFields{}, invalid("latitude", "must be between -90 and 90")
	}
	lon, err := ParseFloatOrNil(in.Longitude)
	if err != nil {
		return domain.CourtFields{}, invalid("longitude", "must be a valid number (or empty)")
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return domain.CourtFields{}, invalid("longitude", "must be between -180 and 180")
	}

	return domain.CourtFields{
		Name:         name,
		Address:      ptrStr(in.Address),
		City:         ptrStr(in.City),
		District:     ptrStr(in.District),
		Latitude:     lat,
		Longitude:    lon,
		InstagramURL: ptrStr(in.InstagramURL),
		TikTokURL:    ptrStr(in.TikTokURL),
	}, nil
}

/********** rating form **********/

func ParseRatingForm(in RatingForm) (domain.RatingFields, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(in.CourtID), 10, 64)
	if err != nil || id <= 0 {
		return domain.RatingFields{}, invalid("court_id", "a court must be selected")
	}

	src := domain.Source(strings.TrimSpace(in.Source))
	if src == "" {
		src = domain.SourceNoBounce
	}
	if !src.Valid() {
		return domain.RatingFields{}, invalid("source", "unknown source %q", src)
	}

	var sc domain.Scores
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"overall", in.Overall, &sc.Overall},
		{"rim", in.Rim, &sc.Rim},
		{"floor", in.Floor, &sc.Floor},
		{"court_spacing", in.CourtSpacing, &sc.CourtSpacing},
		{"bench", in.Bench, &sc.Bench},
		{"water", in.Water, &sc.Water},
		{"backboard", in.Backboard, &sc.Backboard},
	} {
		v, err := ParseFloatOrNil(f.raw)
		if err != nil {
			return domain.RatingFields{}, invalid(f.name, "must be a number between 0 and 10")
		}
		if v != nil {
			*f.dst = NormalizeScore(*v)
		}
	}

	return domain.RatingFields{CourtID: id, Source: src, Scores: sc}, nil
}

// NormalizeScores applies NormalizeScore to every sub-score.
func NormalizeScores(s domain.Scores) domain.Scores {
	return domain.Scores{
		Overall:      NormalizeScore(s.Overall),
		Rim:          NormalizeScore(s.Rim),
		Floor:        NormalizeScore(s.Floor),
		CourtSpacing: NormalizeScore(s.CourtSpacing),
		Bench:        NormalizeScore(s.Bench),
		Water:        NormalizeScore(s.Water),
		Backboard:    NormalizeScore(s.Backboard),
	}
}
