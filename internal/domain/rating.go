package domain

import "time"

// Source tags a rating's origin. One rating exists per (court, source).
type Source string

const SourceNoBounce Source = "NO_BOUNCE"

var Sources = []Source{SourceNoBounce}

func (s Source) Valid() bool {
	for _, v := range Sources {
		if s == v {
			return true
		}
	}
	return false
}

const (
	MinScore = 0.0
	MaxScore = 10.0
)

type Scores struct {
	Overall      float64 `json:"overall"`
	Rim          float64 `json:"rim"`
	Floor        float64 `json:"floor"`
	CourtSpacing float64 `json:"court_spacing"`
	Bench        float64 `json:"bench"`
	Water        float64 `json:"water"`
	Backboard    float64 `json:"backboard"`
}

type Rating struct {
	CourtID        int64     `json:"court_id"`
	Source         Source    `json:"source"`
	Scores         Scores    `json:"scores"`
	AdminCreatedBy *string   `json:"admin_created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RatingFields is a full rating write; every sub-score is always supplied.
type RatingFields struct {
	CourtID int64
	Source  Source
	Scores  Scores
}
