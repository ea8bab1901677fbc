// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"nobounce_admin/internal/adapters/observability"
	"nobounce_admin/internal/app"
	"nobounce_admin/internal/auth"
	"nobounce_admin/internal/domain"
)

const (
	imagesField     = "images"
	multipartMemory = 8 << 20
	defaultMaxBody  = 32 << 20
)

type Handlers struct {
	Q        *app.QueryService
	Courts   *app.CourtService
	Creds    *auth.File
	Sessions *auth.Sessions

	MaxUploadBytes int64
	SecureCookie   bool
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.With(Timeout(s.timeout)).Post("/login", h.login)
	s.mux.Post("/logout", h.logout)

	s.mux.Group(func(r chi.Router) {
		r.Use(RequireAdmin(h.Sessions, h.cookieName()))

		r.Group(func(r chi.Router) {
			r.Use(Timeout(s.timeout))
			r.Get("/v1/me", h.me)
			r.Get("/v1/courts", h.listCourts)
			r.Get("/v1/courts/{id}", h.getCourt)
			r.Get("/v1/courts/{id}/ratings/{source}", h.getRating)
			r.Put("/v1/courts/{id}/ratings", h.saveRating)
		})

		// multipart submissions: body size is capped by MaxUploadBytes, not by a deadline
		r.Post("/v1/courts", h.createCourt)
		r.Put("/v1/courts/{id}", h.updateCourt)
	})
}

func (h *Handlers) cookieName() string {
	if h.Creds != nil && h.Creds.Cookie.Name != "" {
		return h.Creds.Cookie.Name
	}
	return auth.DefaultCookieName
}

/********** response helpers **********/

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *app.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblemBody(w, problem{Type: "about:blank", Title: "Invalid input", Status: http.StatusBadRequest, Detail: ve.Msg, Field: ve.Field})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "court not found")
	case errors.Is(err, domain.ErrVersionConflict):
		writeProblem(w, http.StatusConflict, "Conflict", "the court was changed by someone else, reload and retry")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "store operation failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func versionETag(v int64) string { return `W/"` + strconv.FormatInt(v, 10) + `"` }

// parseIfMatch accepts W/"3", "3" or 3. Empty or * means no precondition.
func parseIfMatch(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return nil, nil
	}
	s = strings.Trim(strings.TrimPrefix(s, "W/"), `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return nil, fmt.Errorf("If-Match must carry a court version")
	}
	return &v, nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return 0, false
	}
	return id, true
}

func adminName(r *http.Request) string {
	a, _ := auth.FromContext(r.Context())
	return a.Username
}

/********** auth **********/

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if isJSON(r) {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&in); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"username\",\"password\"}")
			return
		}
	} else {
		in.Username, in.Password = r.PostFormValue("username"), r.PostFormValue("password")
	}
	if in.Username == "" || in.Password == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid input", "username and password are required")
		return
	}

	a, err := h.Creds.Verify(in.Username, in.Password)
	if err != nil {
		observability.ObserveLogin("bad_credentials")
		log.Warn().Str("username", in.Username).Str("remote", remoteIP(r)).Msg("login rejected")
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "username/password is incorrect")
		return
	}
	tok, exp, err := h.Sessions.Issue(a)
	if err != nil {
		observability.ObserveLogin("error")
		log.Error().Err(err).Msg("issue session failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not start session")
		return
	}
	observability.ObserveLogin("ok")
	log.Info().Str("admin", a.Username).Msg("login")

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"admin": a, "token": tok, "expires_at": exp})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	a, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, a)
}

/********** courts **********/

type courtOption struct {
	domain.CourtSummary
	Label string `json:"label"`
}

func (h *Handlers) listCourts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Q.ListCourts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]courtOption, 0, len(list))
	for _, c := range list {
		out = append(out, courtOption{CourtSummary: c, Label: c.Label()})
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listCourts body")
	}
}

func (h *Handlers) getCourt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Q.GetCourt(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	etag := versionETag(c.Version)
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type uploadView struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Key      string `json:"key"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

type courtWriteResponse struct {
	Court    domain.Court `json:"court"`
	Uploads  []uploadView `json:"uploads"`
	Warnings []string     `json:"warnings"`
}

func newCourtWriteResponse(res app.CourtResult) courtWriteResponse {
	out := courtWriteResponse{Court: res.Court, Uploads: []uploadView{}, Warnings: []string{}}
	if res.Batch == nil {
		return out
	}
	for _, f := range res.Batch.Files {
		v := uploadView{Index: f.Index, Filename: f.Filename, Key: f.Key, URL: f.URL}
		if f.Err != nil {
			v.Error = f.Err.Error()
		}
		out.Uploads = append(out.Uploads, v)
	}
	out.Warnings = append(out.Warnings, res.Batch.Warnings()...)
	return out
}

func (h *Handlers) createCourt(w http.ResponseWriter, r *http.Request) {
	form, files, ok := h.readCourtRequest(w, r)
	if !ok {
		return
	}
	fields, err := app.ParseCourtForm(form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Courts.CreateCourt(r.Context(), adminName(r), fields, files)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/courts/"+strconv.FormatInt(res.Court.ID, 10))
	w.Header().Set("ETag", versionETag(res.Court.Version))
	writeJSON(w, http.StatusCreated, newCourtWriteResponse(res))
}

func (h *Handlers) updateCourt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	expected, err := parseIfMatch(r.Header.Get("If-Match"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid If-Match", err.Error())
		return
	}
	form, files, ok := h.readCourtRequest(w, r)
	if !ok {
		return
	}
	fields, err := app.ParseCourtForm(form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Courts.UpdateCourt(r.Context(), adminName(r), id, fields, files, expected)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", versionETag(res.Court.Version))
	writeJSON(w, http.StatusOK, newCourtWriteResponse(res))
}

// readCourtRequest reads the court fields and the "images" files of a multipart or urlencoded form.
func (h *Handlers) readCourtRequest(w http.ResponseWriter, r *http.Request) (app.CourtForm, []domain.Upload, bool) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Too Large", fmt.Sprintf("request exceeds %d bytes", limit))
			return app.CourtForm{}, nil, false
		}
		writeProblem(w, http.StatusBadRequest, "Invalid form", err.Error())
		return app.CourtForm{}, nil, false
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	form := app.CourtForm{
		Name:         r.FormValue("name"),
		Address:      r.FormValue("address"),
		City:         r.FormValue("city"),
		District:     r.FormValue("district"),
		Latitude:     r.FormValue("latitude"),
		Longitude:    r.FormValue("longitude"),
		InstagramURL: r.FormValue("instagram_url"),
		TikTokURL:    r.FormValue("tiktok_url"),
	}

	var files []domain.Upload
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File[imagesField] {
			u, err := readUpload(fh)
			if err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid file", fmt.Sprintf("%s: %v", fh.Filename, err))
				return app.CourtForm{}, nil, false
			}
			files = append(files, u)
		}
	}
	return form, files, true
}

func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, err
	}
	return domain.Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

/********** ratings **********/

func (h *Handlers) getRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	src := domain.Source(strings.ToUpper(chi.URLParam(r, "source")))
	if !src.Valid() {
		writeProblem(w, http.StatusBadRequest, "Invalid source", fmt.Sprintf("unknown source %q", src))
		return
	}
	rt, err := h.Q.GetRating(r.Context(), id, src)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "rating not found")
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

// ratingRequest takes scores as JSON numbers or numeric strings.
type ratingRequest struct {
	Source       string      `json:"source"`
	Overall      json.Number `json:"overall"`
	Rim          json.Number `json:"rim"`
	Floor        json.Number `json:"floor"`
	CourtSpacing json.Number `json:"court_spacing"`
	Bench        json.Number `json:"bench"`
	Water        json.Number `json:"water"`
	Backboard    json.Number `json:"backboard"`
}

func (h *Handlers) saveRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	form := app.RatingForm{CourtID: strconv.FormatInt(id, 10)}
	if isJSON(r) {
		var in ratingRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&in); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
			return
		}
		form.Source = in.Source
		form.Overall, form.Rim, form.Floor = in.Overall.String(), in.Rim.String(), in.Floor.String()
		form.CourtSpacing, form.Bench = in.CourtSpacing.String(), in.Bench.String()
		form.Water, form.Backboard = in.Water.String(), in.Backboard.String()
	} else {
		form.Source = r.PostFormValue("source")
		form.Overall, form.Rim, form.Floor = r.PostFormValue("overall"), r.PostFormValue("rim"), r.PostFormValue("floor")
		form.CourtSpacing, form.Bench = r.PostFormValue("court_spacing"), r.PostFormValue("bench")
		form.Water, form.Backboard = r.PostFormValue("water"), r.PostFormValue("backboard")
	}

	rf, err := app.ParseRatingForm(form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := h.Courts.SaveRating(r.Context(), adminName(r), rf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
