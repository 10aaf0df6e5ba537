package httpserver

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appinspection "github.com/bryanwahyu/archscope/internal/application/inspection"
	"github.com/bryanwahyu/archscope/internal/application/session"
	"github.com/bryanwahyu/archscope/internal/domain/inspection"
	"github.com/bryanwahyu/archscope/internal/domain/stages"
	"github.com/bryanwahyu/archscope/internal/infra/report"
	"github.com/bryanwahyu/archscope/internal/middleware"
)

// GET /v1/stages
func (r *Router) handleStages(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{"stages": stages.All()})
}

// GET /v1/stages/{name}
func (r *Router) handleStage(w http.ResponseWriter, req *http.Request) error {
	p, err := stages.Lookup(chi.URLParam(req, "name"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, p)
}

type analyzeResponse struct {
	*appinspection.AnalysisOutcome
	Markdown    string `json:"markdown"`
	DownloadURL string `json:"download_url"`
}

// POST /v1/analyses
// Multipart form: image (file), stage, depth, include_recommendations, safety_focus.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if err := r.analyze(w, req); err != nil {
		return attemptError{err: err}
	}
	return nil
}

func (r *Router) analyze(w http.ResponseWriter, req *http.Request) error {
	st, err := sessionFrom(req)
	if err != nil {
		return err
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxUploadBytes)
	if err := req.ParseMultipartForm(r.opts.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: image larger than %d bytes", inspection.ErrValidation, r.opts.MaxUploadBytes)
		}
		return fmt.Errorf("%w: %v", inspection.ErrValidation, err)
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("image")
	if err != nil {
		return fmt.Errorf("%w: image file is required", inspection.ErrValidation)
	}
	defer file.Close()

	cmd, err := analyzeCommand(req, file, header)
	if err != nil {
		return err
	}

	out, err := r.svc.Analyze(req.Context(), st, cmd)
	r.opts.Metrics.AnalysisDone(err)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, analyzeResponse{
		AnalysisOutcome: out,
		Markdown:        report.Markdown(out.Result),
		DownloadURL:     "/v1/analyses/" + out.Entry.ID + "/download",
	})
}

func analyzeCommand(req *http.Request, file multipart.File, header *multipart.FileHeader) (appinspection.AnalyzeCommand, error) {
	var cmd appinspection.AnalyzeCommand

	name, err := middleware.ValidateUploadName(header.Filename)
	if err != nil {
		return cmd, err
	}
	depth, err := middleware.ParseDepth(req.FormValue("depth"))
	if err != nil {
		return cmd, err
	}
	defaults := inspection.DefaultOptions()
	recs, err := middleware.ParseToggle(req.FormValue("include_recommendations"), defaults.IncludeRecommendations)
	if err != nil {
		return cmd, err
	}
	safety, err := middleware.ParseToggle(req.FormValue("safety_focus"), defaults.SafetyPrioritized)
	if err != nil {
		return cmd, err
	}

	return appinspection.AnalyzeCommand{
		Stage: middleware.SanitizeString(req.FormValue("stage")),
		Options: inspection.Options{
			Depth:                  depth,
			IncludeRecommendations: recs,
			SafetyPrioritized:      safety,
		},
		ImageName: name,
		Image:     file,
	}, nil
}

type historyItem struct {
	Number    int       `json:"number"`
	ID        string    `json:"id"`
	Stage     string    `json:"stage"`
	ImageName string    `json:"image_name"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"created_at"`
}

// GET /v1/analyses?limit=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	st, err := sessionFrom(req)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit, r.opts.HistoryDisplay)

	total := st.Len()
	recent := st.Recent(limit)
	items := make([]historyItem, 0, len(recent))
	for i, e := range recent {
		items = append(items, historyItem{
			Number:    total - i,
			ID:        e.ID,
			Stage:     e.Stage,
			ImageName: e.ImageName,
			Preview:   report.Preview(e.AnalysisText),
			CreatedAt: e.CreatedAt,
		})
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"total":   total,
		"entries": items,
	})
}

// GET /v1/analyses/{id}?format=json|markdown|html
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	e, n, err := r.findEntry(req)
	if err != nil {
		return err
	}
	res := inspection.Sectionize(e.AnalysisText)

	switch req.URL.Query().Get("format") {
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, err := w.Write([]byte(report.Markdown(res)))
		return err
	case "html":
		frag, err := report.HTML(res)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, err = w.Write([]byte(frag))
		return err
	case "", "json":
		return writeJSON(w, http.StatusOK, map[string]any{
			"number":        n,
			"entry":         e,
			"result":        res,
			"download_name": inspection.DownloadName(e.Stage),
		})
	}
	return fmt.Errorf("%w: unknown format %q", inspection.ErrValidation, req.URL.Query().Get("format"))
}

// GET /v1/analyses/{id}/download
func (r *Router) handleDownload(w http.ResponseWriter, req *http.Request) error {
	e, _, err := r.findEntry(req)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", inspection.DownloadName(e.Stage)))
	w.Header().Set("Content-Length", strconv.Itoa(len(e.AnalysisText)))
	_, err = w.Write([]byte(e.AnalysisText))
	return err
}

// DELETE /v1/session
func (r *Router) handleEndSession(w http.ResponseWriter, req *http.Request) error {
	st, err := sessionFrom(req)
	if err != nil {
		return err
	}
	r.opts.Sessions.End(st.ID)
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *Router) findEntry(req *http.Request) (inspection.HistoryEntry, int, error) {
	st, err := sessionFrom(req)
	if err != nil {
		return inspection.HistoryEntry{}, 0, err
	}
	id := chi.URLParam(req, "id")
	e, n, ok := st.Find(id)
	if !ok {
		return inspection.HistoryEntry{}, 0, fmt.Errorf("analysis %s: %w", id, errNotFound)
	}
	return e, n, nil
}

func sessionFrom(req *http.Request) (*session.State, error) {
	st := middleware.GetSession(req.Context())
	if st == nil {
		return nil, fmt.Errorf("session: %w", errNotFound)
	}
	return st, nil
}
