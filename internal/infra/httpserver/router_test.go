package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appinspection "github.com/bryanwahyu/archscope/internal/application/inspection"
	"github.com/bryanwahyu/archscope/internal/application/session"
	"github.com/bryanwahyu/archscope/internal/domain/ai"
	"github.com/bryanwahyu/archscope/internal/domain/inspection"
	"github.com/bryanwahyu/archscope/internal/middleware"
)

type stubAI struct {
	reply string
	err   error
	n     int
}

func (s *stubAI) Analyze(_ context.Context, _ string, _ ai.Image) (string, error) {
	s.n++
	if s.err != nil {
		return "", s.err
	}
	return strings.ReplaceAll(s.reply, "{n}", fmt.Sprint(s.n)), nil
}

const reply = "Run {n}.\n\nOVERALL ASSESSMENT\n\nSolid framing.\n\nDetected Deficiencies\n\nMissing header over door.\n\n"

func newTestServer(t *testing.T, client ai.Client) (*httptest.Server, *middleware.Metrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := appinspection.NewService(client, nil, 0, logger)
	metrics := middleware.NewMetrics()
	h := NewRouter(svc, Options{
		Sessions:       session.NewRegistry(time.Minute),
		Metrics:        metrics,
		Logger:         logger,
		MaxUploadBytes: 1 << 20,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, metrics
}

func uploadRequest(t *testing.T, url, sessionID, fileName string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("image", fileName)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("fake image bytes"))
	}
	_ = mw.Close()

	req, err := http.NewRequest(http.MethodPost, url+"/v1/analyses", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestAnalyze_EndToEnd(t *testing.T) {
	srv, metrics := newTestServer(t, &stubAI{reply: reply})

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL, "", "frame.JPG", map[string]string{
		"stage": "Framing & Structure",
		"depth": "4",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, b)
	}
	sid := resp.Header.Get(middleware.SessionHeader)
	if sid == "" {
		t.Fatalf("expected a session id header")
	}

	var out struct {
		Entry struct {
			ID           string `json:"id"`
			AnalysisText string `json:"analysis_text"`
		} `json:"entry"`
		MIMEType string `json:"mime_type"`
		Options  struct {
			Depth                  int  `json:"depth"`
			IncludeRecommendations bool `json:"include_recommendations"`
			SafetyPrioritized      bool `json:"safety_prioritized"`
		} `json:"options"`
		Result struct {
			Sections []struct {
				Kind       string   `json:"kind"`
				Paragraphs []string `json:"paragraphs"`
			} `json:"sections"`
		} `json:"result"`
		Markdown     string `json:"markdown"`
		DownloadName string `json:"download_name"`
		DownloadURL  string `json:"download_url"`
	}
	decode(t, resp, &out)

	if out.MIMEType != "image/jpg" {
		t.Fatalf("expected image/jpg, got %s", out.MIMEType)
	}
	if out.Options.Depth != 4 || !out.Options.IncludeRecommendations || !out.Options.SafetyPrioritized {
		t.Fatalf("unexpected options %+v", out.Options)
	}
	if len(out.Result.Sections) != 3 || out.Result.Sections[2].Kind != "deficiencies" {
		t.Fatalf("unexpected sections %+v", out.Result.Sections)
	}
	if !strings.Contains(out.Markdown, "⚠️ **Missing header over door.**") {
		t.Fatalf("markdown missing tagged deficiency:\n%s", out.Markdown)
	}
	if out.DownloadName != "archscope_analysis_Framing_&_Structure.txt" {
		t.Fatalf("unexpected download name %q", out.DownloadName)
	}

	// download is byte-identical to the raw reply
	dl, _ := http.NewRequest(http.MethodGet, srv.URL+out.DownloadURL, nil)
	dl.Header.Set(middleware.SessionHeader, sid)
	dresp, err := http.DefaultClient.Do(dl)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(dresp.Body)
	dresp.Body.Close()
	if dresp.StatusCode != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", dresp.StatusCode)
	}
	if string(raw) != out.Entry.AnalysisText || string(raw) != strings.ReplaceAll(reply, "{n}", "1") {
		t.Fatalf("download differs from raw reply: %q", raw)
	}
	if cd := dresp.Header.Get("Content-Disposition"); !strings.Contains(cd, "archscope_analysis_Framing_&_Structure.txt") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	if got := metrics.AnalysesTotal.Load(); got != 1 {
		t.Fatalf("expected 1 analysis counted, got %d", got)
	}
}

func TestHistory_FiveMostRecentOfSeven(t *testing.T) {
	srv, _ := newTestServer(t, &stubAI{reply: reply})

	sid := ""
	for i := 0; i < 7; i++ {
		resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL, sid, fmt.Sprintf("p%d.png", i), map[string]string{"stage": "Plumbing Systems"}))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("run %d: status %d", i, resp.StatusCode)
		}
		sid = resp.Header.Get(middleware.SessionHeader)
		resp.Body.Close()
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/analyses", nil)
	req.Header.Set(middleware.SessionHeader, sid)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var hist struct {
		Total   int `json:"total"`
		Entries []struct {
			Number    int    `json:"number"`
			ImageName string `json:"image_name"`
			Preview   string `json:"preview"`
		} `json:"entries"`
	}
	decode(t, resp, &hist)

	if hist.Total != 7 || len(hist.Entries) != 5 {
		t.Fatalf("expected 5 of 7, got %d of %d", len(hist.Entries), hist.Total)
	}
	if hist.Entries[0].Number != 7 || hist.Entries[0].ImageName != "p6.png" || hist.Entries[4].Number != 3 {
		t.Fatalf("unexpected order %+v", hist.Entries)
	}
	if !strings.HasPrefix(hist.Entries[0].Preview, "Run 7.") || !strings.HasSuffix(hist.Entries[0].Preview, "...") {
		t.Fatalf("unexpected preview %q", hist.Entries[0].Preview)
	}

	// a larger limit cannot widen the display
	for limit, want := range map[string]int{"50": 5, "6": 5, "2": 2} {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/analyses?limit="+limit, nil)
		req.Header.Set(middleware.SessionHeader, sid)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		decode(t, resp, &hist)
		if hist.Total != 7 || len(hist.Entries) != want {
			t.Fatalf("limit=%s: expected %d of 7, got %d of %d", limit, want, len(hist.Entries), hist.Total)
		}
	}
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"credential", fmt.Errorf("x: %w", ai.ErrCredential), http.StatusBadGateway, "credential"},
		{"quota", fmt.Errorf("x: %w", ai.ErrQuotaExceeded), http.StatusTooManyRequests, "quota_exceeded"},
		{"rejected", fmt.Errorf("x: %w", ai.ErrServiceRejected), http.StatusUnprocessableEntity, "service_rejected"},
		{"transport", fmt.Errorf("x: %w", ai.ErrTransport), http.StatusGatewayTimeout, "transport"},
		{"malformed", fmt.Errorf("x: %w", ai.ErrMalformedResponse), http.StatusBadGateway, "malformed_response"},
	}
	for _, c := range cases {
		srv, _ := newTestServer(t, &stubAI{err: c.err})
		resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL, "", "a.png", map[string]string{"stage": "Electrical Systems"}))
		if err != nil {
			t.Fatal(err)
		}
		var body errorBody
		status := resp.StatusCode
		decode(t, resp, &body)
		if status != c.status || body.Kind != c.kind {
			t.Fatalf("%s: expected %d/%s, got %d/%s", c.name, c.status, c.kind, status, body.Kind)
		}
		if !strings.HasPrefix(body.Error, "Error during analysis: ") || body.Hint != ErrorHint {
			t.Fatalf("%s: unexpected body %+v", c.name, body)
		}
	}
}

func TestAnalyze_BadInput(t *testing.T) {
	srv, _ := newTestServer(t, &stubAI{reply: "ok"})

	cases := []struct {
		name   string
		file   string
		fields map[string]string
	}{
		{"no file", "", map[string]string{"stage": "Electrical Systems"}},
		{"gif", "a.gif", map[string]string{"stage": "Electrical Systems"}},
		{"unknown stage", "a.png", map[string]string{"stage": "Landscaping"}},
		{"depth out of range", "a.png", map[string]string{"stage": "Electrical Systems", "depth": "9"}},
		{"bad toggle", "a.png", map[string]string{"stage": "Electrical Systems", "safety_focus": "perhaps"}},
	}
	for _, c := range cases {
		resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL, "", c.file, c.fields))
		if err != nil {
			t.Fatal(err)
		}
		var body errorBody
		status := resp.StatusCode
		decode(t, resp, &body)
		if status != http.StatusBadRequest || body.Kind != "validation" {
			t.Fatalf("%s: expected 400 validation, got %d %+v", c.name, status, body)
		}
		if !strings.HasPrefix(body.Error, "Error during analysis: ") || body.Hint != ErrorHint {
			t.Fatalf("%s: input failures carry the analysis prefix and hint, got %+v", c.name, body)
		}
	}
}

func TestErrorResponse_ValidationOutsideAnalysis(t *testing.T) {
	status, body := errorResponse(fmt.Errorf("%w: unknown format %q", inspection.ErrValidation, "pdf"))
	if status != http.StatusBadRequest || body.Hint != "" || strings.HasPrefix(body.Error, "Error during analysis") {
		t.Fatalf("non-analysis validation should stay plain, got %d %+v", status, body)
	}
}

func TestStages(t *testing.T) {
	srv, _ := newTestServer(t, &stubAI{})

	resp, err := http.Get(srv.URL + "/v1/stages")
	if err != nil {
		t.Fatal(err)
	}
	var list struct {
		Stages []struct {
			Name string `json:"name"`
		} `json:"stages"`
	}
	decode(t, resp, &list)
	if len(list.Stages) != 6 || list.Stages[0].Name != "Foundation & Sitework" {
		t.Fatalf("unexpected stages %+v", list.Stages)
	}

	resp, err = http.Get(srv.URL + "/v1/stages/Demolition")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown stage, got %d", resp.StatusCode)
	}
}

func TestEndSession_ClearsHistory(t *testing.T) {
	srv, _ := newTestServer(t, &stubAI{reply: reply})

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL, "", "a.png", map[string]string{"stage": "Interior Finishing"}))
	if err != nil {
		t.Fatal(err)
	}
	sid := resp.Header.Get(middleware.SessionHeader)
	var out struct {
		Entry struct {
			ID string `json:"id"`
		} `json:"entry"`
	}
	decode(t, resp, &out)

	del, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/session", nil)
	del.Header.Set(middleware.SessionHeader, sid)
	dresp, err := http.DefaultClient.Do(del)
	if err != nil {
		t.Fatal(err)
	}
	dresp.Body.Close()
	if dresp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", dresp.StatusCode)
	}

	get, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/analyses/"+out.Entry.ID, nil)
	get.Header.Set(middleware.SessionHeader, sid)
	gresp, err := http.DefaultClient.Do(get)
	if err != nil {
		t.Fatal(err)
	}
	gresp.Body.Close()
	if gresp.StatusCode != http.StatusNotFound {
		t.Fatalf("entry should be gone with the session, got %d", gresp.StatusCode)
	}
	if gresp.Header.Get(middleware.SessionHeader) == sid {
		t.Fatalf("ended session id must not be reused")
	}
}

func TestGet_Formats(t *testing.T) {
	srv, _ := newTestServer(t, &stubAI{reply: reply})

	resp, err := http.DefaultClient.Do(uploadRequest(t, srv.URL, "", "a.png", map[string]string{"stage": "Interior Finishing"}))
	if err != nil {
		t.Fatal(err)
	}
	sid := resp.Header.Get(middleware.SessionHeader)
	var out struct {
		Entry struct {
			ID string `json:"id"`
		} `json:"entry"`
	}
	decode(t, resp, &out)

	fetch := func(format string) (int, string, string) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/analyses/"+out.Entry.ID+"?format="+format, nil)
		req.Header.Set(middleware.SessionHeader, sid)
		r, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Body.Close()
		b, _ := io.ReadAll(r.Body)
		return r.StatusCode, r.Header.Get("Content-Type"), string(b)
	}

	if code, ct, body := fetch("markdown"); code != 200 || !strings.HasPrefix(ct, "text/markdown") || !strings.Contains(body, "### ✅ Overall Assessment") {
		t.Fatalf("markdown: %d %s %s", code, ct, body)
	}
	if code, ct, body := fetch("html"); code != 200 || !strings.HasPrefix(ct, "text/html") || !strings.Contains(body, "<h3>✅ Overall Assessment</h3>") {
		t.Fatalf("html: %d %s %s", code, ct, body)
	}
	if code, _, body := fetch("json"); code != 200 || !strings.Contains(body, `"download_name"`) {
		t.Fatalf("json: %d %s", code, body)
	}
	if code, _, _ := fetch("pdf"); code != http.StatusBadRequest {
		t.Fatalf("pdf: expected 400, got %d", code)
	}
}
