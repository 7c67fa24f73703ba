// Package web exposes the HTTP endpoint layer: authentication callback,
// intake form, report generation and artifact download.
package web

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/clearchart/intake/internal/shared/middleware"

	"github.com/clearchart/intake/internal/auth"
	"github.com/clearchart/intake/internal/genai"
	"github.com/clearchart/intake/internal/intake"
	"github.com/clearchart/intake/internal/prompt"
	"github.com/clearchart/intake/internal/report"
	"github.com/clearchart/intake/internal/shared/errors"
	"github.com/clearchart/intake/internal/shared/metrics"
)

const sessionCookie = "intake_session"

// Handler provides the HTTP handlers for the intake-to-report pipeline.
type Handler struct {
	verifier  auth.Verifier
	sessions  SessionStore
	generator genai.Client
	clientID  string
	staticDir string
	limiter   *middleware.IPRateLimiter
	log       *logrus.Logger
}

// NewHandler creates the endpoint layer with its injected collaborators.
func NewHandler(verifier auth.Verifier, sessions SessionStore, generator genai.Client, clientID, staticDir string, limiter *middleware.IPRateLimiter, log *logrus.Logger) *Handler {
	return &Handler{
		verifier:  verifier,
		sessions:  sessions,
		generator: generator,
		clientID:  clientID,
		staticDir: staticDir,
		limiter:   limiter,
		log:       log,
	}
}

// Routes registers the endpoint routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Index)
	r.Get("/health", h.Health)
	r.Post("/submit", h.Submit)
	r.Get("/patient_form", h.PatientForm)
	r.Get("/authorized", h.PatientForm)
	if h.limiter != nil {
		r.With(h.limiter.Middleware).Post("/process_form", h.ProcessForm)
	} else {
		r.Post("/process_form", h.ProcessForm)
	}
	r.Get("/download_report/{filename}", h.DownloadReport)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	return r
}

// Index serves the entry page with the sign-in widget.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", map[string]any{"ClientID": h.clientID})
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Submit exchanges the posted identity token for a server-side session.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, errors.InvalidInput("invalid form body"))
		return
	}

	credential := r.PostFormValue("credential")
	if credential == "" {
		h.log.Warn("submit without credential")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No credential provided"})
		return
	}

	identity, err := h.verifier.Verify(r.Context(), credential)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid token"})
		return
	}

	sessionID := h.sessions.Put(identity)
	metrics.SessionCreated()
	h.log.WithField("email", identity.Email).Info("user authenticated")

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/patient_form", http.StatusSeeOther)
}

// PatientForm serves the intake form, gated on an authenticated session.
func (h *Handler) PatientForm(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "patient_form.html", map[string]any{"Email": identity.Email})
}

// ProcessForm runs the intake-to-report pipeline: validate, compute BMI,
// build the prompt, generate, parse sections.
func (h *Handler) ProcessForm(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(r)
	if !ok {
		if wantsJSON(r) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Not authenticated"})
		} else {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}
		return
	}

	in, err := h.parseIntake(r)
	if err != nil {
		writeError(w, err)
		return
	}
	in.Email = identity.Email

	variant, err := prompt.ParseVariant(in.FormType())
	if err != nil {
		writeError(w, err)
		return
	}

	bmi, err := intake.ComputeBMI(in.HeightInches, in.WeightPounds)
	if err != nil {
		writeError(w, err)
		return
	}

	promptText, err := prompt.Build(variant, in)
	if err != nil {
		writeError(w, err)
		return
	}

	expected := prompt.Sections(variant)

	start := time.Now()
	raw, err := h.generator.Generate(r.Context(), promptText)
	metrics.ObserveGenerationDuration(time.Since(start))

	if err != nil {
		metrics.ReportGenerated(string(variant), "error")
		h.log.WithError(err).WithField("variant", variant).Error("report generation failed")
		h.respondGenerationFailure(w, r, err, in, bmi, expected)
		return
	}

	metrics.ReportGenerated(string(variant), "ok")
	rep := report.StructuredReport{
		Variant:     string(variant),
		Sections:    report.Parse(raw, expected),
		GeneratedAt: time.Now().UTC(),
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{
			"result":   raw,
			"sections": rep.Sections,
		})
		return
	}
	h.renderResult(w, http.StatusOK, in, bmi, expected, rep.Sections)
}

// DownloadReport serves a previously rendered artifact from static storage.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	// Reject anything that is not a bare file name.
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}

	path := filepath.Join(h.staticDir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	http.ServeFile(w, r, path)
}

// --- Helpers ---

func (h *Handler) identity(r *http.Request) (auth.Identity, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return auth.Identity{}, false
	}
	return h.sessions.Get(cookie.Value)
}

func (h *Handler) parseIntake(r *http.Request) (intake.PatientIntake, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return intake.ParseJSON(r.Body)
	}
	if err := r.ParseForm(); err != nil {
		return intake.PatientIntake{}, errors.InvalidInput("invalid form body")
	}
	return intake.ParseForm(r.PostForm)
}

// respondGenerationFailure keeps the result shape uniform: every expected
// section is populated with the error sentinel instead of being omitted.
func (h *Handler) respondGenerationFailure(w http.ResponseWriter, r *http.Request, err error, in intake.PatientIntake, bmi float64, expected []string) {
	status := http.StatusInternalServerError
	message := "An error occurred while processing the form"
	if appErr, ok := err.(*errors.AppError); ok {
		status = appErr.HTTPStatus
		message = appErr.Message
	}

	if wantsJSON(r) {
		writeJSON(w, status, map[string]any{
			"error":    message,
			"sections": report.Failed(expected),
		})
		return
	}
	h.renderResult(w, status, in, bmi, expected, report.Failed(expected))
}

type resultSection struct {
	Name string
	Body string
}

func (h *Handler) renderResult(w http.ResponseWriter, status int, in intake.PatientIntake, bmi float64, order []string, sections map[string]string) {
	ordered := make([]resultSection, 0, len(order))
	for _, name := range order {
		ordered = append(ordered, resultSection{Name: name, Body: sections[name]})
	}

	h.render(w, status, "result.html", map[string]any{
		"Name":     in.Name,
		"Age":      in.Age,
		"Height":   in.HeightInches,
		"Weight":   in.WeightPounds,
		"BMI":      bmi,
		"Email":    in.Email,
		"Sections": ordered,
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, page, data); err != nil {
		h.log.WithError(err).WithField("page", page).Error("template render failed")
	}
}

func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
