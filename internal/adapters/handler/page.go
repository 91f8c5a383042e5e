package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/DanielPopoola/consultation-relay/internal/intl"
)

//go:embed web/templates/*.html
var templateFS embed.FS

//go:embed web/static
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "web/templates/index.html"))

type monthOption struct {
	Value string
	Label string
}

type pageData struct {
	Lang             string
	Title            string
	Subtitle         string
	MonthLabel       string
	MonthPlaceholder string
	YearLabel        string
	Submit           string
	Sending          string
	SuccessTitle     string
	SuccessBody      string
	ErrorTitle       string
	InvalidMonth     string
	InvalidYear      string
	Months           []monthOption
	DefaultYear      int
	MinYear          int
	MaxYear          int
}

// PageHandler serves the consultation form and its static assets.
type PageHandler struct {
	translator *intl.Translator
	now        func() time.Time
}

func NewPageHandler(translator *intl.Translator) *PageHandler {
	return &PageHandler{
		translator: translator,
		now:        time.Now,
	}
}

func (h *PageHandler) RegisterRoutes(mux *http.ServeMux) {
	static, err := fs.Sub(staticFS, "web/static")
	if err != nil {
		panic(fmt.Errorf("static assets: %w", err))
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /{$}", h.HandleIndex)
}

func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	l := intl.UseLocalizer(r.Context())
	if l == nil {
		l = h.translator.Localizer(intl.DefaultLanguage)
	}

	months := make([]monthOption, 0, 12)
	for m := 1; m <= 12; m++ {
		value := fmt.Sprintf("%02d", m)
		months = append(months, monthOption{
			Value: value,
			Label: fmt.Sprintf("%s - %s", value, l.T("Months."+value)),
		})
	}

	data := pageData{
		Lang:             l.Tag().String(),
		Title:            l.T("Page.Title"),
		Subtitle:         l.T("Page.Subtitle"),
		MonthLabel:       l.T("Page.MonthLabel"),
		MonthPlaceholder: l.T("Page.MonthPlaceholder"),
		YearLabel:        l.T("Page.YearLabel"),
		Submit:           l.T("Page.Submit"),
		Sending:          l.T("Page.Sending"),
		SuccessTitle:     l.T("Page.SuccessTitle"),
		SuccessBody:      l.TData("Page.SuccessBody", map[string]any{"Month": "{month}", "Year": "{year}"}),
		ErrorTitle:       l.T("Page.ErrorTitle"),
		InvalidMonth:     l.T("Validation.month"),
		InvalidYear:      l.T("Validation.year"),
		Months:           months,
		DefaultYear:      h.now().Year(),
		MinYear:          domain.MinYear,
		MaxYear:          domain.MaxYear,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
