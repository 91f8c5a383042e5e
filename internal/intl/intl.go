// Package intl loads the relay's message catalogues and resolves the
// display language of a request. Spanish is the default language.
package intl

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"path"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var DefaultLanguage = language.Spanish

type Translator struct {
	bundle    *i18n.Bundle
	supported []language.Tag
	matcher   language.Matcher
}

// NewTranslator parses every embedded locale file into a bundle.
func NewTranslator() (*Translator, error) {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	supported := []language.Tag{DefaultLanguage}
	for _, entry := range entries {
		name := path.Join("locales", entry.Name())
		data, err := localeFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		file, err := bundle.ParseMessageFileBytes(data, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if file.Tag.String() != DefaultLanguage.String() {
			supported = append(supported, file.Tag)
		}
	}

	return &Translator{
		bundle:    bundle,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}, nil
}

// Match picks the best supported language for an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage
	}
	return t.supported[idx]
}

func (t *Translator) Localizer(tag language.Tag) *Localizer {
	return &Localizer{
		tag:       tag,
		localizer: i18n.NewLocalizer(t.bundle, tag.String(), DefaultLanguage.String()),
	}
}

// Middleware resolves the request language from Accept-Language and stores a
// Localizer in the request context.
func (t *Translator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := t.Match(r.Header.Get("Accept-Language"))
		ctx := WithLocalizer(r.Context(), t.Localizer(tag))
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Localizer translates message ids for one language.
type Localizer struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// T returns the message for id, or id itself when no catalogue has it.
func (l *Localizer) T(id string) string {
	return l.TData(id, nil)
}

func (l *Localizer) TData(id string, data map[string]any) string {
	if l == nil {
		return id
	}
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return id
	}
	return msg
}

type localizerKey struct{}

func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, l)
}

// UseLocalizer returns the Localizer stored in ctx, or nil if there is none.
// A nil Localizer returns message ids unchanged.
func UseLocalizer(ctx context.Context) *Localizer {
	l, _ := ctx.Value(localizerKey{}).(*Localizer)
	return l
}
