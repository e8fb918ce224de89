// Package csrf resolves the anti-forgery token sent with every submission
// to the catalog server.
//
// Tokens are looked up in order of preference: the hidden form field of a
// catalog page, a configured global token, then the csrftoken cookie held
// in the client's cookie jar.
package csrf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// FieldName is the hidden input the catalog server renders into its forms.
	FieldName = "csrfmiddlewaretoken"
	// CookieName is the cookie the catalog server issues alongside the form.
	CookieName = "csrftoken"
	// HeaderName carries the token on the upload request.
	HeaderName = "X-CSRFToken"
)

// Source yields a token, or "" when it has none.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// Chain tries each source in turn and returns the first non-empty token.
// Source failures are collected but never stop the lookup; an empty token
// is a valid result and the server decides what to do with it.
type Chain []Source

func (c Chain) Token(ctx context.Context) (string, error) {
	var errs []error
	for _, s := range c {
		if s == nil {
			continue
		}
		tok, err := s.Token(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok, nil
		}
	}
	return "", errors.Join(errs...)
}

// Static is a token configured up front.
type Static string

func (s Static) Token(context.Context) (string, error) { return string(s), nil }

// FormField scrapes the hidden token input from a page of the catalog
// server. Fetching the page through a client with a cookie jar also
// captures the csrftoken cookie for the Cookie source.
type FormField struct {
	Client  *http.Client
	PageURL string
}

func (f FormField) Token(ctx context.Context) (string, error) {
	if f.PageURL == "" {
		return "", nil
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.PageURL, nil)
	if err != nil {
		return "", fmt.Errorf("csrf page request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("csrf page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("csrf page: status %d", resp.StatusCode)
	}
	return FromHTML(resp.Body)
}

// FromHTML extracts the hidden token field from an HTML document.
func FromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse csrf page: %w", err)
	}
	val, _ := doc.Find(`input[name="` + FieldName + `"]`).First().Attr("value")
	return val, nil
}

// Cookie reads the token from a cookie jar.
type Cookie struct {
	Jar  http.CookieJar
	URL  *url.URL
	Name string
}

func (c Cookie) Token(context.Context) (string, error) {
	if c.Jar == nil || c.URL == nil {
		return "", nil
	}
	name := c.Name
	if name == "" {
		name = CookieName
	}
	for _, ck := range c.Jar.Cookies(c.URL) {
		if ck.Name == name {
			return ck.Value, nil
		}
	}
	return "", nil
}

// Default builds the standard lookup order for a client talking to target.
// The form page is only consulted when pageURL is set.
func Default(client *http.Client, pageURL, static string, target *url.URL) Chain {
	chain := Chain{}
	if pageURL != "" {
		chain = append(chain, FormField{Client: client, PageURL: pageURL})
	}
	if static != "" {
		chain = append(chain, Static(static))
	}
	if client != nil && client.Jar != nil {
		chain = append(chain, Cookie{Jar: client.Jar, URL: target})
	}
	return chain
}
