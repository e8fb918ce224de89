package csrf

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body><form method="post">
<input type="hidden" name="csrfmiddlewaretoken" value="form-token">
<input type="text" name="titulo">
</form></body></html>`

type failing struct{}

func (failing) Token(context.Context) (string, error) { return "", errors.New("boom") }

func TestFromHTML(t *testing.T) {
	tok, err := FromHTML(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "form-token", tok)

	tok, err = FromHTML(strings.NewReader("<html><body>nothing</body></html>"))
	require.NoError(t, err)
	assert.Equal(t, "", tok)
}

func TestChain_Order(t *testing.T) {
	ctx := context.Background()

	tok, err := Chain{Static(""), Static("global"), Static("later")}.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "global", tok)

	tok, err = Chain{failing{}, Static("global")}.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "global", tok)

	tok, err = Chain{failing{}}.Token(ctx)
	assert.Error(t, err)
	assert.Equal(t, "", tok)

	tok, err = Chain{}.Token(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "", tok)
}

func TestDefault_FormFieldThenCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "cookie-token", Path: "/"})
		if r.URL.Path == "/form" {
			_, _ = w.Write([]byte(page))
			return
		}
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	target, err := url.Parse(srv.URL + "/upload-json/")
	require.NoError(t, err)

	tok, err := Default(client, srv.URL+"/form", "", target).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "form-token", tok)

	// The page without a hidden field still sets the cookie.
	tok, err = Default(client, srv.URL+"/other", "", target).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cookie-token", tok)
}

func TestDefault_StaticBeforeCookie(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	target, _ := url.Parse("http://catalog.example/upload-json/")
	jar.SetCookies(target, []*http.Cookie{{Name: CookieName, Value: "cookie-token"}})

	chain := Default(&http.Client{Jar: jar}, "", "global", target)
	tok, err := chain.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "global", tok)

	chain = Default(&http.Client{Jar: jar}, "", "", target)
	tok, err = chain.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cookie-token", tok)
}
