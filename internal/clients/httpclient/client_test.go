package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_ValidatesBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		ok   bool
	}{
		{"empty", "", false},
		{"relative", "/api", false},
		{"no_host", "http://", false},
		{"ftp", "ftp://example.com", false},
		{"http", "http://example.com", true},
		{"https_with_path", "https://example.com/api", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := New(Options{Name: "x", BaseURL: tt.base})
			if tt.ok {
				require.NoError(t, err)
				require.NotNil(t, c)
				require.Equal(t, "x", c.Name())
				return
			}
			require.Error(t, err)
			require.Nil(t, c)
		})
	}
}

func TestNew_CredentialedCreatesJar(t *testing.T) {
	t.Parallel()

	c, err := New(Options{BaseURL: "http://example.com", Credentialed: true})
	require.NoError(t, err)
	require.NotNil(t, c.Jar())

	plain, err := New(Options{BaseURL: "http://example.com"})
	require.NoError(t, err)
	require.Nil(t, plain.Jar())
}

func TestNew_SharedJar(t *testing.T) {
	t.Parallel()

	jar, err := NewJar()
	require.NoError(t, err)

	a, err := New(Options{BaseURL: "http://example.com", Credentialed: true, Jar: jar})
	require.NoError(t, err)
	b, err := New(Options{BaseURL: "http://example.com/api", Credentialed: true, Jar: jar})
	require.NoError(t, err)

	require.Same(t, a.Jar(), b.Jar())
}

func TestDo_SendsJSONAndReadsResponse(t *testing.T) {
	t.Parallel()

	type payload struct {
		Title string `json:"title"`
	}

	var (
		gotPath   string
		gotQuery  url.Values
		gotCT     string
		gotBody   payload
		gotHeader string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotCT = r.Header.Get("Content-Type")
		gotHeader = r.Header.Get("X-Test")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{Name: "resource", BaseURL: srv.URL + "/api"})
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/expenses",
		Query:  url.Values{"from": {"2024-01-01"}},
		Body:   payload{Title: "coffee"},
		Header: http.Header{"X-Test": {"1"}},
	})
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, http.StatusCreated, resp.Status)
	require.Equal(t, "Created", resp.StatusText)
	require.JSONEq(t, `{"id":1}`, string(resp.Body))

	require.Equal(t, "/api/expenses", gotPath)
	require.Equal(t, "2024-01-01", gotQuery.Get("from"))
	require.Equal(t, "application/json", gotCT)
	require.Equal(t, "1", gotHeader)
	require.Equal(t, "coffee", gotBody.Title)
}

func TestDo_ErrorStatusIsResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), &Request{Path: "/missing"})
	require.NoError(t, err)
	require.False(t, resp.OK())
	require.Equal(t, http.StatusNotFound, resp.Status)
	require.Equal(t, "Not Found", resp.StatusText)
	require.Empty(t, resp.Body)
}

func TestDo_NilRequest(t *testing.T) {
	t.Parallel()

	c, err := New(Options{BaseURL: "http://example.com"})
	require.NoError(t, err)

	_, err = c.Do(context.Background(), nil)
	require.ErrorIs(t, err, ErrNilRequest)
}

func TestDo_EncodeError(t *testing.T) {
	t.Parallel()

	c, err := New(Options{BaseURL: "http://example.com"})
	require.NoError(t, err)

	_, err = c.Do(context.Background(), &Request{Method: http.MethodPost, Body: make(chan int)})
	require.ErrorIs(t, err, ErrEncode)
}

func TestDo_NetworkErrorHasNoResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: addr})
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), &Request{Path: "/"})
	require.Error(t, err)
	require.Nil(t, resp)
}

func TestDo_TimeoutPerAttempt(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(Options{BaseURL: srv.URL, Timeout: 30 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Do(context.Background(), &Request{Path: "/slow"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestDo_TimeoutPerAttempt_CallerDeadlineLonger(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	resp, err := c.Do(ctx, &Request{Path: "/slow"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Nil(t, resp)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestDo_CookiesRoundTripThroughJar(t *testing.T) {
	t.Parallel()

	var seen string
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "r1", Path: "/", HttpOnly: true})
	})
	mux.HandleFunc("/get", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("refreshToken"); err == nil {
			seen = ck.Value
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := NewJar()
	require.NoError(t, err)

	auth, err := New(Options{Name: "auth", BaseURL: srv.URL, Credentialed: true, Jar: jar})
	require.NoError(t, err)
	res, err := New(Options{Name: "resource", BaseURL: srv.URL, Credentialed: true, Jar: jar})
	require.NoError(t, err)

	_, err = auth.Do(context.Background(), &Request{Path: "/set"})
	require.NoError(t, err)
	_, err = res.Do(context.Background(), &Request{Path: "/get"})
	require.NoError(t, err)

	require.Equal(t, "r1", seen)
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next Doer) Doer {
			return func(ctx context.Context, req *Request) (*Response, error) {
				order = append(order, name+":in")
				resp, err := next(ctx, req)
				order = append(order, name+":out")
				return resp, err
			}
		}
	}

	final := func(context.Context, *Request) (*Response, error) {
		order = append(order, "send")
		return &Response{Status: http.StatusOK}, nil
	}

	d := Chain(final, mw("a"), mw("b"))
	_, err := d(context.Background(), &Request{})
	require.NoError(t, err)
	require.Equal(t, []string{"a:in", "b:in", "send", "b:out", "a:out"}, order)
}

func TestRequest_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	r := &Request{Path: "/x", Query: url.Values{"a": {"1"}}}
	c := r.Clone()
	c.Header.Set("Authorization", "Bearer t")
	c.Query.Set("a", "2")

	require.Nil(t, r.Header)
	require.Equal(t, "1", r.Query.Get("a"))
	require.Equal(t, "2", c.Query.Get("a"))
}
