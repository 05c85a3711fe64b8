package apitest

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type loginBody struct {
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

func doJSON(t *testing.T, method, url, body, bearer string, cookies ...*http.Cookie) (*http.Response, loginBody) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out loginBody
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}

	return resp, out
}

func refreshCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == RefreshCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", RefreshCookie)

	return nil
}

// TestRefresh_RotatesCookie — refresh выдаёт новую cookie, старая больше не принимается.
func TestRefresh_RotatesCookie(t *testing.T) {
	t.Parallel()

	s := New(t)
	s.AddUser("bob", "a@b.com", "secret1")

	resp, body := doJSON(t, http.MethodPost, s.URL()+"/auth/login", `{"email":"a@b.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.AccessToken)

	first := refreshCookie(t, resp)
	require.True(t, first.HttpOnly)

	resp, body = doJSON(t, http.MethodGet, s.URL()+"/auth/refresh", "", "", first)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.AccessToken)
	second := refreshCookie(t, resp)
	require.NotEqual(t, first.Value, second.Value)

	resp, body = doJSON(t, http.MethodGet, s.URL()+"/auth/refresh", "", "", first)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Unauthorized", body.Message)

	require.Equal(t, 3, s.Hits(RouteRefresh)+s.Hits(RouteLogin))
}

// TestAuthorize — доступ к ресурсам только с действующим access-токеном текущего поколения.
func TestAuthorize(t *testing.T) {
	t.Parallel()

	s := New(t)
	s.AddUser("bob", "a@b.com", "secret1")

	resp, _ := doJSON(t, http.MethodGet, s.URL()+"/expenses", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, s.URL()+"/expenses", "", "garbage")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, body := doJSON(t, http.MethodPost, s.URL()+"/auth/login", `{"email":"a@b.com","password":"secret1"}`, "")

	req, err := http.NewRequest(http.MethodGet, s.URL()+"/expenses", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+body.AccessToken)
	ok, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	ok.Body.Close()
	require.Equal(t, http.StatusOK, ok.StatusCode)
	require.Equal(t, "Bearer "+body.AccessToken, s.LastAuthorization(RouteListExpenses))

	s.ExpireAccessTokens()

	resp, _ = doJSON(t, http.MethodGet, s.URL()+"/expenses", "", body.AccessToken)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 4, s.Hits(RouteListExpenses))
}

// TestAccessTTL — истёкший по времени токен отклоняется.
func TestAccessTTL(t *testing.T) {
	t.Parallel()

	s := New(t, WithAccessTTL(-time.Minute))
	s.AddUser("bob", "a@b.com", "secret1")

	_, body := doJSON(t, http.MethodPost, s.URL()+"/auth/login", `{"email":"a@b.com","password":"secret1"}`, "")
	resp, _ := doJSON(t, http.MethodGet, s.URL()+"/expenses", "", body.AccessToken)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestFailNext — заказанная ошибка отдаётся один раз.
func TestFailNext(t *testing.T) {
	t.Parallel()

	s := New(t)
	s.AddUser("bob", "a@b.com", "secret1")
	s.FailNext(RouteLogin, http.StatusServiceUnavailable)

	resp, body := doJSON(t, http.MethodPost, s.URL()+"/auth/login", `{"email":"a@b.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "Service Unavailable", body.Message)

	resp, _ = doJSON(t, http.MethodPost, s.URL()+"/auth/login", `{"email":"a@b.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
