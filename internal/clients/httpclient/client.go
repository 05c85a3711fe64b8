// httpclient — фабрика изолированных HTTP-клиентов к REST API.
//
// Каждый клиент имеет фиксированный базовый адрес, собственный конвейер middleware
// вокруг операции send(request) -> response и (в credentialed-режиме) cookie-jar,
// через который сервер передаёт HTTP-only refresh-cookie. Два клиента, созданные
// фабрикой, не делят состояние middleware; общий у них может быть только jar.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout — таймаут одной попытки запроса.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNilRequest — в конвейер передан пустой дескриптор запроса.
	// Запрос не отправляется.
	ErrNilRequest = errors.New("nil request")
	// ErrEncode — тело запроса не сериализуется в JSON. Это ошибка вызывающего кода,
	// а не сети, и она не превращается в "Network Error".
	ErrEncode = errors.New("encode request body")
)

// Request — дескриптор исходящего запроса.
// Body сериализуется в JSON на каждой попытке, поэтому один и тот же Request
// можно отправить повторно (retry после refresh).
type Request struct {
	Method string
	// Path — уже экранированный путь относительно базового адреса.
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Clone возвращает копию с независимыми Header и Query.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Query != nil {
		c.Query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			c.Query[k] = append([]string(nil), v...)
		}
	}

	return &c
}

// Response — ответ сервера с уже прочитанным телом.
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
}

// OK сообщает, что статус в диапазоне 2xx.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Doer — операция send(request) -> response.
// error != nil означает, что ответ не получен (сеть, таймаут, отмена);
// любой HTTP-статус, включая 4xx/5xx, приходит как *Response.
type Doer func(ctx context.Context, req *Request) (*Response, error)

// Middleware — декоратор Doer: pre-send и post-receive преобразования.
type Middleware func(next Doer) Doer

// Chain применяет middleware в порядке перечисления: первый — самый внешний.
func Chain(d Doer, mws ...Middleware) Doer {
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}

	return d
}

// Options — параметры фабрики.
type Options struct {
	// Name — имя клиента для логов и метрик ("auth", "resource").
	Name    string
	BaseURL string
	// Credentialed включает cookie-jar: cookie сервера передаются автоматически.
	Credentialed bool
	// Jar — общий jar; если nil при Credentialed, создаётся собственный.
	Jar http.CookieJar
	// Timeout — таймаут одной попытки; <= 0 означает DefaultTimeout.
	Timeout time.Duration
	// Transport — нижний RoundTripper; nil означает http.DefaultTransport.
	Transport http.RoundTripper
	// Middlewares — конвейер снаружи внутрь. Таймаут попытки добавляется последним.
	Middlewares []Middleware
}

// Client — изолированный HTTP-клиент.
type Client struct {
	name string
	base *url.URL
	hc   *http.Client
	send Doer
}

// New создаёт клиент по Options.
func New(opts Options) (*Client, error) {
	const op = "httpclient.New"

	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%s: empty base url", op)
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%s: base url must be absolute http(s) url, got %q", op, opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	hc := &http.Client{Transport: transport}
	if opts.Credentialed {
		jar := opts.Jar
		if jar == nil {
			if jar, err = NewJar(); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		hc.Jar = jar
	}

	c := &Client{
		name: opts.Name,
		base: base,
		hc:   hc,
	}

	mws := make([]Middleware, 0, len(opts.Middlewares)+1)
	mws = append(mws, opts.Middlewares...)
	mws = append(mws, WithTimeout(timeout))
	c.send = Chain(c.roundTrip, mws...)

	return c, nil
}

// NewJar создаёт cookie-jar с публичным списком суффиксов.
func NewJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	return jar, nil
}

// Name — имя клиента.
func (c *Client) Name() string { return c.name }

// BaseURL — копия базового адреса.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Jar — cookie-jar клиента (nil вне credentialed-режима).
func (c *Client) Jar() http.CookieJar { return c.hc.Jar }

// Do прогоняет запрос через конвейер.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	return c.send(ctx, req)
}

// roundTrip — терминальный Doer: сериализация, отправка, чтение тела.
func (c *Client) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	const op = "httpclient.roundTrip"

	if req == nil {
		return nil, ErrNilRequest
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrEncode, err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	hr, err := http.NewRequestWithContext(ctx, method, c.resolve(req), body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			hr.Header.Add(k, v)
		}
	}
	if req.Body != nil && hr.Header.Get("Content-Type") == "" {
		hr.Header.Set("Content-Type", "application/json")
	}
	if hr.Header.Get("Accept") == "" {
		hr.Header.Set("Accept", "application/json")
	}

	resp, err := c.hc.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}

	return &Response{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// resolve склеивает базовый адрес, экранированный путь и query.
func (c *Client) resolve(req *Request) string {
	u := c.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	return u.String()
}

// statusText берёт текст статуса из строки ответа сервера, иначе — стандартный.
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}

	return http.StatusText(resp.StatusCode)
}
