// clients собирает HTTP-клиенты API учёта расходов поверх одного хранилища токена
// и одного cookie-jar: AuthClient (/auth/*, без повторов) и ResourceClient
// (защищённые ресурсы, refresh по 401 и один повтор), плюс типизированные обёртки.
package clients

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
	"github.com/pribylovaa/go-expense-tracker/internal/clients/interceptors"
	"github.com/pribylovaa/go-expense-tracker/internal/config"
	"github.com/pribylovaa/go-expense-tracker/internal/metrics"
)

const (
	clientAuth     = "auth"
	clientResource = "resource"
)

// TokenStore — хранилище access-токена, общее для обоих клиентов.
type TokenStore interface {
	Get() (string, bool)
	Save(token string)
	Remove()
}

// Clients агрегирует клиенты API.
type Clients struct {
	Auth     *AuthClient
	Resource *ResourceClient
	Expenses *ExpensesClient
	Users    *UsersClient
}

// New создаёт оба HTTP-клиента и обёртки.
// m может быть nil — тогда метрики не собираются.
func New(cfg config.Config, store TokenStore, log *slog.Logger, m *metrics.Metrics) (*Clients, error) {
	const op = "internal/clients/New"

	if store == nil {
		return nil, fmt.Errorf("%s: nil token store", op)
	}
	if log == nil {
		log = slog.Default()
	}

	// Общий jar: refresh-cookie, выданная через /auth/*, уходит и с запросами к ресурсам.
	var jar http.CookieJar
	if cfg.API.Credentialed() {
		j, err := httpclient.NewJar()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		jar = j
	}

	ua := cfg.API.UserAgent

	// Цепочка auth: metadata -> logging -> bearer -> capture (-> timeout).
	authHTTP, err := httpclient.New(httpclient.Options{
		Name:         clientAuth,
		BaseURL:      cfg.API.AuthBaseURL,
		Credentialed: cfg.API.Credentialed(),
		Jar:          jar,
		Timeout:      cfg.API.Timeout,
		Transport:    m.InstrumentTransport(clientAuth, nil),
		Middlewares: []httpclient.Middleware{
			interceptors.RequestMetadata(ua),
			interceptors.Logging(log, clientAuth),
			interceptors.Bearer(store),
			interceptors.CaptureToken(store),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: auth client: %w", op, err)
	}

	auth := NewAuthClient(authHTTP, store)

	var refresher interceptors.Refresher = auth
	if cfg.Refresh.Coalesce {
		refresher = interceptors.Coalesce(auth)
	}

	// Цепочка resource: metadata -> refresh-on-401 -> logging -> bearer -> capture (-> timeout).
	// Повтор после refresh проходит logging/bearer/capture/timeout заново.
	resHTTP, err := httpclient.New(httpclient.Options{
		Name:         clientResource,
		BaseURL:      cfg.API.ResourceBaseURL,
		Credentialed: cfg.API.Credentialed(),
		Jar:          jar,
		Timeout:      cfg.API.Timeout,
		Transport:    m.InstrumentTransport(clientResource, nil),
		Middlewares: []httpclient.Middleware{
			interceptors.RequestMetadata(ua),
			interceptors.RefreshOn401(refresher, store, m),
			interceptors.Logging(log, clientResource),
			interceptors.Bearer(store),
			interceptors.CaptureToken(store),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: resource client: %w", op, err)
	}

	res := NewResourceClient(resHTTP)

	return &Clients{
		Auth:     auth,
		Resource: res,
		Expenses: NewExpensesClient(res),
		Users:    NewUsersClient(res),
	}, nil
}
