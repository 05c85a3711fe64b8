package interceptors

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
	"github.com/pribylovaa/go-expense-tracker/pkg/log"
	"github.com/pribylovaa/go-expense-tracker/pkg/redact"
)

// Logging — логирование исходящих HTTP-попыток.
// Поведение:
//   - берёт request_id из заголовка (его ставит RequestMetadata) или из контекста;
//   - добавляет поля client/method/path, прокладывает обогащённый логгер в контекст (pkg/log);
//   - пишет одну финальную запись уровня Info на попытку: msg="http", status, dur
//     (и error, если ответа нет).
//
// Безопасность: не логирует тела и заголовки; токены в пути маскируются.
func Logging(base *slog.Logger, client string) httpclient.Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next httpclient.Doer) httpclient.Doer {
		return func(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
			if req == nil {
				return next(ctx, req)
			}

			start := time.Now()

			rid := req.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = RequestID(ctx)
			}

			l := base.With(
				slog.String("request_id", rid),
				slog.String("client", client),
				slog.String("method", methodOf(req)),
				slog.String("path", safePath(req.Path)),
			)
			ctx = log.Into(ctx, l)

			resp, err := next(ctx, req)

			attrs := []any{slog.Duration("dur", time.Since(start))}
			if resp != nil {
				attrs = append(attrs, slog.Int("status", resp.Status))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			l.Info("http", attrs...)

			return resp, err
		}
	}
}

func methodOf(req *httpclient.Request) string {
	if req.Method == "" {
		return "GET"
	}

	return req.Method
}

// safePath маскирует одноразовые токены, которые передаются в пути.
func safePath(p string) string {
	const activation = "/auth/activation/"
	if strings.HasPrefix(p, activation) && len(p) > len(activation) {
		return activation + redact.Token()
	}

	return p
}
