package interceptors

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
	"github.com/pribylovaa/go-expense-tracker/pkg/log"
)

// CaptureToken сохраняет accessToken из тела любого успешного ответа.
// Тело, которое не является JSON-объектом (например, список расходов), пропускается.
func CaptureToken(sink TokenSink) httpclient.Middleware {
	return func(next httpclient.Doer) httpclient.Doer {
		return func(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
			resp, err := next(ctx, req)
			if err != nil || !resp.OK() {
				return resp, err
			}

			if tok := tokenFrom(resp.Body); tok != "" {
				sink.Save(tok)
				log.From(ctx).Debug("access_token_captured")
			}

			return resp, nil
		}
	}
}

var utf8BOM = []byte("\xef\xbb\xbf")

func tokenFrom(body []byte) string {
	body = bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(body), utf8BOM))
	if len(body) == 0 || body[0] != '{' {
		return ""
	}

	var env models.TokenEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}

	return env.AccessToken
}
