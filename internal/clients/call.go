package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
)

// sender — конвейер клиента (AuthClient или ResourceClient).
type sender interface {
	Do(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error)
}

// send отправляет запрос и нормализует неуспех.
// Ожидаемые ошибки возвращаются как *apierrors.AuthError без обёртки.
func send(ctx context.Context, s sender, op string, req *httpclient.Request) (*httpclient.Response, error) {
	resp, err := s.Do(ctx, req)
	if nerr := apierrors.Normalize(resp, err); nerr != nil {
		if _, ok := apierrors.As(nerr); ok {
			return nil, nerr
		}
		return nil, fmt.Errorf("%s: %w", op, nerr)
	}

	return resp, nil
}

// call — send + декодирование успешного тела в T. Пустое тело даёт нулевой T.
func call[T any](ctx context.Context, s sender, op string, req *httpclient.Request) (*T, error) {
	resp, err := send(ctx, s, op, req)
	if err != nil {
		return nil, err
	}

	return decode[T](op, resp)
}

func decode[T any](op string, resp *httpclient.Response) (*T, error) {
	var out T
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return &out, nil
	}

	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	return &out, nil
}
