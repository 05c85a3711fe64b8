package clients

import (
	"context"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
)

// ResourceClient — клиент защищённых ресурсов. На 401 вызывает refresh
// и повторяет исходный запрос ровно один раз (interceptors.RefreshOn401).
// Неудачный refresh возвращается как ошибка с apierrors.ErrSessionEnded.
type ResourceClient struct {
	c *httpclient.Client
}

func NewResourceClient(c *httpclient.Client) *ResourceClient {
	return &ResourceClient{c: c}
}

// Do прогоняет запрос через конвейер resource-клиента.
func (r *ResourceClient) Do(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	return r.c.Do(ctx, req)
}
