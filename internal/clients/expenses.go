package clients

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
)

// ExpensesClient — CRUD /expenses поверх ResourceClient.
type ExpensesClient struct {
	rc *ResourceClient
}

func NewExpensesClient(rc *ResourceClient) *ExpensesClient {
	return &ExpensesClient{rc: rc}
}

func expensePath(id int64) string {
	return "/expenses/" + strconv.FormatInt(id, 10)
}

// List — GET /expenses.
func (e *ExpensesClient) List(ctx context.Context) ([]models.Expense, error) {
	const op = "clients.ExpensesClient.List"

	out, err := call[[]models.Expense](ctx, e.rc, op, &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/expenses",
	})
	if err != nil {
		return nil, err
	}

	return *out, nil
}

// Get — GET /expenses/:id.
func (e *ExpensesClient) Get(ctx context.Context, id int64) (*models.Expense, error) {
	const op = "clients.ExpensesClient.Get"

	return call[models.Expense](ctx, e.rc, op, &httpclient.Request{
		Method: http.MethodGet,
		Path:   expensePath(id),
	})
}

// Create — POST /expenses.
func (e *ExpensesClient) Create(ctx context.Context, in models.NewExpense) (*models.Expense, error) {
	const op = "clients.ExpensesClient.Create"

	return call[models.Expense](ctx, e.rc, op, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/expenses",
		Body:   in,
	})
}

// Patch — PATCH /expenses/:id целиком записью.
func (e *ExpensesClient) Patch(ctx context.Context, in models.Expense) (*models.Expense, error) {
	const op = "clients.ExpensesClient.Patch"

	return call[models.Expense](ctx, e.rc, op, &httpclient.Request{
		Method: http.MethodPatch,
		Path:   expensePath(in.ID),
		Body:   in,
	})
}

// Delete — DELETE /expenses/:id.
func (e *ExpensesClient) Delete(ctx context.Context, id int64) error {
	const op = "clients.ExpensesClient.Delete"

	_, err := send(ctx, e.rc, op, &httpclient.Request{
		Method: http.MethodDelete,
		Path:   expensePath(id),
	})

	return err
}
