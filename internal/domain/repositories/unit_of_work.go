package repositories

import (
	"context"
)

// UnitOfWork runs fn in one database transaction. Repositories called with
// the ctx passed to fn join that transaction; a nested Do joins the outer one.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
