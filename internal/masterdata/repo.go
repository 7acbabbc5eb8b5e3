package masterdata

import (
	"context"
	"errors"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/shared"
)

var errMissing = errors.New("masterdata: record missing")

// collection is one id-keyed list inside the dataset.
type collection[T any] struct {
	repo   *dataset.Repository
	prefix string
	list   func(*dataset.Dataset) *[]T
	id     func(*T) *string
}

func (c collection[T]) all(ctx context.Context) []T {
	return *c.list(c.repo.Snapshot(ctx))
}

func (c collection[T]) create(ctx context.Context, v T) (T, error) {
	idp := c.id(&v)
	*idp = shared.EnsureID(*idp, c.prefix)
	err := c.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		items := c.list(ds)
		for i := range *items {
			if *c.id(&(*items)[i]) == *idp {
				return errorsf(shared.ErrInvalidInput, "id %s already exists", *idp)
			}
		}
		*items = append(*items, v)
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// update applies fn to the record with id. fn may reject the result. It reports false
// when id does not exist.
func (c collection[T]) update(ctx context.Context, id string, fn func(*T) error) (T, bool, error) {
	var out T
	err := c.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		items := *c.list(ds)
		for i := range items {
			if *c.id(&items[i]) != id {
				continue
			}
			next := items[i]
			if err := fn(&next); err != nil {
				return err
			}
			*c.id(&next) = id
			items[i] = next
			out = next
			return nil
		}
		return errMissing
	})
	if errors.Is(err, errMissing) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	return out, true, nil
}

func (c collection[T]) remove(ctx context.Context, id string) (bool, error) {
	err := c.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		items := c.list(ds)
		for i := range *items {
			if *c.id(&(*items)[i]) == id {
				kept := make([]T, 0, len(*items)-1)
				kept = append(kept, (*items)[:i]...)
				*items = append(kept, (*items)[i+1:]...)
				return nil
			}
		}
		return errMissing
	})
	if errors.Is(err, errMissing) {
		return false, nil
	}
	return err == nil, err
}

func customers(repo *dataset.Repository) collection[Customer] {
	return collection[Customer]{
		repo:   repo,
		prefix: "cust",
		list:   func(ds *dataset.Dataset) *[]Customer { return &ds.Customers },
		id:     func(c *Customer) *string { return &c.ID },
	}
}

func products(repo *dataset.Repository) collection[Product] {
	return collection[Product]{
		repo:   repo,
		prefix: "prod",
		list:   func(ds *dataset.Dataset) *[]Product { return &ds.Products },
		id:     func(p *Product) *string { return &p.ID },
	}
}

func upiAccounts(repo *dataset.Repository) collection[UpiAccount] {
	return collection[UpiAccount]{
		repo:   repo,
		prefix: "upi",
		list:   func(ds *dataset.Dataset) *[]UpiAccount { return &ds.UpiAccounts },
		id:     func(a *UpiAccount) *string { return &a.ID },
	}
}
