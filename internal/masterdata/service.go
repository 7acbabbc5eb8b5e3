package masterdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/shared"
)

// Service validates and persists master data.
type Service struct {
	repo     *dataset.Repository
	validate *validator.Validate

	customers   collection[Customer]
	products    collection[Product]
	upiAccounts collection[UpiAccount]
}

// NewService creates a master data service on repo.
func NewService(repo *dataset.Repository) *Service {
	return &Service{
		repo:        repo,
		validate:    validator.New(),
		customers:   customers(repo),
		products:    products(repo),
		upiAccounts: upiAccounts(repo),
	}
}

// Business returns the seller profile.
func (s *Service) Business(ctx context.Context) Business {
	return s.repo.Snapshot(ctx).Business
}

// UpdateBusiness merges patch into the seller profile.
func (s *Service) UpdateBusiness(ctx context.Context, patch BusinessPatch) (Business, error) {
	var out Business
	err := s.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		next := ds.Business
		patch.apply(&next)
		if err := s.check(businessRules{Name: next.Name, GSTIN: next.GSTIN}); err != nil {
			return err
		}
		ds.Business = next
		out = next
		return nil
	})
	if err != nil {
		return Business{}, fmt.Errorf("update business: %w", err)
	}
	return out, nil
}

// Customers lists customers in storage order.
func (s *Service) Customers(ctx context.Context) []Customer {
	return s.customers.all(ctx)
}

// CreateCustomer stores c, assigning an id when absent.
func (s *Service) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.GSTIN = strings.TrimSpace(c.GSTIN)
	if err := s.check(customerRules{Name: c.Name, GSTIN: c.GSTIN}); err != nil {
		return Customer{}, err
	}
	return s.customers.create(ctx, c)
}

// UpdateCustomer merges patch into customer id.
func (s *Service) UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) (Customer, bool, error) {
	return s.customers.update(ctx, id, func(c *Customer) error {
		patch.apply(c)
		return s.check(customerRules{Name: c.Name, GSTIN: c.GSTIN})
	})
}

// DeleteCustomer removes customer id. Invoices keep their copied customer fields.
func (s *Service) DeleteCustomer(ctx context.Context, id string) (bool, error) {
	return s.customers.remove(ctx, id)
}

// Products lists products in storage order.
func (s *Service) Products(ctx context.Context) []Product {
	return s.products.all(ctx)
}

// CreateProduct stores p, assigning an id when absent.
func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := s.check(productRules{Name: p.Name, DefaultPrice: p.DefaultPrice}); err != nil {
		return Product{}, err
	}
	return s.products.create(ctx, p)
}

// UpdateProduct merges patch into product id.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, bool, error) {
	return s.products.update(ctx, id, func(p *Product) error {
		patch.apply(p)
		return s.check(productRules{Name: p.Name, DefaultPrice: p.DefaultPrice})
	})
}

// DeleteProduct removes product id.
func (s *Service) DeleteProduct(ctx context.Context, id string) (bool, error) {
	return s.products.remove(ctx, id)
}

// UpiAccounts lists UPI accounts in storage order.
func (s *Service) UpiAccounts(ctx context.Context) []UpiAccount {
	return s.upiAccounts.all(ctx)
}

// CreateUpiAccount stores a, assigning an id when absent.
func (s *Service) CreateUpiAccount(ctx context.Context, a UpiAccount) (UpiAccount, error) {
	a.Label = strings.TrimSpace(a.Label)
	a.UpiID = strings.TrimSpace(a.UpiID)
	if err := s.check(upiRules{Label: a.Label, UpiID: a.UpiID}); err != nil {
		return UpiAccount{}, err
	}
	return s.upiAccounts.create(ctx, a)
}

// UpdateUpiAccount merges patch into account id.
func (s *Service) UpdateUpiAccount(ctx context.Context, id string, patch UpiAccountPatch) (UpiAccount, bool, error) {
	return s.upiAccounts.update(ctx, id, func(a *UpiAccount) error {
		patch.apply(a)
		return s.check(upiRules{Label: a.Label, UpiID: a.UpiID})
	})
}

// DeleteUpiAccount removes account id. Invoices keep their payment snapshot.
func (s *Service) DeleteUpiAccount(ctx context.Context, id string) (bool, error) {
	return s.upiAccounts.remove(ctx, id)
}

func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, strings.ToLower(fe.Field())+" failed "+fe.Tag())
		}
		return errorsf(shared.ErrInvalidInput, "%s", strings.Join(msgs, "; "))
	}
	return errorsf(shared.ErrInvalidInput, "%v", err)
}

func errorsf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
