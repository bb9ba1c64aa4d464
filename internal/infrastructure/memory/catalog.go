package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.CompanyRepository  = (*CompanyRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ base }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	if _, ok := r.state().products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.state().products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.state().products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	cur, ok := r.state().products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name, cur.Description, cur.Category, cur.UpdatedAt = p.Name, p.Description, p.Category, p.UpdatedAt
	r.state().products[p.ID] = cur
	return nil
}

func (r *ProductRepo) ListActive(_ context.Context, companyID, search string, limit, offset int) ([]*entity.Product, error) {
	defer r.lock()()
	search = strings.ToLower(search)
	var out []*entity.Product
	for _, p := range r.state().products {
		if p.CompanyID != companyID || !p.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *ProductRepo) Deactivate(_ context.Context, id string) error {
	defer r.lock()()
	p, ok := r.state().products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	r.state().products[id] = p
	return nil
}

// SupplierRepo proveedores en memoria. Delete es lógico (Active=false).
type SupplierRepo struct{ base }

func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	defer r.lock()()
	if _, ok := r.state().suppliers[s.ID]; ok {
		return domain.ErrDuplicate
	}
	r.state().suppliers[s.ID] = *s
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	defer r.lock()()
	s, ok := r.state().suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SupplierRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Supplier, error) {
	defer r.lock()()
	var out []*entity.Supplier
	for _, s := range r.state().suppliers {
		if s.CompanyID == companyID && s.Active {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *SupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	defer r.lock()()
	if _, ok := r.state().suppliers[s.ID]; !ok {
		return domain.ErrNotFound
	}
	r.state().suppliers[s.ID] = *s
	return nil
}

func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	s, ok := r.state().suppliers[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Active = false
	r.state().suppliers[id] = s
	return nil
}

// CustomerRepo clientes en memoria. Delete es lógico (Active=false).
type CustomerRepo struct{ base }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	defer r.lock()()
	if _, ok := r.state().customers[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.state().customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	defer r.lock()()
	c, ok := r.state().customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CustomerRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Customer, error) {
	defer r.lock()()
	var out []*entity.Customer
	for _, c := range r.state().customers {
		if c.CompanyID == companyID && c.Active {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	defer r.lock()()
	if _, ok := r.state().customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.state().customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	c, ok := r.state().customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = false
	r.state().customers[id] = c
	return nil
}

// UserRepo usuarios en memoria; username es único global.
type UserRepo struct{ base }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.lock()()
	for _, existing := range r.state().users {
		if existing.Username == u.Username {
			return domain.ErrUsernameAlreadyExists
		}
	}
	r.state().users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.lock()()
	u, ok := r.state().users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	defer r.lock()()
	for _, u := range r.state().users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	defer r.lock()()
	var out []*entity.User
	for _, u := range r.state().users {
		if u.CompanyID == companyID && u.Status == entity.UserStatusActive {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return page(out, limit, offset), nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	defer r.lock()()
	cur, ok := r.state().users[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name, cur.PhoneNumber, cur.PasswordHash = u.Name, u.PhoneNumber, u.PasswordHash
	cur.Role, cur.Status, cur.UpdatedAt = u.Role, u.Status, u.UpdatedAt
	r.state().users[u.ID] = cur
	return nil
}

// CompanyRepo empresas en memoria.
type CompanyRepo struct{ base }

func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	defer r.lock()()
	if _, ok := r.state().companies[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.state().companies[c.ID] = *c
	return nil
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	defer r.lock()()
	c, ok := r.state().companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CompanyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	defer r.lock()()
	var out []*entity.Company
	for _, c := range r.state().companies {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}
