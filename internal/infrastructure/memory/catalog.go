package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

type companyRepo struct{ db *DB }

func (r *companyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.db.write(func(d *data) error {
		for _, x := range d.companies {
			if x.NIT == c.NIT {
				return domain.ErrDuplicate
			}
		}
		d.companies[c.ID] = *c
		return nil
	})
}

func (r *companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	r.db.read(func(d *data) {
		if c, ok := d.companies[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *companyRepo) GetByNIT(_ context.Context, nit string) (*entity.Company, error) {
	var out *entity.Company
	r.db.read(func(d *data) {
		for _, c := range d.companies {
			if c.NIT == nit {
				out = ptr(c)
				return
			}
		}
	})
	return out, nil
}

func (r *companyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	var list []*entity.Company
	r.db.read(func(d *data) {
		for _, c := range d.companies {
			list = append(list, ptr(c))
		}
	})
	slices.SortFunc(list, func(a, b *entity.Company) int { return strings.Compare(a.Name, b.Name) })
	return page(list, limit, offset), nil
}

func (r *companyRepo) EnableModule(_ context.Context, m *entity.CompanyModule) error {
	return r.db.write(func(d *data) error {
		m.IsActive = true
		d.modules[m.CompanyID+"/"+m.ModuleName] = *m
		return nil
	})
}

func (r *companyRepo) HasActiveModule(_ context.Context, companyID, moduleName string) (bool, error) {
	var ok bool
	r.db.read(func(d *data) {
		m, found := d.modules[companyID+"/"+moduleName]
		ok = found && m.IsActive && (m.ExpiresAt == nil || m.ExpiresAt.After(time.Now()))
	})
	return ok, nil
}

type userRepo struct{ db *DB }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.db.write(func(d *data) error {
		for _, x := range d.users {
			if strings.EqualFold(x.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		d.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.db.read(func(d *data) {
		if u, ok := d.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.db.read(func(d *data) {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				out = ptr(u)
				return
			}
		}
	})
	return out, nil
}

func (r *userRepo) ListByRole(_ context.Context, companyID, role string) ([]*entity.User, error) {
	var list []*entity.User
	r.db.read(func(d *data) {
		for _, u := range d.users {
			if u.CompanyID == companyID && u.Role == role && (u.Status == "" || u.Status == "active") {
				list = append(list, ptr(u))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.User) int { return strings.Compare(a.Email, b.Email) })
	return list, nil
}

type productRepo struct{ db *DB }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.db.write(func(d *data) error {
		for _, x := range d.products {
			if x.CompanyID == p.CompanyID && x.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		d.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.db.read(func(d *data) {
		if p, ok := d.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *productRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.db.read(func(d *data) {
		for _, p := range d.products {
			if p.CompanyID == companyID && p.SKU == sku {
				out = ptr(p)
				return
			}
		}
	})
	return out, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.db.write(func(d *data) error {
		if _, ok := d.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		d.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	r.db.read(func(d *data) {
		for _, p := range d.products {
			if p.CompanyID == companyID {
				list = append(list, ptr(p))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.Product) int { return strings.Compare(a.SKU, b.SKU) })
	return page(list, limit, offset), nil
}

type customerRepo struct{ db *DB }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.db.write(func(d *data) error {
		for _, x := range d.customers {
			if x.CompanyID == c.CompanyID && x.TaxID == c.TaxID {
				return domain.ErrDuplicate
			}
		}
		d.customers[c.ID] = *c
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	r.db.read(func(d *data) {
		if c, ok := d.customers[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *customerRepo) GetByCompanyAndTaxID(_ context.Context, companyID, taxID string) (*entity.Customer, error) {
	var out *entity.Customer
	r.db.read(func(d *data) {
		for _, c := range d.customers {
			if c.CompanyID == companyID && c.TaxID == taxID {
				out = ptr(c)
				return
			}
		}
	})
	return out, nil
}

func (r *customerRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Customer, error) {
	var list []*entity.Customer
	r.db.read(func(d *data) {
		for _, c := range d.customers {
			if c.CompanyID == companyID {
				list = append(list, ptr(c))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.Customer) int { return strings.Compare(a.Name, b.Name) })
	return page(list, limit, offset), nil
}

func (r *customerRepo) Update(_ context.Context, c *entity.Customer) error {
	return r.db.write(func(d *data) error {
		if _, ok := d.customers[c.ID]; !ok {
			return domain.ErrNotFound
		}
		d.customers[c.ID] = *c
		return nil
	})
}

type leadRepo struct{ db *DB }

func (r *leadRepo) Create(_ context.Context, l *entity.Lead) error {
	return r.db.write(func(d *data) error {
		d.leads[l.ID] = *l
		return nil
	})
}

func (r *leadRepo) GetByID(_ context.Context, id string) (*entity.Lead, error) {
	var out *entity.Lead
	r.db.read(func(d *data) {
		if l, ok := d.leads[id]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r *leadRepo) Update(_ context.Context, l *entity.Lead) error {
	return r.db.write(func(d *data) error {
		if _, ok := d.leads[l.ID]; !ok {
			return domain.ErrNotFound
		}
		d.leads[l.ID] = *l
		return nil
	})
}

func (r *leadRepo) List(_ context.Context, companyID, status string, limit, offset int) ([]*entity.Lead, error) {
	var list []*entity.Lead
	r.db.read(func(d *data) {
		for _, l := range d.leads {
			if l.CompanyID == companyID && (status == "" || l.Status == status) {
				list = append(list, ptr(l))
			}
		}
	})
	slices.SortFunc(list, func(a, b *entity.Lead) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return page(list, limit, offset), nil
}
