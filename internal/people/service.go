package people

import (
	"context"
	"strings"
)

// Directory answers identity questions the reservation workflow asks about people.
type Directory interface {
	// IsEligibleRequester reports whether the person may be responsible for a reservation.
	// A person that does not exist yields ErrNotFound.
	IsEligibleRequester(ctx context.Context, personID string) (bool, error)
}

type CreateRequest struct {
	DisplayName string
	Email       *string
	Role        string
}

type Service interface {
	Directory
	Create(ctx context.Context, req CreateRequest) (*Person, error)
	GetByID(ctx context.Context, id string) (*Person, error)
	Catalog() Catalog
}

type service struct {
	repo    Repository
	catalog Catalog
}

// NewService builds the people service. An empty catalog falls back to DefaultCatalog.
func NewService(repo Repository, catalog Catalog) Service {
	if catalog.IsEmpty() {
		catalog = DefaultCatalog()
	}
	return &service{
		repo:    repo,
		catalog: catalog,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Person, error) {
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, ErrEmptyName
	}
	role, ok := s.catalog.Role(req.Role)
	if !ok {
		return nil, ErrUnknownRole
	}

	var email *string
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		email = &e
	}

	p := &Person{
		DisplayName: name,
		Email:       email,
		Role:        role.Code,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Person, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) IsEligibleRequester(ctx context.Context, personID string) (bool, error) {
	p, err := s.repo.GetByID(ctx, personID)
	if err != nil {
		return false, err
	}
	return p.Active && s.catalog.CanRequest(p.Role), nil
}

func (s *service) Catalog() Catalog {
	return s.catalog
}
