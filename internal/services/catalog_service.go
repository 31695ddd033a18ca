package services

import (
	"database/sql"
	"errors"

	"makershelf/internal/domain"
	"makershelf/internal/repos"
	"makershelf/internal/validate"
)

// PageSize is the fixed catalog page size.
const PageSize = 5

// Criteria is the typed view of the index query string. Zero values mean
// "not filtered"; Page is 1-based.
type Criteria struct {
	Search  string
	MakerID int64
	Page    int
}

// ParseCriteria maps raw query parameters to Criteria. Unparsable maker
// or page values are treated as absent/default, never as an error.
func ParseCriteria(search, makerID, page string) Criteria {
	return Criteria{
		Search:  search,
		MakerID: validate.OptionalID(makerID),
		Page:    validate.Page(page),
	}
}

type CatalogService struct {
	Makers *repos.MakerRepo
	Prods  *repos.ProductRepo
}

func NewCatalogService(makers *repos.MakerRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Makers: makers, Prods: prods}
}

// List returns one page of the filtered catalog, newest product first,
// with each item's maker joined in. A page past the end yields an empty
// item list with the real total.
func (s *CatalogService) List(cr Criteria) (domain.PagedResult, error) {
	page := cr.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize

	items, total, err := s.Prods.Query(repos.Filter{Search: cr.Search, MakerID: cr.MakerID}, PageSize, offset)
	if err != nil {
		return domain.PagedResult{}, err
	}
	return domain.PagedResult{Items: items, Total: total, Page: page, Offset: offset}, nil
}

func (s *CatalogService) Get(id int64) (domain.ProductWithMaker, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProductWithMaker{}, ErrNotFound
	}
	return p, err
}

// ListMakers returns every maker for the filter dropdown and product forms.
func (s *CatalogService) ListMakers() ([]domain.Maker, error) {
	return s.Makers.List()
}
