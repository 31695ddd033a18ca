package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"makershelf/internal/domain"
	"makershelf/internal/repos"
	"makershelf/internal/storage"
)

const (
	MaxNameRunes   = 20
	MaxDetailRunes = 140
	MaxImageBytes  = 2048 << 10 // 2048 KB
)

// Upload carries one submitted file. Nil means no file was supplied.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// ProductInput is the raw form submission before any parsing.
type ProductInput struct {
	ProductName string
	Price       string
	Stock       string
	MakerID     string
	Detail      string
	Image       *Upload
}

// Fields is a validated, typed product submission.
type Fields struct {
	ProductName string
	Price       int64
	Stock       int64
	MakerID     int64
	Detail      string
}

// ProductService validates and applies product mutations. The acting
// user id is always passed in explicitly and stamped onto the row.
type ProductService struct {
	DB     *sqlx.DB
	Makers *repos.MakerRepo
	Prods  *repos.ProductRepo
	Files  storage.Store
}

func NewProductService(db *sqlx.DB, makers *repos.MakerRepo, prods *repos.ProductRepo, files storage.Store) *ProductService {
	return &ProductService{DB: db, Makers: makers, Prods: prods, Files: files}
}

// Validate checks every rule and reports all violations together as
// ValidationErrors. The same rule set applies to create and update; the
// image is optional in both. A maker_id with no maker record is a
// validation error on that field, not a not-found error.
func (s *ProductService) Validate(in ProductInput) (Fields, error) {
	var f Fields
	var errs ValidationErrors
	add := func(field, msg string) { errs = append(errs, FieldError{Field: field, Message: msg}) }

	switch {
	case in.ProductName == "":
		add("product_name", "product name is required")
	case utf8.RuneCountInString(in.ProductName) > MaxNameRunes:
		add("product_name", fmt.Sprintf("product name must be at most %d characters", MaxNameRunes))
	default:
		f.ProductName = in.ProductName
	}

	if in.Price == "" {
		add("price", "price is required")
	} else if n, err := strconv.ParseInt(strings.TrimSpace(in.Price), 10, 64); err != nil {
		add("price", "price must be an integer")
	} else if n < 0 {
		add("price", "price must not be negative")
	} else {
		f.Price = n
	}

	if in.MakerID == "" {
		add("maker_id", "maker is required")
	} else if n, err := strconv.ParseInt(strings.TrimSpace(in.MakerID), 10, 64); err != nil {
		add("maker_id", "maker must be an integer")
	} else {
		ok, eerr := s.Makers.Exists(n)
		if eerr != nil {
			return Fields{}, fmt.Errorf("check maker: %w", eerr)
		}
		if !ok {
			add("maker_id", "maker does not exist")
		} else {
			f.MakerID = n
		}
	}

	if in.Stock == "" {
		add("stock", "stock is required")
	} else if n, err := strconv.ParseInt(strings.TrimSpace(in.Stock), 10, 64); err != nil {
		add("stock", "stock must be an integer")
	} else if n < 0 {
		add("stock", "stock must not be negative")
	} else {
		f.Stock = n
	}

	switch {
	case in.Detail == "":
		add("detail", "detail is required")
	case utf8.RuneCountInString(in.Detail) > MaxDetailRunes:
		add("detail", fmt.Sprintf("detail must be at most %d characters", MaxDetailRunes))
	default:
		f.Detail = in.Detail
	}

	if in.Image != nil {
		if !strings.HasPrefix(in.Image.ContentType, "image/") {
			add("image", "file must be an image")
		}
		if in.Image.Size > MaxImageBytes {
			add("image", "image must be at most 2048 KB")
		}
	}

	if len(errs) > 0 {
		return Fields{}, errs
	}
	return f, nil
}

// Create stores the image (if any) and inserts the product in one
// transaction. A storage failure aborts the whole mutation; no partial
// row is ever committed.
func (s *ProductService) Create(f Fields, actingUserID int64, img *Upload) (domain.Product, error) {
	imagePath := ""
	if img != nil {
		p, err := s.Files.Save(img.Name, img.Data)
		if err != nil {
			return domain.Product{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		imagePath = p
	}

	rec := domain.Product{
		ProductName: f.ProductName,
		Price:       f.Price,
		Stock:       f.Stock,
		MakerID:     f.MakerID,
		Detail:      f.Detail,
		Image:       imagePath,
		UserID:      actingUserID,
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Product{}, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := s.Prods.Insert(tx, &rec)
	if err != nil {
		return domain.Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Product{}, err
	}
	rec.ID = id
	return rec, nil
}

// Update rewrites every field of an existing product. The stored image
// path is kept unless a new file was supplied; user_id is restamped to
// the current actor regardless of who created the record.
func (s *ProductService) Update(id int64, f Fields, actingUserID int64, img *Upload) (domain.Product, error) {
	newImage := ""
	if img != nil {
		p, err := s.Files.Save(img.Name, img.Data)
		if err != nil {
			return domain.Product{}, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		newImage = p
	}

	rec := domain.Product{
		ProductName: f.ProductName,
		Price:       f.Price,
		Stock:       f.Stock,
		MakerID:     f.MakerID,
		Detail:      f.Detail,
		UserID:      actingUserID,
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Product{}, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := s.Prods.Update(tx, id, &rec, newImage)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return domain.Product{}, err
	}

	updated, err := s.Prods.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	return updated.Product, nil
}

// Delete hard-deletes a product and returns its name for confirmation
// messaging. A missing id reports ErrNotFound with no side effects.
func (s *ProductService) Delete(id int64) (string, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	ok, err := s.Prods.Delete(id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	return p.ProductName, nil
}
