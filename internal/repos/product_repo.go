package repos

import (
	"makershelf/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// Filter narrows the catalog query. Zero values mean "no filter".
type Filter struct {
	Search  string // case-sensitive substring of product_name
	MakerID int64
}

const selectCols = `
    p.id, p.product_name, p.price, p.stock, p.maker_id, p.detail,
    COALESCE(p.image,'') AS image, p.user_id,
    p.created_at, COALESCE(p.updated_at,'') AS updated_at,
    m.name AS maker_name`

// Query returns one window of the filtered catalog (newest id first) with
// the maker joined in, plus the total match count for page computation.
// sqlite LIKE folds ASCII case, so substring matching uses instr to keep
// the search case-sensitive.
func (r *ProductRepo) Query(f Filter, limit, offset int) ([]domain.ProductWithMaker, int, error) {
	where := `1=1`
	args := []any{}
	if f.Search != "" {
		where += ` AND instr(p.product_name, ?) > 0`
		args = append(args, f.Search)
	}
	if f.MakerID > 0 {
		where += ` AND p.maker_id = ?`
		args = append(args, f.MakerID)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products p WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	sql := `
  SELECT` + selectCols + `
  FROM products p
  JOIN makers m ON m.id = p.maker_id
  WHERE ` + where + `
  ORDER BY p.id DESC
  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.ProductWithMaker
	err := r.db.Select(&out, sql, args...)
	return out, total, err
}

func (r *ProductRepo) Get(id int64) (domain.ProductWithMaker, error) {
	var p domain.ProductWithMaker
	err := r.db.Get(&p, `
  SELECT`+selectCols+`
  FROM products p
  JOIN makers m ON m.id = p.maker_id
  WHERE p.id = ?
`, id)
	return p, err
}

// Insert adds a product inside the caller's transaction and returns the
// assigned id. created_at/updated_at are stamped here; an empty image
// path is stored as NULL.
func (r *ProductRepo) Insert(tx *sqlx.Tx, p *domain.Product) (int64, error) {
	res, err := tx.Exec(`
	  INSERT INTO products
	    (product_name, price, stock, maker_id, detail, image, user_id, created_at, updated_at)
	  VALUES
	    (?, ?, ?, ?, ?, NULLIF(?,''), ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, p.ProductName, p.Price, p.Stock, p.MakerID, p.Detail, p.Image, p.UserID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update rewrites every field of a product inside the caller's
// transaction. newImage == "" keeps the stored image path; a non-empty
// value replaces it. Returns false when the id does not exist.
func (r *ProductRepo) Update(tx *sqlx.Tx, id int64, p *domain.Product, newImage string) (bool, error) {
	res, err := tx.Exec(`
	  UPDATE products SET
	    product_name = ?,
	    price = ?,
	    stock = ?,
	    maker_id = ?,
	    detail = ?,
	    image = CASE WHEN ? = '' THEN image ELSE ? END,
	    user_id = ?,
	    updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, p.ProductName, p.Price, p.Stock, p.MakerID, p.Detail, newImage, newImage, p.UserID, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete hard-deletes a product. Returns false when no row matched.
func (r *ProductRepo) Delete(id int64) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
