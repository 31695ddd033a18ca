package domain

type Maker struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type Product struct {
	ID          int64  `db:"id"`
	ProductName string `db:"product_name"`
	Price       int64  `db:"price"`
	Stock       int64  `db:"stock"`
	MakerID     int64  `db:"maker_id"`
	Detail      string `db:"detail"`
	Image       string `db:"image"` // relative media path; empty when no image
	UserID      int64  `db:"user_id"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

// ProductWithMaker is a product row with its maker eagerly joined.
type ProductWithMaker struct {
	Product
	MakerName string `db:"maker_name"`
}

// PagedResult is one page of the filtered catalog plus the total match
// count and the zero-based offset of the first item (used by the index
// page for display numbering).
type PagedResult struct {
	Items  []ProductWithMaker
	Total  int
	Page   int
	Offset int
}
