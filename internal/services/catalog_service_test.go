package services_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"makershelf/internal/repos"
	"makershelf/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE makers(id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE products(id INTEGER PRIMARY KEY AUTOINCREMENT, product_name TEXT NOT NULL,
	  price INTEGER NOT NULL, stock INTEGER NOT NULL, maker_id INTEGER NOT NULL,
	  detail TEXT NOT NULL, image TEXT, user_id INTEGER NOT NULL,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);

	INSERT INTO makers(name) VALUES ('Acme'),('Globex');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func addProduct(t *testing.T, db *sqlx.DB, name string, makerID int64) int64 {
	t.Helper()
	res, err := db.Exec(`
	  INSERT INTO products(product_name, price, stock, maker_id, detail, user_id, created_at, updated_at)
	  VALUES(?, 100, 5, ?, 'detail', 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, name, makerID)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := res.LastInsertId()
	return id
}

func newCatalog(db *sqlx.DB) *services.CatalogService {
	return services.NewCatalogService(repos.NewMakerRepo(db), repos.NewProductRepo(db))
}

func TestCatalogList_SearchIsCaseSensitiveSubstring(t *testing.T) {
	db := memdb(t)
	addProduct(t, db, "Widget A", 1)
	addProduct(t, db, "widget b", 1)
	addProduct(t, db, "Gadget", 2)

	svc := newCatalog(db)
	res, err := svc.List(services.Criteria{Search: "Wid", Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || len(res.Items) != 1 {
		t.Fatalf("want 1 match, got total=%d items=%d", res.Total, len(res.Items))
	}
	if res.Items[0].ProductName != "Widget A" {
		t.Fatalf("want Widget A, got %q", res.Items[0].ProductName)
	}
}

func TestCatalogList_MakerFilterAndJoin(t *testing.T) {
	db := memdb(t)
	addProduct(t, db, "Widget", 1)
	addProduct(t, db, "Gadget", 2)
	addProduct(t, db, "Gizmo", 2)

	svc := newCatalog(db)
	res, err := svc.List(services.Criteria{MakerID: 2, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 {
		t.Fatalf("want total=2, got %d", res.Total)
	}
	for _, it := range res.Items {
		if it.MakerID != 2 {
			t.Fatalf("maker filter leaked: %+v", it)
		}
		if it.MakerName != "Globex" {
			t.Fatalf("maker not joined: %+v", it)
		}
	}
}

func TestCatalogList_PaginationWindows(t *testing.T) {
	db := memdb(t)
	for i := 1; i <= 12; i++ {
		addProduct(t, db, fmt.Sprintf("Item %02d", i), 1)
	}
	svc := newCatalog(db)

	seen := map[int64]bool{}
	var all []int64
	for page := 1; page <= 3; page++ {
		res, err := svc.List(services.Criteria{Page: page})
		if err != nil {
			t.Fatal(err)
		}
		if res.Total != 12 {
			t.Fatalf("page %d: want total=12, got %d", page, res.Total)
		}
		if res.Offset != (page-1)*services.PageSize {
			t.Fatalf("page %d: want offset=%d, got %d", page, (page-1)*services.PageSize, res.Offset)
		}
		wantLen := services.PageSize
		if page == 3 {
			wantLen = 2
		}
		if len(res.Items) != wantLen {
			t.Fatalf("page %d: want %d items, got %d", page, wantLen, len(res.Items))
		}
		for _, it := range res.Items {
			if seen[it.ID] {
				t.Fatalf("id %d repeated across pages", it.ID)
			}
			seen[it.ID] = true
			all = append(all, it.ID)
		}
	}

	// newest id first across the whole concatenation
	for i := 1; i < len(all); i++ {
		if all[i-1] <= all[i] {
			t.Fatalf("ordering broken at %d: %v", i, all)
		}
	}
}

func TestCatalogList_PagePastEndIsEmptyNotError(t *testing.T) {
	db := memdb(t)
	addProduct(t, db, "Widget", 1)

	svc := newCatalog(db)
	res, err := svc.List(services.Criteria{Page: 9})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 0 || res.Total != 1 {
		t.Fatalf("want empty page with total=1, got %+v", res)
	}
}

func TestCatalogList_IdempotentRead(t *testing.T) {
	db := memdb(t)
	for i := 0; i < 7; i++ {
		addProduct(t, db, fmt.Sprintf("Item %d", i), 1)
	}
	svc := newCatalog(db)

	cr := services.Criteria{Search: "Item", Page: 2}
	a, err := svc.List(cr)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.List(cr)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same criteria, different results:\n%+v\n%+v", a, b)
	}
}

func TestParseCriteria_LenientDefaults(t *testing.T) {
	cases := []struct {
		maker, page string
		wantMaker   int64
		wantPage    int
	}{
		{"", "", 0, 1},
		{"2", "3", 2, 3},
		{"abc", "xyz", 0, 1},
		{"-1", "0", 0, 1},
	}
	for _, tc := range cases {
		cr := services.ParseCriteria("q", tc.maker, tc.page)
		if cr.MakerID != tc.wantMaker || cr.Page != tc.wantPage {
			t.Fatalf("ParseCriteria(%q,%q) = %+v, want maker=%d page=%d",
				tc.maker, tc.page, cr, tc.wantMaker, tc.wantPage)
		}
	}
}
