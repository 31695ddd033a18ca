package repos

import (
	"makershelf/internal/domain"

	"github.com/jmoiron/sqlx"
)

type MakerRepo struct{ db *sqlx.DB }

func NewMakerRepo(db *sqlx.DB) *MakerRepo { return &MakerRepo{db: db} }

func (r *MakerRepo) List() ([]domain.Maker, error) {
	var out []domain.Maker
	err := r.db.Select(&out, `
  SELECT
    id,
    name,
    created_at,
    COALESCE(updated_at,'') AS updated_at
  FROM makers
  ORDER BY id
`)
	return out, err
}

func (r *MakerRepo) Get(id int64) (domain.Maker, error) {
	var m domain.Maker
	err := r.db.Get(&m, `
  SELECT id, name, created_at, COALESCE(updated_at,'') AS updated_at
  FROM makers
  WHERE id = ?
`, id)
	return m, err
}

func (r *MakerRepo) Exists(id int64) (bool, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM makers WHERE id = ?`, id); err != nil {
		return false, err
	}
	return n > 0, nil
}
