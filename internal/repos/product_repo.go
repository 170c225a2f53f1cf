package repos

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"greenleaf/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID           string  `db:"id"`
	Position     int     `db:"position"`
	Title        string  `db:"title"`
	Description  string  `db:"description"`
	Brand        string  `db:"brand"`
	Category     string  `db:"category"`
	Price        float64 `db:"price"`
	Discount     float64 `db:"discount"`
	Rating       float64 `db:"rating"`
	ImagesJSON   string  `db:"images_json"`
	BenefitsJSON string  `db:"benefits_json"`
}

func toRow(p domain.Product, pos int) (productRow, error) {
	images, err := json.Marshal(nonNil(p.Images))
	if err != nil {
		return productRow{}, err
	}
	benefits, err := json.Marshal(nonNil(p.Benefits))
	if err != nil {
		return productRow{}, err
	}
	return productRow{
		ID: string(p.ID), Position: pos, Title: p.Title, Description: p.Description,
		Brand: p.Brand, Category: p.Category, Price: p.Price, Discount: p.Discount, Rating: p.Rating,
		ImagesJSON: string(images), BenefitsJSON: string(benefits),
	}, nil
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID: domain.ProductID(r.ID), Title: r.Title, Description: r.Description,
		Brand: r.Brand, Category: r.Category, Price: r.Price, Discount: r.Discount, Rating: r.Rating,
	}
	// bad JSON in these columns only costs the pictures, not the product
	_ = json.Unmarshal([]byte(r.ImagesJSON), &p.Images)
	_ = json.Unmarshal([]byte(r.BenefitsJSON), &p.Benefits)
	return p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

const productCols = `
    id, position, title, COALESCE(description,'') AS description, brand, category,
    price, discount, rating, COALESCE(images_json,'[]') AS images_json,
    COALESCE(benefits_json,'[]') AS benefits_json`

// List returns the catalog in its published order.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+productCols+` FROM products ORDER BY position`); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Get returns sql.ErrNoRows when id is unknown.
func (r *ProductRepo) Get(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+productCols+` FROM products WHERE id = ?`, string(id)); err != nil {
		return domain.Product{}, err
	}
	return row.toDomain(), nil
}
