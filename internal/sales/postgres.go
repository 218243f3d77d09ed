package sales

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStorage is the SQL-backed Storage implementation. Every call is a
// single statement, so row-level atomicity comes from Postgres itself.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage connects to the database and runs the schema migration.
func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &PostgresStorage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// NewPostgresStorageFromDB wraps an existing connection without migrating.
func NewPostgresStorageFromDB(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (p *PostgresStorage) migrate() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			status INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS sale_items (
			id TEXT PRIMARY KEY,
			sale_id TEXT NOT NULL REFERENCES sales(id),
			product_id TEXT NOT NULL,
			quantity INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id);
		CREATE INDEX IF NOT EXISTS idx_sale_items_product ON sale_items(product_id);
	`)
	return err
}

// Close releases the underlying connection pool.
func (p *PostgresStorage) Close() error {
	return p.db.Close()
}

func (p *PostgresStorage) CreateSale(sale *Sale) error {
	_, err := p.db.Exec(
		`INSERT INTO sales (id, client_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		sale.ID, sale.ClientID, int(sale.Status), sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (p *PostgresStorage) GetSaleByID(id string) (*Sale, error) {
	var s Sale
	var status int
	err := p.db.QueryRow(
		`SELECT id, client_id, status, created_at, updated_at FROM sales WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.ClientID, &status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: sale %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.Status = Status(status)

	items, err := p.itemsBySale(id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

func (p *PostgresStorage) SetStatus(saleID string, status Status) error {
	res, err := p.db.Exec(
		`UPDATE sales SET status = $2, updated_at = NOW() WHERE id = $1`,
		saleID, int(status),
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
	}
	return nil
}

func (p *PostgresStorage) AddItem(item *SaleItem) error {
	_, err := p.db.Exec(
		`INSERT INTO sale_items (id, sale_id, product_id, quantity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.SaleID, item.ProductID, item.Quantity, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (p *PostgresStorage) SetItemQuantity(itemID string, quantity int) error {
	res, err := p.db.Exec(
		`UPDATE sale_items SET quantity = $2, updated_at = NOW() WHERE id = $1`,
		itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update item quantity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	return nil
}

func (p *PostgresStorage) FindByProduct(productID string) ([]*Sale, error) {
	rows, err := p.db.Query(
		`SELECT DISTINCT si.sale_id, s.created_at
		 FROM sale_items si
		 JOIN sales s ON s.id = si.sale_id
		 WHERE si.product_id = $1
		 ORDER BY s.created_at DESC, si.sale_id DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("find by product: %w", err)
	}
	defer rows.Close()

	var saleIDs []string
	for rows.Next() {
		var id string
		var createdAt time.Time
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, fmt.Errorf("find by product: %w", err)
		}
		saleIDs = append(saleIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find by product: %w", err)
	}

	sales := make([]*Sale, 0, len(saleIDs))
	for _, id := range saleIDs {
		s, err := p.GetSaleByID(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, nil
}

func (p *PostgresStorage) FindByStatus(status Status) ([]*Sale, error) {
	rows, err := p.db.Query(
		`SELECT id, client_id, status, created_at, updated_at
		 FROM sales WHERE status = $1 ORDER BY created_at DESC, id DESC`,
		int(status),
	)
	if err != nil {
		return nil, fmt.Errorf("find by status: %w", err)
	}
	defer rows.Close()

	sales := make([]*Sale, 0)
	for rows.Next() {
		var s Sale
		var st int
		if err := rows.Scan(&s.ID, &s.ClientID, &st, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("find by status: %w", err)
		}
		s.Status = Status(st)
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find by status: %w", err)
	}

	for _, s := range sales {
		items, err := p.itemsBySale(s.ID)
		if err != nil {
			return nil, err
		}
		s.Items = items
	}
	return sales, nil
}

func (p *PostgresStorage) GetItemByID(itemID string) (*SaleItem, error) {
	var it SaleItem
	err := p.db.QueryRow(
		`SELECT id, sale_id, product_id, quantity, created_at, updated_at
		 FROM sale_items WHERE id = $1`,
		itemID,
	).Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

func (p *PostgresStorage) GetItemsBySale(saleID string) ([]*SaleItem, error) {
	var exists bool
	err := p.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, saleID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
	}
	return p.itemsBySale(saleID)
}

// itemsBySale loads a sale's items without verifying the sale
// row exists.
func (p *PostgresStorage) itemsBySale(saleID string) ([]*SaleItem, error) {
	rows, err := p.db.Query(
		`SELECT id, sale_id, product_id, quantity, created_at, updated_at
		 FROM sale_items WHERE sale_id = $1 ORDER BY created_at, id`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	defer rows.Close()

	items := make([]*SaleItem, 0)
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("get items: %w", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return items, nil
}
