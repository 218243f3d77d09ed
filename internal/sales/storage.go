package sales

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Storage is the persistence collaborator for the sales service. Each call
// is atomic at the row level; the service never assumes cross-call
// transactions. Implementations return ErrNotFound for absent entities.
// FindByProduct and FindByStatus return sales newest first.
type Storage interface {
	CreateSale(sale *Sale) error
	GetSaleByID(id string) (*Sale, error)
	SetStatus(saleID string, status Status) error
	AddItem(item *SaleItem) error
	SetItemQuantity(itemID string, quantity int) error
	FindByProduct(productID string) ([]*Sale, error)
	FindByStatus(status Status) ([]*Sale, error)
	GetItemByID(itemID string) (*SaleItem, error)
	GetItemsBySale(saleID string) ([]*SaleItem, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
// A single mutex gives every call the read-modify-write atomicity the
// service relies on.
type LocalStorage struct {
	mu        sync.Mutex
	sales     map[string]*Sale
	items     map[string]*SaleItem
	saleItems map[string][]string // saleID -> item IDs in insertion order
}

// NewLocalStorage instantiates an empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		sales:     map[string]*Sale{},
		items:     map[string]*SaleItem{},
		saleItems: map[string][]string{},
	}
}

func (l *LocalStorage) CreateSale(sale *Sale) error {
	if sale.ID == "" {
		return fmt.Errorf("%w: empty sale ID", ErrInternal)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := *sale
	cp.Items = nil
	l.sales[sale.ID] = &cp
	return nil
}

// GetSaleByID retrieves a sale with its items populated.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) GetSaleByID(id string) (*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getSaleLocked(id)
}

func (l *LocalStorage) getSaleLocked(id string) (*Sale, error) {
	s, ok := l.sales[id]
	if !ok {
		return nil, fmt.Errorf("%w: sale %s", ErrNotFound, id)
	}
	cp := *s
	cp.Items = l.itemsLocked(id)
	return &cp, nil
}

func (l *LocalStorage) itemsLocked(saleID string) []*SaleItem {
	ids := l.saleItems[saleID]
	items := make([]*SaleItem, 0, len(ids))
	for _, itemID := range ids {
		cp := *l.items[itemID]
		items = append(items, &cp)
	}
	return items
}

func (l *LocalStorage) SetStatus(saleID string, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sales[saleID]
	if !ok {
		return fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	return nil
}

func (l *LocalStorage) AddItem(item *SaleItem) error {
	if item.ID == "" {
		return fmt.Errorf("%w: empty item ID", ErrInternal)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sales[item.SaleID]; !ok {
		return fmt.Errorf("%w: sale %s", ErrNotFound, item.SaleID)
	}
	cp := *item
	l.items[item.ID] = &cp
	l.saleItems[item.SaleID] = append(l.saleItems[item.SaleID], item.ID)
	return nil
}

func (l *LocalStorage) SetItemQuantity(itemID string, quantity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[itemID]
	if !ok {
		return fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	return nil
}

// FindByProduct returns every sale referencing the product, items populated.
// Zero matches is an empty slice, not an error.
func (l *LocalStorage) FindByProduct(productID string) ([]*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := map[string]bool{}
	sales := make([]*Sale, 0)
	for _, item := range l.items {
		if item.ProductID != productID || seen[item.SaleID] {
			continue
		}
		seen[item.SaleID] = true
		s, err := l.getSaleLocked(item.SaleID)
		if err != nil {
			continue
		}
		sales = append(sales, s)
	}
	sortNewestFirst(sales)
	return sales, nil
}

// FindByStatus returns every sale in the given status, items populated.
func (l *LocalStorage) FindByStatus(status Status) ([]*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sales := make([]*Sale, 0)
	for id, s := range l.sales {
		if s.Status != status {
			continue
		}
		cp, err := l.getSaleLocked(id)
		if err != nil {
			continue
		}
		sales = append(sales, cp)
	}
	sortNewestFirst(sales)
	return sales, nil
}

func sortNewestFirst(sales []*Sale) {
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].CreatedAt.Equal(sales[j].CreatedAt) {
			return sales[i].ID > sales[j].ID
		}
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
}

func (l *LocalStorage) GetItemByID(itemID string) (*SaleItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	cp := *item
	return &cp, nil
}

func (l *LocalStorage) GetItemsBySale(saleID string) ([]*SaleItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sales[saleID]; !ok {
		return nil, fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
	}
	return l.itemsLocked(saleID), nil
}
