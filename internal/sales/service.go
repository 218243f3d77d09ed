package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger is the fire-and-forget log sink the service writes to. Calls must
// never block on I/O.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Service is the sale lifecycle engine. It is the single place status
// transitions are legal; sales and items are mutated only through it.
type Service struct {
	storage Storage
	log     Logger
}

// NewService creates a new Service on top of the given storage collaborator.
func NewService(storage Storage, log Logger) *Service {
	return &Service{
		storage: storage,
		log:     log,
	}
}

// newID returns a time-sortable unique token.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// wrapStorage keeps taxonomy errors from the storage layer intact and folds
// everything else into ErrInternal.
func wrapStorage(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

// CreateSale creates a sale in the Started state for the given client. An
// optional initial item batch is persisted best-effort: items are inserted
// one by one and the first failure is surfaced with everything already
// written left in place. The status advances to Progress only once the whole
// batch succeeded.
func (s *Service) CreateSale(clientID string, items []*SaleItem) (*Sale, error) {
	if err := runRules(notEmpty("clientId", clientID)); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := runRules(notEmpty("productId", item.ProductID), positiveQuantity(item.Quantity)); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	sale := &Sale{
		ID:        newID(),
		ClientID:  clientID,
		Status:    StatusStarted,
		Items:     []*SaleItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreateSale(sale); err != nil {
		s.log.Errorf("failed to create sale for client %s: %v", clientID, err)
		return nil, wrapStorage("create sale", err)
	}
	s.log.Infof("sale %s created for client %s", sale.ID, clientID)

	for i, item := range items {
		stored := &SaleItem{
			ID:        newID(),
			SaleID:    sale.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := s.storage.AddItem(stored); err != nil {
			s.log.Errorf("sale %s: item %d/%d (%s) failed: %v", sale.ID, i+1, len(items), item.ProductID, err)
			return nil, wrapStorage("add initial item", err)
		}
		sale.Items = append(sale.Items, stored)
	}
	if len(sale.Items) > 0 {
		if err := s.storage.SetStatus(sale.ID, StatusProgress); err != nil {
			return nil, wrapStorage("set status", err)
		}
		sale.Status = StatusProgress
	}
	return sale, nil
}

// AddItem appends a product line to a sale. The sale's current status is
// re-validated before the insert; a Started sale transitions to Progress.
func (s *Service) AddItem(saleID, productID string, quantity int) (*SaleItem, error) {
	if err := runRules(
		notEmpty("saleId", saleID),
		notEmpty("productId", productID),
		positiveQuantity(quantity),
	); err != nil {
		return nil, err
	}

	sale, err := s.storage.GetSaleByID(saleID)
	if err != nil {
		return nil, wrapStorage("get sale", err)
	}
	if err := runRules(mutableStatus(sale)); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &SaleItem{
		ID:        newID(),
		SaleID:    saleID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.AddItem(item); err != nil {
		s.log.Errorf("failed to add item to sale %s: %v", saleID, err)
		return nil, wrapStorage("add item", err)
	}

	if sale.Status == StatusStarted {
		if err := s.storage.SetStatus(saleID, StatusProgress); err != nil {
			return nil, wrapStorage("set status", err)
		}
	}

	s.log.Infof("item added to sale %s | product %s | quantity %d", saleID, productID, quantity)
	return item, nil
}

// UpdateItemQuantity changes the quantity of an existing item. The owning
// sale must still be mutable; the sale status is never changed here.
func (s *Service) UpdateItemQuantity(itemID string, quantity int) error {
	if err := runRules(notEmpty("itemId", itemID), positiveQuantity(quantity)); err != nil {
		return err
	}

	item, err := s.storage.GetItemByID(itemID)
	if err != nil {
		return wrapStorage("get item", err)
	}
	sale, err := s.storage.GetSaleByID(item.SaleID)
	if err != nil {
		return wrapStorage("get sale", err)
	}
	if err := runRules(mutableStatus(sale)); err != nil {
		return err
	}

	if err := s.storage.SetItemQuantity(itemID, quantity); err != nil {
		s.log.Errorf("failed to update item %s: %v", itemID, err)
		return wrapStorage("set item quantity", err)
	}
	s.log.Infof("item %s quantity changed to %d", itemID, quantity)
	return nil
}

// CancelSale transitions a sale to Canceled. Canceling an already-canceled
// sale is a logged no-op that leaves the sale untouched, updatedAt included.
func (s *Service) CancelSale(saleID string) error {
	if err := runRules(notEmpty("saleId", saleID)); err != nil {
		return err
	}

	sale, err := s.storage.GetSaleByID(saleID)
	if err != nil {
		return wrapStorage("get sale", err)
	}
	if sale.Status == StatusCanceled {
		s.log.Warnf("cancel ignored, sale %s already canceled", saleID)
		return nil
	}

	if err := s.storage.SetStatus(saleID, StatusCanceled); err != nil {
		s.log.Errorf("failed to cancel sale %s: %v", saleID, err)
		return wrapStorage("set status", err)
	}
	s.log.Infof("sale %s canceled", saleID)
	return nil
}

// GetSaleByID returns the sale with its items populated.
func (s *Service) GetSaleByID(saleID string) (*Sale, error) {
	if err := runRules(notEmpty("saleId", saleID)); err != nil {
		return nil, err
	}
	sale, err := s.storage.GetSaleByID(saleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Warnf("no sale found for id %s", saleID)
		}
		return nil, wrapStorage("get sale", err)
	}
	return sale, nil
}

// GetSalesByProduct returns every sale referencing the product. Zero matches
// yields an empty slice, not an error.
func (s *Service) GetSalesByProduct(productID string) ([]*Sale, error) {
	if err := runRules(notEmpty("productId", productID)); err != nil {
		return nil, err
	}
	sales, err := s.storage.FindByProduct(productID)
	if err != nil {
		s.log.Errorf("failed to query sales for product %s: %v", productID, err)
		return nil, wrapStorage("find by product", err)
	}
	s.log.Infof("%d sales found for product %s", len(sales), productID)
	return sales, nil
}

// GetSalesByStatus returns every sale in the given status. Zero matches
// yields an empty slice, not an error.
func (s *Service) GetSalesByStatus(status Status) ([]*Sale, error) {
	sales, err := s.storage.FindByStatus(status)
	if err != nil {
		s.log.Errorf("failed to query sales with status %s: %v", status, err)
		return nil, wrapStorage("find by status", err)
	}
	s.log.Infof("%d sales found with status %s", len(sales), status)
	return sales, nil
}
