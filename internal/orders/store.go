package orders

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"

	"mesob/internal/models"
)

// Store is the persistence contract the order service depends on. Any
// store offering an atomic keyed counter, a targeted single-row status
// update and a fresh re-read for aggregation satisfies it.
type Store interface {
	NextOrderNumber() (int, error)
	CreateOrder(o *models.Order) error
	GetOrder(id uint) (*models.Order, error)

	// SetStationStatus rewrites exactly one station's row in one
	// round trip; sibling stations are never touched.
	SetStationStatus(orderID uint, station models.PreparationStation, to models.OrderStatus) error
	// CasStationStatus is SetStationStatus conditional on the current
	// value, for policies that must not race a concurrent writer.
	CasStationStatus(orderID uint, station models.PreparationStation, from, to models.OrderStatus) error
	// SetOverallStatus writes the derived overall status unless the
	// order has already reached a terminal state.
	SetOverallStatus(orderID uint, to models.OrderStatus) error
	// FinalizeOrder moves a non-terminal order to a terminal state in
	// one conditional write; ok is false when no row matched.
	FinalizeOrder(orderID uint, to models.OrderStatus, method models.PaymentMethod, paid bool) (ok bool, err error)

	StationQueue(station models.PreparationStation) ([]models.Order, error)
	ActiveOrdersFor(waitressID string) ([]models.Order, error)
	DeleteByOverallStatus(statuses []models.OrderStatus) (int64, error)

	GetMenuItem(id uint) (*models.MenuItem, error)
	GetAddOn(id uint) (*models.AddOn, error)
}

var terminalStatuses = []string{
	string(models.OrderStatusCompleted),
	string(models.OrderStatusVoided),
}

var activeStationStatuses = []string{
	string(models.OrderStatusPending),
	string(models.OrderStatusInProgress),
}

// GormStore implements Store on the gorm/SQLite connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps the given connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// NextOrderNumber issues the next order number from the shared counter.
func (s *GormStore) NextOrderNumber() (int, error) {
	return models.NextSequence(s.db, "orderNumber")
}

// CreateOrder persists the aggregate with its items, add-on snapshots
// and station rows.
func (s *GormStore) CreateOrder(o *models.Order) error {
	if err := s.db.Create(o).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &ConflictError{Msg: fmt.Sprintf("order number %d already taken", o.OrderNumber)}
		}
		return err
	}
	return nil
}

func orderPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Waitress").
		Preload("Items").
		Preload("Items.SelectedAddOns").
		Preload("StationStatuses")
}

// GetOrder fetches the full aggregate, waitress included.
func (s *GormStore) GetOrder(id uint) (*models.Order, error) {
	var order models.Order
	err := orderPreloads(s.db).Where("id = ?", id).First(&order).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, &NotFoundError{Msg: fmt.Sprintf("order %d not found", id)}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *GormStore) SetStationStatus(orderID uint, station models.PreparationStation, to models.OrderStatus) error {
	res := s.db.Model(&models.StationStatus{}).
		Where("order_id = ? AND station = ?", orderID, station).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Msg: fmt.Sprintf("order %d has no %s portion", orderID, station)}
	}
	return nil
}

func (s *GormStore) CasStationStatus(orderID uint, station models.PreparationStation, from, to models.OrderStatus) error {
	res := s.db.Model(&models.StationStatus{}).
		Where("order_id = ? AND station = ? AND status = ?", orderID, station, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a vanished target from a lost race.
		var count int64
		if err := s.db.Model(&models.StationStatus{}).
			Where("order_id = ? AND station = ?", orderID, station).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &NotFoundError{Msg: fmt.Sprintf("order %d has no %s portion", orderID, station)}
		}
		return &ConflictError{Msg: fmt.Sprintf("station %s of order %d changed concurrently", station, orderID)}
	}
	return nil
}

func (s *GormStore) SetOverallStatus(orderID uint, to models.OrderStatus) error {
	return s.db.Model(&models.Order{}).
		Where("id = ? AND overall_status NOT IN (?)", orderID, terminalStatuses).
		Update("overall_status", to).Error
}

func (s *GormStore) FinalizeOrder(orderID uint, to models.OrderStatus, method models.PaymentMethod, paid bool) (bool, error) {
	updates := map[string]interface{}{"overall_status": to}
	if paid {
		updates["payment_method"] = method
		updates["is_paid"] = true
	}
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND overall_status NOT IN (?)", orderID, terminalStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// StationQueue returns the orders whose portion at the given station is
// still Pending or In Progress, oldest first.
func (s *GormStore) StationQueue(station models.PreparationStation) ([]models.Order, error) {
	var list []models.Order
	err := orderPreloads(s.db).
		Joins("JOIN station_statuses ON station_statuses.order_id = orders.id").
		Where("station_statuses.station = ? AND station_statuses.status IN (?)", station, activeStationStatuses).
		Order("orders.created_at ASC").
		Find(&list).Error
	return list, err
}

// ActiveOrdersFor returns the waitress's Pending, In Progress and
// Ready orders, newest first.
func (s *GormStore) ActiveOrdersFor(waitressID string) ([]models.Order, error) {
	active := []string{
		string(models.OrderStatusPending),
		string(models.OrderStatusInProgress),
		string(models.OrderStatusReady),
	}
	var list []models.Order
	err := orderPreloads(s.db).
		Where("waitress_id = ? AND overall_status IN (?)", waitressID, active).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// DeleteByOverallStatus removes every order whose overall status is in
// the given set, cascading to items, add-on snapshots and station rows.
func (s *GormStore) DeleteByOverallStatus(statuses []models.OrderStatus) (int64, error) {
	set := make([]string, len(statuses))
	for i, st := range statuses {
		set[i] = string(st)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}

	var count int64
	if err := tx.Model(&models.Order{}).Where("overall_status IN (?)", set).Count(&count).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if count == 0 {
		tx.Rollback()
		return 0, nil
	}

	statements := []string{
		`DELETE FROM selected_add_ons WHERE ordered_item_id IN
		   (SELECT id FROM ordered_items WHERE order_id IN
		     (SELECT id FROM orders WHERE overall_status IN (?)))`,
		`DELETE FROM ordered_items WHERE order_id IN
		   (SELECT id FROM orders WHERE overall_status IN (?))`,
		`DELETE FROM station_statuses WHERE order_id IN
		   (SELECT id FROM orders WHERE overall_status IN (?))`,
		`DELETE FROM orders WHERE overall_status IN (?)`,
	}
	for _, stmt := range statements {
		if err := tx.Exec(stmt, set).Error; err != nil {
			tx.Rollback()
			return 0, err
		}
	}
	return count, tx.Commit().Error
}

// GetMenuItem fetches a menu item with its category, variants and
// permitted add-ons, as needed for snapshotting an order line.
func (s *GormStore) GetMenuItem(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.
		Preload("Category").
		Preload("Variants").
		Preload("AvailableAddOns").
		Where("id = ?", id).First(&item).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, &NotFoundError{Msg: fmt.Sprintf("menu item %d not found", id)}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GormStore) GetAddOn(id uint) (*models.AddOn, error) {
	var addOn models.AddOn
	err := s.db.Where("id = ?", id).First(&addOn).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, &NotFoundError{Msg: fmt.Sprintf("add-on %d not found", id)}
	}
	if err != nil {
		return nil, err
	}
	return &addOn, nil
}
