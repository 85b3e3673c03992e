package orders

import (
	"fmt"

	"mesob/internal/logger"
	"mesob/internal/models"
	"mesob/internal/monitoring"
)

// Live event names pushed to topic subscribers.
const (
	EventNewOrder     = "new_order"
	EventStatusUpdate = "status_update"
	EventReset        = "reset"
)

// Broadcaster fans an event out to the union of subscribers of the
// given topics, at most once per connection, best effort.
type Broadcaster interface {
	Publish(topics []string, event string, payload interface{})
}

// WaitressTopic is the personal topic of the order's owning waitress.
func WaitressTopic(waitressID string) string { return waitressID }

// StationTopic is the broadcast topic of a preparation station.
func StationTopic(s models.PreparationStation) string { return string(s) }

// Service owns the order lifecycle: creation with snapshotting and
// numbering, per-station status transitions with overall aggregation,
// terminal payment/void transitions, queue reads and the bulk reset.
type Service struct {
	store     Store
	broadcast Broadcaster
	policy    StatusPolicy
	monitor   *monitoring.Monitor
	log       *logger.Logger
}

// NewService wires the service to its collaborators. The broadcaster
// is passed by handle, never looked up from global state.
func NewService(store Store, b Broadcaster, policy StatusPolicy, mon *monitoring.Monitor, log *logger.Logger) *Service {
	return &Service{store: store, broadcast: b, policy: policy, monitor: mon, log: log}
}

// Policy returns the configured station-transition policy.
func (s *Service) Policy() StatusPolicy { return s.policy }

// CreateOrderItem is one requested line of a new order, referencing
// menu data by ID; all snapshots are resolved server-side.
type CreateOrderItem struct {
	MenuItemID          uint   `json:"menuItemId"`
	Quantity            int    `json:"quantity"`
	VariantName         string `json:"variantName"`
	AddOnIDs            []uint `json:"addOnIds"`
	SpecialInstructions string `json:"specialInstructions"`
}

// CreateOrderInput is the payload of a waitress's order submission.
type CreateOrderInput struct {
	Items       []CreateOrderItem `json:"items"`
	OrderType   models.OrderType  `json:"orderType"`
	TableNumber string            `json:"tableNumber"`
	TotalPrice  float64           `json:"totalPrice"`
}

// CreateOrder issues an order number, snapshots the requested items,
// seeds one Pending entry per involved station and persists the
// aggregate. Each newly involved station topic receives a new_order
// event. No order is created when the sequence generator fails.
func (s *Service) CreateOrder(waitressID string, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, &ValidationError{Msg: "an order needs at least one item"}
	}
	if in.OrderType == "" {
		in.OrderType = models.OrderTypeServeHere
	}
	if !in.OrderType.IsValid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown order type %q", in.OrderType)}
	}

	items := make([]models.OrderedItem, 0, len(in.Items))
	var computedTotal float64
	stationSeen := make(map[models.PreparationStation]bool)
	var stations []models.PreparationStation

	for _, req := range in.Items {
		if req.Quantity <= 0 {
			return nil, &ValidationError{Msg: "item quantity must be positive"}
		}
		menuItem, err := s.store.GetMenuItem(req.MenuItemID)
		if err != nil {
			return nil, err
		}
		if !menuItem.IsAvailable {
			return nil, &ValidationError{Msg: fmt.Sprintf("%s is not available right now", menuItem.Name.EN)}
		}
		if menuItem.Category == nil {
			return nil, &ValidationError{Msg: fmt.Sprintf("%s has no category, cannot route it", menuItem.Name.EN)}
		}
		unitPrice, err := menuItem.PriceFor(req.VariantName)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}

		item := models.OrderedItem{
			MenuItemID:          menuItem.ID,
			NameSnapshot:        menuItem.Name.EN,
			VariantName:         req.VariantName,
			UnitPrice:           unitPrice,
			Quantity:            req.Quantity,
			SpecialInstructions: req.SpecialInstructions,
			Station:             menuItem.Category.Station,
		}
		lineTotal := unitPrice * float64(req.Quantity)
		for _, addOnID := range req.AddOnIDs {
			if !menuItem.HasAddOn(addOnID) {
				return nil, &ValidationError{Msg: fmt.Sprintf(
					"add-on %d is not offered with %s", addOnID, menuItem.Name.EN)}
			}
			addOn, err := s.store.GetAddOn(addOnID)
			if err != nil {
				return nil, err
			}
			item.SelectedAddOns = append(item.SelectedAddOns, models.SelectedAddOn{
				AddOnID:      addOn.ID,
				NameSnapshot: addOn.Name.EN,
				Price:        addOn.Price,
			})
			lineTotal += addOn.Price * float64(req.Quantity)
		}
		computedTotal += lineTotal

		if !stationSeen[item.Station] {
			stationSeen[item.Station] = true
			stations = append(stations, item.Station)
		}
		items = append(items, item)
	}

	totalPrice := in.TotalPrice
	if totalPrice <= 0 {
		totalPrice = computedTotal
	}

	orderNumber, err := s.store.NextOrderNumber()
	if err != nil {
		return nil, fmt.Errorf("issue order number: %w", err)
	}

	statuses := make([]models.StationStatus, len(stations))
	for i, station := range stations {
		statuses[i] = models.StationStatus{Station: station, Status: models.OrderStatusPending}
	}

	order := &models.Order{
		OrderNumber:     orderNumber,
		WaitressID:      waitressID,
		Items:           items,
		TotalPrice:      totalPrice,
		OrderType:       in.OrderType,
		TableNumber:     in.TableNumber,
		StationStatuses: statuses,
		OverallStatus:   models.OrderStatusPending,
	}
	if err := s.store.CreateOrder(order); err != nil {
		return nil, err
	}

	created, err := s.store.GetOrder(order.ID)
	if err != nil {
		return nil, err
	}

	s.monitor.OrdersCreated.Inc()
	s.log.LogOrder("CREATE", created.OrderNumber, fmt.Sprintf(
		"%d items across %d stations", len(created.Items), len(stations)))

	for _, station := range stations {
		s.publish([]string{StationTopic(station)}, EventNewOrder, created)
	}
	return created, nil
}

// UpdateStationStatus applies one station's transition, recomputes the
// overall status from a fresh post-commit read and fans the updated
// aggregate out to the waitress topic and every station topic the
// order touches.
func (s *Service) UpdateStationStatus(orderID uint, station models.PreparationStation, newStatus models.OrderStatus) (*models.Order, error) {
	if !station.IsValid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown station %q", station)}
	}
	if !ValidStationStatus(newStatus) {
		return nil, &ValidationError{Msg: fmt.Sprintf("%q is not a station status", newStatus)}
	}

	order, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.OverallStatus.IsTerminal() {
		return nil, &ValidationError{Msg: fmt.Sprintf(
			"order #%d is already %s", order.OrderNumber, order.OverallStatus)}
	}

	var current *models.StationStatus
	for i := range order.StationStatuses {
		if order.StationStatuses[i].Station == station {
			current = &order.StationStatuses[i]
			break
		}
	}
	if current == nil {
		return nil, &NotFoundError{Msg: fmt.Sprintf(
			"order #%d has no %s portion", order.OrderNumber, station)}
	}
	if err := s.policy.Allow(current.Status, newStatus); err != nil {
		return nil, err
	}

	if s.policy == PolicyForwardOnly {
		err = s.store.CasStationStatus(orderID, station, current.Status, newStatus)
	} else {
		err = s.store.SetStationStatus(orderID, station, newStatus)
	}
	if err != nil {
		return nil, err
	}

	// Aggregation must see the committed station rows, never the
	// pre-mutation snapshot this request started from.
	fresh, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	overall := AggregateStatus(fresh.StationStatuses)
	if !fresh.OverallStatus.IsTerminal() && overall != fresh.OverallStatus {
		if err := s.store.SetOverallStatus(orderID, overall); err != nil {
			return nil, err
		}
		fresh.OverallStatus = overall
	}

	s.monitor.StatusUpdates.WithLabelValues(string(station)).Inc()
	s.log.LogOrder("STATUS", fresh.OrderNumber, fmt.Sprintf(
		"%s -> %s (overall %s)", station, newStatus, fresh.OverallStatus))

	s.publish(s.statusTopics(fresh), EventStatusUpdate, fresh)
	return fresh, nil
}

// Complete marks the order paid with the given method. Repeating the
// call against an already completed order is a no-op success, so a
// retried payment confirmation is never mistaken for a failure.
func (s *Service) Complete(orderID uint, method models.PaymentMethod) (*models.Order, error) {
	if !method.IsValid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown payment method %q", method)}
	}
	return s.finalize(orderID, models.OrderStatusCompleted, method, true)
}

// Void cancels the order. Like Complete it is terminal and idempotent.
func (s *Service) Void(orderID uint) (*models.Order, error) {
	return s.finalize(orderID, models.OrderStatusVoided, "", false)
}

func (s *Service) finalize(orderID uint, terminal models.OrderStatus, method models.PaymentMethod, paid bool) (*models.Order, error) {
	order, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.OverallStatus == terminal {
		return order, nil // idempotent repeat
	}
	if order.OverallStatus.IsTerminal() {
		return nil, &ValidationError{Msg: fmt.Sprintf(
			"order #%d is already %s", order.OrderNumber, order.OverallStatus)}
	}

	ok, err := s.store.FinalizeOrder(orderID, terminal, method, paid)
	if err != nil {
		return nil, err
	}
	fresh, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race to another terminal transition.
		if fresh.OverallStatus == terminal {
			return fresh, nil
		}
		return nil, &ValidationError{Msg: fmt.Sprintf(
			"order #%d is already %s", fresh.OrderNumber, fresh.OverallStatus)}
	}

	if terminal == models.OrderStatusCompleted {
		s.monitor.OrdersCompleted.Inc()
		s.log.LogOrder("COMPLETE", fresh.OrderNumber, fmt.Sprintf("paid by %s", method))
	} else {
		s.monitor.OrdersVoided.Inc()
		s.log.LogOrder("VOID", fresh.OrderNumber, "order voided")
	}

	s.publish(s.statusTopics(fresh), EventStatusUpdate, fresh)
	return fresh, nil
}

// StationQueue lists the orders a station display should show, oldest
// first.
func (s *Service) StationQueue(station models.PreparationStation) ([]models.Order, error) {
	if !station.IsValid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown station %q", station)}
	}
	return s.store.StationQueue(station)
}

// MyActiveOrders lists the waitress's live orders, newest first.
func (s *Service) MyActiveOrders(waitressID string) ([]models.Order, error) {
	return s.store.ActiveOrdersFor(waitressID)
}

// ResetStationQueues bulk-deletes every Pending and In Progress order
// and signals each station topic exactly once so displays clear even
// for orders removed between poll cycles.
func (s *Service) ResetStationQueues() (int64, error) {
	count, err := s.store.DeleteByOverallStatus([]models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusInProgress,
	})
	if err != nil {
		return 0, err
	}

	s.monitor.KdsResets.Inc()
	s.log.Info("ORDER", fmt.Sprintf("KDS reset removed %d active orders", count))

	for _, station := range models.AllStations {
		s.publish([]string{StationTopic(station)}, EventReset, nil)
	}
	return count, nil
}

// PurgeCompleted removes completed orders after a sales-analytics
// reset.
func (s *Service) PurgeCompleted() (int64, error) {
	return s.store.DeleteByOverallStatus([]models.OrderStatus{models.OrderStatusCompleted})
}

// statusTopics derives the fan-out set for a status change: the owning
// waitress plus every station the order ever touched, so stations can
// coordinate hand-off on whole-order readiness.
func (s *Service) statusTopics(order *models.Order) []string {
	topics := []string{WaitressTopic(order.WaitressID)}
	for _, station := range order.Stations() {
		topics = append(topics, StationTopic(station))
	}
	return topics
}

func (s *Service) publish(topics []string, event string, payload interface{}) {
	if s.broadcast == nil {
		return
	}
	s.broadcast.Publish(topics, event, payload)
	s.monitor.EventsPublished.WithLabelValues(event).Inc()
}
