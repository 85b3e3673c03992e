package models

import (
	"time"
)

// OrderStatus is the status of one station's portion of an order, and
// of the order as a whole. Completed and Voided are overall-only
// terminal states; stations only ever move between the first three.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusInProgress OrderStatus = "In Progress"
	OrderStatusReady      OrderStatus = "Ready"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusVoided     OrderStatus = "Voided"
)

// IsTerminal reports whether s is an overall-only terminal state. Once
// an order reaches a terminal state no station update may revert it.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusVoided
}

// OrderType distinguishes dine-in from take-away orders.
type OrderType string

const (
	OrderTypeServeHere OrderType = "Serve Here"
	OrderTypeTakeAway  OrderType = "Take Away"
)

// IsValid reports whether t is a known order type.
func (t OrderType) IsValid() bool {
	return t == OrderTypeServeHere || t == OrderTypeTakeAway
}

// PaymentMethod is how a completed order was paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "Cash"
	PaymentCard     PaymentMethod = "Card"
	PaymentTelebirr PaymentMethod = "Telebirr"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTelebirr:
		return true
	}
	return false
}

// Order is the aggregate root for one guest order. Its station-status
// rows are the unit of concurrency control: every mutation of them is
// a single targeted UPDATE, never a whole-aggregate rewrite.
type Order struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	OrderNumber int    `gorm:"unique_index;not null" json:"orderNumber"`
	WaitressID  string `gorm:"index;not null" json:"waitressId"`
	Waitress    *User  `json:"waitress,omitempty"`

	Items       []OrderedItem `gorm:"foreignkey:OrderID" json:"items"`
	TotalPrice  float64       `gorm:"not null" json:"totalPrice"`
	OrderType   OrderType     `json:"orderType"`
	TableNumber string        `json:"tableNumber,omitempty"`

	StationStatuses []StationStatus `gorm:"foreignkey:OrderID" json:"stationStatuses"`
	OverallStatus   OrderStatus     `gorm:"index" json:"overallStatus"`

	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	IsPaid        bool          `json:"isPaid"`
}

// Stations returns the distinct stations referenced by the order.
func (o *Order) Stations() []PreparationStation {
	stations := make([]PreparationStation, 0, len(o.StationStatuses))
	for _, ss := range o.StationStatuses {
		stations = append(stations, ss.Station)
	}
	return stations
}

// OrderedItem is one line of an order. Name and price are snapshots
// taken at creation time: historical orders never change when the menu
// is edited or an item is deleted.
type OrderedItem struct {
	ID      uint `gorm:"primary_key" json:"id"`
	OrderID uint `gorm:"index;not null" json:"orderId"`

	MenuItemID          uint               `gorm:"not null" json:"menuItemId"`
	NameSnapshot        string             `gorm:"not null" json:"nameSnapshot"`
	VariantName         string             `json:"variantName,omitempty"`
	UnitPrice           float64            `gorm:"not null" json:"unitPrice"`
	Quantity            int                `gorm:"not null" json:"quantity"`
	SelectedAddOns      []SelectedAddOn    `gorm:"foreignkey:OrderedItemID" json:"selectedAddOns"`
	SpecialInstructions string             `json:"specialInstructions,omitempty"`
	Station             PreparationStation `gorm:"not null" json:"station"`
}

// SelectedAddOn is a snapshotted add-on choice on an ordered item.
type SelectedAddOn struct {
	ID            uint `gorm:"primary_key" json:"id"`
	OrderedItemID uint `gorm:"index;not null" json:"orderedItemId"`

	AddOnID      uint    `gorm:"not null" json:"addOnId"`
	NameSnapshot string  `gorm:"not null" json:"nameSnapshot"`
	Price        float64 `gorm:"not null" json:"price"`
}

// StationStatus is one station's progress on one order. Exactly one
// row exists per station touched by the order's items, and only that
// station's actions mutate it.
type StationStatus struct {
	ID      uint               `gorm:"primary_key" json:"id"`
	OrderID uint               `gorm:"unique_index:idx_order_station;not null" json:"orderId"`
	Station PreparationStation `gorm:"unique_index:idx_order_station;not null" json:"station"`
	Status  OrderStatus        `gorm:"not null" json:"status"`
}
