package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
	StatusRefunded   Status = "Refunded"
)

// Statuses only move forward.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {StatusRefunded},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

type PaymentMethod string

const (
	MethodCard   PaymentMethod = "Card"
	MethodPayPal PaymentMethod = "PayPal"
)

// ParsePaymentMethod accepts a method tag case-insensitively. An empty tag
// means card.
func ParsePaymentMethod(tag string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", "card":
		return MethodCard, true
	case "paypal":
		return MethodPayPal, true
	}
	return "", false
}

// LineItem is a snapshot of a cart line taken at checkout. Later catalog
// changes never touch it.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
}

type Address struct {
	AddressLine1 string `json:"addressLine1" bson:"addressLine1" validate:"notblank"`
	AddressLine2 string `json:"addressLine2,omitempty" bson:"addressLine2"`
	City         string `json:"city" bson:"city" validate:"notblank"`
	Postcode     string `json:"postcode" bson:"postcode" validate:"notblank"`
	Country      string `json:"country" bson:"country" validate:"notblank"`
}

type DeliveryInfo struct {
	FirstName   string  `json:"firstName" bson:"firstName" validate:"notblank"`
	LastName    string  `json:"lastName" bson:"lastName" validate:"notblank"`
	PhoneNumber string  `json:"phoneNumber" bson:"phoneNumber" validate:"notblank"`
	Address     Address `json:"address" bson:"address"`
}

func (d DeliveryInfo) trimmed() DeliveryInfo {
	return DeliveryInfo{
		FirstName:   strings.TrimSpace(d.FirstName),
		LastName:    strings.TrimSpace(d.LastName),
		PhoneNumber: strings.TrimSpace(d.PhoneNumber),
		Address: Address{
			AddressLine1: strings.TrimSpace(d.Address.AddressLine1),
			AddressLine2: strings.TrimSpace(d.Address.AddressLine2),
			City:         strings.TrimSpace(d.Address.City),
			Postcode:     strings.TrimSpace(d.Address.Postcode),
			Country:      strings.TrimSpace(d.Address.Country),
		},
	}
}

type PaymentInfo struct {
	Method        PaymentMethod `json:"method" bson:"method"`
	Status        PaymentStatus `json:"status" bson:"status"`
	TransactionID string        `json:"transactionId,omitempty" bson:"transactionId"`
}

// Order represents a purchase made by a user.
type Order struct {
	ID           string          `json:"_id"`
	UserID       string          `json:"userId"`
	Items        []LineItem      `json:"items"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	DeliveryInfo DeliveryInfo    `json:"deliveryInfo"`
	PaymentInfo  PaymentInfo     `json:"paymentInfo"`
	Status       Status          `json:"status"`
	OrderDate    time.Time       `json:"orderDate"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
