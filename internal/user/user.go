package user

import "time"

type Address struct {
	AddressLine1 string `json:"addressLine1" validate:"notblank"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"notblank"`
	Postcode     string `json:"postcode" validate:"notblank"`
	Country      string `json:"country" validate:"notblank"`
}

// PaymentDetails are display-only card fields. Nothing here is ever sent to
// a payment processor.
type PaymentDetails struct {
	CardNumber  string `json:"cardNumber" validate:"omitempty,numeric,min=13,max=19"`
	ExpireMonth *int   `json:"expireMonth,omitempty" validate:"omitempty,min=1,max=12"`
	ExpireYear  *int   `json:"expireYear,omitempty" validate:"omitempty,expiry_year"`
	NameOnCard  string `json:"nameOnCard"`
}

type User struct {
	ID             string         `json:"_id"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email"`
	Password       string         `json:"-"`
	PhoneNumber    string         `json:"phoneNumber"`
	Address        Address        `json:"address"`
	PaymentDetails PaymentDetails `json:"paymentDetails"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Details are the profile fields a user edits directly.
type Details struct {
	FirstName   string `json:"firstName" validate:"notblank"`
	LastName    string `json:"lastName" validate:"notblank"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
}

type Registration struct {
	FirstName   string `json:"firstName" validate:"notblank"`
	LastName    string `json:"lastName" validate:"notblank"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
}
