package store

import "time"

// PhoneNumber is a virtual number that can receive inbound SMS.
type PhoneNumber struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Country     string    `json:"country"`
	CountryCode string    `json:"countryCode"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Message is one inbound SMS as delivered by the carrier webhook. Rows are
// written once and never updated.
type Message struct {
	ID            string    `json:"id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Body          string    `json:"body"`
	TwilioSID     string    `json:"twilioSid,omitempty"`
	PhoneNumberID string    `json:"phoneNumberId"`
	ReceivedAt    time.Time `json:"receivedAt"`
}
