package domain

import "time"

// QuoteStatus is the lifecycle marker of a quote. Changes are driven by the
// user; there is no transition engine.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuotePending  QuoteStatus = "pending"
	QuoteSent     QuoteStatus = "sent"
	QuoteApproved QuoteStatus = "approved"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
	QuoteInvoiced QuoteStatus = "invoiced"
)

// Valid reports whether s is a known quote status.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteDraft, QuotePending, QuoteSent, QuoteApproved, QuoteAccepted, QuoteRejected, QuoteInvoiced:
		return true
	}
	return false
}

// Quote is a price quote issued by a user of a company to a client.
type Quote struct {
	ID              string      `json:"id"`
	QuoteNumber     string      `json:"quoteNumber"`
	ClientID        string      `json:"clientId,omitempty"`
	ClientName      string      `json:"clientName"`
	Description     string      `json:"description"`
	Amount          float64     `json:"amount"`
	Date            time.Time   `json:"date"`
	Status          QuoteStatus `json:"status"`
	UserID          string      `json:"userId"`
	CompanyID       string      `json:"companyId"`
	XeroQuoteID     string      `json:"xeroQuoteId,omitempty"`
	XeroQuoteNumber string      `json:"xeroQuoteNumber,omitempty"`
	XeroQuoteURL    string      `json:"xeroQuoteUrl,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
