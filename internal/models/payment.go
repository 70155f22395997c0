package models

import "time"

type PlanType string

const (
	PlanBasic    PlanType = "basic"
	PlanDetailed PlanType = "detailed"
	PlanPremium  PlanType = "premium"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	UserID          uint          `gorm:"not null;index" json:"user_id"`
	StripePaymentID string        `gorm:"size:255;uniqueIndex;not null" json:"stripe_payment_id"`
	Amount          int64         `gorm:"not null" json:"amount"` // cents
	Currency        string        `gorm:"size:8;not null;default:usd" json:"currency"`
	Status          PaymentStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	PlanType        PlanType      `gorm:"size:20;not null" json:"plan_type"`
	BookTitle       string        `gorm:"size:255;not null" json:"book_title"`
	BookAuthor      string        `gorm:"size:255;not null" json:"book_author"`
	PDFSent         bool          `gorm:"not null;default:false" json:"pdf_sent"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Audited

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Payment) TableName() string { return "payments" }

func (Payment) EntityType() string { return "Payment" }

func (p *Payment) PrimaryID() uint { return p.ID }

// AmountDollars converts the stored cent amount for display.
func (p *Payment) AmountDollars() float64 { return float64(p.Amount) / 100 }
