package models

import "time"

// Patient is one screening checklist entry (a "task"): three test flags with optional
// result notes, a referral sub-record, and an open/closed ticket lifecycle.
//
// Idx is chosen by the caller and is only unique within the owning user's records, so
// the row keeps a surrogate primary key and a composite unique index on (UserID, Idx).
type Patient struct {
	ID     uint `gorm:"primaryKey" json:"-"`
	Idx    int  `gorm:"not null;index:idx_owner_patient,unique,priority:2" json:"idx"`
	UserID uint `gorm:"not null;index:idx_owner_patient,priority:1" json:"-"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Initial string `gorm:"not null" json:"initial"`

	Fields          bool    `gorm:"default:false" json:"fields"`
	FieldsResult    *string `json:"fields_result"`
	Pressures       bool    `gorm:"default:false" json:"pressures"`
	PressuresResult *string `json:"pressures_result"`
	Scans           bool    `gorm:"default:false" json:"scans"`
	ScansResult     *string `json:"scans_result"`

	Referral         bool       `gorm:"default:false" json:"referral"`
	ReferralReason   *string    `json:"referral_reason"`
	ReferralSent     bool       `gorm:"default:false" json:"referral_sent"`
	ReferralSentDate *time.Time `json:"referral_sent_date"`

	TicketStatus string     `gorm:"default:'open'" json:"ticket_status"`
	Completed    bool       `gorm:"default:false" json:"completed"`
	ReviewDate   *time.Time `json:"review_date"`
	ClosedDate   *time.Time `json:"closed_date"`

	Notes    *string `json:"notes"`
	Archived bool    `gorm:"default:false;index" json:"archived"`

	CreatedAt time.Time `json:"created_at"`
}

// TicketStatus values. Updates are not validated against these (loose by contract).
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)
