package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/optotask/backend/internal/models"
)

// PatientStore is the record store. Every query is scoped by user_id so a row owned by
// a different user behaves exactly like a missing row; the ownership check lives in the
// queries themselves, not in an outer gate.
type PatientStore struct {
	DB *gorm.DB
}

func NewPatientStore(db *gorm.DB) *PatientStore { return &PatientStore{DB: db} }

// NewPatient carries the fields a caller may set at creation time.
type NewPatient struct {
	Idx       int
	Initial   string
	Fields    bool
	Pressures bool
	Scans     bool
	Referral  bool
	Notes     *string
}

// PatientPatch is a partial update: a nil member means "leave unchanged". An absent
// JSON field decodes to nil, so omitted fields never touch the row.
type PatientPatch struct {
	Initial          *string    `json:"initial"`
	Fields           *bool      `json:"fields"`
	FieldsResult     *string    `json:"fields_result"`
	Pressures        *bool      `json:"pressures"`
	PressuresResult  *string    `json:"pressures_result"`
	Scans            *bool      `json:"scans"`
	ScansResult      *string    `json:"scans_result"`
	Referral         *bool      `json:"referral"`
	ReferralReason   *string    `json:"referral_reason"`
	ReferralSent     *bool      `json:"referral_sent"`
	ReferralSentDate *time.Time `json:"referral_sent_date"`
	TicketStatus     *string    `json:"ticket_status"`
	Completed        *bool      `json:"completed"`
	ReviewDate       *time.Time `json:"review_date"`
	ClosedDate       *time.Time `json:"closed_date"`
	Notes            *string    `json:"notes"`
}

// Create inserts a row for ownerID with the standard lifecycle defaults. The duplicate
// check covers archived rows too: an idx archived under the same user stays taken.
func (s *PatientStore) Create(ownerID uint, in NewPatient) (*models.Patient, error) {
	var count int64
	if err := s.DB.Model(&models.Patient{}).
		Where("user_id = ? AND idx = ?", ownerID, in.Idx).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrConflict
	}
	p := models.Patient{
		Idx:          in.Idx,
		UserID:       ownerID,
		Initial:      in.Initial,
		Fields:       in.Fields,
		Pressures:    in.Pressures,
		Scans:        in.Scans,
		Referral:     in.Referral,
		Notes:        in.Notes,
		TicketStatus: models.TicketOpen,
	}
	if err := s.DB.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns a non-archived row owned by ownerID.
func (s *PatientStore) Get(ownerID uint, idx int) (*models.Patient, error) {
	return s.one(ownerID, idx, false)
}

// GetArchived returns an archived row owned by ownerID.
func (s *PatientStore) GetArchived(ownerID uint, idx int) (*models.Patient, error) {
	return s.one(ownerID, idx, true)
}

func (s *PatientStore) one(ownerID uint, idx int, archived bool) (*models.Patient, error) {
	var p models.Patient
	err := s.DB.
		Where("user_id = ? AND idx = ? AND archived = ?", ownerID, idx, archived).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActive returns all non-archived rows for ownerID in insertion order.
func (s *PatientStore) ListActive(ownerID uint) ([]models.Patient, error) {
	return s.list(s.DB.Where("user_id = ? AND archived = ?", ownerID, false))
}

// ListArchived returns all archived rows for ownerID.
func (s *PatientStore) ListArchived(ownerID uint) ([]models.Patient, error) {
	return s.list(s.DB.Where("user_id = ? AND archived = ?", ownerID, true))
}

// ListOpenTickets returns the non-archived rows whose ticket is still open.
func (s *PatientStore) ListOpenTickets(ownerID uint) ([]models.Patient, error) {
	return s.list(s.DB.Where("user_id = ? AND archived = ? AND ticket_status = ?",
		ownerID, false, models.TicketOpen))
}

func (s *PatientStore) list(q *gorm.DB) ([]models.Patient, error) {
	ps := make([]models.Patient, 0)
	if err := q.Order("id").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// Update merges the non-nil patch fields into the row, archived or not, and returns the
// result. An empty patch is a valid no-op. ticket_status is not validated on purpose.
func (s *PatientStore) Update(ownerID uint, idx int, patch PatientPatch) (*models.Patient, error) {
	var p models.Patient
	err := s.DB.Where("user_id = ? AND idx = ?", ownerID, idx).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if patch.Initial != nil {
		p.Initial = *patch.Initial
	}
	if patch.Fields != nil {
		p.Fields = *patch.Fields
	}
	if patch.FieldsResult != nil {
		p.FieldsResult = patch.FieldsResult
	}
	if patch.Pressures != nil {
		p.Pressures = *patch.Pressures
	}
	if patch.PressuresResult != nil {
		p.PressuresResult = patch.PressuresResult
	}
	if patch.Scans != nil {
		p.Scans = *patch.Scans
	}
	if patch.ScansResult != nil {
		p.ScansResult = patch.ScansResult
	}
	if patch.Referral != nil {
		p.Referral = *patch.Referral
	}
	if patch.ReferralReason != nil {
		p.ReferralReason = patch.ReferralReason
	}
	if patch.ReferralSent != nil {
		p.ReferralSent = *patch.ReferralSent
	}
	if patch.ReferralSentDate != nil {
		p.ReferralSentDate = patch.ReferralSentDate
	}
	if patch.TicketStatus != nil {
		p.TicketStatus = *patch.TicketStatus
	}
	if patch.Completed != nil {
		p.Completed = *patch.Completed
	}
	if patch.ReviewDate != nil {
		p.ReviewDate = patch.ReviewDate
	}
	if patch.ClosedDate != nil {
		p.ClosedDate = patch.ClosedDate
	}
	if patch.Notes != nil {
		p.Notes = patch.Notes
	}
	if err := s.DB.Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Archive soft-deletes a row. Archiving an already-archived row succeeds silently.
func (s *PatientStore) Archive(ownerID uint, idx int) error {
	res := s.DB.Model(&models.Patient{}).
		Where("user_id = ? AND idx = ?", ownerID, idx).
		Update("archived", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
