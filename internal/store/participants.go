package store

import (
	"errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nightpost/relay/internal/models"
)

// ErrNotFound is returned by lookups that name a participant who does not
// exist, either by identity key or by pseudonym.
var ErrNotFound = errors.New("participant not found")

// Participants is the identity store: one row per distinct sender.
type Participants struct {
	db *gorm.DB

	// numbering serializes count-then-assign so concurrent first-time
	// senders cannot read the same count. SQLite has no SELECT FOR UPDATE,
	// so the transaction alone is not enough there.
	numbering sync.Mutex
}

func NewParticipants(db *gorm.DB) *Participants {
	return &Participants{db: db}
}

// Upsert creates the participant if absent (untrusted, unbanned, zero
// reputation, no pseudonym) or overwrites the display metadata if present.
// Last write wins; no history is kept.
func (s *Participants) Upsert(id, displayName, handle string) error {
	p := models.Participant{
		ID:          id,
		DisplayName: displayName,
		Handle:      handle,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "handle", "updated_at"}),
	}).Create(&p).Error
}

// ByID fetches a participant by identity key.
func (s *Participants) ByID(id string) (*models.Participant, error) {
	var p models.Participant
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ByPseudonym fetches a participant by their public number.
func (s *Participants) ByPseudonym(n int) (*models.Participant, error) {
	var p models.Participant
	if err := s.db.First(&p, "pseudonym = ?", n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// IsBanned reports the ban flag. An identity that was never upserted counts
// as not banned.
func (s *Participants) IsBanned(id string) (bool, error) {
	p, err := s.ByID(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Banned, nil
}

// IsTrusted reports the trust flag. An identity that was never upserted
// counts as untrusted.
func (s *Participants) IsTrusted(id string) (bool, error) {
	p, err := s.ByID(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Trusted, nil
}

// AssignPseudonymIfAbsent returns the participant's pseudonym, numbering
// them first if they have none. Counting existing numbers and storing the
// new one happen inside one transaction so concurrent first-time senders
// can never receive the same number.
func (s *Participants) AssignPseudonymIfAbsent(id string) (int, error) {
	s.numbering.Lock()
	defer s.numbering.Unlock()

	var assigned int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Participant
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if p.Pseudonym != nil {
			assigned = *p.Pseudonym
			return nil
		}

		var count int64
		if err := tx.Model(&models.Participant{}).Where("pseudonym IS NOT NULL").Count(&count).Error; err != nil {
			return err
		}
		assigned = int(count) + 1
		return tx.Model(&p).Update("pseudonym", assigned).Error
	})
	if err != nil {
		return 0, err
	}
	return assigned, nil
}

// AdjustReputation applies a signed delta. There is no floor or ceiling.
func (s *Participants) AdjustReputation(id string, delta int) error {
	res := s.db.Model(&models.Participant{}).
		Where("id = ?", id).
		Update("reputation", gorm.Expr("reputation + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBanned writes the ban flag.
func (s *Participants) SetBanned(id string, banned bool) error {
	return s.setFlag(id, "banned", banned)
}

// SetTrusted writes the trust flag.
func (s *Participants) SetTrusted(id string, trusted bool) error {
	return s.setFlag(id, "trusted", trusted)
}

func (s *Participants) setFlag(id, column string, value bool) error {
	res := s.db.Model(&models.Participant{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
