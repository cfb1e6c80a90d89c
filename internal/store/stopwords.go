package store

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nightpost/relay/internal/models"
)

// StopWords is the mutable word list backing the content filter. Entries are
// stored lower-cased; matching is a blunt case-insensitive substring scan
// with no stemming or word-boundary awareness.
type StopWords struct {
	db *gorm.DB
}

func NewStopWords(db *gorm.DB) *StopWords {
	return &StopWords{db: db}
}

// Matches reports whether any stop word appears as a substring of the
// lower-cased text. Empty text never matches.
func (s *StopWords) Matches(text string) (bool, error) {
	if text == "" {
		return false, nil
	}
	words, err := s.Words()
	if err != nil {
		return false, err
	}
	lowered := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lowered, w) {
			return true, nil
		}
	}
	return false, nil
}

// Words returns the full stop-word list.
func (s *StopWords) Words() ([]string, error) {
	var words []string
	if err := s.db.Model(&models.StopWord{}).Order("word asc").Pluck("word", &words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

// Add inserts a word, lower-casing it first. Adding a word that is already
// present is a no-op.
func (s *StopWords) Add(word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.StopWord{Word: word}).Error
}

// Remove deletes a word and reports whether it was present.
func (s *StopWords) Remove(word string) (bool, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	res := s.db.Where("word = ?", word).Delete(&models.StopWord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Seed inserts the configured bootstrap words, skipping ones already there.
func (s *StopWords) Seed(words []string) error {
	for _, w := range words {
		if err := s.Add(w); err != nil {
			return err
		}
	}
	return nil
}
