package sql

import (
	"time"

	"github.com/mcoot/secrets/internal/model"
)

// AccountModel is the GORM model for accounts.
// Nullable unique columns let local and OAuth accounts share one table.
type AccountModel struct {
	ID           string    `gorm:"primaryKey;size:64"`
	Username     *string   `gorm:"uniqueIndex;size:255"`
	PasswordHash string    `gorm:"size:255"`
	GoogleID     *string   `gorm:"uniqueIndex;size:255"`
	FacebookID   *string   `gorm:"uniqueIndex;size:255"`
	Secret       *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

func fromAccount(a *model.Account) *AccountModel {
	m := &AccountModel{
		ID:           string(a.ID),
		Username:     nullable(a.Username),
		PasswordHash: a.PasswordHash,
		GoogleID:     nullable(a.GoogleID),
		FacebookID:   nullable(a.FacebookID),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.Secret != nil {
		s := *a.Secret
		m.Secret = &s
	}
	return m
}

func (m *AccountModel) toAccount() *model.Account {
	a := &model.Account{
		ID:           model.AccountID(m.ID),
		Username:     deref(m.Username),
		PasswordHash: m.PasswordHash,
		GoogleID:     deref(m.GoogleID),
		FacebookID:   deref(m.FacebookID),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Secret != nil {
		s := *m.Secret
		a.Secret = &s
	}
	return a
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
