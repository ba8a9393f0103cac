// Package directory is the boundary to the identity provider: a read-only
// lookup of verified users. Identity issuance and verification happen
// elsewhere; the relay never validates user ids against this table.
package directory

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// User is one verified account as exposed to clients.
type User struct {
	UID         string `gorm:"primaryKey;size:255" json:"uid"`
	Email       string `gorm:"size:255;uniqueIndex" json:"email"`
	DisplayName string `gorm:"size:255" json:"displayName"`
}

// Directory serves verified-user lookups.
type Directory struct {
	db *gorm.DB
}

// New migrates the user table and returns the directory.
func New(db *gorm.DB) (*Directory, error) {
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users: %w", err)
	}
	return &Directory{db: db}, nil
}

// VerifiedUsers returns every verified user, ordered by display name.
func (d *Directory) VerifiedUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := d.db.WithContext(ctx).
		Order("display_name ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Upsert inserts or refreshes a verified user record. Used when the identity
// provider syncs accounts into the relay's directory.
func (d *Directory) Upsert(ctx context.Context, user User) error {
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name"}),
		}).
		Create(&user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
