package database

import (
	"context"
	"errors"
	"fmt"
	"notesboard/internal/utils"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already in use")
)

// Store is the typed query surface over the users and notes tables.
// Every note query is scoped by the owning user's id.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// emailTaken maps a unique index violation on users onto ErrEmailTaken.
// User ids are uuids, so the email index is the one that trips.
func emailTaken(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*utils.User, error) {
	var user utils.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) FindUser(ctx context.Context, id string) (*utils.User, error) {
	var user utils.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CreateUser relies on the unique email index, so concurrent signups with
// one address yield exactly one user and ErrEmailTaken for the rest.
func (s *Store) CreateUser(ctx context.Context, user *utils.User) error {
	if user.ID == "" {
		user.ID = utils.NewID()
	}
	return emailTaken(s.db.WithContext(ctx).Create(user).Error)
}

type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Bio       *string
	Interests *string
}

func (s *Store) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (*utils.User, error) {
	res := s.db.WithContext(ctx).Model(&utils.User{}).Where("id = ?", id).Updates(map[string]any{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"email":      p.Email,
		"bio":        p.Bio,
		"interests":  p.Interests,
	})
	if res.Error != nil {
		return nil, emailTaken(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindUser(ctx, id)
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	res := s.db.WithContext(ctx).Model(&utils.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user and every note they own in one transaction.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&utils.Note{}).Error; err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&utils.User{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListNotes returns the user's notes, pinned first, then most recently updated.
func (s *Store) ListNotes(ctx context.Context, userID string) ([]utils.Note, error) {
	notes := make([]utils.Note, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_pinned DESC").
		Order("updated_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *Store) FindNote(ctx context.Context, userID, id string) (*utils.Note, error) {
	var note utils.Note
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&note).Error; err != nil {
		return nil, notFound(err)
	}
	return &note, nil
}

func (s *Store) CreateNote(ctx context.Context, note *utils.Note) error {
	if note.ID == "" {
		note.ID = utils.NewID()
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return s.db.WithContext(ctx).Create(note).Error
}

// UpdateNote applies fields (column name to value) to one owned note and
// returns the stored result.
func (s *Store) UpdateNote(ctx context.Context, userID, id string, fields map[string]any) (*utils.Note, error) {
	note, err := s.FindNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return note, nil
	}
	if err := s.db.WithContext(ctx).Model(note).Updates(fields).Error; err != nil {
		return nil, err
	}
	return s.FindNote(ctx, userID, id)
}

func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&utils.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOwnedNotes counts how many of ids belong to userID.
func (s *Store) CountOwnedNotes(ctx context.Context, userID string, ids []string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&utils.Note{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Count(&count).Error
	return count, err
}

// UpdateNotes applies fields to all owned notes in ids with a single statement.
func (s *Store) UpdateNotes(ctx context.Context, userID string, ids []string, fields map[string]any) (int64, error) {
	res := s.db.WithContext(ctx).Model(&utils.Note{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// DeleteNotes removes all owned notes in ids with a single statement.
func (s *Store) DeleteNotes(ctx context.Context, userID string, ids []string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("id IN ? AND user_id = ?", ids, userID).
		Delete(&utils.Note{})
	return res.RowsAffected, res.Error
}
