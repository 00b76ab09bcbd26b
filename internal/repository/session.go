package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Session is the unit of work shared by the repositories taking part in one
// operation. The first write opens a transaction; Commit makes every staged
// row durable at once and Rollback discards them. Reads go through the open
// transaction, so staged rows are visible to the session that wrote them.
//
// A Session is not safe for concurrent use.
type Session struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewSession(db *gorm.DB) *Session {
	return &Session{db: db}
}

func (s *Session) conn(ctx context.Context) *gorm.DB {
	if s.tx != nil {
		return s.tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

func (s *Session) stage(ctx context.Context) (*gorm.DB, error) {
	if s.tx == nil {
		tx := s.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return nil, tx.Error
		}
		s.tx = tx
	}
	return s.tx.WithContext(ctx), nil
}

// Pending reports whether there are staged, uncommitted changes.
func (s *Session) Pending() bool {
	return s.tx != nil
}

func (s *Session) Commit() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit().Error
	s.tx = nil
	return err
}

// Rollback discards staged changes. Identifiers assigned to entities staged
// in this session are no longer valid afterwards.
func (s *Session) Rollback() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback().Error
	s.tx = nil
	return err
}

// Base supplies the operations every repository shares.
type Base[T any] struct {
	s *Session
}

func (r *Base[T]) Session() *Session {
	return r.s
}

// Add stages entity for persistence. Associations are never written
// implicitly; foreign keys must already be set.
func (r *Base[T]) Add(ctx context.Context, entity *T) error {
	tx, err := r.s.stage(ctx)
	if err != nil {
		return err
	}
	return tx.Omit(clause.Associations).Create(entity).Error
}

func (r *Base[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := r.s.conn(ctx).First(&entity, id).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (r *Base[T]) Delete(ctx context.Context, entity *T) error {
	tx, err := r.s.stage(ctx)
	if err != nil {
		return err
	}
	return tx.Delete(entity).Error
}

func (r *Base[T]) Commit() error {
	return r.s.Commit()
}

func (r *Base[T]) Rollback() error {
	return r.s.Rollback()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
