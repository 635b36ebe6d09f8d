package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gamecafe-backend/internal/billing"
	"gamecafe-backend/internal/model"
)

// Store defines the persistence operations with business rules attached.
// Plain resource CRUD goes through DB() directly from the handlers; every
// mutation of a running session goes through here so it is serialized and
// transactional.
type Store interface {
	DB() *gorm.DB

	StartSession(ctx context.Context, p StartSessionParams, now time.Time) (*model.Session, error)
	GetSession(ctx context.Context, id uint) (*model.Session, error)
	Accrue(ctx context.Context, id uint, now time.Time) (*model.Session, error)
	ChangeMode(ctx context.Context, id uint, p ModeChangeParams, now time.Time) (*model.Session, error)
	AddItem(ctx context.Context, id uint, itemName string, quantity int) (*model.Session, error)
	RemoveItem(ctx context.Context, id uint, index int) (*model.Session, error)
	EndSession(ctx context.Context, id uint, now time.Time) (*model.Session, error)
	UpdateSnapshot(ctx context.Context, id uint, u SnapshotUpdate) (*model.Session, error)
	DeleteSession(ctx context.Context, id uint) error

	Checkout(ctx context.Context, id uint, adj Adjustments, now time.Time) (*model.Quote, error)
	ShopCheckout(ctx context.Context, quote *model.Quote, decrements []ItemDecrement) error
	BulkDecrease(ctx context.Context, decrements []ItemDecrement) error

	AccrueOpenSessions(ctx context.Context, now time.Time) ([]ExpiredSession, error)
}

// gormStore implements Store. Session mutations take a per-session lock so
// two concurrent requests (or a request racing the accrual tick) cannot
// interleave read-modify-write cycles; the old client's last-write-wins
// snapshot race does not exist in this path.
type gormStore struct {
	db    *gorm.DB
	locks sessionLocks
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

type sessionLocks struct {
	mu sync.Mutex
	m  map[uint]*sync.Mutex
}

func (l *sessionLocks) lock(id uint) *sync.Mutex {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[uint]*sync.Mutex)
	}
	sl, ok := l.m[id]
	if !ok {
		sl = &sync.Mutex{}
		l.m[id] = sl
	}
	l.mu.Unlock()
	sl.Lock()
	return sl
}

// withSession runs fn against a freshly loaded session inside a transaction,
// holding the session's lock for the duration.
func (s *gormStore) withSession(ctx context.Context, id uint, fn func(tx *gorm.DB, sess *model.Session) error) (*model.Session, error) {
	sl := s.locks.lock(id)
	defer sl.Unlock()

	var loaded *model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sess, err := loadSession(tx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, sess); err != nil {
			return err
		}
		loaded = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

func loadSession(tx *gorm.DB, id uint) (*model.Session, error) {
	var sess model.Session
	err := tx.
		Preload("DrinksFoods", func(db *gorm.DB) *gorm.DB { return db.Order("food_lines.id") }).
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("session_logs.id") }).
		First(&sess, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *gormStore) GetSession(ctx context.Context, id uint) (*model.Session, error) {
	return loadSession(s.db.WithContext(ctx), id)
}

// rateFor picks the hourly rate for a pricing mode.
func rateFor(m *model.Machine, mode string) (decimal.Decimal, error) {
	switch mode {
	case model.ModeSingle:
		return m.PricePerHourSingle, nil
	case model.ModeMulti:
		return m.PricePerHourMulti, nil
	}
	return decimal.Zero, ErrBadMode
}

// resolveFreeMachine finds the machine by name and verifies no other open
// session occupies it.
func resolveFreeMachine(tx *gorm.DB, name string, excludeSessionID uint) (*model.Machine, error) {
	var m model.Machine
	if err := tx.Where("machine_name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineUnknown
		}
		return nil, err
	}

	var open int64
	q := tx.Model(&model.Session{}).Where("machine_id = ? AND ended = ?", m.ID, false)
	if excludeSessionID != 0 {
		q = q.Where("id <> ?", excludeSessionID)
	}
	if err := q.Count(&open).Error; err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, ErrMachineOccupied
	}
	return &m, nil
}

// StartSession opens a billed occupancy: it snapshots the machine's pricing
// onto the session and applies the discount to the effective hourly rate.
func (s *gormStore) StartSession(ctx context.Context, p StartSessionParams, now time.Time) (*model.Session, error) {
	var created *model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := resolveFreeMachine(tx, p.MachineName, 0)
		if err != nil {
			return err
		}
		rate, err := rateFor(m, p.Mode)
		if err != nil {
			return err
		}

		sess := &model.Session{
			CustomerName:       p.CustomerName,
			StartTime:          now,
			EndTime:            p.EndTime,
			LastTimeCheck:      now,
			TotalCost:          decimal.Zero,
			PricePerHour:       billing.EffectivePrice(rate, p.Discount),
			MachineID:          m.ID,
			MachineName:        m.MachineName,
			Room:               m.Room,
			PricePerHourSingle: m.PricePerHourSingle,
			PricePerHourMulti:  m.PricePerHourMulti,
			Mode:               p.Mode,
			Discount:           p.Discount,
			IsOpenTime:         p.EndTime == nil,
			Version:            1,
		}
		if err := tx.Create(sess).Error; err != nil {
			return err
		}
		created = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Accrue materializes the cost since the last check mark. Safe to call from
// both the HTTP endpoint and the background tick; at equal instants the
// second call is a no-op.
func (s *gormStore) Accrue(ctx context.Context, id uint, now time.Time) (*model.Session, error) {
	return s.withSession(ctx, id, func(tx *gorm.DB, sess *model.Session) error {
		if _, err := billing.Accrue(sess, now); err != nil {
			return err
		}
		return bumpSession(tx, sess, map[string]interface{}{
			"total_cost":      sess.TotalCost,
			"last_time_check": sess.LastTimeCheck,
		})
	})
}

// ChangeMode closes the current pricing window under the old rate and opens
// a new one on the target machine/mode. Exactly one log row per call.
func (s *gormStore) ChangeMode(ctx context.Context, id uint, p ModeChangeParams, now time.Time) (*model.Session, error) {
	return s.withSession(ctx, id, func(tx *gorm.DB, sess *model.Session) error {
		m, err := resolveFreeMachine(tx, p.NewMachineName, sess.ID)
		if err != nil {
			return err
		}
		rate, err := rateFor(m, p.NewMode)
		if err != nil {
			return err
		}

		entry, err := billing.ChangeMode(sess, billing.ModeChange{
			NewMode:         p.NewMode,
			NewPricePerHour: rate,
			NewMachineID:    m.ID,
			NewMachineName:  m.MachineName,
			NewRoom:         m.Room,
		}, now)
		if err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return bumpSession(tx, sess, map[string]interface{}{
			"total_cost":            sess.TotalCost,
			"last_time_check":       sess.LastTimeCheck,
			"start_time":            sess.StartTime,
			"mode":                  sess.Mode,
			"machine_id":            sess.MachineID,
			"machine_name":          sess.MachineName,
			"room":                  sess.Room,
			"price_per_hour":        sess.PricePerHour,
			"price_per_hour_single": m.PricePerHourSingle,
			"price_per_hour_multi":  m.PricePerHourMulti,
		})
	})
}

// AddItem prices the line from the inventory's current sale price
// (total_price) and records it on the session. Stock is not touched until
// the session is paid.
func (s *gormStore) AddItem(ctx context.Context, id uint, itemName string, quantity int) (*model.Session, error) {
	return s.withSession(ctx, id, func(tx *gorm.DB, sess *model.Session) error {
		var item model.FoodDrinkItem
		if err := tx.Where("item_name = ?", itemName).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownItem
			}
			return err
		}

		if err := billing.AddFoodDrink(sess, item.ItemName, item.TotalPrice, quantity); err != nil {
			return err
		}

		// The touched line is either a merged existing row or the appended one.
		for i := range sess.DrinksFoods {
			line := &sess.DrinksFoods[i]
			if line.ItemName != item.ItemName {
				continue
			}
			if line.ID == 0 {
				if err := tx.Create(line).Error; err != nil {
					return err
				}
			} else if err := tx.Model(line).Update("quantity", line.Quantity).Error; err != nil {
				return err
			}
		}
		return bumpSession(tx, sess, map[string]interface{}{"total_cost": sess.TotalCost})
	})
}

// RemoveItem drops the food line at index (position in the id-ordered line
// list) and refunds its amount, clamped at zero.
func (s *gormStore) RemoveItem(ctx context.Context, id uint, index int) (*model.Session, error) {
	return s.withSession(ctx, id, func(tx *gorm.DB, sess *model.Session) error {
		if index < 0 || index >= len(sess.DrinksFoods) {
			return billing.ErrLineOutOfRange
		}
		removed := sess.DrinksFoods[index]
		if err := billing.RemoveFoodDrink(sess, index); err != nil {
			return err
		}
		if err := tx.Delete(&model.FoodLine{}, removed.ID).Error; err != nil {
			return err
		}
		return bumpSession(tx, sess, map[string]interface{}{"total_cost": sess.TotalCost})
	})
}

// EndSession runs the final accrual, stamps the end time and writes the
// terminal log entry. The session stays in place awaiting checkout.
func (s *gormStore) EndSession(ctx context.Context, id uint, now time.Time) (*model.Session, error) {
	return s.withSession(ctx, id, func(tx *gorm.DB, sess *model.Session) error {
		if err := billing.End(sess, now); err != nil {
			return err
		}
		terminal := &sess.Logs[len(sess.Logs)-1]
		if err := tx.Create(terminal).Error; err != nil {
			return err
		}
		return bumpSession(tx, sess, map[string]interface{}{
			"total_cost":      sess.TotalCost,
			"last_time_check": sess.LastTimeCheck,
			"end_time":        sess.EndTime,
			"ended":           true,
		})
	})
}

// UpdateSnapshot applies the client-editable fields. The write is
// conditional on the version the client last saw; a mismatch returns
// ErrStaleVersion and the client refetches.
func (s *gormStore) UpdateSnapshot(ctx context.Context, id uint, u SnapshotUpdate) (*model.Session, error) {
	return s.withSession(ctx, id, func(tx *gorm.DB, sess *model.Session) error {
		if sess.Version != u.Version {
			return ErrStaleVersion
		}

		rate := sess.PricePerHourSingle
		if sess.Mode == model.ModeMulti {
			rate = sess.PricePerHourMulti
		}

		sess.CustomerName = u.CustomerName
		sess.Discount = u.Discount
		sess.IsOpenTime = u.IsOpenTime
		sess.PricePerHour = billing.EffectivePrice(rate, u.Discount)
		return bumpSession(tx, sess, map[string]interface{}{
			"customer_name":  sess.CustomerName,
			"discount":       sess.Discount,
			"is_open_time":   sess.IsOpenTime,
			"price_per_hour": sess.PricePerHour,
		})
	})
}

// DeleteSession removes a session and its children without producing a
// quote (admin cleanup path).
func (s *gormStore) DeleteSession(ctx context.Context, id uint) error {
	sl := s.locks.lock(id)
	defer sl.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteSessionRows(tx, id)
	})
}

func deleteSessionRows(tx *gorm.DB, id uint) error {
	if err := tx.Where("session_id = ?", id).Delete(&model.FoodLine{}).Error; err != nil {
		return err
	}
	if err := tx.Where("session_id = ?", id).Delete(&model.SessionLog{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&model.Session{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// bumpSession writes the given columns and advances the version token in the
// same statement.
func bumpSession(tx *gorm.DB, sess *model.Session, columns map[string]interface{}) error {
	sess.Version++
	columns["version"] = sess.Version
	if err := tx.Model(&model.Session{}).Where("id = ?", sess.ID).Updates(columns).Error; err != nil {
		return fmt.Errorf("failed to update session %d: %w", sess.ID, err)
	}
	return nil
}
