package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"gamecafe-backend/internal/billing"
	"gamecafe-backend/internal/model"
)

// Checkout turns an ended session into a persisted Quote. Creating the
// quote, decrementing sold inventory and deleting the session happen in ONE
// transaction, so a failure can never leave both a quote and a stale open
// session behind (the old client did these as separate writes and could).
func (s *gormStore) Checkout(ctx context.Context, id uint, adj Adjustments, now time.Time) (*model.Quote, error) {
	sl := s.locks.lock(id)
	defer sl.Unlock()

	var quote *model.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sess, err := loadSession(tx, id)
		if err != nil {
			return err
		}

		q, err := billing.BuildQuote(sess, adj.CashierName, now)
		if err != nil {
			return err
		}
		billing.Finalize(q, adj.Discount, adj.DiscountReason, adj.AdditionalCost, adj.AdditionalCostReason)

		if err := tx.Create(q).Error; err != nil {
			return fmt.Errorf("failed to persist quote: %w", err)
		}

		for _, line := range sess.DrinksFoods {
			if err := decrementItem(tx, line.ItemName, line.Quantity); err != nil {
				return err
			}
		}

		if err := deleteSessionRows(tx, sess.ID); err != nil {
			return err
		}
		quote = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// ShopCheckout persists a walk-in sale: no session, no machine usage. Quote
// insert and inventory decrement share the transaction; the old
// retry-until-success loops and their duplicate risk are gone.
func (s *gormStore) ShopCheckout(ctx context.Context, quote *model.Quote, decrements []ItemDecrement) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quote).Error; err != nil {
			return fmt.Errorf("failed to persist quote: %w", err)
		}
		return bulkDecrease(tx, decrements)
	})
}

// BulkDecrease applies inventory decrements outside of any checkout.
func (s *gormStore) BulkDecrease(ctx context.Context, decrements []ItemDecrement) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return bulkDecrease(tx, decrements)
	})
}

func bulkDecrease(tx *gorm.DB, decrements []ItemDecrement) error {
	for _, d := range decrements {
		var item model.FoodDrinkItem
		if err := tx.Where("item_name = ?", d.ItemName).First(&item).Error; err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownItem, d.ItemName)
		}
		if item.Quantity < d.Quantity {
			return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientStock, d.ItemName, item.Quantity, d.Quantity)
		}
		if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity - ?", d.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}

// decrementItem is the lenient variant used when paying off a session: a
// line whose inventory entry has meanwhile been deleted is still billable,
// so it only logs instead of failing the checkout.
func decrementItem(tx *gorm.DB, itemName string, quantity int) error {
	res := tx.Model(&model.FoodDrinkItem{}).
		Where("item_name = ?", itemName).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("checkout: item %q no longer in inventory, skipping stock decrement", itemName)
	}
	return nil
}

// AccrueOpenSessions runs one accrual tick over every open session and
// reports fixed-duration sessions that have just run out. Each session is
// accrued under its own lock; a failing session is logged and skipped so one
// bad row cannot stall the tick.
func (s *gormStore) AccrueOpenSessions(ctx context.Context, now time.Time) ([]ExpiredSession, error) {
	var open []model.Session
	if err := s.db.WithContext(ctx).Where("ended = ?", false).Find(&open).Error; err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}

	var expired []ExpiredSession
	for _, sess := range open {
		if _, err := s.Accrue(ctx, sess.ID, now); err != nil {
			log.Printf("accrual tick: session %d: %v", sess.ID, err)
			continue
		}

		if sess.EndTime == nil || sess.ExpiryNotified || now.Before(*sess.EndTime) {
			continue
		}
		res := s.db.WithContext(ctx).Model(&model.Session{}).
			Where("id = ? AND expiry_notified = ?", sess.ID, false).
			Update("expiry_notified", true)
		if res.Error != nil {
			log.Printf("accrual tick: session %d: %v", sess.ID, res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			continue // another tick got there first
		}
		expired = append(expired, ExpiredSession{
			SessionID:    sess.ID,
			MachineID:    sess.MachineID,
			MachineName:  sess.MachineName,
			Room:         sess.Room,
			CustomerName: sess.CustomerName,
		})
	}
	return expired, nil
}
