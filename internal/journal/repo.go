package journal

import (
	"context"

	apperrors "github.com/userjourney-io/journeylog-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository is the storage surface for the journey event log.
type Repository interface {
	Append(ctx context.Context, event *Event) (*Event, error)
	List(ctx context.Context, filters Filters, limit, offset int) ([]Event, error)
	Count(ctx context.Context, filters Filters) (int64, error)
	ReturningBuyers(ctx context.Context, filters Filters, limit, offset int) ([]UserActivity, error)
	ReturningBuyersCount(ctx context.Context, filters Filters) (int64, error)
	CountsByAction(ctx context.Context, filters Filters) (ActionCounts, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a journal repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, event *Event) (*Event, error) {
	if event == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "event is required")
	}
	// user_id 0 is an anonymous visitor and product_id 0 an event without
	// product context; only negative ids are malformed.
	if event.UserID < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "user_id cannot be negative")
	}
	if event.ProductID < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "product_id cannot be negative")
	}
	if !event.Action.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown journey action")
	}

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "appending journey event")
	}
	return event, nil
}

func (r *repository) List(ctx context.Context, filters Filters, limit, offset int) ([]Event, error) {
	var events []Event
	q := filters.apply(r.db.WithContext(ctx).Model(&Event{})).
		Order("occurred_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing journey events")
	}
	return events, nil
}

func (r *repository) Count(ctx context.Context, filters Filters) (int64, error) {
	var total int64
	q := filters.apply(r.db.WithContext(ctx).Model(&Event{}))
	if err := q.Count(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.CodeDependency, err, "counting journey events")
	}
	return total, nil
}

func (r *repository) ReturningBuyers(ctx context.Context, filters Filters, limit, offset int) ([]UserActivity, error) {
	var rows []UserActivity
	q := r.activityGroups(ctx, filters).
		Order("event_count DESC, user_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing returning buyers")
	}
	return rows, nil
}

func (r *repository) ReturningBuyersCount(ctx context.Context, filters Filters) (int64, error) {
	var total int64
	sub := r.activityGroups(ctx, filters)
	err := r.db.WithContext(ctx).
		Table("(?) AS returning_buyers", sub).
		Count(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeDependency, err, "counting returning buyers")
	}
	return total, nil
}

// activityGroups groups events per user and keeps only users who came
// back, meaning more than one recorded event in the filtered window.
func (r *repository) activityGroups(ctx context.Context, filters Filters) *gorm.DB {
	return filters.apply(r.db.WithContext(ctx).Model(&Event{})).
		Select("user_id, COUNT(*) AS event_count").
		Group("user_id").
		Having("COUNT(*) > ?", 1)
}

func (r *repository) CountsByAction(ctx context.Context, filters Filters) (ActionCounts, error) {
	var rows []struct {
		Action     string
		EventCount int64
	}
	q := filters.apply(r.db.WithContext(ctx).Model(&Event{})).
		Select("action, COUNT(*) AS event_count").
		Group("action")
	if err := q.Scan(&rows).Error; err != nil {
		return ActionCounts{}, apperrors.Wrap(apperrors.CodeDependency, err, "counting events by action")
	}

	var counts ActionCounts
	for _, row := range rows {
		switch row.Action {
		case "viewed":
			counts.Viewed = row.EventCount
		case "added_to_cart":
			counts.AddedToCart = row.EventCount
		case "purchased":
			counts.Purchased = row.EventCount
		}
	}
	return counts, nil
}
