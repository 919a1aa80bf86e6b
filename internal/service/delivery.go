package service

import (
	"context"
	"fmt"

	"github.com/codedrop-dev/codedrop/internal/domain"
	"github.com/codedrop-dev/codedrop/internal/metrics"
	"github.com/codedrop-dev/codedrop/internal/retry"
)

// Courier is the asset-transport boundary for redemption sends. Both
// operations must return errors marked transient (errs.Transient) when
// a retry could succeed; everything else is treated as permanent.
type Courier interface {
	SendAlbum(ctx context.Context, dest int64, items []domain.Item) error
	SendItem(ctx context.Context, dest int64, item domain.Item) error
}

// Delivery sends one send-group to a destination under the bounded
// retry policy.
type Delivery struct {
	courier Courier
	retry   retry.Policy
}

func NewDelivery(courier Courier, policy retry.Policy) *Delivery {
	return &Delivery{courier: courier, retry: policy}
}

func (d *Delivery) Deliver(ctx context.Context, dest int64, group domain.SendGroup) error {
	if len(group.Items) == 0 {
		return nil
	}
	err := d.retry.Do(ctx, func(ctx context.Context) error {
		if group.Album() {
			return d.courier.SendAlbum(ctx, dest, group.Items)
		}
		return d.courier.SendItem(ctx, dest, group.Items[0])
	})
	if err != nil {
		metrics.Deliveries.WithLabelValues("failure").Inc()
		return err
	}
	metrics.Deliveries.WithLabelValues("success").Inc()
	return nil
}

type RedeemStorage interface {
	// ItemsByCode returns the committed items in commit order.
	// errs.ErrCodeNotFound when nothing matches.
	ItemsByCode(ctx context.Context, code string) ([]domain.Item, error)
}

// GroupFailure records one send-group that could not be delivered after
// retries. Group numbering is 1-based in commit order.
type GroupFailure struct {
	Group int
	Items int
	Err   error
}

func (f GroupFailure) Error() string {
	return fmt.Sprintf("group %d (%d items): %s", f.Group, f.Items, f.Err)
}

// RedeemResult is the consolidated outcome of one redemption.
type RedeemResult struct {
	Groups   int
	Items    int
	Failures []GroupFailure
}

// Redemption reconstructs a committed batch and redelivers it.
// Redemption is code-only: any holder of the code may redeem.
type Redemption struct {
	storage  RedeemStorage
	delivery *Delivery
}

func NewRedemption(storage RedeemStorage, delivery *Delivery) *Redemption {
	return &Redemption{storage: storage, delivery: delivery}
}

// Redeem delivers every send-group of the batch to dest. A failed group
// aborts only itself; the remaining groups still attempt delivery and
// all failures come back consolidated in the result.
func (r *Redemption) Redeem(ctx context.Context, code string, dest int64) (*RedeemResult, error) {
	items, err := r.storage.ItemsByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	groups := Assemble(items)
	result := &RedeemResult{Groups: len(groups), Items: len(items)}
	for i, group := range groups {
		if err := r.delivery.Deliver(ctx, dest, group); err != nil {
			result.Failures = append(result.Failures, GroupFailure{Group: i + 1, Items: len(group.Items), Err: err})
		}
	}

	metrics.Redemptions.Inc()
	return result, nil
}
