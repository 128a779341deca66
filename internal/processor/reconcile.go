package processor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hcm-console/project-factory/internal/bus"
	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/repository"
)

// DefaultBatchSize is the fixed persistence batch size.
const DefaultBatchSize = 100

// SettlePolicy computes how long to wait after a fire-and-forget write
// before a dependent read may assume durability. The row sink is
// asynchronous and surfaces no ack, so this wait is load-bearing: it must
// stay an explicit timer, not be optimized away. Replacing it with a
// read-your-writes ack from the sink is an open design question.
type SettlePolicy struct {
	Floor  time.Duration
	PerRow time.Duration
}

// Delay returns max(Floor, rows*PerRow).
func (p SettlePolicy) Delay(rows int) time.Duration {
	d := time.Duration(rows) * p.PerRow
	if d < p.Floor {
		d = p.Floor
	}
	return d
}

// DefaultSettlePolicy matches the historical 5s floor and 8ms per row.
var DefaultSettlePolicy = SettlePolicy{Floor: 5 * time.Second, PerRow: 8 * time.Millisecond}

type sleepFunc func(context.Context, time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Delta reports what a reconciliation pass changed.
type Delta struct {
	Inserted  int
	Updated   int
	Unchanged int
}

// Reconciler turns a freshly parsed sheet into the minimal set of row store
// mutations: new keys become pending inserts, changed rows become pending
// updates, absent keys are left untouched. Deltas are pushed through the bus
// in fixed-size batches followed by a settle wait.
type Reconciler struct {
	rows      repository.RowRepository
	producer  bus.Producer
	batchSize int
	settle    SettlePolicy
	sleep     sleepFunc
}

// ReconcilerOption customizes a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithBatchSize overrides the persistence batch size.
func WithBatchSize(size int) ReconcilerOption {
	return func(r *Reconciler) {
		if size > 0 {
			r.batchSize = size
		}
	}
}

// WithSettlePolicy overrides the settle delay policy.
func WithSettlePolicy(policy SettlePolicy) ReconcilerOption {
	return func(r *Reconciler) {
		r.settle = policy
	}
}

// WithSleep overrides the sleep implementation; tests use this to avoid
// real waits.
func WithSleep(sleep func(context.Context, time.Duration) error) ReconcilerOption {
	return func(r *Reconciler) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// NewReconciler creates a reconciler with the default batch size and settle
// policy.
func NewReconciler(rows repository.RowRepository, producer bus.Producer, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		rows:      rows,
		producer:  producer,
		batchSize: DefaultBatchSize,
		settle:    DefaultSettlePolicy,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile diffs incoming sheet rows against the stored rows for the same
// campaign and type, persists the insert/update sets, and waits for the sink
// to settle. Running it twice with identical input yields a zero delta on
// the second pass.
func (r *Reconciler) Reconcile(ctx context.Context, campaignNumber string, resourceType domain.ResourceType, incoming []domain.CampaignRow) (Delta, error) {
	existing, err := r.rows.ListByCampaign(ctx, resourceType, campaignNumber)
	if err != nil {
		return Delta{}, fmt.Errorf("failed to load existing %s rows: %w", resourceType, err)
	}

	stored := make(map[string]domain.CampaignRow, len(existing))
	for _, row := range existing {
		stored[row.UniqueIdentifier] = row
	}

	var inserts, updates []domain.CampaignRow
	var unchanged int
	for _, row := range incoming {
		current, found := stored[row.UniqueIdentifier]
		if !found {
			inserts = append(inserts, row)
			continue
		}

		if !dataChanged(current.Data, row.Data) {
			unchanged++
			continue
		}

		// Merge incoming columns over the stored data so columns only the
		// system writes (credentials, annotations) survive the update.
		for column, value := range row.Data {
			current.SetValue(column, value)
		}
		if row.UniqueIDAfterProcess != nil {
			// Pre-completed rows (facility already known downstream) stay
			// completed under the refreshed identifier.
			current.UniqueIDAfterProcess = row.UniqueIDAfterProcess
			current.Status = domain.RowStatusCompleted
		} else {
			// A previously failed or completed row the operator edited is
			// reset to pending so it gets recreated or retried.
			current.Status = domain.RowStatusPending
		}
		current.UpdatedAt = time.Now()
		updates = append(updates, current)
	}

	for _, batch := range chunkRows(inserts, r.batchSize) {
		r.producer.Push(bus.TopicSaveResourceData, bus.Message{Rows: batch})
	}
	for _, batch := range chunkRows(updates, r.batchSize) {
		r.producer.Push(bus.TopicUpdateResourceData, bus.Message{Rows: batch})
	}

	delta := Delta{Inserted: len(inserts), Updated: len(updates), Unchanged: unchanged}
	if mutations := delta.Inserted + delta.Updated; mutations > 0 {
		if err := r.sleep(ctx, r.settle.Delay(mutations)); err != nil {
			return delta, err
		}
	}
	return delta, nil
}

// PersistRow re-emits a single row's state, fire-and-forget. Used by the
// creation engines to record status transitions as they happen.
func (r *Reconciler) PersistRow(row domain.CampaignRow) {
	r.producer.Push(bus.TopicUpdateResourceData, bus.Message{Rows: []domain.CampaignRow{row}})
}

// PendingRows returns the rows the creation engines should attempt:
// status pending or failed.
func (r *Reconciler) PendingRows(ctx context.Context, campaignNumber string, resourceType domain.ResourceType) ([]domain.CampaignRow, error) {
	return r.rows.ListByCampaign(ctx, resourceType, campaignNumber, retrySelection...)
}

// AllRows returns every stored row for the campaign and type.
func (r *Reconciler) AllRows(ctx context.Context, campaignNumber string, resourceType domain.ResourceType) ([]domain.CampaignRow, error) {
	return r.rows.ListByCampaign(ctx, resourceType, campaignNumber)
}

// BatchSize exposes the configured persistence batch size to the creation
// engines so creation batching matches persistence batching.
func (r *Reconciler) BatchSize() int {
	return r.batchSize
}

func dataChanged(stored, incoming map[string]any) bool {
	for column, value := range incoming {
		if !looseEqual(stored[column], value) {
			return true
		}
	}
	return false
}

// looseEqual mirrors the historical loose (JS !=) comparison: values are
// compared by canonical scalar text, so 5, 5.0 and "5" are all equal and a
// missing value equals the empty string.
func looseEqual(a, b any) bool {
	return canonicalScalar(a) == canonicalScalar(b)
}

func canonicalScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 64)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func chunkRows(rows []domain.CampaignRow, size int) [][]domain.CampaignRow {
	if len(rows) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultBatchSize
	}
	var chunks [][]domain.CampaignRow
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
