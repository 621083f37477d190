package order

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mserebryaakov/delivery-panel/internal/notify"
	"github.com/sirupsen/logrus"
)

// Alert is a new order the panel has not shown yet.
type Alert struct {
	Order        Order               `json:"order"`
	Notification notify.Notification `json:"notification"`
}

// Watcher polls for fresh pending orders and raises the new-order
// notification once per order.
type Watcher struct {
	storage  Storage
	notifier Notifier
	log      *logrus.Entry
	interval time.Duration
	window   time.Duration
	buffer   int
	now      func() time.Time

	mu     sync.Mutex
	seen   map[uuid.UUID]time.Time
	alerts []Alert
}

func NewWatcher(storage Storage, notifier Notifier, log *logrus.Entry, interval, window time.Duration, buffer int) *Watcher {
	if buffer <= 0 {
		buffer = 100
	}
	return &Watcher{
		storage:  storage,
		notifier: notifier,
		log:      log,
		interval: interval,
		window:   window,
		buffer:   buffer,
		now:      time.Now,
		seen:     make(map[uuid.UUID]time.Time),
	}
}

// Run polls until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Infof("watching for new orders every %s", w.interval)

	for {
		if err := w.Poll(ctx); err != nil {
			w.log.Errorf("poll new orders: %v", err)
		}

		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Poll runs a single pass.
func (w *Watcher) Poll(ctx context.Context) error {
	since := w.now().Add(-w.window)

	orders, err := w.storage.GetOrders(ctx, Filter{Statuses: []Status{StatusPending}, Since: since})
	if err != nil {
		return err
	}

	w.mu.Lock()
	for id, createdAt := range w.seen {
		if createdAt.Before(since) {
			delete(w.seen, id)
		}
	}

	// oldest first so alerts come out in arrival order
	var fresh []Order
	for i := len(orders) - 1; i >= 0; i-- {
		if _, ok := w.seen[orders[i].ID]; ok {
			continue
		}
		w.seen[orders[i].ID] = orders[i].CreatedAt
		fresh = append(fresh, orders[i])
	}
	w.mu.Unlock()

	if len(fresh) == 0 {
		return nil
	}

	alerts := make([]Alert, 0, len(fresh))
	for _, o := range fresh {
		alerts = append(alerts, Alert{Order: o, Notification: w.notifier.NewOrder(ctx, o.View())})
		w.log.Infof("new order %s from %s", o.OrderNumber, o.CustomerName)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.alerts = append(w.alerts, alerts...)
	if extra := len(w.alerts) - w.buffer; extra > 0 {
		w.alerts = append([]Alert(nil), w.alerts[extra:]...)
	}

	return nil
}

// Drain hands over the pending alerts and clears them.
func (w *Watcher) Drain() []Alert {
	w.mu.Lock()
	defer w.mu.Unlock()

	alerts := w.alerts
	w.alerts = nil
	if alerts == nil {
		alerts = []Alert{}
	}
	return alerts
}
