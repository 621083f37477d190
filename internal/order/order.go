// Package order keeps the order book of the panel: checkout-created orders,
// the status workflow, the dashboard and printable receipts.
package order

import "github.com/sirupsen/logrus"

const (
	dashboardTopProducts = 5
	dashboardRecent      = 5
)

type OrderLogHook struct{}

func (h *OrderLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Order: " + entry.Message
	return nil
}

func (h *OrderLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
