package checkout

import "github.com/sirupsen/logrus"

type CheckoutLogHook struct{}

func (h *CheckoutLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Checkout: " + entry.Message
	return nil
}

func (h *CheckoutLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
