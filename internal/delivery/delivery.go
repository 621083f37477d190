package delivery

import "github.com/sirupsen/logrus"

type DeliveryLogHook struct{}

func (h *DeliveryLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Delivery: " + entry.Message
	return nil
}

func (h *DeliveryLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
