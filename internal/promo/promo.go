package promo

import "github.com/sirupsen/logrus"

type PromoLogHook struct{}

func (h *PromoLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Promo: " + entry.Message
	return nil
}

func (h *PromoLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
