package settings

import "github.com/sirupsen/logrus"

type SettingsLogHook struct{}

func (h *SettingsLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Settings: " + entry.Message
	return nil
}

func (h *SettingsLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
