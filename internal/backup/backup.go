package backup

import "github.com/sirupsen/logrus"

type BackupLogHook struct{}

func (h *BackupLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Backup: " + entry.Message
	return nil
}

func (h *BackupLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
