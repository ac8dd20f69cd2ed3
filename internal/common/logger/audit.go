package logger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// auditColumns is the fixed row shape of the send audit trail.
var auditColumns = []string{"Timestamp", "Status", "From", "To", "Cc", "Bcc", "Subject", "Body Type", "Attachments"}

// AuditLog appends one CSV row per send attempt to a dated file, giving a
// local audit trail of what left the process and with which outcome.
// Filename pattern: _{toolName}_send_{date}.csv in dir.
type AuditLog struct {
	writer *csv.Writer
	file   *os.File
	path   string
}

// NewAuditLog opens (or creates) the audit file for today in dir.
// An empty dir falls back to the system temp directory. The header row is
// written only when the file is new.
func NewAuditLog(dir, toolName string) (*AuditLog, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	fileName := fmt.Sprintf("_%s_send_%s.csv", toolName, time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, fileName)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open audit log file: %w", err)
	}

	l := &AuditLog{
		writer: csv.NewWriter(file),
		file:   file,
		path:   path,
	}

	info, err := file.Stat()
	if err == nil && info.Size() == 0 {
		if err := l.writer.Write(auditColumns); err != nil {
			file.Close()
			return nil, fmt.Errorf("could not write audit log header: %w", err)
		}
		l.writer.Flush()
	}

	return l, nil
}

// Path returns the location of the audit file.
func (l *AuditLog) Path() string {
	return l.path
}

// Record writes one send attempt. The timestamp is added automatically and
// the row is flushed immediately; send volume is low enough that buffering
// would only risk losing rows on crash.
func (l *AuditLog) Record(status, from, to, cc, bcc, subject, bodyType string, attachmentCount int) error {
	row := []string{
		time.Now().Format("2006-01-02 15:04:05"),
		status,
		from,
		to,
		cc,
		bcc,
		subject,
		bodyType,
		strconv.Itoa(attachmentCount),
	}
	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("could not write audit log row: %w", err)
	}
	l.writer.Flush()
	return l.writer.Error()
}

// Close flushes and closes the underlying file.
func (l *AuditLog) Close() error {
	if l.writer != nil {
		l.writer.Flush()
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
