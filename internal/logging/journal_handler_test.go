package logging

import (
	"log/slog"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

type journalRecord struct {
	message  string
	priority journal.Priority
	fields   map[string]string
}

func newRecordingJournal(level slog.Level) (*JournalHandler, *[]journalRecord) {
	var sent []journalRecord
	h := NewJournalHandler(level)
	h.send = func(message string, priority journal.Priority, vars map[string]string) error {
		sent = append(sent, journalRecord{message, priority, vars})
		return nil
	}
	return h, &sent
}

func TestJournalHandlerFields(t *testing.T) {
	h, sent := newRecordingJournal(slog.LevelDebug)

	logger := slog.New(h).With("module", "sysfs").WithGroup("write")
	logger.Error("sysfs write failed",
		"path", "/sys/class/leds/red/brightness",
		"on_ms", 500,
		slog.Group("retry", "count", 2))

	if len(*sent) != 1 {
		t.Fatalf("sent %d records, want 1", len(*sent))
	}
	got := (*sent)[0]
	if got.message != "sysfs write failed" || got.priority != journal.PriErr {
		t.Errorf("message/priority = %q/%d", got.message, got.priority)
	}

	want := map[string]string{
		"SYSLOG_IDENTIFIER": SyslogIdentifier,
		"PRIORITY":          "3",
		"MODULE":            "sysfs",
		"WRITE_PATH":        "/sys/class/leds/red/brightness",
		"WRITE_ON_MS":       "500",
		"WRITE_RETRY_COUNT": "2",
	}
	for k, v := range want {
		if got.fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, got.fields[k], v)
		}
	}
}

func TestJournalHandlerDoesNotShareFields(t *testing.T) {
	h, sent := newRecordingJournal(slog.LevelInfo)

	base := slog.New(h).With("module", "led")
	base.With("backend", "vanilla").Info("first")
	base.Info("second")

	if len(*sent) != 2 {
		t.Fatalf("sent %d records, want 2", len(*sent))
	}
	if _, ok := (*sent)[1].fields["BACKEND"]; ok {
		t.Error("attribute from a derived logger leaked into its parent")
	}
}

func TestJournalHandlerLevel(t *testing.T) {
	h, sent := newRecordingJournal(slog.LevelWarn)
	logger := slog.New(h)

	logger.Info("dropped")
	logger.Warn("kept")

	if len(*sent) != 1 || (*sent)[0].priority != journal.PriWarning {
		t.Errorf("sent = %+v, want one warning", *sent)
	}
}

func TestFieldName(t *testing.T) {
	tests := map[string]string{
		"path":      "PATH",
		"on_ms":     "ON_MS",
		"write.err": "WRITE_ERR",
		"_hidden":   "HIDDEN",
		"Level-2":   "LEVEL_2",
	}
	for in, want := range tests {
		if got := fieldName(in); got != want {
			t.Errorf("fieldName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAddAttrToFieldsTime(t *testing.T) {
	fields := map[string]string{}
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	addAttrToFields(fields, slog.Time("at", ts), "")
	addAttrToFields(fields, slog.Float64("ratio", 0.5), "")

	if fields["AT"] != "2026-01-02T03:04:05Z" {
		t.Errorf("AT = %q", fields["AT"])
	}
	if fields["RATIO"] != "0.5" {
		t.Errorf("RATIO = %q", fields["RATIO"])
	}
}
