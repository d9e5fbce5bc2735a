package prefs

import (
	"testing"
	"time"
)

func TestKeyPath(t *testing.T) {
	field := KeyPath.Field("/home/me/.config/floe/preferences.ini")
	if field.Key().Name() != "path" {
		t.Errorf("expected key 'path', got %q", field.Key().Name())
	}
}

func TestKeyError(t *testing.T) {
	field := KeyError.Field("something went wrong")
	if field.Key().Name() != "error" {
		t.Errorf("expected key 'error', got %q", field.Key().Name())
	}
}

func TestKeyPrefKey(t *testing.T) {
	field := KeyPrefKey.Field("gui/show_keyboard")
	if field.Key().Name() != "key" {
		t.Errorf("expected key 'key', got %q", field.Key().Name())
	}
}

func TestKeyLine(t *testing.T) {
	field := KeyLine.Field(12)
	if field.Key().Name() != "line" {
		t.Errorf("expected key 'line', got %q", field.Key().Name())
	}
}

func TestKeyReason(t *testing.T) {
	field := KeyReason.Field("invalid key")
	if field.Key().Name() != "reason" {
		t.Errorf("expected key 'reason', got %q", field.Key().Name())
	}
}

func TestKeyCount(t *testing.T) {
	field := KeyCount.Field(3)
	if field.Key().Name() != "count" {
		t.Errorf("expected key 'count', got %q", field.Key().Name())
	}
}

func TestKeyPollInterval(t *testing.T) {
	field := KeyPollInterval.Field(time.Second)
	if field.Key().Name() != "poll_interval" {
		t.Errorf("expected key 'poll_interval', got %q", field.Key().Name())
	}
}
