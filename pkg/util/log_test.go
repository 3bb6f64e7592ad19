package util

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	defer Logger.SetLevel(logrus.WarnLevel)

	if err := SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel(debug): %v", err)
	}
	if Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", Logger.GetLevel())
	}

	if err := SetLogLevel("nonsense"); err == nil {
		t.Error("SetLogLevel should reject unknown levels")
	}
}

func TestSetLogOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	Warnf("route %s rejected", "r1")
	if !strings.Contains(buf.String(), "route r1 rejected") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestContextLoggers(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	tests := []struct {
		name  string
		entry *logrus.Entry
		field string
	}{
		{name: "with field", entry: WithField("table", 100), field: "table=100"},
		{name: "with route", entry: WithRoute("r1"), field: "route=r1"},
		{name: "with platform", entry: WithPlatform("vpp"), field: "platform=vpp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.entry.Warn("check")
			if !strings.Contains(buf.String(), tt.field) {
				t.Errorf("output %q missing field %q", buf.String(), tt.field)
			}
		})
	}
}
