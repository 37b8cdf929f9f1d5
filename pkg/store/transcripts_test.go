package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/insightlab/insightlab/pkg/interview"
)

func TestEntriesFromSession_SpeakerMapping(t *testing.T) {
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	in := []interview.Entry{
		{ID: "a", Speaker: interview.SpeakerAssistant, Text: "Hi, thanks for joining.", Timestamp: base},
		{ID: "b", Speaker: interview.SpeakerParticipant, Text: "Happy to help.", Timestamp: base.Add(3 * time.Second)},
	}

	out := entriesFromSession(in)
	if len(out) != 2 {
		t.Fatalf("got %d entries, want 2", len(out))
	}
	if out[0].Type != "assistant" {
		t.Errorf("assistant entry stored as %q", out[0].Type)
	}
	if out[1].Type != "user" {
		t.Errorf("participant entry stored as %q, want user", out[1].Type)
	}
	if out[0].ID != "a" || out[1].ID != "b" {
		t.Error("entry ids must be preserved")
	}
	if !out[1].Timestamp.Equal(base.Add(3 * time.Second)) {
		t.Error("timestamps must be preserved")
	}
}

func TestEntriesFromSession_Empty(t *testing.T) {
	out := entriesFromSession(nil)
	if out == nil || len(out) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", out)
	}
}

func TestTranscriptEntry_WireShape(t *testing.T) {
	e := TranscriptEntry{
		ID:        "x1",
		Type:      "assistant",
		Text:      "What brought you here today?",
		Timestamp: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "type", "text", "timestamp"} {
		if _, ok := m[key]; !ok {
			t.Errorf("wire form missing %q", key)
		}
	}
	if len(m) != 4 {
		t.Errorf("wire form has %d keys, want 4: %v", len(m), m)
	}
}
