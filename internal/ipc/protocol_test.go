package ipc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"battlecore/internal/combat"
)

func TestWriteMessageReadMessageRoundTrip(t *testing.T) {
	msg := EventMessage{
		CombatID: "combat-1",
		Event: combat.Event{
			Version:   combat.EventVersion,
			Type:      combat.EventTypeUnitHeal,
			Seq:       5,
			EventID:   "evt-5",
			Timestamp: 1.2,
			Payload:   []byte(`{"amount":10}`),
		},
	}

	var buf bytes.Buffer
	if err := WriteMessage(&buf, MsgTypeEvent, msg); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	msgType, body, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if msgType != MsgTypeEvent {
		t.Errorf("expected msg type %d, got %d", MsgTypeEvent, msgType)
	}

	decoded, err := DecodeEvent(body)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if decoded.CombatID != msg.CombatID {
		t.Errorf("expected combat id %q, got %q", msg.CombatID, decoded.CombatID)
	}
	if decoded.Event.Seq != msg.Event.Seq || decoded.Event.EventID != msg.Event.EventID {
		t.Errorf("expected event %+v, got %+v", msg.Event, decoded.Event)
	}
}

func TestWriteMessageReadMessageResumeRequest(t *testing.T) {
	req := ResumeRequest{CombatID: "combat-7", Since: 42}

	var buf bytes.Buffer
	if err := WriteMessage(&buf, MsgTypeResumeRequest, req); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	msgType, body, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if msgType != MsgTypeResumeRequest {
		t.Errorf("expected msg type %d, got %d", MsgTypeResumeRequest, msgType)
	}

	decoded, err := DecodeResumeRequest(body)
	if err != nil {
		t.Fatalf("DecodeResumeRequest: %v", err)
	}
	if decoded.CombatID != req.CombatID || decoded.Since != req.Since {
		t.Errorf("expected %+v, got %+v", req, *decoded)
	}
}

func TestWriteMessageWithNilData(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, MsgTypePing, nil); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	msgType, body, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if msgType != MsgTypePing {
		t.Errorf("expected msg type %d, got %d", MsgTypePing, msgType)
	}
	if len(body) != 0 {
		t.Errorf("expected empty body for a nil-payload message, got %d bytes", len(body))
	}
}

func TestReadMessageRejectsVersionMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, MsgTypePing, nil); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	corrupted := buf.Bytes()
	corrupted[0] = 0xFF // mangle the low byte of the version field

	if _, _, err := ReadMessage(bytes.NewReader(corrupted)); err == nil {
		t.Error("expected a version mismatch error")
	}
}

func TestCleanupSocketRemovesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sock")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := CleanupSocket(path); err != nil {
		t.Fatalf("CleanupSocket: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected the socket file to be removed")
	}
}

func TestCleanupSocketNoopWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "absent.sock")

	if err := CleanupSocket(path); err != nil {
		t.Errorf("expected no error cleaning up a nonexistent path, got %v", err)
	}
}
