package amqp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

func TestHandleNotification(t *testing.T) {
	var out bytes.Buffer
	h := NewNotificationHandler(logger.Nop(), &out)

	staff := int64(12)
	body, err := json.Marshal(interfaces.StatusUpdateMessage{
		Entity:    interfaces.EntityOrder,
		EntityID:  1,
		Reference: "ORD_20260314_000001",
		CompanyID: 1,
		OldStatus: "created",
		NewStatus: "in_progress",
		ChangedBy: &staff,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := h.HandleNotification(context.Background(), body); err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}

	want := "Notification for order ORD_20260314_000001: status changed from 'created' to 'in_progress' by user 12\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestHandleNotificationNewEntity(t *testing.T) {
	var out bytes.Buffer
	h := NewNotificationHandler(logger.Nop(), &out)

	body := []byte(`{"entity":"reservation","entity_id":3,"reference":"2026-03-14 18:00-20:00","company_id":1,"new_status":"confirmed","timestamp":"2026-03-10T10:00:00Z"}`)
	if err := h.HandleNotification(context.Background(), body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "from 'none' to 'confirmed'") {
		t.Errorf("output = %q", out.String())
	}
}

func TestHandleNotificationRejectsGarbage(t *testing.T) {
	var out bytes.Buffer
	h := NewNotificationHandler(logger.Nop(), &out)

	if err := h.HandleNotification(context.Background(), []byte("not json")); err == nil {
		t.Fatal("expected a parse error")
	}
	if out.Len() != 0 {
		t.Errorf("printed %q for a bad message", out.String())
	}
}
