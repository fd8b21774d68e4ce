package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
)

func newTestClient(h *Hub) *Client {
	return &Client{Hub: h, Send: make(chan []byte, 8), ID: "test"}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("malformed message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected message: %s", raw)
	default:
	}
}

func TestBroadcastEventReachesAllClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := newTestClient(h)
	b := newTestClient(h)
	h.Register <- a
	h.Register <- b
	// Register проходит через цикл хаба.
	time.Sleep(10 * time.Millisecond)

	h.BroadcastEvent("check", map[string]int{"count": 5})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != "check" {
			t.Fatalf("want check, got %q", msg.Type)
		}
	}
}

func TestBroadcastToRoomIsScoped(t *testing.T) {
	h := NewHub()
	go h.Run()

	member := newTestClient(h)
	outsider := newTestClient(h)
	h.Register <- member
	h.Register <- outsider
	time.Sleep(10 * time.Millisecond)

	h.JoinRoom(member, "team_Night Owls")
	h.BroadcastToRoom("team_Night Owls", "team", map[string]string{"sector": "A"})

	msg := receive(t, member)
	if msg.Type != "team" || msg.RoomID != "team_Night Owls" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	expectSilence(t, outsider)
}

func TestJoinRoomReplacesPreviousRoom(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := newTestClient(h)
	h.Register <- c
	time.Sleep(10 * time.Millisecond)

	h.JoinRoom(c, "team_Alpha")
	h.JoinRoom(c, "team_Beta")

	h.BroadcastToRoom("team_Alpha", "team", nil)
	expectSilence(t, c)

	h.BroadcastToRoom("team_Beta", "team", nil)
	if msg := receive(t, c); msg.Type != "team" {
		t.Fatalf("want team, got %q", msg.Type)
	}
}

func TestAdminIntentRequiresAdminRole(t *testing.T) {
	h := NewHub()

	calls := 0
	h.HandleAdmin("admin:closeDomains", func(c *Client, _ json.RawMessage) {
		calls++
	})

	raw := []byte(`{"type":"admin:closeDomains"}`)

	participant := newTestClient(h)
	h.dispatch(participant, raw)
	if calls != 0 {
		t.Fatal("admin intent must be ignored for participants")
	}

	admin := newTestClient(h)
	admin.Role = models.RoleAdmin
	h.dispatch(admin, raw)
	if calls != 1 {
		t.Fatalf("want 1 admin call, got %d", calls)
	}
}

func TestDispatchPassesPayload(t *testing.T) {
	h := NewHub()

	var got struct {
		DomainID int `json:"domain_id"`
	}
	h.Handle("domainSelected", func(c *Client, payload json.RawMessage) {
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
	})

	h.dispatch(newTestClient(h), []byte(`{"type":"domainSelected","payload":{"domain_id":3}}`))
	if got.DomainID != 3 {
		t.Fatalf("want domain_id 3, got %d", got.DomainID)
	}
}

func TestDeliverSkipsClosedClient(t *testing.T) {
	h := NewHub()
	c := newTestClient(h)
	c.IsClosed = true

	// Не должно паниковать и писать в закрытый канал.
	h.deliver(c, []byte(`{}`))
	expectSilence(t, c)
}
