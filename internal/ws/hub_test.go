package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, restaurantID uuid.UUID) *Client {
	return &Client{
		hub:          hub,
		restaurantID: restaurantID,
		send:         make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurantID := uuid.New()
	client := mockClient(hub, restaurantID)

	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[restaurantID] == nil {
		t.Fatal("restaurant room not created")
	}
	if !hub.rooms[restaurantID][client] {
		t.Fatal("client not registered in restaurant room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurantID := uuid.New()
	client := mockClient(hub, restaurantID)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms[restaurantID] != nil {
		t.Fatal("restaurant room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleRestaurant(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurant1 := uuid.New()
	restaurant2 := uuid.New()

	client1 := mockClient(hub, restaurant1)
	client2 := mockClient(hub, restaurant2)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	// Broadcast to restaurant1 only
	testPayload := json.RawMessage(`{"id":"test-123","status":"ASSIGNED"}`)
	hub.Broadcast(restaurant1, Event{
		Type:    EventOrderStatus,
		Payload: testPayload,
	})

	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != EventOrderStatus {
			t.Errorf("expected type %q, got %q", EventOrderStatus, received.Type)
		}
		if string(received.Payload) != string(testPayload) {
			t.Errorf("expected payload '%s', got '%s'", testPayload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for different restaurant")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestBroadcastToMultipleClientsInSameRestaurant(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurantID := uuid.New()
	client1 := mockClient(hub, restaurantID)
	client2 := mockClient(hub, restaurantID)
	client3 := mockClient(hub, restaurantID)

	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastOrderStatus(restaurantID, map[string]string{"id": "abc", "status": "READY"})

	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != EventOrderStatus {
				t.Errorf("client%d: expected type %q, got %q", i+1, EventOrderStatus, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	restaurantID := uuid.New()
	slow := &Client{
		hub:          hub,
		restaurantID: restaurantID,
		send:         make(chan []byte), // unbuffered, nothing draining it
	}

	hub.register <- slow
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastOrderStatus(restaurantID, map[string]string{"id": "abc"})
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[restaurantID] != nil {
		t.Fatal("slow client not dropped from room")
	}
}
