package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Define notification types
const (
	NotificationTypeNewApplication      = "new_application"
	NotificationTypeApplicationAccepted = "application_accepted"
	NotificationTypeApplicationRejected = "application_rejected"
	NotificationTypeWorkStarted         = "work_started"
	NotificationTypeWorkCompleted       = "work_completed"
	NotificationTypeWorkApproved        = "work_approved"
	NotificationTypePaymentProcessed    = "payment_processed"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
}

// Hub maintains the set of active clients and routes notifications to them
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = client
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.clients[client.UserID]; ok && existing == client {
				delete(h.clients, client.UserID)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// NotifyNewApplication tells the client a vendor has applied to their work order
func (h *Hub) NotifyNewApplication(clientID primitive.ObjectID, applicationData interface{}) error {
	return h.SendToUser(clientID, Notification{
		Type:    NotificationTypeNewApplication,
		Message: "A vendor has applied to your work order",
		Data:    applicationData,
	})
}

// NotifyApplicationAccepted tells the vendor their application was accepted
func (h *Hub) NotifyApplicationAccepted(vendorID primitive.ObjectID, orderData interface{}) error {
	return h.SendToUser(vendorID, Notification{
		Type:    NotificationTypeApplicationAccepted,
		Message: "Your application has been accepted",
		Data:    orderData,
	})
}

// NotifyWorkOrderUpdate tells a party the work order moved to a new status
func (h *Hub) NotifyWorkOrderUpdate(userID primitive.ObjectID, notifType, message string, orderData interface{}) error {
	return h.SendToUser(userID, Notification{
		Type:    notifType,
		Message: message,
		Data:    orderData,
	})
}
