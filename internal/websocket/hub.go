package websocket

import (
	"encoding/json"
	"sync"

	"github.com/isdelr/accounts-be/internal/models"
	"github.com/rs/zerolog/log"
)

// GlobalTopic receives every published event.
const GlobalTopic = "global"

type publication struct {
	topic string
	data  []byte
}

type directMessage struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// A map of topics (GlobalTopic or a user ID) to the clients subscribed to it.
	subscriptions map[string]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	publish  chan publication
	direct   chan directMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		register:      make(chan *Client),
		Unregister:    make(chan *Client),
		publish:       make(chan publication, 256),
		direct:        make(chan directMessage, 64),
		done:          make(chan struct{}),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.addSubscription(client, client.Topic)
			log.Info().Int("total_clients", len(h.clients)).Str("topic", client.Topic).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case d := <-h.direct:
			if h.clients[d.client] {
				h.send(d.client, d.data)
			}
		case p := <-h.publish:
			h.deliver(GlobalTopic, p.data)
			if p.topic != "" && p.topic != GlobalTopic {
				h.deliver(p.topic, p.data)
			}
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// BroadcastTo sends a message to GlobalTopic subscribers and to the clients
// subscribed to topic. It never blocks once the hub has stopped.
func (h *Hub) BroadcastTo(topic string, message []byte) {
	select {
	case h.publish <- publication{topic: topic, data: message}:
	case <-h.done:
	}
}

// SendTo queues a message for a single registered client. Messages for
// clients that are gone are discarded.
func (h *Hub) SendTo(client *Client, message []byte) {
	select {
	case h.direct <- directMessage{client: client, data: message}:
	case <-h.done:
	}
}

// PublishEvent broadcasts an event to global subscribers and to the
// subscribers of the event's user.
func (h *Hub) PublishEvent(event models.Event) {
	data, err := json.Marshal(NewEventMessage(event))
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to encode event for websocket")
		return
	}
	topic := ""
	if event.UserID != nil {
		topic = *event.UserID
	}
	h.BroadcastTo(topic, data)
}

// Register adds client to the hub. It returns false without blocking once the
// hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) deliver(topic string, message []byte) {
	for client := range h.subscriptions[topic] {
		h.send(client, message)
	}
}

func (h *Hub) send(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		// Slow consumer.
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	h.removeSubscription(client)
	close(client.Send)
}

func (h *Hub) addSubscription(client *Client, topic string) {
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[*Client]bool)
	}
	h.subscriptions[topic][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for topic, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, topic)
			}
		}
	}
}
