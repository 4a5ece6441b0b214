package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Operations carried by CollectionChangedMessage.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

var ErrEmptyCollection = errors.New("collection changed message without collection")

// CollectionChangedMessage announces a write to one record collection.
// Consumers drop their cached copy of that collection; the records are
// never carried in the message.
type CollectionChangedMessage struct {
	Collection string    `json:"collection"`
	Operation  string    `json:"operation"`
	IDs        []string  `json:"ids,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewCollectionChangedMessage creates a message stamped with the current time
func NewCollectionChangedMessage(collection, operation string, ids []string) *CollectionChangedMessage {
	return &CollectionChangedMessage{
		Collection: collection,
		Operation:  operation,
		IDs:        ids,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CollectionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CollectionChangedMessageFromJSON parses and validates a message body.
func CollectionChangedMessageFromJSON(data []byte) (*CollectionChangedMessage, error) {
	var msg CollectionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Collection == "" {
		return nil, ErrEmptyCollection
	}
	return &msg, nil
}
