package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend stores every document in one collection as
// {_id: <name>, payload: <json text>}, so arrays and singletons share a layout.
type MongoBackend struct {
	col *mongo.Collection
}

func NewMongoBackend(col *mongo.Collection) *MongoBackend {
	return &MongoBackend{col: col}
}

func (m *MongoBackend) Read(ctx context.Context, name string) (json.RawMessage, error) {
	var doc bson.Raw
	err := m.col.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodePayload(doc)
}

func (m *MongoBackend) Write(ctx context.Context, name string, data json.RawMessage) error {
	doc, err := encodePayload(name, data)
	if err != nil {
		return err
	}
	_, err = m.col.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoBackend) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}

// encodePayload turns a JSON value into {_id: name, payload: "<json text>"}.
// The payload is kept as text so keys such as "$date" are never read as
// extended JSON.
func encodePayload(name string, data json.RawMessage) (bson.D, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("encode %s payload: invalid JSON", name)
	}
	return bson.D{{Key: "_id", Value: name}, {Key: "payload", Value: string(data)}}, nil
}

// decodePayload returns the stored JSON text. Documents written with native
// BSON payloads are rendered back as relaxed extended JSON.
func decodePayload(doc bson.Raw) (json.RawMessage, error) {
	val, err := doc.LookupErr("payload")
	if err != nil {
		return json.RawMessage("null"), nil
	}
	if text, ok := val.StringValueOK(); ok {
		if !json.Valid([]byte(text)) {
			return nil, fmt.Errorf("decode payload: invalid JSON")
		}
		return json.RawMessage(text), nil
	}
	out, err := bson.MarshalExtJSON(bson.D{{Key: "payload", Value: val}}, false, false)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	var wrapper struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(out, &wrapper); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if len(wrapper.Payload) == 0 {
		return json.RawMessage("null"), nil
	}
	return wrapper.Payload, nil
}
