package amqp

import (
	"encoding/json"
	"time"
)

// ImportRequestMessage asks the worker to stage a spreadsheet file.
// It carries only the file location; the worker decodes and stages it.
type ImportRequestMessage struct {
	Path      string    `json:"path"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// NewImportRequestMessage creates an import request for a local file.
// source names the staged dataset; when empty the worker derives it
// from the file name.
func NewImportRequestMessage(path, source string) *ImportRequestMessage {
	return &ImportRequestMessage{
		Path:      path,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ImportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportRequestMessageFromJSON creates a message from JSON bytes
func ImportRequestMessageFromJSON(data []byte) (*ImportRequestMessage, error) {
	var msg ImportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DatasetStagedMessage announces that a dataset finished staging.
// API instances listening on it can refresh their sessions.
type DatasetStagedMessage struct {
	Source    string    `json:"source"`
	Rows      int64     `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDatasetStagedMessage(source string, rows int64) *DatasetStagedMessage {
	return &DatasetStagedMessage{
		Source:    source,
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

func (m *DatasetStagedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DatasetStagedMessageFromJSON(data []byte) (*DatasetStagedMessage, error) {
	var msg DatasetStagedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
