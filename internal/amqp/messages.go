package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// ImportRequestMessage asks the import worker to run a full-refresh
// import. SheetName overrides the configured transaction sheet when
// set.
type ImportRequestMessage struct {
	SheetName   string    `json:"sheet_name,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewImportRequestMessage(sheetName, requestedBy string) *ImportRequestMessage {
	return &ImportRequestMessage{
		SheetName:   sheetName,
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	}
}

func (m *ImportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ImportRequestMessageFromJSON(data []byte) (*ImportRequestMessage, error) {
	var m ImportRequestMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal import request: %w", err)
	}
	return &m, nil
}
