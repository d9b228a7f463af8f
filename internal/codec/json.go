package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"mibwalk/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads a JSON array of snapshots
func (c *JSONCodec) Parse(r io.Reader) ([]*domain.Snapshot, error) {
	var snaps []*domain.Snapshot
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&snaps); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	for i, s := range snaps {
		if s == nil {
			return nil, fmt.Errorf("snapshot %d: null entry", i)
		}
		if s.ID == uuid.Nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, ErrMissingID)
		}
	}
	return snaps, nil
}

// Export writes snapshots as an indented JSON array
func (c *JSONCodec) Export(snaps []*domain.Snapshot, w io.Writer) error {
	if snaps == nil {
		snaps = []*domain.Snapshot{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(snaps); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
