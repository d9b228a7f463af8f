package codec

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"mibwalk/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlDocument represents the YAML structure for snapshot history
type yamlDocument struct {
	Snapshots []yamlSnapshot `yaml:"snapshots"`
}

type yamlSnapshot struct {
	ID         string          `yaml:"id"`
	Target     string          `yaml:"target"`
	Address    string          `yaml:"address"`
	TakenAt    time.Time       `yaml:"taken_at"`
	Elapsed    time.Duration   `yaml:"elapsed"`
	Status     string          `yaml:"status"`
	System     *yamlSystem     `yaml:"system,omitempty"`
	Interfaces []yamlInterface `yaml:"interfaces,omitempty"`
	Errors     []string        `yaml:"errors,omitempty"`
}

type yamlSystem struct {
	Name     string        `yaml:"name"`
	Descr    string        `yaml:"descr"`
	Contact  string        `yaml:"contact,omitempty"`
	Location string        `yaml:"location,omitempty"`
	ObjectID string        `yaml:"object_id"`
	Vendor   string        `yaml:"vendor,omitempty"`
	Uptime   time.Duration `yaml:"uptime"`
}

type yamlInterface struct {
	Index       uint32 `yaml:"index"`
	Name        string `yaml:"name,omitempty"`
	Descr       string `yaml:"descr"`
	Alias       string `yaml:"alias,omitempty"`
	Type        string `yaml:"type,omitempty"`
	MAC         string `yaml:"mac,omitempty"`
	AdminStatus string `yaml:"admin_status"`
	OperStatus  string `yaml:"oper_status"`
	SpeedMbps   uint64 `yaml:"speed_mbps,omitempty"`
	Duplex      string `yaml:"duplex,omitempty"`
	InOctets    uint64 `yaml:"in_octets"`
	OutOctets   uint64 `yaml:"out_octets"`
	InErrors    uint32 `yaml:"in_errors"`
	OutErrors   uint32 `yaml:"out_errors"`
}

// Parse reads snapshots from YAML
func (c *YAMLCodec) Parse(r io.Reader) ([]*domain.Snapshot, error) {
	var doc yamlDocument
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	snaps := make([]*domain.Snapshot, 0, len(doc.Snapshots))
	for i, ys := range doc.Snapshots {
		if ys.ID == "" {
			return nil, fmt.Errorf("snapshot %d: %w", i, ErrMissingID)
		}
		id, err := uuid.Parse(ys.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: invalid id %q: %w", i, ys.ID, err)
		}
		if id == uuid.Nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, ErrMissingID)
		}

		snap := &domain.Snapshot{
			ID:      id,
			Target:  ys.Target,
			Address: ys.Address,
			TakenAt: ys.TakenAt,
			Elapsed: ys.Elapsed,
			Status:  domain.PollStatus(ys.Status),
			Errors:  ys.Errors,
		}
		if ys.System != nil {
			snap.System = &domain.SystemInfo{
				Name:     ys.System.Name,
				Descr:    ys.System.Descr,
				Contact:  ys.System.Contact,
				Location: ys.System.Location,
				ObjectID: ys.System.ObjectID,
				Vendor:   ys.System.Vendor,
				Uptime:   ys.System.Uptime,
			}
		}
		for _, yi := range ys.Interfaces {
			snap.Interfaces = append(snap.Interfaces, domain.InterfaceState(yi))
		}
		snaps = append(snaps, snap)
	}

	return snaps, nil
}

// Export writes snapshots to YAML
func (c *YAMLCodec) Export(snaps []*domain.Snapshot, w io.Writer) error {
	doc := yamlDocument{
		Snapshots: make([]yamlSnapshot, 0, len(snaps)),
	}

	for _, s := range snaps {
		ys := yamlSnapshot{
			ID:      s.ID.String(),
			Target:  s.Target,
			Address: s.Address,
			TakenAt: s.TakenAt,
			Elapsed: s.Elapsed,
			Status:  string(s.Status),
			Errors:  s.Errors,
		}
		if s.System != nil {
			ys.System = &yamlSystem{
				Name:     s.System.Name,
				Descr:    s.System.Descr,
				Contact:  s.System.Contact,
				Location: s.System.Location,
				ObjectID: s.System.ObjectID,
				Vendor:   s.System.Vendor,
				Uptime:   s.System.Uptime,
			}
		}
		for _, i := range s.Interfaces {
			ys.Interfaces = append(ys.Interfaces, yamlInterface(i))
		}
		doc.Snapshots = append(doc.Snapshots, ys)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
