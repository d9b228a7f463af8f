package codec

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mibwalk/internal/domain"
)

// AnsibleCodec exports the newest snapshot of each target as an Ansible
// inventory, one group per poll status
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
}

type ansibleHost struct {
	AnsibleHost string         `yaml:"ansible_host,omitempty"`
	Vars        map[string]any `yaml:",inline"`
}

// Export writes the inventory. Older snapshots of a target are ignored.
func (c *AnsibleCodec) Export(snaps []*domain.Snapshot, w io.Writer) error {
	latest := make(map[string]*domain.Snapshot)
	for _, s := range snaps {
		if cur, ok := latest[s.Target]; !ok || s.TakenAt.After(cur.TakenAt) {
			latest[s.Target] = s
		}
	}

	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
		},
	}

	for target, s := range latest {
		groupName := "snmp_" + string(s.Status)
		group, ok := inv.All.Children[groupName]
		if !ok {
			group = ansibleGroupDef{Hosts: make(map[string]ansibleHost)}
			inv.All.Children[groupName] = group
		}
		group.Hosts[hostID(target)] = ansibleHost{
			AnsibleHost: s.Address,
			Vars:        hostVars(s),
		}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}

	return nil
}

func hostVars(s *domain.Snapshot) map[string]any {
	adminUp, operUp := s.Counts()
	vars := map[string]any{
		"snmp_polled_at":   s.TakenAt.UTC().Format(time.RFC3339),
		"snmp_interfaces":  len(s.Interfaces),
		"snmp_admin_up":    adminUp,
		"snmp_oper_up":     operUp,
		"snmp_error_count": len(s.Errors),
		"snmp_snapshot_id": s.ID.String(),
	}
	if sys := s.System; sys != nil {
		vars["snmp_sys_name"] = sys.Name
		vars["snmp_sys_descr"] = sys.Descr
		vars["snmp_sys_object_id"] = sys.ObjectID
		if sys.Location != "" {
			vars["snmp_sys_location"] = sys.Location
		}
		if sys.Vendor != "" {
			vars["snmp_vendor"] = sys.Vendor
		}
	}
	return vars
}

// hostID makes a target name usable as an inventory host key
func hostID(target string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, target)
}
