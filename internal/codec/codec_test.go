package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"mibwalk/internal/domain"
)

func testSnapshots() []*domain.Snapshot {
	taken := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok := domain.NewSnapshot("core sw", "192.0.2.10", taken)
	ok.Elapsed = 1500 * time.Millisecond
	ok.System = &domain.SystemInfo{
		Name:     "sw-lab",
		Descr:    "SG350-10",
		Location: "rack 4",
		ObjectID: "1.3.6.1.4.1.9.6.1.101",
		Vendor:   "internet.private.enterprises.cisco",
		Uptime:   time.Hour,
	}
	ok.Interfaces = []domain.InterfaceState{
		{Index: 1, Name: "gi1/0/1", Descr: "gi1", AdminStatus: "up", OperStatus: "up", SpeedMbps: 1000, Duplex: "full", InOctets: 1 << 40},
		{Index: 2, Descr: "gi2", AdminStatus: "up", OperStatus: "down"},
	}

	older := domain.NewSnapshot("core sw", "192.0.2.10", taken.Add(-time.Hour))
	older.Status = domain.PollStatusUnreachable

	gone := domain.NewSnapshot("edge", "192.0.2.20", taken)
	gone.AddError(errors.New("request timeout"))
	gone.Status = domain.PollStatusUnreachable

	return []*domain.Snapshot{ok, older, gone}
}

func TestRoundTrip(t *testing.T) {
	for _, imp := range Importers() {
		t.Run(imp.Format(), func(t *testing.T) {
			exp, err := ExporterFor(imp.Format())
			require.NoError(t, err)

			want := testSnapshots()
			var buf bytes.Buffer
			require.NoError(t, exp.Export(want, &buf))

			got, err := imp.Parse(&buf)
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].ID, got[i].ID)
				assert.Equal(t, want[i].Status, got[i].Status)
				assert.True(t, want[i].TakenAt.Equal(got[i].TakenAt))
				assert.Equal(t, want[i].Elapsed, got[i].Elapsed)
				assert.Equal(t, want[i].System, got[i].System)
				assert.Equal(t, want[i].Interfaces, got[i].Interfaces)
				assert.Equal(t, want[i].Errors, got[i].Errors)
			}
		})
	}
}

func TestYAMLReadable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLCodec().Export(testSnapshots()[:1], &buf))

	out := buf.String()
	assert.Contains(t, out, "elapsed: 1.5s")
	assert.Contains(t, out, "uptime: 1h0m0s")
	assert.Contains(t, out, "admin_status: up")
}

func TestYAMLBadID(t *testing.T) {
	_, err := NewYAMLCodec().Parse(strings.NewReader("snapshots:\n  - id: nope\n    target: a\n"))
	assert.Error(t, err)
}

func TestImportRequiresID(t *testing.T) {
	tests := []struct {
		name  string
		imp   Importer
		input string
	}{
		{"json missing", NewJSONCodec(), `[{"target": "a", "status": "ok"}]`},
		{"json nil uuid", NewJSONCodec(), `[{"id": "00000000-0000-0000-0000-000000000000", "target": "a"}]`},
		{"yaml missing", NewYAMLCodec(), "snapshots:\n  - target: a\n"},
		{"yaml nil uuid", NewYAMLCodec(), "snapshots:\n  - id: 00000000-0000-0000-0000-000000000000\n    target: a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.imp.Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMissingID)
		})
	}
}

func TestJSONNullEntry(t *testing.T) {
	_, err := NewJSONCodec().Parse(strings.NewReader(`[null]`))
	assert.ErrorContains(t, err, "null entry")
}

func TestJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Export(nil, &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestAnsibleExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewAnsibleCodec().Export(testSnapshots(), &buf))

	var inv map[string]map[string]map[string]map[string]map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &inv))

	children := inv["all"]["children"]
	require.Contains(t, children, "snmp_ok")
	require.Contains(t, children, "snmp_unreachable")

	// the newest snapshot of "core sw" wins over the older unreachable one
	sw := children["snmp_ok"]["hosts"]["core_sw"]
	require.NotNil(t, sw)
	assert.Equal(t, "192.0.2.10", sw["ansible_host"])
	assert.Equal(t, "sw-lab", sw["snmp_sys_name"])
	assert.Equal(t, "rack 4", sw["snmp_sys_location"])
	assert.Equal(t, 2, sw["snmp_interfaces"])
	assert.Equal(t, 2, sw["snmp_admin_up"])
	assert.Equal(t, 1, sw["snmp_oper_up"])
	assert.Equal(t, "2026-03-01T12:00:00Z", sw["snmp_polled_at"])

	edge := children["snmp_unreachable"]["hosts"]["edge"]
	require.NotNil(t, edge)
	assert.Equal(t, 1, edge["snmp_error_count"])
	assert.NotContains(t, edge, "snmp_sys_name")
	assert.NotContains(t, children["snmp_unreachable"]["hosts"], "core_sw")
}

func TestLookup(t *testing.T) {
	_, err := ExporterFor("csv")
	assert.ErrorContains(t, err, "ansible-inventory, json, yaml")

	_, err = ImporterFor("ansible-inventory")
	assert.Error(t, err)

	imp, err := ImporterFor("yaml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", imp.Format())
}

func TestHostID(t *testing.T) {
	assert.Equal(t, "core_sw", hostID("core sw"))
	assert.Equal(t, "192.0.2.1", hostID("192.0.2.1"))
	assert.Equal(t, "a_b", hostID("a/b"))
}
