// Package codec moves snapshots in and out of mibwalk in other formats.
package codec

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"mibwalk/internal/domain"
)

// ErrMissingID is returned by importers for a snapshot without an id
var ErrMissingID = errors.New("snapshot has no id")

// Importer interface for reading snapshots written by an Exporter
type Importer interface {
	Parse(r io.Reader) ([]*domain.Snapshot, error)
	Format() string
}

// Exporter interface for writing snapshots to various formats
type Exporter interface {
	Export(snaps []*domain.Snapshot, w io.Writer) error
	Format() string
}

// Exporters returns every exporter
func Exporters() []Exporter {
	return []Exporter{NewJSONCodec(), NewYAMLCodec(), NewAnsibleCodec()}
}

// Importers returns every importer
func Importers() []Importer {
	return []Importer{NewJSONCodec(), NewYAMLCodec()}
}

// ExporterFor looks an exporter up by format name
func ExporterFor(format string) (Exporter, error) {
	for _, e := range Exporters() {
		if e.Format() == format {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unknown export format %q (want %s)", format, formats(Exporters()))
}

// ImporterFor looks an importer up by format name
func ImporterFor(format string) (Importer, error) {
	for _, i := range Importers() {
		if i.Format() == format {
			return i, nil
		}
	}
	return nil, fmt.Errorf("unknown import format %q (want %s)", format, formats(Importers()))
}

func formats[T interface{ Format() string }](cs []T) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Format()
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
