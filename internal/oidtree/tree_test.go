package oidtree

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mibwalk/internal/oid"
)

// newInternetTree builds the small tree most tests share
func newInternetTree(t *testing.T) *Tree {
	t.Helper()
	tree := New()
	internet, err := tree.AddRoot(oid.New(1, 3, 6, 1), "internet")
	require.NoError(t, err)

	err = tree.AddInstructions("internet", internet, []Instruction{
		{"directory", "internet", 1},
		{"mgmt", "internet", 2},
		{"private", "internet", 4},
		{"enterprises", "private", 1},
		{"mib-2", "mgmt", 1},
		{"system", "mib-2", 1},
		{"sysDescr", "system", 1},
		{"interfaces", "mib-2", 2},
		{"ifNumber", "interfaces", 1},
		{"ifTable", "interfaces", 2},
		{"ifEntry", "ifTable", 1},
		{"ifIndex", "ifEntry", 1},
		{"ifDescr", "ifEntry", 2},
	})
	require.NoError(t, err)
	return tree
}

func TestResolveScenario(t *testing.T) {
	tree := New()
	internet, err := tree.AddRoot(oid.New(1, 3, 6, 1), "internet")
	require.NoError(t, err)
	_, err = tree.AddUnder(internet, oid.New(2), "mgmt")
	require.NoError(t, err)

	got, err := tree.Resolve("internet.mgmt")
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.2", got.String())

	name, err := tree.Describe(oid.New(1, 3, 6, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, "internet.mgmt", name.String())
	assert.Empty(t, name.Suffix)
}

func TestAddRootValidation(t *testing.T) {
	tree := New()

	_, err := tree.AddRoot(oid.OID{}, "internet")
	require.ErrorIs(t, err, ErrNameSyntax)

	_, err = tree.AddRoot(oid.New(1, 3), "")
	require.ErrorIs(t, err, ErrNameSyntax)

	_, err = tree.AddRoot(oid.New(1, 3), "bad name")
	require.ErrorIs(t, err, ErrNameSyntax)

	_, err = tree.AddRoot(oid.New(1, 3), "dotted.name")
	require.ErrorIs(t, err, ErrNameSyntax)

	assert.Zero(t, tree.Len())
}

func TestAddUnderUnknownParent(t *testing.T) {
	tree := newInternetTree(t)
	_, err := tree.AddUnder(oid.New(1, 3, 6, 2), oid.New(1), "nowhere")
	require.ErrorIs(t, err, ErrAddressNotFound)

	_, err = tree.AddUnder(oid.New(1, 3, 6, 1), oid.OID{}, "empty")
	require.ErrorIs(t, err, ErrNameSyntax)
}

func TestAddUnderIdempotent(t *testing.T) {
	tree := newInternetTree(t)
	before := tree.Len()

	first, err := tree.AddUnder(oid.New(1, 3, 6, 1, 2, 1), oid.New(1, 5), "sysName")
	require.NoError(t, err)
	afterFirst := tree.Len()
	assert.Equal(t, before+1, afterFirst, "system already exists, only sysName is new")

	second, err := tree.AddUnder(oid.New(1, 3, 6, 1, 2, 1), oid.New(1, 5), "sysName")
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.Equal(t, afterFirst, tree.Len())
}

func TestAddRootCreatesIntermediateNodes(t *testing.T) {
	tree := New()
	_, err := tree.AddRoot(oid.New(1, 3, 6, 1), "internet")
	require.NoError(t, err)
	assert.Equal(t, 4, tree.Len())

	name, err := tree.Describe(oid.New(1, 3))
	require.NoError(t, err)
	assert.Equal(t, "1.3", name.String())
}

func TestResolveErrors(t *testing.T) {
	tree := newInternetTree(t)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrNameSyntax},
		{"space", "internet.mgmt ", ErrNameSyntax},
		{"underscore", "internet.my_mib", ErrNameSyntax},
		{"empty component", "internet..mgmt", ErrNameSyntax},
		{"unknown root", "iso.org", ErrNameResolution},
		{"unknown child", "internet.mgmt.nothing", ErrNameResolution},
		{"root name is not a child", "internet.internet", ErrNameResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.Resolve(tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolveUnder(t *testing.T) {
	tree := newInternetTree(t)
	mib2 := oid.MustParse("1.3.6.1.2.1")

	got, err := tree.ResolveUnder(mib2, "interfaces.ifTable.ifEntry.ifDescr")
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.2.1.2.2.1.2", got.String())

	_, err = tree.ResolveUnder(oid.MustParse("1.3.6.1.9"), "anything")
	require.ErrorIs(t, err, ErrNameResolution)

	_, err = tree.ResolveUnder(mib2, "ifDescr")
	require.ErrorIs(t, err, ErrNameResolution)
}

func TestSiblingScopedNames(t *testing.T) {
	tree := newInternetTree(t)
	mgmt := oid.MustParse("1.3.6.1.2")
	private := oid.MustParse("1.3.6.1.4")

	a, err := tree.AddUnder(mgmt, oid.New(9), "shared")
	require.NoError(t, err)
	b, err := tree.AddUnder(private, oid.New(9), "shared")
	require.NoError(t, err)

	got, err := tree.Resolve("internet.mgmt.shared")
	require.NoError(t, err)
	assert.True(t, got.Equal(a))

	got, err = tree.Resolve("internet.private.shared")
	require.NoError(t, err)
	assert.True(t, got.Equal(b))
}

func TestDescribeStripsRowIndex(t *testing.T) {
	tree := newInternetTree(t)

	name, err := tree.Describe(oid.MustParse("1.3.6.1.2.1.2.2.1.2.17"))
	require.NoError(t, err)
	assert.Equal(t, "internet.mgmt.mib-2.interfaces.ifTable.ifEntry.ifDescr.17", name.String())
	assert.Equal(t, []uint32{17}, name.Suffix)
	assert.Equal(t, "ifDescr", name.Anchor())
	assert.Equal(t, "17", name.Base())

	name, err = tree.Describe(oid.MustParse("1.3.6.1.2.1.2.2.1.2"))
	require.NoError(t, err)
	assert.Equal(t, "ifDescr", name.Base())
}

func TestDescribeUnknownColumn(t *testing.T) {
	tree := newInternetTree(t)

	name, err := tree.Describe(oid.MustParse("1.3.6.1.2.1.2.2.1.99.3"))
	require.NoError(t, err)
	assert.Equal(t, "internet.mgmt.mib-2.interfaces.ifTable.ifEntry.99.3", name.String())
	assert.Equal(t, []uint32{99, 3}, name.Suffix)
}

func TestDescribeNotFound(t *testing.T) {
	tree := newInternetTree(t)

	_, err := tree.Describe(oid.MustParse("2.5.4"))
	require.ErrorIs(t, err, ErrAddressNotFound)

	_, err = tree.Describe(oid.OID{})
	require.ErrorIs(t, err, ErrAddressNotFound)
}

func TestRoundTrip(t *testing.T) {
	tree := newInternetTree(t)

	names := []string{
		"internet",
		"internet.mgmt",
		"internet.private.enterprises",
		"internet.mgmt.mib-2.system.sysDescr",
		"internet.mgmt.mib-2.interfaces.ifTable.ifEntry.ifIndex",
	}
	for _, n := range names {
		o, err := tree.Resolve(n)
		require.NoError(t, err, n)

		described, err := tree.Describe(o)
		require.NoError(t, err, n)
		assert.Equal(t, n, described.String())

		back, err := tree.Resolve(described.String())
		require.NoError(t, err, n)
		assert.True(t, back.Equal(o), n)
	}
}

func TestRoundTripThroughUnnamedNode(t *testing.T) {
	tree := newInternetTree(t)
	deep, err := tree.AddUnder(oid.MustParse("1.3.6.1.4.1"), oid.New(318, 1), "apcProducts")
	require.NoError(t, err)

	name, err := tree.Describe(deep)
	require.NoError(t, err)
	assert.Equal(t, "internet.private.enterprises.318.apcProducts", name.String())

	back, err := tree.Resolve(name.String())
	require.NoError(t, err)
	assert.True(t, back.Equal(deep))
}

func TestAddInstructionsErrors(t *testing.T) {
	tree := newInternetTree(t)
	anchor := oid.MustParse("1.3.6.1.4.1")

	err := tree.AddInstructions("enterprises", anchor, []Instruction{
		{"vendorTable", "vendor", 1},
		{"vendor", "enterprises", 99},
	})
	require.ErrorIs(t, err, ErrNameResolution)

	err = tree.AddInstructions("enterprises", anchor, []Instruction{
		{"vendor", "enterprises", 99},
		{"vendor", "enterprises", 98},
	})
	require.ErrorIs(t, err, ErrDuplicateDefinition)
}

func TestCloneIsIndependent(t *testing.T) {
	tree := newInternetTree(t)
	clone := tree.Clone()

	_, err := clone.AddUnder(oid.MustParse("1.3.6.1.4.1"), oid.New(9), "cisco")
	require.NoError(t, err)

	_, err = clone.Resolve("internet.private.enterprises.cisco")
	require.NoError(t, err)
	_, err = tree.Resolve("internet.private.enterprises.cisco")
	require.ErrorIs(t, err, ErrNameResolution)
}

func TestConcurrentReaders(t *testing.T) {
	tree := newInternetTree(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o, err := tree.Resolve("internet.mgmt.mib-2.interfaces.ifTable.ifEntry.ifDescr")
				assert.NoError(t, err)
				_, err = tree.Describe(o.Child(uint32(j)))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
