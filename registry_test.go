package pinflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/internal/testutil"
)

func newTestRegistry(t *testing.T) *pinflow.Registry {
	t.Helper()

	r := pinflow.NewRegistry()
	require.NoError(t, r.Register(testutil.TypeEntry, func() (pinflow.Node, error) {
		return testutil.NewEntry(""), nil
	}))
	require.NoError(t, r.Register(testutil.TypeSink, func() (pinflow.Node, error) {
		n, _ := testutil.NewSink("", pinflow.TypeString)
		return n, nil
	}))
	r.SetEntryType(testutil.TypeEntry)
	return r
}

func TestRegistryRegister(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Register(testutil.TypeEntry, func() (pinflow.Node, error) { return testutil.NewEntry(""), nil })
	assert.ErrorIs(t, err, pinflow.ErrDuplicateNodeType)
	assert.Error(t, r.Register("", nil))
	assert.Panics(t, func() {
		r.MustRegister(testutil.TypeSink, func() (pinflow.Node, error) { return nil, nil })
	})

	assert.True(t, r.Has(testutil.TypeSink))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, testutil.TypeEntry, r.EntryType())
	assert.Equal(t, []string{testutil.TypeEntry, testutil.TypeSink}, r.List())
}

func TestRegistryCreate(t *testing.T) {
	r := newTestRegistry(t)

	a, err := r.Create(testutil.TypeSink)
	require.NoError(t, err)
	b, err := r.Create(testutil.TypeSink)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "each call builds a fresh instance")

	_, err = r.Create("missing")
	assert.ErrorIs(t, err, pinflow.ErrUnknownNodeType)

	r.MustRegister("test.Liar", func() (pinflow.Node, error) { return testutil.NewEntry(""), nil })
	_, err = r.Create("test.Liar")
	assert.ErrorContains(t, err, "built a node of type")
}

func TestRegistryDescribe(t *testing.T) {
	r := newTestRegistry(t)

	m, err := r.Describe(testutil.TypeSink)
	require.NoError(t, err)
	assert.Equal(t, "function", m.Kind)
	assert.False(t, m.Pure)
	require.Len(t, m.Inputs, 2)
	assert.Equal(t, pinflow.PinMetadata{ID: pinflow.ExecIn, Kind: "input_flow"}, m.Inputs[0])
	assert.Equal(t, pinflow.PinMetadata{ID: "value", Name: "Value", Kind: "input_argument", Type: "str"}, m.Inputs[1])

	all, err := r.DescribeAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, testutil.TypeEntry, all[0].TypeID)
	assert.Equal(t, "entry", all[0].Kind)
	assert.Empty(t, all[0].Inputs)

	_, err = r.Describe("missing")
	assert.ErrorIs(t, err, pinflow.ErrUnknownNodeType)
}
