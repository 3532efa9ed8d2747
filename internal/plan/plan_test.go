package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

func tc(id string, targets []string, tags ...string) testcase.TestCase {
	return testcase.TestCase{ID: id, File: id + ".md", Targets: targets, Tags: tags, Components: []string{"product-3scale"}}
}

func ids(additions []Addition) []string {
	out := make([]string, 0, len(additions))
	for _, a := range additions {
		out = append(out, a.Test.ID)
	}
	return out
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("1.4.0")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 4}, v)
	assert.Equal(t, "1.4.0", v.String())

	v, err = ParseVersion("v2.10.3")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 2, Minor: 10, Patch: 3}, v)

	for _, s := range []string{"", "1.4", "1.4.x", "latest", "1.4.0-rc1", "1.4.0+b1", "01.4.0"} {
		_, err := ParseVersion(s)
		assert.Error(t, err, s)
	}
}

func TestRelease(t *testing.T) {
	tests := []testcase.TestCase{
		tc("A01", []string{"1.1.0"}),
		tc("A02", []string{"1.2.0"}),
		tc("A03", nil),
		tc("A04", []string{"0.9.0"}),
		tc("A05", []string{"1.0.0"}, testcase.AutomatedTag),
		tc("A06", nil, testcase.PerReleaseTag),
		tc("A07", nil, testcase.PerBuildTag),
		tc("A08", nil, testcase.ManualSelectionTag),
		tc("A09", []string{"bogus", "1.4.0"}),
	}

	t.Run("includes cases untouched for a full cycle", func(t *testing.T) {
		additions, err := Release(tests, Version{Major: 1, Minor: 4}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"A01", "A03", "A04"}, ids(additions))
		assert.Equal(t, []string{"1.1.0", "1.4.0"}, additions[0].Targets())
	})

	t.Run("boundary one minor earlier", func(t *testing.T) {
		additions, err := Release(tests, Version{Major: 1, Minor: 3}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"A03", "A04"}, ids(additions))
	})

	t.Run("untargeted cases match from the third minor", func(t *testing.T) {
		additions, err := Release([]testcase.TestCase{tc("B01", nil)}, Version{Major: 3, Minor: 0}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"B01"}, ids(additions))
	})

	t.Run("patch releases are rejected", func(t *testing.T) {
		_, err := Release(tests, Version{Major: 1, Minor: 4, Patch: 1}, nil)
		require.Error(t, err)
		assert.True(t, testcase.IsPrecondition(err))
	})
}

func TestLatestMinor(t *testing.T) {
	c := tc("A01", []string{"1.2.0", "2.7.0", "1.5.0", "x"})
	assert.Equal(t, 5, LatestMinor(c, 1, nil))
	assert.Equal(t, 7, LatestMinor(c, 2, nil))
	assert.Equal(t, -Cycle, LatestMinor(c, 3, nil))
}

func TestFor(t *testing.T) {
	tests := []testcase.TestCase{
		tc("A01", nil),
		tc("A02", []string{"1.4.0"}),
		{ID: "A03", Components: []string{"monitoring"}},
		tc("A04", nil, testcase.AutomatedTag),
	}

	additions := For(tests, "1.4.0", "product-3scale")
	assert.Equal(t, []string{"A01"}, ids(additions))
	assert.Equal(t, "1.4.0", additions[0].Version)
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) UpdateTargets(tc testcase.TestCase, targets []string) error {
	args := m.Called(tc, targets)
	return args.Error(0)
}

func TestApplier(t *testing.T) {
	additions := []Addition{
		{Test: tc("A01", []string{"1.0.0"}), Version: "1.4.0"},
		{Test: tc("A02", nil), Version: "1.4.0"},
	}

	t.Run("writes every addition", func(t *testing.T) {
		w := &mockWriter{}
		w.On("UpdateTargets", additions[0].Test, []string{"1.0.0", "1.4.0"}).Return(nil)
		w.On("UpdateTargets", additions[1].Test, []string{"1.4.0"}).Return(nil)

		var reported []string
		ap := &Applier{Writer: w, Report: func(a Addition) { reported = append(reported, a.Test.ID) }}
		require.NoError(t, ap.Apply(additions))
		assert.Equal(t, []string{"A01", "A02"}, reported)
		w.AssertExpectations(t)
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		w := &mockWriter{}
		ap := &Applier{Writer: w, DryRun: true}
		require.NoError(t, ap.Apply(additions))
		w.AssertNotCalled(t, "UpdateTargets", mock.Anything, mock.Anything)
	})

	t.Run("stops on first failure", func(t *testing.T) {
		w := &mockWriter{}
		w.On("UpdateTargets", additions[0].Test, mock.Anything).Return(errors.New("disk full"))
		ap := &Applier{Writer: w}
		err := ap.Apply(additions)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		w.AssertNumberOfCalls(t, "UpdateTargets", 1)
	})
}
