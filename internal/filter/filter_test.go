package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

func ids(tests []testcase.TestCase) []string {
	out := []string{}
	for _, tc := range tests {
		out = append(out, tc.ID)
	}
	return out
}

func corpus() []testcase.TestCase {
	return []testcase.TestCase{
		{ID: "A01", Category: "alerts", Tags: []string{"automated"}, Environments: []string{"osd-fresh-install"}},
		{ID: "A02", Category: "alerts", Tags: []string{"per-build"}, Environments: []string{"osd-fresh-install"}, Targets: []string{"1.0.0"}},
		{ID: "B01", Category: "installation", Tags: []string{"per-release", "destructive"}, Environments: []string{"rhpds"}},
		{ID: "C01", Category: "upgrade", Tags: []string{}, Environments: []string{"osd-fresh-install"}, Targets: []string{"1.2.0"}, Components: []string{"product-sso"}},
		{ID: "C02", Category: "upgrade", Tags: []string{}, Environments: []string{"osd-fresh-install", "rhpds"}, Targets: []string{"1.3.0"}, Components: []string{"product-sso", "monitoring"}},
	}
}

func TestByTags(t *testing.T) {
	tests := corpus()

	assert.Equal(t, []string{"A01"}, ids(ByTags(tests, []string{"automated"})))
	assert.Equal(t, []string{"A02", "B01", "C01", "C02"}, ids(ByTags(tests, []string{"^automated"})))
	assert.Equal(t, []string{"B01"}, ids(ByTags(tests, []string{"per-release", "^automated"})))
	assert.Equal(t, []string{"A01", "A02", "B01", "C01", "C02"}, ids(ByTags(tests, nil)))
	assert.Empty(t, ByTags(tests, []string{"automated", "^automated"}))
}

func TestByTagsPartitions(t *testing.T) {
	tests := corpus()
	for _, tag := range []string{"automated", "per-build", "per-release", "destructive", "unknown"} {
		with := ByTags(tests, []string{tag})
		without := ByTags(tests, []string{"^" + tag})
		assert.Len(t, tests, len(with)+len(without), tag)
		for _, tc := range with {
			assert.True(t, tc.HasTag(tag))
		}
		for _, tc := range without {
			assert.False(t, tc.HasTag(tag))
		}
	}
}

func TestParseTagList(t *testing.T) {
	assert.Equal(t, []string{"per-build", "^automated"}, ParseTagList(" per-build, ^automated ,,"))
	assert.Empty(t, ParseTagList(""))
}

func TestByFields(t *testing.T) {
	tests := corpus()

	out, err := ByFields(tests, Fields{"category": {Include: []string{"upgrade"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"C01", "C02"}, ids(out))

	out, err = ByFields(tests, Fields{
		"components":   {Include: []string{"product-sso"}, Exclude: []string{"monitoring"}},
		"environments": {Include: []string{"osd-fresh-install"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"C01"}, ids(out))

	out, err = ByFields(tests, Fields{"tags": {Exclude: []string{"automated", "per-build"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"B01", "C01", "C02"}, ids(out))

	_, err = ByFields(tests, Fields{"owner": {Include: []string{"me"}}})
	assert.ErrorContains(t, err, `unknown filter field "owner"`)
}

func TestParseFieldFlags(t *testing.T) {
	fields, err := ParseFieldFlags([]string{"tags=per-build", "tags=^automated", "category=alerts"})
	require.NoError(t, err)
	assert.Equal(t, Fields{
		"tags":     {Include: []string{"per-build"}, Exclude: []string{"automated"}},
		"category": {Include: []string{"alerts"}},
	}, fields)

	_, err = ParseFieldFlags([]string{"tags"})
	assert.Error(t, err)
	_, err = ParseFieldFlags([]string{"nope=1"})
	assert.Error(t, err)
}

func TestLoadFieldsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tags:\n  exclude: [automated]\ncategory:\n  include: [alerts]\n"), 0o644))

	fields, err := LoadFieldsFile(path)
	require.NoError(t, err)

	out, err := ByFields(corpus(), fields)
	require.NoError(t, err)
	assert.Equal(t, []string{"A02"}, ids(out))
}

func TestRelease(t *testing.T) {
	tests := corpus()

	out := Release(tests, "osd-fresh-install", "1.3.0")
	assert.Equal(t, []string{"A02", "C02"}, ids(out))

	out = Release(tests, "rhpds", "1.2.0")
	assert.Equal(t, []string{"B01"}, ids(out))
}

func TestInRelease(t *testing.T) {
	perBuild := testcase.TestCase{Tags: []string{"per-build"}, Environments: []string{"E"}, Targets: []string{"0.1.0"}}
	assert.True(t, InRelease(perBuild, "E", "9.9.0"))

	targeted := testcase.TestCase{Tags: []string{}, Environments: []string{"E"}, Targets: []string{"1.2.0"}}
	assert.False(t, InRelease(targeted, "E", "1.3.0"))
	assert.True(t, InRelease(targeted, "E", "1.2.0"))
	assert.False(t, InRelease(targeted, "F", "1.2.0"))

	automated := testcase.TestCase{Tags: []string{"automated", "per-build"}, Environments: []string{"E"}}
	assert.False(t, InRelease(automated, "E", "1.2.0"))
}

func TestByQuery(t *testing.T) {
	q, err := ParseQuery(`(.components // []) | index("monitoring") != null`)
	require.NoError(t, err)

	out, err := ByQuery(corpus(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"C02"}, ids(out))

	q, err = ParseQuery(`.id | startswith("A")`)
	require.NoError(t, err)
	out, err = ByQuery(corpus(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"A01", "A02"}, ids(out))

	_, err = ParseQuery(`.id |`)
	assert.Error(t, err)
}

func TestSetApply(t *testing.T) {
	set := Set{
		Tags:        []string{"^automated"},
		Fields:      Fields{"category": {Include: []string{"upgrade"}}},
		Environment: "osd-fresh-install",
		Target:      "1.2.0",
	}
	out, err := set.Apply(corpus())
	require.NoError(t, err)
	assert.Equal(t, []string{"C01"}, ids(out))

	_, err = Set{Environment: "rhpds"}.Apply(corpus())
	assert.True(t, testcase.IsPrecondition(err))
}
