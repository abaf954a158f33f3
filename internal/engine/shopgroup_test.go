package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopGroups_FilterFor(t *testing.T) {
	sg := DefaultShopGroups()

	bala, err := sg.FilterFor("Bala Group")
	require.NoError(t, err)
	assert.True(t, bala.Match("Bala Kids Center"))
	assert.True(t, bala.Match("bala outlet"))
	assert.True(t, bala.Match("城东巴拉店"))
	assert.False(t, bala.Match("Semir Plaza"))

	semir, err := sg.FilterFor("Semir Group")
	require.NoError(t, err)
	assert.True(t, semir.Match("SEMIR 旗舰店"))
	assert.True(t, semir.Match("森马城西店"))
	assert.False(t, semir.Match("Bala Kids"))

	others, err := sg.FilterFor("Others Group")
	require.NoError(t, err)
	assert.True(t, others.Match("Corner Store"))
	assert.False(t, others.Match("Bala Kids"))
	assert.False(t, others.Match("森马城西店"))
}

func TestShopGroups_FilterFor_EmptyAndUnknown(t *testing.T) {
	sg := DefaultShopGroups()

	filter, err := sg.FilterFor("")
	require.NoError(t, err)
	assert.Nil(t, filter, "empty group name means no filtering")

	_, err = sg.FilterFor("Mall Group")
	assert.ErrorContains(t, err, "Mall Group")
}

func TestShopGroups_GroupNames(t *testing.T) {
	assert.Equal(t, []string{"Bala Group", "Semir Group", "Others Group"}, DefaultShopGroups().GroupNames())
}

func TestLoadShopGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yaml")
	content := `groups:
  - name: North Group
    contains: ["North", "北"]
  - name: Rest Group
    residual: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sg, err := LoadShopGroups(path)
	require.NoError(t, err)
	require.Len(t, sg.Groups, 2)

	north, err := sg.FilterFor("North Group")
	require.NoError(t, err)
	assert.True(t, north.Match("North Mall"))
	assert.True(t, north.Match("城北店"))

	rest, err := sg.FilterFor("Rest Group")
	require.NoError(t, err)
	assert.False(t, rest.Match("North Mall"))
	assert.True(t, rest.Match("South Mall"))
}

func TestLoadShopGroups_Errors(t *testing.T) {
	_, err := LoadShopGroups(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("groups: []\n"), 0o644))
	_, err = LoadShopGroups(empty)
	assert.ErrorContains(t, err, "no groups")
}
