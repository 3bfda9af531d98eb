package sys

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfRoleID_RoundTrip(t *testing.T) {
	id := BuildSelfRoleID(testGuildID, "pronouns", 777)
	assert.Equal(t, "selfrole:123456789012345678:pronouns:777", id)

	guildID, category, roleID, err := ParseSelfRoleID(id)
	require.NoError(t, err)
	assert.Equal(t, testGuildID, guildID)
	assert.Equal(t, "pronouns", category)
	assert.Equal(t, snowflake.ID(777), roleID)
}

func TestParseSelfRoleID_Malformed(t *testing.T) {
	for _, bad := range []string{
		"other:1:2:3",
		"selfrole:1:2",
		"selfrole:1:2:3:4",
		"selfrole:abc:cat:777",
		"selfrole:123456789012345678:cat:abc",
	} {
		_, _, _, err := ParseSelfRoleID(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestIsColorCategory(t *testing.T) {
	assert.True(t, IsColorCategory("color"))
	assert.True(t, IsColorCategory("Colour"))
	assert.True(t, IsColorCategory("COLOR"))
	assert.False(t, IsColorCategory("pronouns"))
}

func TestSelfRoles_AddAndList(t *testing.T) {
	sr := NewSelfRoles(NewStore(t.TempDir()))

	require.NoError(t, sr.AddRole(testGuildID, "pronouns", SelfRole{RoleID: 1, Label: "they/them"}))
	require.NoError(t, sr.AddRole(testGuildID, "pronouns", SelfRole{RoleID: 2, Label: "she/her"}))
	require.NoError(t, sr.AddRole(testGuildID, "color", SelfRole{RoleID: 3, Label: "Red"}))

	roles, err := sr.CategoryRoles(testGuildID, "pronouns")
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "they/them", roles[0].Label)

	// Category lookup is case-insensitive.
	roles, err = sr.CategoryRoles(testGuildID, "Pronouns")
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	doc, err := sr.Categories(testGuildID)
	require.NoError(t, err)
	assert.Len(t, doc.Categories, 2)
}

func TestSelfRoles_PanelCounts(t *testing.T) {
	sr := NewSelfRoles(NewStore(t.TempDir()))

	panels, guilds, err := sr.PanelCounts()
	require.NoError(t, err)
	assert.Zero(t, panels)
	assert.Zero(t, guilds)

	require.NoError(t, sr.AddRole(testGuildID, "pronouns", SelfRole{RoleID: 1, Label: "they/them"}))
	require.NoError(t, sr.AddRole(testGuildID, "color", SelfRole{RoleID: 2, Label: "Red"}))
	require.NoError(t, sr.AddRole(snowflake.ID(987654321098765432), "pronouns", SelfRole{RoleID: 3, Label: "she/her"}))

	panels, guilds, err = sr.PanelCounts()
	require.NoError(t, err)
	assert.Equal(t, 3, panels)
	assert.Equal(t, 2, guilds)
}

func TestSelfRoles_AddRejectsColonInCategory(t *testing.T) {
	sr := NewSelfRoles(NewStore(t.TempDir()))
	err := sr.AddRole(testGuildID, "a:b", SelfRole{RoleID: 1, Label: "x"})
	assert.Error(t, err)
}

func TestSelfRoles_AddSameRoleUpdatesLabel(t *testing.T) {
	sr := NewSelfRoles(NewStore(t.TempDir()))

	require.NoError(t, sr.AddRole(testGuildID, "color", SelfRole{RoleID: 3, Label: "Red"}))
	require.NoError(t, sr.AddRole(testGuildID, "color", SelfRole{RoleID: 3, Label: "Crimson"}))

	roles, err := sr.CategoryRoles(testGuildID, "color")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "Crimson", roles[0].Label)
}

func TestSelfRoles_RemoveRole(t *testing.T) {
	sr := NewSelfRoles(NewStore(t.TempDir()))

	require.NoError(t, sr.AddRole(testGuildID, "color", SelfRole{RoleID: 3, Label: "Red"}))

	removed, err := sr.RemoveRole(testGuildID, 3)
	require.NoError(t, err)
	assert.True(t, removed)

	// Removing the last role drops the category too.
	doc, err := sr.Categories(testGuildID)
	require.NoError(t, err)
	assert.Empty(t, doc.Categories)

	removed, err = sr.RemoveRole(testGuildID, 3)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPlanToggle_AddsAndClearsCategory(t *testing.T) {
	category := []SelfRole{{RoleID: 1}, {RoleID: 2}, {RoleID: 3}}

	// Member holds role 2 plus an unrelated role, clicks role 1.
	plan := PlanToggle([]snowflake.ID{2, 99}, category, 1)
	assert.False(t, plan.HadRole)
	assert.Equal(t, []snowflake.ID{2}, plan.Remove, "only category roles are removed")
	assert.Equal(t, snowflake.ID(1), plan.Add)
}

func TestPlanToggle_ClickingHeldRoleRemovesIt(t *testing.T) {
	category := []SelfRole{{RoleID: 1}, {RoleID: 2}}

	plan := PlanToggle([]snowflake.ID{1}, category, 1)
	assert.True(t, plan.HadRole)
	assert.Equal(t, []snowflake.ID{1}, plan.Remove)
	assert.Zero(t, plan.Add, "a second click is a plain removal")
}

func TestPlanToggle_NoHeldRoles(t *testing.T) {
	category := []SelfRole{{RoleID: 1}, {RoleID: 2}}

	plan := PlanToggle(nil, category, 2)
	assert.False(t, plan.HadRole)
	assert.Empty(t, plan.Remove)
	assert.Equal(t, snowflake.ID(2), plan.Add)
}
