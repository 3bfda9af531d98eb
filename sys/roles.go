package sys

import (
	"fmt"
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

// SelfRolePrefix is the component custom ID namespace for self-role
// buttons. The loader routes every "selfrole:..." click by prefix, so
// panels keep working across restarts without re-registering anything.
const SelfRolePrefix = "selfrole:"

// BuildSelfRoleID encodes a button custom ID as
// selfrole:<guildID>:<category>:<roleID>. Category names may not contain
// ':', AddRole enforces that.
func BuildSelfRoleID(guildID snowflake.ID, category string, roleID snowflake.ID) string {
	return fmt.Sprintf("%s%s:%s:%s", SelfRolePrefix, guildID, category, roleID)
}

// ParseSelfRoleID decodes a self-role button custom ID.
func ParseSelfRoleID(customID string) (guildID snowflake.ID, category string, roleID snowflake.ID, err error) {
	rest, ok := strings.CutPrefix(customID, SelfRolePrefix)
	if !ok {
		return 0, "", 0, fmt.Errorf("not a self-role custom ID: %q", customID)
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return 0, "", 0, fmt.Errorf("malformed self-role custom ID: %q", customID)
	}
	guildID, err = snowflake.Parse(parts[0])
	if err != nil {
		return 0, "", 0, fmt.Errorf("bad guild ID in custom ID %q: %w", customID, err)
	}
	roleID, err = snowflake.Parse(parts[2])
	if err != nil {
		return 0, "", 0, fmt.Errorf("bad role ID in custom ID %q: %w", customID, err)
	}
	return guildID, parts[1], roleID, nil
}

// IsColorCategory reports whether a category gets the color treatment:
// roles created high in the role list with a random color.
func IsColorCategory(name string) bool {
	lower := strings.ToLower(name)
	return lower == "color" || lower == "colour"
}

// --- Documents ---

type SelfRole struct {
	RoleID snowflake.ID `json:"role_id"`
	Label  string       `json:"label"`
}

type RoleCategory struct {
	Name  string     `json:"name"`
	Roles []SelfRole `json:"roles"`
}

type SelfRolesDoc struct {
	Categories []*RoleCategory `json:"categories"`
}

func (d *SelfRolesDoc) category(name string) *RoleCategory {
	for _, c := range d.Categories {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// --- Registry ---

type SelfRoles struct {
	store *Store
}

// PanelCounts walks every guild's registry and reports how many panels
// (categories) exist and how many guilds have at least one. Button
// handlers are keyed by custom-ID prefix, so the panels work across
// restarts without re-sending; this walk exists to surface the count at
// startup.
func (sr *SelfRoles) PanelCounts() (panels, guilds int, err error) {
	ids, err := sr.store.GuildIDs()
	if err != nil {
		return 0, 0, err
	}
	for _, id := range ids {
		doc, err := sr.Categories(id)
		if err != nil {
			return 0, 0, err
		}
		if len(doc.Categories) == 0 {
			continue
		}
		panels += len(doc.Categories)
		guilds++
	}
	return panels, guilds, nil
}

func NewSelfRoles(store *Store) *SelfRoles {
	return &SelfRoles{store: store}
}

// AddRole records a role under a category, creating the category on
// first use. Category names containing ':' are rejected, they would
// break the custom ID encoding.
func (sr *SelfRoles) AddRole(guildID snowflake.ID, category string, role SelfRole) error {
	if strings.Contains(category, ":") {
		return fmt.Errorf("category name %q contains ':'", category)
	}
	var doc SelfRolesDoc
	return sr.store.Update(guildID, DocSelfRoles, &doc, func() error {
		cat := doc.category(category)
		if cat == nil {
			cat = &RoleCategory{Name: category}
			doc.Categories = append(doc.Categories, cat)
		}
		for i, r := range cat.Roles {
			if r.RoleID == role.RoleID {
				cat.Roles[i] = role
				return nil
			}
		}
		cat.Roles = append(cat.Roles, role)
		return nil
	})
}

// RemoveRole deletes a role from its category. Empty categories are
// dropped. It reports whether anything was removed.
func (sr *SelfRoles) RemoveRole(guildID, roleID snowflake.ID) (bool, error) {
	removed := false
	var doc SelfRolesDoc
	err := sr.store.Update(guildID, DocSelfRoles, &doc, func() error {
		for ci, cat := range doc.Categories {
			for ri, r := range cat.Roles {
				if r.RoleID == roleID {
					cat.Roles = append(cat.Roles[:ri], cat.Roles[ri+1:]...)
					removed = true
					if len(cat.Roles) == 0 {
						doc.Categories = append(doc.Categories[:ci], doc.Categories[ci+1:]...)
					}
					return nil
				}
			}
		}
		return nil
	})
	return removed, err
}

// Categories returns the guild's self-role document.
func (sr *SelfRoles) Categories(guildID snowflake.ID) (SelfRolesDoc, error) {
	var doc SelfRolesDoc
	err := sr.store.Load(guildID, DocSelfRoles, &doc)
	return doc, err
}

// CategoryRoles returns the roles registered under one category.
func (sr *SelfRoles) CategoryRoles(guildID snowflake.ID, category string) ([]SelfRole, error) {
	doc, err := sr.Categories(guildID)
	if err != nil {
		return nil, err
	}
	if cat := doc.category(category); cat != nil {
		return cat.Roles, nil
	}
	return nil, nil
}

// --- Toggle Planning ---

// TogglePlan is the set of role changes one button click requires.
// Roles in a category are mutually exclusive: every category role the
// member holds is removed, then the clicked role is added unless the
// member already had it (that click is a plain removal).
type TogglePlan struct {
	Remove  []snowflake.ID
	Add     snowflake.ID
	HadRole bool
}

// PlanToggle computes the changes for a click without touching Discord.
func PlanToggle(memberRoles []snowflake.ID, categoryRoles []SelfRole, clicked snowflake.ID) TogglePlan {
	held := make(map[snowflake.ID]bool, len(memberRoles))
	for _, id := range memberRoles {
		held[id] = true
	}

	plan := TogglePlan{HadRole: held[clicked]}
	for _, r := range categoryRoles {
		if held[r.RoleID] {
			plan.Remove = append(plan.Remove, r.RoleID)
		}
	}
	if !plan.HadRole {
		plan.Add = clicked
	}
	return plan
}
