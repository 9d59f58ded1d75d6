package sync

// ModeKind tags the active view state. One tagged value replaces the pile
// of independent booleans the interface would otherwise juggle, so invalid
// combinations cannot be represented.
type ModeKind string

const (
	ModePersonal    ModeKind = "personal"
	ModeGroupList   ModeKind = "group_list"
	ModeGroupDetail ModeKind = "group_detail"
)

// Mode is the active scope of the engine. GroupID is set only for
// ModeGroupDetail.
type Mode struct {
	Kind    ModeKind
	GroupID string
}

// IsGroup reports whether a group scope is active.
func (m Mode) IsGroup() bool {
	return m.Kind == ModeGroupDetail && m.GroupID != ""
}
