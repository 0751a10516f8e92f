package model

// DefaultAdminPassword is used until the supervisor sets their own.
const DefaultAdminPassword = "0000"

// SystemData is the synchronization unit: the exact JSON shape stored in the
// remote document store and written to the local store collectively. There
// is no field-level remote update; the whole document is replaced on every
// push.
type SystemData struct {
	Tasks         []Task         `json:"tasks"`
	Employees     []string       `json:"employees"`
	Announcements []Announcement `json:"announcements"`

	// AdminPassword and AccessCode are merged conservatively: when absent
	// from a pulled or imported document, the local value is retained.
	AdminPassword string `json:"adminPassword,omitempty"`
	AccessCode    string `json:"accessCode,omitempty"`

	// UpdatedAt is when this snapshot was assembled, epoch milliseconds.
	UpdatedAt int64 `json:"updatedAt"`
}

// RemoteConfig identifies a team's remote document and the credential used
// to read and write it. Its presence in the local store means remote sync is
// configured; absence means local-only mode.
type RemoteConfig struct {
	// StoreID is the remote document identifier assigned by the store.
	StoreID string `json:"storeId"`

	// APIKey is the opaque bearer-style credential.
	APIKey string `json:"apiKey"`

	// StoreName is the user-chosen label for the team store.
	StoreName string `json:"storeName"`
}

// AssignmentType tags an AssignmentData payload so pasted codes can be told
// apart from full backups.
const AssignmentType = "assignment"

// AssignmentData is the lightweight task-handoff payload: the full task and
// employee lists with every photo stripped, cheap enough to move through a
// clipboard or chat message.
type AssignmentData struct {
	Tasks     []Task   `json:"tasks"`
	Employees []string `json:"employees"`
	Type      string   `json:"type"`
}

// StripPhotos returns a copy of tasks with every photo list emptied.
// Checklist state and assignees are preserved verbatim.
func StripPhotos(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Photos = []string{}
		out[i] = t
	}
	return out
}
