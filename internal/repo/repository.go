// Package repo provides typed accessors over the local store for tasks,
// employees, announcements, and settings. Every mutation follows the same
// path: read the current full snapshot, apply the one change, and hand the
// new snapshot to the sync engine's persist path. That retransmits the
// whole document per change, which is what the whole-document remote
// protocol expects.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/crewcheck/internal/model"
	"github.com/nhle/crewcheck/internal/store"
	syncengine "github.com/nhle/crewcheck/internal/sync"
	"github.com/nhle/crewcheck/internal/token"
)

// Repository mediates all domain reads and writes.
type Repository struct {
	store  store.Store
	engine *syncengine.Engine
}

// New creates a Repository writing through the given engine.
func New(s store.Store, e *syncengine.Engine) *Repository {
	return &Repository{store: s, engine: e}
}

// Tasks returns all tasks, or an empty slice when none are stored.
func (r *Repository) Tasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if _, err := r.store.Get(ctx, store.KeyTasks, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// TaskByID returns the task with the given id, or nil when absent.
func (r *Repository) TaskByID(ctx context.Context, id string) (*model.Task, error) {
	tasks, err := r.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

// SaveTask inserts or replaces a task by ID. A task without an ID gets one;
// CreatedAt is set once on creation and CompletedAt exactly once when the
// status first becomes completed.
func (r *Repository) SaveTask(ctx context.Context, t model.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = model.NowMillis()
	}
	if t.Status == model.StatusCompleted && t.CompletedAt == 0 {
		t.CompletedAt = model.NowMillis()
	}

	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range snap.Tasks {
		if snap.Tasks[i].ID == t.ID {
			snap.Tasks[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		snap.Tasks = append(snap.Tasks, t)
	}

	return r.engine.Persist(ctx, snap, syncengine.KindTasks)
}

// SaveTasks creates a batch of tasks in one persist, as when the supervisor
// assigns the same checklist to several employees.
func (r *Repository) SaveTasks(ctx context.Context, tasks []model.Task) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	now := model.NowMillis()
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.Status == "" {
			t.Status = model.StatusPending
		}
		if t.CreatedAt == 0 {
			t.CreatedAt = now
		}
		snap.Tasks = append(snap.Tasks, t)
	}

	return r.engine.Persist(ctx, snap, syncengine.KindTasks)
}

// DeleteTask removes the task entirely. There is no tombstone: a device
// holding a pre-delete snapshot can resurrect the task with its next push.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	kept := snap.Tasks[:0]
	for _, t := range snap.Tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	snap.Tasks = kept

	return r.engine.Persist(ctx, snap, syncengine.KindTasks)
}

// Employees returns the employee name list in insertion order.
func (r *Repository) Employees(ctx context.Context) ([]string, error) {
	var employees []string
	if _, err := r.store.Get(ctx, store.KeyEmployees, &employees); err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []string{}
	}
	return employees, nil
}

// AddEmployee appends a name, enforcing uniqueness on insert. Blank names
// and duplicates are rejected.
func (r *Repository) AddEmployee(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("employee name is empty")
	}

	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, existing := range snap.Employees {
		if existing == name {
			return fmt.Errorf("employee %q already exists", name)
		}
	}
	snap.Employees = append(snap.Employees, name)

	return r.engine.Persist(ctx, snap, syncengine.KindEmployees)
}

// RemoveEmployee deletes a name from the list. Existing tasks keep their
// assignee string; matching is by name, not by reference.
func (r *Repository) RemoveEmployee(ctx context.Context, name string) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	kept := snap.Employees[:0]
	for _, e := range snap.Employees {
		if e != name {
			kept = append(kept, e)
		}
	}
	snap.Employees = kept

	return r.engine.Persist(ctx, snap, syncengine.KindEmployees)
}

// SaveEmployees replaces the whole list, deduplicating while preserving
// first-occurrence order.
func (r *Repository) SaveEmployees(ctx context.Context, names []string) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	snap.Employees = dedupe(names)

	return r.engine.Persist(ctx, snap, syncengine.KindEmployees)
}

// Announcements returns the announcement list, newest first.
func (r *Repository) Announcements(ctx context.Context) ([]model.Announcement, error) {
	var anns []model.Announcement
	if _, err := r.store.Get(ctx, store.KeyAnnouncements, &anns); err != nil {
		return nil, err
	}
	if anns == nil {
		anns = []model.Announcement{}
	}
	return anns, nil
}

// AddAnnouncement prepends a new announcement.
func (r *Repository) AddAnnouncement(ctx context.Context, content string) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	ann := model.Announcement{
		ID:        uuid.New().String(),
		Content:   content,
		CreatedAt: model.NowMillis(),
	}
	snap.Announcements = append([]model.Announcement{ann}, snap.Announcements...)

	return r.engine.Persist(ctx, snap, syncengine.KindAnnouncements)
}

// DeleteAnnouncement removes an announcement by id.
func (r *Repository) DeleteAnnouncement(ctx context.Context, id string) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	kept := snap.Announcements[:0]
	for _, a := range snap.Announcements {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	snap.Announcements = kept

	return r.engine.Persist(ctx, snap, syncengine.KindAnnouncements)
}

// AdminPassword returns the stored supervisor password, falling back to the
// default when none is set.
func (r *Repository) AdminPassword(ctx context.Context) (string, error) {
	var pwd string
	found, err := r.store.Get(ctx, store.KeyAdminPassword, &pwd)
	if err != nil {
		return "", err
	}
	if !found || pwd == "" {
		return model.DefaultAdminPassword, nil
	}
	return pwd, nil
}

// SaveAdminPassword stores a new supervisor password.
func (r *Repository) SaveAdminPassword(ctx context.Context, pwd string) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	snap.AdminPassword = pwd

	return r.engine.Persist(ctx, snap, syncengine.KindSettings)
}

// AccessCode returns the shared employee access code, empty when unset.
func (r *Repository) AccessCode(ctx context.Context) (string, error) {
	var code string
	if _, err := r.store.Get(ctx, store.KeyAccessCode, &code); err != nil {
		return "", err
	}
	return code, nil
}

// SaveAccessCode stores the shared employee access code.
func (r *Repository) SaveAccessCode(ctx context.Context, code string) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	snap.AccessCode = code

	return r.engine.Persist(ctx, snap, syncengine.KindSettings)
}

// LastEmployeeName returns the name last used on this device. It is a
// device-local convenience and does not sync.
func (r *Repository) LastEmployeeName(ctx context.Context) (string, error) {
	var name string
	if _, err := r.store.Get(ctx, store.KeyLastEmployee, &name); err != nil {
		return "", err
	}
	return name, nil
}

// SaveLastEmployeeName records the name last used on this device.
func (r *Repository) SaveLastEmployeeName(ctx context.Context, name string) error {
	return r.store.Set(ctx, store.KeyLastEmployee, name)
}

// Snapshot assembles the full SystemData view of local state with
// UpdatedAt set to now.
func (r *Repository) Snapshot(ctx context.Context) (model.SystemData, error) {
	tasks, err := r.Tasks(ctx)
	if err != nil {
		return model.SystemData{}, err
	}
	employees, err := r.Employees(ctx)
	if err != nil {
		return model.SystemData{}, err
	}
	anns, err := r.Announcements(ctx)
	if err != nil {
		return model.SystemData{}, err
	}
	pwd, err := r.AdminPassword(ctx)
	if err != nil {
		return model.SystemData{}, err
	}
	code, err := r.AccessCode(ctx)
	if err != nil {
		return model.SystemData{}, err
	}

	return model.SystemData{
		Tasks:         tasks,
		Employees:     employees,
		Announcements: anns,
		AdminPassword: pwd,
		AccessCode:    code,
		UpdatedAt:     model.NowMillis(),
	}, nil
}

// ExportBackup serializes the full snapshot as an indented JSON document,
// suitable for writing to a backup file and re-ingesting through Import.
func (r *Repository) ExportBackup(ctx context.Context) ([]byte, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling backup: %w", err)
	}
	return data, nil
}

// ExportAssignmentCode encodes the photo-stripped task and employee lists
// as a clipboard token for low-bandwidth handoff.
func (r *Repository) ExportAssignmentCode(ctx context.Context) (string, error) {
	tasks, err := r.Tasks(ctx)
	if err != nil {
		return "", err
	}
	employees, err := r.Employees(ctx)
	if err != nil {
		return "", err
	}

	return token.Encode(model.AssignmentData{
		Tasks:     model.StripPhotos(tasks),
		Employees: employees,
		Type:      model.AssignmentType,
	})
}

// InviteToken encodes the active remote config so a second device can join
// this team's sync instantly. It fails when no remote is configured.
func (r *Repository) InviteToken() (string, error) {
	cfg := r.engine.RemoteConfig()
	if cfg == nil {
		return "", fmt.Errorf("no remote store configured")
	}
	return token.Encode(cfg)
}

// JoinFromInvite decodes an invite token and configures remote sync from it.
func (r *Repository) JoinFromInvite(ctx context.Context, tok string) error {
	cfg := token.DecodeRemoteConfig(tok)
	if cfg == nil {
		return fmt.Errorf("invalid invite token")
	}
	return r.engine.Configure(ctx, *cfg)
}

// dedupe removes duplicates while preserving first-occurrence order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
