package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nhle/crewcheck/internal/model"
	syncengine "github.com/nhle/crewcheck/internal/sync"
	"github.com/nhle/crewcheck/internal/token"
)

// MergeStats reports what a manual import changed, for user feedback.
type MergeStats struct {
	// New counts imported tasks whose id was not present locally.
	New int

	// Updated counts local tasks overwritten by a more advanced import.
	Updated int
}

// Import merges an external snapshot into local state. Unlike the sync
// engine's always-overwrite pull, this path is conservative: employees are
// unioned, announcements are unioned by id, and a local task is only
// replaced when the imported copy is more advanced. The merged result is
// computed in full before a single persist, so a failure applies nothing.
func (r *Repository) Import(ctx context.Context, data model.SystemData) (MergeStats, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return MergeStats{}, err
	}

	snap.Employees = dedupe(append(snap.Employees, data.Employees...))
	snap.Announcements = mergeAnnouncements(data.Announcements, snap.Announcements)

	var stats MergeStats
	snap.Tasks, stats = mergeTasks(snap.Tasks, data.Tasks)

	err = r.engine.Persist(ctx, snap,
		syncengine.KindTasks, syncengine.KindEmployees, syncengine.KindAnnouncements,
	)
	if err != nil {
		return MergeStats{}, err
	}
	return stats, nil
}

// ImportCode parses a pasted payload and merges it. It first tries the
// token codec, then falls back to raw JSON. When neither parse yields
// recognizable data it fails without applying anything.
func (r *Repository) ImportCode(ctx context.Context, code string) (MergeStats, error) {
	if data := token.DecodeSystemData(code); data != nil {
		return r.Import(ctx, *data)
	}

	var data model.SystemData
	if err := json.Unmarshal([]byte(code), &data); err == nil {
		if data.Tasks != nil || data.Employees != nil || data.Announcements != nil {
			return r.Import(ctx, data)
		}
	}

	return MergeStats{}, fmt.Errorf("unrecognized import payload: not a transfer code or backup document")
}

// mergeTasks merges imported tasks into local ones. New ids are appended;
// existing ids are overwritten only when moreAdvanced says the imported
// copy has made strictly more progress.
func mergeTasks(local, imported []model.Task) ([]model.Task, MergeStats) {
	merged := make([]model.Task, len(local))
	copy(merged, local)

	index := make(map[string]int, len(merged))
	for i, t := range merged {
		index[t.ID] = i
	}

	var stats MergeStats
	for _, imp := range imported {
		i, ok := index[imp.ID]
		if !ok {
			index[imp.ID] = len(merged)
			merged = append(merged, imp)
			stats.New++
			continue
		}
		if moreAdvanced(imp, merged[i]) {
			merged[i] = imp
			stats.Updated++
		}
	}
	return merged, stats
}

// moreAdvanced evaluates the merge predicates in fixed priority order:
// completion status first, then checklist progress, then photo count.
// Ties keep the local copy.
func moreAdvanced(imported, current model.Task) bool {
	if statusAdvanced(imported, current) {
		return true
	}
	if checklistAdvanced(imported, current) {
		return true
	}
	return photosAdvanced(imported, current)
}

// statusAdvanced reports whether the imported task is completed while the
// current one is still pending.
func statusAdvanced(imported, current model.Task) bool {
	return imported.Status == model.StatusCompleted &&
		current.Status == model.StatusPending
}

// checklistAdvanced reports whether the imported task has strictly more
// checked-off items.
func checklistAdvanced(imported, current model.Task) bool {
	return imported.CompletedChecklistCount() > current.CompletedChecklistCount()
}

// photosAdvanced reports whether the imported task has strictly more photos.
func photosAdvanced(imported, current model.Task) bool {
	return len(imported.Photos) > len(current.Photos)
}

// mergeAnnouncements unions by id with imported entries first. Duplicate
// ids keep the position of their first occurrence and the value of their
// last, matching the import behavior users already rely on.
func mergeAnnouncements(imported, local []model.Announcement) []model.Announcement {
	index := make(map[string]int)
	out := make([]model.Announcement, 0, len(imported)+len(local))

	for _, a := range append(append([]model.Announcement{}, imported...), local...) {
		if i, ok := index[a.ID]; ok {
			out[i] = a
			continue
		}
		index[a.ID] = len(out)
		out = append(out, a)
	}
	return out
}
