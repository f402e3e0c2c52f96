// Package dedup finds panels that share a code and plans which rows to remove.
//
// Each duplicate group keeps exactly one survivor: the member with the smallest
// pixel area, ties broken by the lowest id. Storage order is never relied on.
package dedup

import (
	"sort"

	"github.com/Veraticus/led-inventory/internal/model"
)

// Group is every panel sharing one code, ordered survivor first.
type Group struct {
	Code    string        `json:"code"`
	Members []model.Panel `json:"members"`
}

// Survivor returns the member that cleanup keeps.
func (g Group) Survivor() model.Panel {
	return g.Members[0]
}

// GroupPlan describes the cleanup of one duplicate group.
type GroupPlan struct {
	Code               string             `json:"code"`
	DeletedIDs         []int64            `json:"deletedIds"`
	DeletedDimensions  []model.Dimensions `json:"deletedDimensions"`
	SurvivorDimensions model.Dimensions   `json:"survivorDimensions"`
	SurvivorID         int64              `json:"survivorId"`
}

// Plan is the full cleanup: one surviving panel per duplicated code and the
// rows to delete.
type Plan struct {
	Survivors []model.Panel `json:"survivors"`
	Groups    []GroupPlan   `json:"groups"`
}

// DeletionIDs flattens every group's deletions in plan order.
func (p Plan) DeletionIDs() []int64 {
	var ids []int64
	for _, g := range p.Groups {
		ids = append(ids, g.DeletedIDs...)
	}
	return ids
}

// Filter returns the plan restricted to the groups keep accepts.
func (p Plan) Filter(keep func(GroupPlan) bool) Plan {
	out := Plan{
		Survivors: make([]model.Panel, 0, len(p.Groups)),
		Groups:    make([]GroupPlan, 0, len(p.Groups)),
	}
	for i, g := range p.Groups {
		if !keep(g) {
			continue
		}
		out.Groups = append(out.Groups, g)
		if i < len(p.Survivors) {
			out.Survivors = append(out.Survivors, p.Survivors[i])
		}
	}
	return out
}

// Empty reports whether the plan has nothing to delete.
func (p Plan) Empty() bool {
	return len(p.Groups) == 0
}

// Stats summarizes duplication in a snapshot.
// DuplicateRecordCount always equals TotalRecords - UniqueCodes.
type Stats struct {
	TotalRecords         int `json:"totalRecords"`
	UniqueCodes          int `json:"uniqueCodes"`
	DuplicateRecordCount int `json:"duplicateRecordCount"`
	DuplicateGroupCount  int `json:"duplicateGroupCount"`
}

// BySurvivorOrder reports whether a sorts before b: smaller area first, then lower id.
func BySurvivorOrder(a, b model.Panel) bool {
	areaA, areaB := a.Area(), b.Area()
	if areaA != areaB {
		return areaA < areaB
	}
	return a.ID < b.ID
}

// Analyze returns the duplicate groups in the snapshot, sorted by code.
func Analyze(panels []model.Panel) []Group {
	byCode := groupByCode(panels)

	groups := make([]Group, 0, len(byCode))
	for code, members := range byCode {
		if len(members) < 2 {
			continue
		}
		sorted := make([]model.Panel, len(members))
		copy(sorted, members)
		sort.SliceStable(sorted, func(i, j int) bool {
			return BySurvivorOrder(sorted[i], sorted[j])
		})
		groups = append(groups, Group{Code: code, Members: sorted})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Code < groups[j].Code
	})

	return groups
}

// PlanCleanup computes the cleanup plan without touching storage.
func PlanCleanup(panels []model.Panel) Plan {
	groups := Analyze(panels)

	plan := Plan{
		Survivors: make([]model.Panel, 0, len(groups)),
		Groups:    make([]GroupPlan, 0, len(groups)),
	}

	for _, g := range groups {
		survivor := g.Survivor()
		gp := GroupPlan{
			Code:               g.Code,
			SurvivorID:         survivor.ID,
			SurvivorDimensions: survivor.Dimensions,
			DeletedIDs:         make([]int64, 0, len(g.Members)-1),
			DeletedDimensions:  make([]model.Dimensions, 0, len(g.Members)-1),
		}
		for _, m := range g.Members[1:] {
			gp.DeletedIDs = append(gp.DeletedIDs, m.ID)
			gp.DeletedDimensions = append(gp.DeletedDimensions, m.Dimensions)
		}
		plan.Survivors = append(plan.Survivors, survivor)
		plan.Groups = append(plan.Groups, gp)
	}

	return plan
}

// ComputeStats counts records, codes and duplicates in the snapshot.
func ComputeStats(panels []model.Panel) Stats {
	byCode := groupByCode(panels)

	stats := Stats{
		TotalRecords: len(panels),
		UniqueCodes:  len(byCode),
	}
	for _, members := range byCode {
		if len(members) > 1 {
			stats.DuplicateGroupCount++
		}
	}
	stats.DuplicateRecordCount = stats.TotalRecords - stats.UniqueCodes

	return stats
}

func groupByCode(panels []model.Panel) map[string][]model.Panel {
	groups := make(map[string][]model.Panel)
	for _, p := range panels {
		groups[p.Code] = append(groups[p.Code], p)
	}
	return groups
}
