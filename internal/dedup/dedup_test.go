package dedup

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func panel(id int64, code string, w, h int) model.Panel {
	return model.Panel{
		ID:         id,
		Code:       code,
		Dimensions: model.Dimensions{WidthPx: w, HeightPx: h},
	}
}

func TestPlanCleanup_Scenario(t *testing.T) {
	panels := []model.Panel{
		panel(1, "A", 1920, 1080),
		panel(2, "A", 1000, 1000),
		panel(3, "B", 500, 500),
	}

	plan := PlanCleanup(panels)

	want := []GroupPlan{{
		Code:               "A",
		SurvivorID:         2,
		SurvivorDimensions: model.Dimensions{WidthPx: 1000, HeightPx: 1000},
		DeletedIDs:         []int64{1},
		DeletedDimensions:  []model.Dimensions{{WidthPx: 1920, HeightPx: 1080}},
	}}
	if diff := cmp.Diff(want, plan.Groups); diff != "" {
		t.Errorf("plan groups mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, plan.Survivors, 1)
	assert.Equal(t, int64(2), plan.Survivors[0].ID)
	assert.Equal(t, []int64{1}, plan.DeletionIDs())

	assert.Equal(t, Stats{
		TotalRecords:         3,
		UniqueCodes:          2,
		DuplicateRecordCount: 1,
		DuplicateGroupCount:  1,
	}, ComputeStats(panels))
}

func TestBySurvivorOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Panel
		want bool
	}{
		{name: "smaller area first", a: panel(9, "X", 10, 10), b: panel(1, "X", 20, 20), want: true},
		{name: "larger area later", a: panel(1, "X", 20, 20), b: panel(9, "X", 10, 10), want: false},
		{name: "tie broken by id", a: panel(3, "X", 1920, 1080), b: panel(7, "X", 1080, 1920), want: true},
		{name: "tie reversed", a: panel(7, "X", 1080, 1920), b: panel(3, "X", 1920, 1080), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BySurvivorOrder(tt.a, tt.b))
		})
	}
}

func TestPlanCleanup_TieIgnoresInputOrder(t *testing.T) {
	a := []model.Panel{panel(5, "A", 1920, 1080), panel(2, "A", 1080, 1920), panel(9, "A", 2000, 2000)}
	b := []model.Panel{a[2], a[0], a[1]}

	planA := PlanCleanup(a)
	planB := PlanCleanup(b)

	require.Len(t, planA.Groups, 1)
	assert.Equal(t, int64(2), planA.Groups[0].SurvivorID)
	assert.Equal(t, []int64{5, 9}, planA.Groups[0].DeletedIDs)
	if diff := cmp.Diff(planA, planB); diff != "" {
		t.Errorf("plan depends on input order (-a +b):\n%s", diff)
	}
}

func TestAnalyze(t *testing.T) {
	panels := []model.Panel{
		panel(1, "Z", 10, 10),
		panel(2, "Z", 5, 5),
		panel(3, "M", 10, 10),
		panel(4, "A", 10, 10),
		panel(5, "A", 10, 10),
		panel(6, "A", 1, 1),
	}

	groups := Analyze(panels)
	require.Len(t, groups, 2)
	assert.Equal(t, "A", groups[0].Code)
	assert.Equal(t, "Z", groups[1].Code)
	assert.Equal(t, int64(6), groups[0].Survivor().ID)
	assert.Equal(t, []int64{6, 4, 5}, []int64{groups[0].Members[0].ID, groups[0].Members[1].ID, groups[0].Members[2].ID})
	assert.Equal(t, int64(2), groups[1].Survivor().ID)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, Stats{}, stats)
	assert.True(t, PlanCleanup(nil).Empty())
	assert.Empty(t, Analyze(nil))
}

func TestComputeStats_Identity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		n := rng.Intn(40)
		panels := make([]model.Panel, n)
		for i := range panels {
			panels[i] = panel(int64(i+1), fmt.Sprintf("C%d", rng.Intn(8)), 1+rng.Intn(50), 1+rng.Intn(50))
		}

		stats := ComputeStats(panels)
		assert.Equal(t, stats.TotalRecords-stats.UniqueCodes, stats.DuplicateRecordCount)
		assert.GreaterOrEqual(t, stats.DuplicateRecordCount, stats.DuplicateGroupCount)
		assert.Equal(t, stats.DuplicateGroupCount, len(PlanCleanup(panels).Groups))
		assert.Equal(t, stats.DuplicateRecordCount, len(PlanCleanup(panels).DeletionIDs()))
	}
}

func TestComputeStats_PairsOnlyMeansEquality(t *testing.T) {
	panels := []model.Panel{
		panel(1, "A", 1, 1), panel(2, "A", 2, 2),
		panel(3, "B", 1, 1), panel(4, "B", 2, 2),
		panel(5, "C", 1, 1),
	}
	stats := ComputeStats(panels)
	assert.Equal(t, stats.DuplicateGroupCount, stats.DuplicateRecordCount)

	panels = append(panels, panel(6, "A", 3, 3))
	stats = ComputeStats(panels)
	assert.Greater(t, stats.DuplicateRecordCount, stats.DuplicateGroupCount)
}

func TestPlan_Filter(t *testing.T) {
	plan := PlanCleanup([]model.Panel{
		panel(1, "A", 20, 20),
		panel(2, "A", 10, 10),
		panel(3, "B", 10, 10),
		panel(4, "B", 20, 20),
	})
	require.Len(t, plan.Groups, 2)

	onlyB := plan.Filter(func(g GroupPlan) bool { return g.Code == "B" })
	require.Len(t, onlyB.Groups, 1)
	require.Len(t, onlyB.Survivors, 1)
	assert.Equal(t, int64(3), onlyB.Survivors[0].ID)
	assert.Equal(t, []int64{4}, onlyB.DeletionIDs())

	none := plan.Filter(func(GroupPlan) bool { return false })
	assert.True(t, none.Empty())
	assert.Len(t, plan.Groups, 2, "filter must not modify the original plan")
}
