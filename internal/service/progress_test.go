package service

import (
	"testing"

	"dhs-academy/backend/internal/model"
)

// curriculumFixture 两个模块：M1(10+5)，M2(10)，满分合计 25
func curriculumFixture() []model.Module {
	return []model.Module{
		{ModuleID: "m2", Name: "Procédures", Position: 2, SubModules: []model.SubModule{
			{SubModuleID: "s3", ModuleID: "m2", Name: "Arrestation", MaxScore: 10, Position: 1},
		}},
		{ModuleID: "m1", Name: "Droit", Position: 1, SubModules: []model.SubModule{
			{SubModuleID: "s2", ModuleID: "m1", Name: "Code pénal", MaxScore: 5, Position: 2},
			{SubModuleID: "s1", ModuleID: "m1", Name: "Constitution", MaxScore: 10, Position: 1},
		}},
	}
}

func TestCalculateCandidateProgress(t *testing.T) {
	modules := curriculumFixture()
	tests := []struct {
		name    string
		scores  []model.SubModuleScore
		total   float64
		percent int
	}{
		{"无评分", nil, 0, 0},
		{"部分评分", []model.SubModuleScore{{SubModuleID: "s1", Score: 8}}, 8, 32},
		{"满分", []model.SubModuleScore{{SubModuleID: "s1", Score: 10}, {SubModuleID: "s2", Score: 5}, {SubModuleID: "s3", Score: 10}}, 25, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CalculateCandidateProgress(tt.scores, modules)
			if p.MaxPossibleScore != 25 {
				t.Errorf("期望满分 25（与评分无关），实际: %v", p.MaxPossibleScore)
			}
			if p.TotalScore != tt.total {
				t.Errorf("期望总分 %v，实际: %v", tt.total, p.TotalScore)
			}
			if p.Percentage != tt.percent {
				t.Errorf("期望百分比 %d，实际: %d", tt.percent, p.Percentage)
			}
		})
	}
}

func TestCalculateCandidateProgress_EmptyCurriculum(t *testing.T) {
	p := CalculateCandidateProgress([]model.SubModuleScore{{SubModuleID: "x", Score: 3}}, nil)
	if p.MaxPossibleScore != 0 || p.Percentage != 0 {
		t.Errorf("期望空大纲百分比为 0，实际: %+v", p)
	}
}

func TestCalculateCandidateProgress_IgnoresScoresOutsideCurriculum(t *testing.T) {
	modules := curriculumFixture()
	scores := []model.SubModuleScore{
		{SubModuleID: "s1", Score: 10},
		{SubModuleID: "deleted", Score: 10}, // 已删除的子模块
		{SubModuleID: "s2", Score: 9},       // 满分下调到 5 之前录入
	}

	p := CalculateCandidateProgress(scores, modules)
	if p.TotalScore != 15 || p.MaxPossibleScore != 25 || p.Percentage != 60 {
		t.Errorf("期望 15/25=60%%，实际: %+v", p)
	}

	var breakdown float64
	for _, m := range ModuleBreakdown(scores, modules, nil) {
		breakdown += m.TotalScore
	}
	if breakdown != p.TotalScore {
		t.Errorf("模块明细合计 %v 与总进度 %v 不一致", breakdown, p.TotalScore)
	}
}

func TestRoundPercent_HalfUp(t *testing.T) {
	tests := []struct {
		part, whole float64
		want        int
	}{
		{1, 8, 13},   // 12.5
		{1, 3, 33},   // 33.33
		{2, 3, 67},   // 66.67
		{51, 64, 80}, // 79.6875
		{-1, 10, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := roundPercent(tt.part, tt.whole); got != tt.want {
			t.Errorf("roundPercent(%v, %v) 期望 %d，实际: %d", tt.part, tt.whole, tt.want, got)
		}
	}
}

func TestModuleBreakdown_OrderAndAppreciation(t *testing.T) {
	scores := []model.SubModuleScore{{SubModuleID: "s1", Score: 7, Comment: "Bien"}}
	appreciations := []model.ModuleAppreciation{{ModuleID: "m1", Comment: "Sérieux"}}

	got := ModuleBreakdown(scores, curriculumFixture(), appreciations)
	if len(got) != 2 || got[0].ModuleID != "m1" || got[1].ModuleID != "m2" {
		t.Fatalf("期望按 position 排序 [m1 m2]，实际: %+v", got)
	}
	m1 := got[0]
	if m1.SubModules[0].SubModuleID != "s1" || !m1.SubModules[0].Graded || m1.SubModules[1].Graded {
		t.Errorf("子模块顺序或评分标记错误: %+v", m1.SubModules)
	}
	if m1.TotalScore != 7 || m1.MaxScore != 15 || m1.Percentage != 47 {
		t.Errorf("期望 7/15=47%%，实际: %v/%v=%d%%", m1.TotalScore, m1.MaxScore, m1.Percentage)
	}
	if m1.Appreciation != "Sérieux" || got[1].Appreciation != "" {
		t.Errorf("评语归属错误: %+v", got)
	}
}

func TestIsCertificationEligible(t *testing.T) {
	modules := curriculumFixture()
	full := []model.SubModuleScore{{SubModuleID: "s1", Score: 10}, {SubModuleID: "s3", Score: 10}}   // 20/25 = 80
	short := []model.SubModuleScore{{SubModuleID: "s1", Score: 10}, {SubModuleID: "s3", Score: 9.8}} // 79.2 → 79

	if !IsCertificationEligible(&model.Candidate{}, CalculateCandidateProgress(full, modules)) {
		t.Error("期望 80% 满足认证条件")
	}
	if IsCertificationEligible(&model.Candidate{}, CalculateCandidateProgress(short, modules)) {
		t.Error("期望 79% 不满足认证条件")
	}
	if IsCertificationEligible(&model.Candidate{IsCertified: true}, CalculateCandidateProgress(full, modules)) {
		t.Error("期望已认证候选人不可再次认证")
	}
}
