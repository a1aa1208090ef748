package service

import (
	"math"
	"sort"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
)

// CertificationThreshold 认证所需的最低总体百分比
const CertificationThreshold = 80

// roundPercent 计算 part/whole 的百分比并四舍五入（.5 进位）
// whole 为 0 时返回 0；结果不会为负或 NaN
func roundPercent(part, whole float64) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	p := part / whole * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return int(math.Floor(p + 0.5))
}

// CalculateCandidateProgress 汇总候选人在整套大纲上的进度
//   - MaxPossibleScore 为全部子模块满分之和，与候选人是否已被评分无关
//   - TotalScore 为已录入评分之和，未评分的子模块计 0
//   - 不在 modules 中的子模块评分不计入，单项评分以子模块当前满分封顶
func CalculateCandidateProgress(scores []model.SubModuleScore, modules []model.Module) dto.ProgressSummary {
	var maxPossible float64
	maxBySub := make(map[string]float64)
	for _, m := range modules {
		for _, sm := range m.SubModules {
			maxPossible += sm.MaxScore
			maxBySub[sm.SubModuleID] = sm.MaxScore
		}
	}

	var total float64
	for _, s := range scores {
		ceiling, ok := maxBySub[s.SubModuleID]
		if !ok {
			continue
		}
		total += math.Min(s.Score, ceiling)
	}

	return dto.ProgressSummary{
		TotalScore:       total,
		MaxPossibleScore: maxPossible,
		Percentage:       roundPercent(total, maxPossible),
	}
}

// ModuleBreakdown 按模块拆分进度，模块与子模块均按 position 排序
// appreciations 可为 nil
func ModuleBreakdown(scores []model.SubModuleScore, modules []model.Module, appreciations []model.ModuleAppreciation) []dto.ModuleProgress {
	bySub := make(map[string]model.SubModuleScore, len(scores))
	for _, s := range scores {
		bySub[s.SubModuleID] = s
	}
	comments := make(map[string]string, len(appreciations))
	for _, a := range appreciations {
		comments[a.ModuleID] = a.Comment
	}

	ordered := make([]model.Module, len(modules))
	copy(ordered, modules)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	result := make([]dto.ModuleProgress, 0, len(ordered))
	for _, m := range ordered {
		subs := make([]model.SubModule, len(m.SubModules))
		copy(subs, m.SubModules)
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].Position < subs[j].Position })

		mp := dto.ModuleProgress{
			ModuleID:     m.ModuleID,
			Name:         m.Name,
			Appreciation: comments[m.ModuleID],
			SubModules:   make([]dto.SubModuleProgress, 0, len(subs)),
		}
		for _, sm := range subs {
			row := dto.SubModuleProgress{
				SubModuleID: sm.SubModuleID,
				Name:        sm.Name,
				MaxScore:    sm.MaxScore,
			}
			if s, ok := bySub[sm.SubModuleID]; ok {
				row.Score = math.Min(s.Score, sm.MaxScore)
				row.Graded = true
				row.Comment = s.Comment
			}
			mp.TotalScore += row.Score
			mp.MaxScore += sm.MaxScore
			mp.SubModules = append(mp.SubModules, row)
		}
		mp.Percentage = roundPercent(mp.TotalScore, mp.MaxScore)
		result = append(result, mp)
	}
	return result
}

// IsCertificationEligible 认证守卫：百分比达到阈值且尚未认证
func IsCertificationEligible(c *model.Candidate, p dto.ProgressSummary) bool {
	return p.Percentage >= CertificationThreshold && !c.IsCertified
}
