package service

import (
	"fmt"
	"sort"
	"strings"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
)

// AutoGrade 对单题作答自动判分
// 选择题与判断题要求所选集合与答案集合完全一致；简答题忽略大小写与多余空白
// open / scenario 题型不可自动判分，返回 (0, false) 等待人工批改
func AutoGrade(q *model.Question, a *model.ParticipationAnswer) (float64, bool) {
	switch q.Type {
	case model.QuestionSingleChoice, model.QuestionMultipleChoice, model.QuestionTrueFalse:
		if sameSet(a.Selected, q.CorrectOptions) {
			return q.MaxPoints, true
		}
		return 0, true
	case model.QuestionShortAnswer:
		if q.CorrectText == "" {
			return 0, false
		}
		if normalizeText(a.Text) == normalizeText(q.CorrectText) {
			return q.MaxPoints, true
		}
		return 0, true
	}
	return 0, false
}

// GradeSubmission 按题目顺序生成答卷：缺答的题目记 0 分，未知题目的作答被丢弃
func GradeSubmission(questions []model.Question, inputs []dto.AnswerInput) ([]model.ParticipationAnswer, float64) {
	byQuestion := make(map[string]dto.AnswerInput, len(inputs))
	for _, in := range inputs {
		byQuestion[in.QuestionID] = in
	}

	answers := make([]model.ParticipationAnswer, 0, len(questions))
	var total float64
	for i := range questions {
		q := &questions[i]
		in := byQuestion[q.QuestionID]
		a := model.ParticipationAnswer{
			QuestionID: q.QuestionID,
			Selected:   in.Selected,
			Text:       in.Text,
		}
		a.Score, a.AutoGraded = AutoGrade(q, &a)
		total += a.Score
		answers = append(answers, a)
	}
	return answers, total
}

// ResolveCorrection 合并人工给分并重新求和
// overrides 以 question_id 为键，分数必须落在 [0, max_points] 内；
// 未覆盖的作答保留已有分数（自动判分结果或 0）
func ResolveCorrection(answers []model.ParticipationAnswer, overrides map[string]float64, questions []model.Question) ([]model.ParticipationAnswer, float64, error) {
	maxByQuestion := make(map[string]float64, len(questions))
	for _, q := range questions {
		maxByQuestion[q.QuestionID] = q.MaxPoints
	}

	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}
	for qid, v := range overrides {
		ceiling, ok := maxByQuestion[qid]
		if !ok || !answered[qid] {
			return nil, 0, fmt.Errorf("%w: %s", ErrQuestionNotFound, qid)
		}
		if v < 0 || v > ceiling {
			return nil, 0, fmt.Errorf("%w: %s (0-%g)", ErrCorrectionOutOfRange, qid, ceiling)
		}
	}

	resolved := make([]model.ParticipationAnswer, len(answers))
	var total float64
	for i, a := range answers {
		if v, ok := overrides[a.QuestionID]; ok {
			a.Score = v
			a.Corrected = true
		}
		resolved[i] = a
		total += a.Score
	}
	return resolved, total, nil
}

// CompetitionPercentage 竞赛得分百分比，舍入规则与候选人进度一致
func CompetitionPercentage(total, maxScore float64) int {
	return roundPercent(total, maxScore)
}

func sameSet(selected []int, correct []int) bool {
	a := dedupeSorted(selected)
	b := dedupeSorted(correct)
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func dedupeSorted(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
