package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dhs-academy/backend/internal/model"
)

func TestExportCandidateProgress(t *testing.T) {
	repo, mocks := newMockRepository()
	seedCurriculum(mocks)
	svc := NewExportService(repo, zap.NewNop())
	ctx := context.Background()

	mocks.candidate.candidates["c1"] = &model.Candidate{
		CandidateID: "c1", FirstName: "Jean", LastName: "Valjean", ServerID: "24601", Status: model.CandidateStatusActive,
		Scores: []model.SubModuleScore{{SubModuleID: "s1", Score: 8}},
	}

	buf, filename, err := svc.ExportCandidateProgress(ctx)
	if err != nil {
		t.Fatalf("期望导出成功，实际错误: %v", err)
	}
	if !strings.HasPrefix(filename, "progression_") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法解析导出的 xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Progression")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望 1 行表头 + 1 行数据，实际: %d", len(rows))
	}
	wantHeader := []string{"Nom", "Prénom", "Server ID", "Statut", "Certifié", "Droit", "Procédures", "Total", "Max", "%"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("第 %d 列表头期望 %q，实际: %q", i, h, rows[0][i])
		}
	}
	// Droit: 8/15 = 53%，Procédures: 0%，总体 8/25 = 32%
	wantRow := []string{"Valjean", "Jean", "24601", "active", "Non", "53", "0", "8", "25", "32"}
	for i, v := range wantRow {
		if rows[1][i] != v {
			t.Errorf("第 %d 列期望 %q，实际: %q", i, v, rows[1][i])
		}
	}
}

func TestExportCandidateProgress_Empty(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())

	if _, _, err := svc.ExportCandidateProgress(context.Background()); !errors.Is(err, ErrExportNoCandidates) {
		t.Errorf("期望 ErrExportNoCandidates，实际: %v", err)
	}
}

func TestExportCompetitionResults(t *testing.T) {
	repo, mocks := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())
	seedCompetition(mocks, "comp-1", model.CompetitionPublic, model.CompetitionStatusClosed)
	mocks.participation.items["p1"] = &model.Participation{
		ParticipationID: "p1", CompetitionID: "comp-1", ParticipantName: "Léa", TotalScore: 15, MaxScore: 20, Status: model.ParticipationAccepted,
	}

	buf, filename, err := svc.ExportCompetitionResults(context.Background(), "comp-1")
	if err != nil {
		t.Fatalf("期望导出成功，实际错误: %v", err)
	}
	if filename != "resultats_comp-1.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法解析导出的 xlsx: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows("Résultats")
	if len(rows) != 2 || rows[1][0] != "Léa" || rows[1][6] != "75" {
		t.Errorf("结果行不符: %v", rows)
	}

	if _, _, err := svc.ExportCompetitionResults(context.Background(), "missing"); !errors.Is(err, ErrCompetitionNotFound) {
		t.Errorf("期望 ErrCompetitionNotFound，实际: %v", err)
	}
}
