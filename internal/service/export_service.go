package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dhs-academy/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoCandidates = errors.New("没有可导出的候选人")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportCandidateProgress 全部候选人进度，一行一人，每个模块一列百分比
	ExportCandidateProgress(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportCompetitionResults 竞赛答卷结果，按总分降序
	ExportCompetitionResults(ctx context.Context, competitionID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportCandidateProgress
// ═══════════════════════════════════════════════════════════
//
// 表头: | Nom | Prénom | Server ID | Statut | Certifié | <模块…> | Total | Max | % |

func (s *exportService) ExportCandidateProgress(ctx context.Context) (*bytes.Buffer, string, error) {
	candidates, err := s.repo.Candidate.ListWithScores(ctx, nil)
	if err != nil {
		s.logger.Error("查询候选人失败", zap.Error(err))
		return nil, "", err
	}
	if len(candidates) == 0 {
		return nil, "", ErrExportNoCandidates
	}

	modules, err := s.repo.Curriculum.ListModules(ctx)
	if err != nil {
		s.logger.Error("查询培训大纲失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Progression"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Nom", "Prénom", "Server ID", "Statut", "Certifié"}
	for _, m := range ModuleBreakdown(nil, modules, nil) {
		headers = append(headers, m.Name)
	}
	headers = append(headers, "Total", "Max", "%")

	writeHeader(f, sheetName, headers)
	f.SetColWidth(sheetName, "A", "B", 18)
	f.SetColWidth(sheetName, "C", colName(len(headers)-1), 14)

	row := 2
	for i := range candidates {
		c := &candidates[i]
		progress := CalculateCandidateProgress(c.Scores, modules)

		values := []interface{}{c.LastName, c.FirstName, c.ServerID, c.Status, yesNo(c.IsCertified)}
		for _, m := range ModuleBreakdown(c.Scores, modules, nil) {
			values = append(values, m.Percentage)
		}
		values = append(values, progress.TotalScore, progress.MaxPossibleScore, progress.Percentage)

		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("progression_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCompetitionResults
// ═══════════════════════════════════════════════════════════
//
// 表头: | Participant | E-mail | Server ID | Statut | Score | Max | % | Soumis le |

func (s *exportService) ExportCompetitionResults(ctx context.Context, competitionID string) (*bytes.Buffer, string, error) {
	comp, err := s.repo.Competition.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCompetitionNotFound
		}
		s.logger.Error("查询竞赛失败", zap.Error(err))
		return nil, "", err
	}

	list, err := s.repo.Participation.ListAllByCompetition(ctx, competitionID)
	if err != nil {
		s.logger.Error("查询参赛记录失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Résultats"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Participant", "E-mail", "Server ID", "Statut", "Score", "Max", "%", "Soumis le"}
	writeHeader(f, sheetName, headers)
	f.SetColWidth(sheetName, "A", "B", 24)
	f.SetColWidth(sheetName, "C", "H", 14)

	row := 2
	for _, p := range list {
		email := ""
		if p.Email != nil {
			email = *p.Email
		}
		values := []interface{}{
			p.ParticipantName,
			email,
			p.ServerID,
			p.Status,
			p.TotalScore,
			p.MaxScore,
			CompetitionPercentage(p.TotalScore, p.MaxScore),
			p.SubmittedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("resultats_%s.xlsx", comp.CompetitionID)
	return buf, filename, nil
}

// ── 辅助函数 ──

func writeHeader(f *excelize.File, sheet string, headers []string) {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F3864"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
}

func yesNo(b bool) string {
	if b {
		return "Oui"
	}
	return "Non"
}

// colName 0 起始列号 → Excel 列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

