package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	"dhs-academy/backend/internal/service"
)

var (
	progressClassID      string
	progressEligibleOnly bool
)

// progressCmd 终端版进度报表，与 /candidates/export 使用同一套计算
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Print candidate progress and certification eligibility",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()

		ctx := cmd.Context()
		repo := repository.NewRepository(e.db)
		candidates, err := repo.Candidate.ListWithScores(ctx, &repository.CandidateListFilters{
			Status:  model.CandidateStatusActive,
			ClassID: progressClassID,
		})
		if err != nil {
			return err
		}
		modules, err := repo.Curriculum.ListModules(ctx)
		if err != nil {
			return err
		}

		rows := buildProgressRows(candidates, modules, progressEligibleOnly)
		if len(rows) == 0 {
			color.Yellow("没有符合条件的候选人")
			return nil
		}
		renderProgress(os.Stdout, rows)
		return nil
	},
}

func init() {
	progressCmd.Flags().StringVar(&progressClassID, "class", "", "only candidates of this class")
	progressCmd.Flags().BoolVar(&progressEligibleOnly, "eligible", false, "only candidates eligible for certification")
}

type progressRow struct {
	name     string
	serverID string
	total    float64
	max      float64
	percent  int
	status   string
}

// buildProgressRows 计算每位候选人的进度，按百分比降序
func buildProgressRows(candidates []model.Candidate, modules []model.Module, eligibleOnly bool) []progressRow {
	rows := make([]progressRow, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		p := service.CalculateCandidateProgress(c.Scores, modules)
		eligible := service.IsCertificationEligible(c, p)
		if eligibleOnly && !eligible {
			continue
		}

		status := "en formation"
		switch {
		case c.IsCertified:
			status = "certifié"
		case eligible:
			status = "éligible"
		}
		rows = append(rows, progressRow{
			name:     c.FullName(),
			serverID: c.ServerID,
			total:    p.TotalScore,
			max:      p.MaxPossibleScore,
			percent:  p.Percentage,
			status:   status,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].percent > rows[j].percent })
	return rows
}

func renderProgress(w io.Writer, rows []progressRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Candidat", "Server ID", "Points", "%", "Statut"})
	table.SetAutoFormatHeaders(false)

	for _, r := range rows {
		table.Append([]string{
			r.name,
			r.serverID,
			fmt.Sprintf("%g / %g", r.total, r.max),
			fmt.Sprintf("%d", r.percent),
			r.status,
		})
	}
	table.Render()
}
