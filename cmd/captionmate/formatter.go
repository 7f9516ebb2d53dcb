package main

import (
	"fmt"

	"github.com/captionmate/captionmate/internal/service"
	"github.com/captionmate/captionmate/internal/ui"
)

// printMatchReport renders the match results as a table.
func printMatchReport(report *service.MatchReport, showAll bool) {
	ui.Section("match results")
	fmt.Printf("%d video(s), %d subtitle(s), %d matched\n\n",
		len(report.Scan.Videos), len(report.Scan.Subtitles), report.Matched())

	table := ui.NewTable("VIDEO", "SUBTITLE", "SCORE", "METHOD")
	for _, result := range report.Results {
		if !result.HasMatch() {
			if showAll {
				table.AddRow(ui.Video(result.Video.Filename), ui.Dim("(no match)"), "-", string(result.Method))
			}
			continue
		}
		score := fmt.Sprintf("%.2f", result.Score)
		table.AddRow(
			ui.Video(result.Video.Filename),
			ui.Subtitle(result.MatchedSubtitle.Filename),
			ui.Score(score, result.ConfidenceLevel()),
			string(result.Method),
		)
	}
	if table.Len() == 0 {
		fmt.Println("No matches found.")
		return
	}
	table.Render()

	if len(report.Plan) > 0 {
		ui.Section("rename plan")
		for _, op := range report.Plan {
			if op.NeedsRename() {
				fmt.Printf("  %s -> %s\n", ui.Dim(op.OldName), ui.Subtitle(op.NewName))
			} else {
				fmt.Printf("  %s %s\n", ui.Dim(op.OldName), ui.Dim("(already named)"))
			}
		}
	}
}

// printRenameSummary renders the outcome of an execution pass.
func printRenameSummary(summary *service.RenameSummary) {
	fmt.Println()
	for _, outcome := range summary.Outcomes {
		op := outcome.Operation
		switch outcome.Status {
		case "renamed":
			ui.SuccessMsg("%s -> %s", op.OldName, op.NewName)
		case "skipped":
			ui.InfoMsg("skipped %s (%s)", op.OldName, outcome.Reason)
		case "error":
			ui.ErrorMsg("%s: %s", op.OldName, outcome.Reason)
		}
	}
	fmt.Printf("\n%d renamed, %d skipped, %d error(s)\n",
		summary.Renamed, summary.Skipped, summary.Errors)
}
