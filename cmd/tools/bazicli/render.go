package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
	"github.com/zhouzirui/z-bazi/backend/internal/service/pipeline"
)

func renderUpdate(w io.Writer, u pipeline.Update) {
	switch u.Stage {
	case pipeline.StageChart:
		if u.Birth != nil {
			fmt.Fprintf(w, "Four Pillars Chart\n%s  %s  %s (%s)\n\n", u.Birth.Date, u.Birth.Time, u.Birth.Gender, u.Birth.Zone)
		}
		if u.Chart != nil {
			renderChart(w, *u.Chart)
		}
	case pipeline.StageInterpretation:
		fmt.Fprintln(w, "AI Interpretation")
		renderSections(w, u.Sections)
	case pipeline.StageDailyInsight:
		fmt.Fprintf(w, "Today's Insight\n%s\n", u.DailyInsightText)
	}
}

func renderChart(w io.Writer, c bazi.ChartData) {
	pillars := c.Pillars()
	var names, stems, branches []string
	for i, p := range pillars {
		names = append(names, fmt.Sprintf("%-6s", bazi.PillarNames[i]))
		stems = append(stems, fmt.Sprintf("%-6s", p.HeavenlyStem))
		branches = append(branches, fmt.Sprintf("%-6s", p.EarthlyBranch))
	}
	fmt.Fprintf(w, "%-18s%s\n", "", strings.Join(names, " "))
	fmt.Fprintf(w, "%-18s%s\n", "Heavenly Stems", strings.Join(stems, " "))
	fmt.Fprintf(w, "%-18s%s\n", "Earthly Branches", strings.Join(branches, " "))
	if c.DayMaster != nil {
		fmt.Fprintf(w, "Day Master (Self Element): %s\n", *c.DayMaster)
	}
	fmt.Fprintln(w)
}

func renderSections(w io.Writer, sections []bazi.Section) {
	for _, s := range sections {
		fmt.Fprintf(w, "## %s\n", s.Title)
		for _, p := range s.Paragraphs {
			fmt.Fprintf(w, "%s\n", p)
		}
		fmt.Fprintln(w)
	}
}
