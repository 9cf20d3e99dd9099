package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"safety-analytics-go/internal/actionable"
	"safety-analytics-go/internal/aggregator"
	"safety-analytics-go/internal/dataset"
	"safety-analytics-go/internal/normalize"
	"safety-analytics-go/internal/processor"
	"safety-analytics-go/internal/report"
	"safety-analytics-go/internal/state"
	"safety-analytics-go/internal/trends"
	"safety-analytics-go/internal/types"
)

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "safetyctl",
		Usage:  "Safety KPIs, trends and reports from injury and near-miss exports",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "injuries", Usage: "injury export (.csv or .xlsx)"},
			&cli.StringFlag{Name: "near-misses", Usage: "near-miss export (.csv or .xlsx)"},
			&cli.StringFlag{Name: "inspections", Usage: "inspection export (.csv or .xlsx)"},
			&cli.StringFlag{Name: "as-of", Usage: "anchor date for trend windows (default today)"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Commands: []*cli.Command{
			kpiCommand(),
			trendsCommand(),
			patternsCommand(),
			insightsCommand(),
			recommendCommand(),
			categorizeCommand(),
			reportCommand(),
			exportCommand(),
		},
	}
}

func kpiCommand() *cli.Command {
	return &cli.Command{
		Name:  "kpi",
		Usage: "Print TRIR, LTIR, DAFWR, NMFR and the safety index",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "baseline-hours", Value: aggregator.StandardHours, Usage: "hours worked over the export period"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			snap, now, err := loadSnapshot(c)
			if err != nil {
				return err
			}
			baseline := c.Float("baseline-hours")
			if baseline <= 0 {
				return fmt.Errorf("baseline-hours must be > 0")
			}
			k := aggregator.Calculate(snap.Injuries, snap.NearMisses, aggregator.Options{BaselineHours: baseline, Now: now})
			if c.Root().Bool("json") {
				return printJSON(c, k)
			}
			return printTable(c, [][]string{
				{"TRIR", fmt.Sprintf("%.2f", k.TRIR)},
				{"LTIR", fmt.Sprintf("%.2f", k.LTIR)},
				{"DAFWR", fmt.Sprintf("%.2f", k.DAFWR)},
				{"NMFR", fmt.Sprintf("%.2f", k.NMFR)},
				{"Recordable rate", fmt.Sprintf("%.1f%%", k.RecordableRate)},
				{"Safety index", fmt.Sprintf("%.1f", k.SafetyIndex)},
				{"Injuries", fmt.Sprint(k.TotalInjuries)},
				{"Near misses", fmt.Sprint(k.NearMisses)},
				{"Critical events", fmt.Sprint(k.CriticalEvents)},
			})
		},
	}
}

func trendsCommand() *cli.Command {
	return &cli.Command{
		Name:  "trends",
		Usage: "Monthly injury counts and trend direction",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "months", Value: 6, Usage: "months in the trend window"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			snap, now, err := loadSnapshot(c)
			if err != nil {
				return err
			}
			months := int(c.Int("months"))
			if months < 2 {
				return fmt.Errorf("months must be >= 2")
			}
			analysis := trends.Analyze(trends.MonthlyCounts(snap.Injuries, now, months), "injuries")
			if c.Root().Bool("json") {
				return printJSON(c, analysis)
			}
			rows := [][]string{}
			for _, m := range trends.ByMonth(snap.Injuries) {
				rows = append(rows, []string{m.Label, fmt.Sprint(m.Count)})
			}
			rows = append(rows, []string{"Direction", string(analysis.Direction)},
				[]string{"Change", fmt.Sprintf("%.1f%%", analysis.ChangePercent)})
			return printTable(c, rows)
		},
	}
}

func patternsCommand() *cli.Command {
	return &cli.Command{
		Name:  "patterns",
		Usage: "Recurring body part/process path and site/type combinations",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "min", Value: int64(trends.MinPatternOccurrences), Usage: "minimum occurrences"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			snap, _, err := loadSnapshot(c)
			if err != nil {
				return err
			}
			patterns := trends.DetectPatternsMin(snap.Injuries, int(c.Int("min")))
			if c.Root().Bool("json") {
				return printJSON(c, patterns)
			}
			for _, p := range patterns {
				fmt.Fprintln(c.Root().Writer, p.Description)
			}
			return nil
		},
	}
}

func insightsCommand() *cli.Command {
	return &cli.Command{
		Name:  "insights",
		Usage: "Predictive insights, most severe first",
		Action: func(ctx context.Context, c *cli.Command) error {
			snap, now, err := loadSnapshot(c)
			if err != nil {
				return err
			}
			insights := actionable.Generate(snap.Injuries, snap.NearMisses, now)
			if c.Root().Bool("json") {
				return printJSON(c, insights)
			}
			rows := make([][]string, 0, len(insights))
			for _, in := range insights {
				rows = append(rows, []string{strings.ToUpper(string(in.Severity)), in.Title, in.Description})
			}
			return printTable(c, rows)
		},
	}
}

func recommendCommand() *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Prioritized recommendations",
		Action: func(ctx context.Context, c *cli.Command) error {
			snap, _, err := loadSnapshot(c)
			if err != nil {
				return err
			}
			recs := actionable.Recommend(snap.Injuries, snap.NearMisses)
			if c.Root().Bool("json") {
				return printJSON(c, recs)
			}
			rows := make([][]string, 0, len(recs))
			for _, r := range recs {
				rows = append(rows, []string{fmt.Sprintf("P%d", r.Priority), r.Category, r.Recommendation})
			}
			return printTable(c, rows)
		},
	}
}

func categorizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "categorize",
		Usage:     "Suggest an incident category for a description",
		ArgsUsage: "<description>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root-cause"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			desc := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(desc) == "" {
				return fmt.Errorf("description is required")
			}
			cat := trends.Categorize(desc, c.String("root-cause"))
			if c.Root().Bool("json") {
				return printJSON(c, cat)
			}
			fmt.Fprintf(c.Root().Writer, "%s (%d%%)\n", cat.SuggestedCategory, cat.Confidence)
			return nil
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Write the Excel report workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Value: string(report.TypeCombined), Usage: "injury, nearMiss or combined"},
			&cli.StringFlag{Name: "out", Usage: "output path (default safety_report_<type>_<date>.xlsx)"},
			&cli.FloatFlag{Name: "baseline-hours", Value: aggregator.StandardHours},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			typ, err := report.ParseType(c.String("type"))
			if err != nil {
				return err
			}
			snap, now, err := loadSnapshot(c)
			if err != nil {
				return err
			}
			injuries, nearMisses := report.Scope(typ, snap)
			path := c.String("out")
			if path == "" {
				path = report.Filename(typ, now)
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			err = report.WriteExcel(f, report.Input{
				Type:       typ,
				Injuries:   injuries,
				NearMisses: nearMisses,
				KPIs:       aggregator.Calculate(injuries, nearMisses, aggregator.Options{BaselineHours: c.Float("baseline-hours"), Now: now}),
				Insights:   actionable.Generate(injuries, nearMisses, now),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Root().Writer, path)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write one normalized collection as CSV",
		ArgsUsage: "<injuries|near-misses|inspections>",
		Action: func(ctx context.Context, c *cli.Command) error {
			kind := types.RecordKind(c.Args().First())
			if !state.ValidKind(kind) {
				return fmt.Errorf("unknown record kind %q", kind)
			}
			snap, _, err := loadSnapshot(c)
			if err != nil {
				return err
			}
			return report.WriteCSV(c.Root().Writer, kind, snap)
		},
	}
}

// loadSnapshot imports the files named by the root flags and returns the
// resulting snapshot with the trend anchor.
func loadSnapshot(c *cli.Command) (state.Snapshot, time.Time, error) {
	root := c.Root()
	now := time.Now()
	if raw := root.String("as-of"); raw != "" {
		d, ok := normalize.ParseDate(raw)
		if !ok {
			return state.Snapshot{}, now, fmt.Errorf("invalid as-of date %q", raw)
		}
		now = d
	}

	store := state.New()
	im := processor.NewImporter(store, nil)
	sources := map[types.RecordKind]string{
		types.KindInjury:     root.String("injuries"),
		types.KindNearMiss:   root.String("near-misses"),
		types.KindInspection: root.String("inspections"),
	}
	for _, kind := range state.Kinds() {
		path := sources[kind]
		if path == "" {
			continue
		}
		rows, err := dataset.Load(path)
		if err != nil {
			return state.Snapshot{}, now, fmt.Errorf("load %s: %w", kind, err)
		}
		if _, err := im.ImportRows(kind, path, rows); err != nil {
			return state.Snapshot{}, now, err
		}
	}
	return store.All(), now, nil
}

func printJSON(c *cli.Command, v any) error {
	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(c *cli.Command, rows [][]string) error {
	tw := tabwriter.NewWriter(c.Root().Writer, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}
