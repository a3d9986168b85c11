// Command redline inspects tracked changes in local Word documents
// without going through the HTTP service.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/matterhub/redline/internal/report"
	"github.com/matterhub/redline/internal/revision"
)

func main() {
	app := &cli.App{
		Name:  "redline",
		Usage: "extract and summarize tracked changes from Word documents",
		Commands: []*cli.Command{
			{
				Name:      "changes",
				Usage:     "list the tracked changes in a .docx file",
				ArgsUsage: "<file.docx>",
				Flags:     extractFlags("text", "text, json or yaml"),
				Action:    changesAction,
			},
			{
				Name:      "summary",
				Usage:     "print an aggregate summary of tracked changes",
				ArgsUsage: "<file.docx>",
				Flags:     extractFlags("text", "text, json or yaml"),
				Action:    summaryAction,
			},
			{
				Name:      "report",
				Usage:     "render a reviewer-facing change report",
				ArgsUsage: "<file.docx>",
				Flags:     extractFlags("markdown", "markdown or html"),
				Action:    reportAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractFlags(defaultFormat, formatUsage string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Value: defaultFormat, Usage: "output format: " + formatUsage},
		&cli.BoolFlag{Name: "no-consolidate", Usage: "report replacement edits as separate deletion and insertion"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress log output"},
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// loadChanges reads the single file argument and extracts its changes.
func loadChanges(c *cli.Context) (string, []revision.TrackedChange, error) {
	if c.NArg() != 1 {
		return "", nil, cli.Exit(fmt.Sprintf("usage: redline %s <file.docx>", c.Command.Name), 1)
	}
	path := c.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, cli.Exit(fmt.Sprintf("read %s: %v", path, err), 2)
	}
	opts := revision.Options{Consolidate: !c.Bool("no-consolidate")}
	return path, revision.FromBytes(data, opts), nil
}

type changeOutput struct {
	ID        string `json:"id" yaml:"id"`
	Type      string `json:"type" yaml:"type"`
	Author    string `json:"author,omitempty" yaml:"author,omitempty"`
	Content   string `json:"content" yaml:"content"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

type summaryOutput struct {
	TotalChanges  int      `json:"total_changes" yaml:"total_changes"`
	Insertions    int      `json:"insertions" yaml:"insertions"`
	Deletions     int      `json:"deletions" yaml:"deletions"`
	Modifications int      `json:"modifications" yaml:"modifications"`
	FormatChanges int      `json:"format_changes" yaml:"format_changes"`
	Authors       []string `json:"authors" yaml:"authors"`
	Summary       string   `json:"summary" yaml:"summary"`
}

type changesOutput struct {
	File    string         `json:"file" yaml:"file"`
	Changes []changeOutput `json:"changes" yaml:"changes"`
	Summary summaryOutput  `json:"summary" yaml:"summary"`
}

func toChangeOutputs(changes []revision.TrackedChange) []changeOutput {
	out := make([]changeOutput, len(changes))
	for i, ch := range changes {
		out[i] = changeOutput{
			ID:      ch.ID,
			Type:    string(ch.Type),
			Author:  ch.Author,
			Content: ch.Content,
		}
		if !ch.Timestamp.IsZero() {
			out[i].Timestamp = ch.Timestamp.Format("2006-01-02T15:04:05Z07:00")
		}
	}
	return out
}

func toSummaryOutput(sum revision.ChangesSummary) summaryOutput {
	return summaryOutput{
		TotalChanges:  sum.TotalChanges,
		Insertions:    sum.Insertions,
		Deletions:     sum.Deletions,
		Modifications: sum.Modifications,
		FormatChanges: sum.FormatChanges,
		Authors:       sum.Authors,
		Summary:       sum.Summary,
	}
}

func changesAction(c *cli.Context) error {
	log := newLogger(c)
	path, changes, err := loadChanges(c)
	if err != nil {
		return err
	}
	log.Info("extracted changes", "file", path, "count", len(changes))
	sum := revision.Summarize(changes)

	switch strings.ToLower(c.String("format")) {
	case "text":
		if len(changes) == 0 {
			fmt.Println("No changes")
			return nil
		}
		for _, ch := range changes {
			date := ""
			if !ch.Timestamp.IsZero() {
				date = ch.Timestamp.Format("2006-01-02")
			}
			fmt.Printf("%-10s %-14s %-20s %-11s %q\n", ch.ID, ch.Type, ch.Author, date, ch.Content)
		}
		fmt.Println()
		fmt.Println(sum.Summary)
		return nil
	case "json", "yaml":
		return printMarshaled(c, changesOutput{
			File:    path,
			Changes: toChangeOutputs(changes),
			Summary: toSummaryOutput(sum),
		})
	default:
		return cli.Exit("format must be text, json or yaml", 1)
	}
}

func summaryAction(c *cli.Context) error {
	log := newLogger(c)
	path, changes, err := loadChanges(c)
	if err != nil {
		return err
	}
	log.Info("extracted changes", "file", path, "count", len(changes))
	sum := revision.Summarize(changes)

	switch strings.ToLower(c.String("format")) {
	case "text":
		fmt.Println(sum.Summary)
		return nil
	case "json", "yaml":
		return printMarshaled(c, struct {
			File    string        `json:"file" yaml:"file"`
			Summary summaryOutput `json:"summary" yaml:"summary"`
		}{File: path, Summary: toSummaryOutput(sum)})
	default:
		return cli.Exit("format must be text, json or yaml", 1)
	}
}

func reportAction(c *cli.Context) error {
	log := newLogger(c)
	path, changes, err := loadChanges(c)
	if err != nil {
		return err
	}
	log.Info("extracted changes", "file", path, "count", len(changes))

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	md := report.Build(title, changes, revision.Summarize(changes))

	switch strings.ToLower(c.String("format")) {
	case "markdown":
		fmt.Print(md)
		return nil
	case "html":
		html, err := report.HTML(md)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		fmt.Print(html)
		return nil
	default:
		return cli.Exit("format must be markdown or html", 1)
	}
}

func printMarshaled(c *cli.Context, v any) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(c.String("format")) == "yaml" {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("marshal output: %v", err), 2)
	}
	fmt.Println(string(data))
	return nil
}
