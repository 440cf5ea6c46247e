package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/printer"
)

type SearchCmd struct {
	flags   *Flags
	jsonOut bool
}

// NewSearchCmd creates a new search command.
func NewSearchCmd(flags *Flags) *SearchCmd {
	return &SearchCmd{flags: flags}
}

// Register adds the search command to the application.
func (cmd *SearchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "search",
		Usage:     "Search forums by name, topic, tags, and transcripts",
		UsageText: "symposium search <query...>",
		Description: `Ranks forums against the query. Name matches weigh more than
description matches, which weigh more than tag and transcript matches.
Related concepts expand the query, so "ethics" also surfaces "morality".`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOut,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SearchCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query required\n\nUsage: symposium search <query...>")
	}

	results, err := cmd.flags.Service.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search forums: %w", err)
	}

	if cmd.jsonOut {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		p.Infof("No forums match %q", query)
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCORE\tID\tNAME\tMATCHES")

	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\n",
			r.Score,
			r.Forum.ID,
			r.Forum.Name,
			strings.Join(r.Matches, ", "),
		)
	}

	return w.Flush()
}
