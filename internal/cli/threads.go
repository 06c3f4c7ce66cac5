package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/pipeline"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// threadsCommand creates the thread catalog command.
func (c *CLI) threadsCommand() *cobra.Command {
	var catalog string

	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Browse the thread catalog",
	}
	cmd.PersistentFlags().StringVar(&catalog, "catalog", "", "thread catalog CSV (id,name,r,g,b); embedded DMC by default")

	cmd.AddCommand(c.threadsListCommand(&catalog))
	cmd.AddCommand(c.threadsShowCommand(&catalog))

	return cmd
}

// threadsListCommand creates the "threads list" subcommand.
func (c *CLI) threadsListCommand(catalog *string) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog threads",
		Example: `  stitchgrid threads list
  stitchgrid threads list --search blue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog(*catalog)
			if err != nil {
				return err
			}
			threads := filterThreads(cat.All(), search)
			if len(threads) == 0 {
				printInfo("No threads match %q", search)
				return nil
			}
			writeThreadTable(cmd.OutOrStdout(), threads)
			printDetail("%d of %d threads", len(threads), cat.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only threads whose ID or name contains this text")

	return cmd
}

// threadsShowCommand creates the "threads show" subcommand.
func (c *CLI) threadsShowCommand(catalog *string) *cobra.Command {
	return &cobra.Command{
		Use:     "show [id]",
		Short:   "Show one catalog thread",
		Example: `  stitchgrid threads show 310`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if err := errors.ValidateThreadID(id); err != nil {
				return err
			}
			cat, err := c.loadCatalog(*catalog)
			if err != nil {
				return err
			}
			t, ok := cat.Lookup(id)
			if !ok {
				return errors.New(errors.ErrCodeThreadNotFound, "thread %s not in catalog", id)
			}

			fmt.Println(swatch(t.RGB, "      ") + " " + StyleTitle.Render(t.ID))
			printKeyValue("Name", t.Name)
			printKeyValue("RGB", t.RGB.String())
			printKeyValue("Hex", t.Hex())
			printKeyValue("Hue", strconv.FormatFloat(t.RGB.Hue(), 'f', 1, 64))
			return nil
		},
	}
}

// loadCatalog resolves the catalog from the flag, the config file or the
// embedded default.
func (c *CLI) loadCatalog(path string) (*thread.Catalog, error) {
	if path == "" {
		path = c.Config.Generate.Catalog
	}
	return pipeline.LoadCatalog(pipeline.Options{CatalogPath: path})
}

// filterThreads keeps threads whose ID or name contains search, ignoring case.
func filterThreads(threads []thread.Color, search string) []thread.Color {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return threads
	}
	var out []thread.Color
	for _, t := range threads {
		if strings.Contains(strings.ToLower(t.ID), search) || strings.Contains(strings.ToLower(t.Name), search) {
			out = append(out, t)
		}
	}
	return out
}

// writeThreadTable renders threads as a table with a color swatch column.
func writeThreadTable(w io.Writer, threads []thread.Color) {
	rows := make([][]string, len(threads))
	for i, t := range threads {
		rows[i] = []string{"", t.ID, t.Name, t.Hex()}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("", "ID", "Name", "Hex").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			switch col {
			case 0:
				return lipgloss.NewStyle().Width(4).Background(lipgloss.Color(threads[row].Hex()))
			case 1:
				return StyleNumber
			case 3:
				return StyleDim
			}
			return StyleValue
		})

	fmt.Fprintln(w, tbl.Render())
}
