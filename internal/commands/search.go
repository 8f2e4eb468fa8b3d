package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/tasks"
)

func newSearchCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search tasks by title and description",
		Long: `Search tasks whose title or description contains the query.

Search is case insensitive and combines with the same filters as 'taskflow ls'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.app.RequireUser(); err != nil {
				return notSignedIn(err)
			}
			query := strings.Join(args, " ")

			filters, err := filtersFromFlags(cmd)
			if err != nil {
				return err
			}
			filters.Search = query
			e.app.Tasks.SetFilters(filters)

			sortName, _ := cmd.Flags().GetString("sort")
			sortBy, ok := tasks.ParseSortOption(sortName)
			if !ok {
				return fmt.Errorf("invalid sort option '%s'. Use: dueDate, priority, created, or alphabetical", sortName)
			}
			e.app.Tasks.SetSort(sortBy)

			results := e.app.Tasks.Filtered()
			out := cmd.OutOrStdout()

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return outputSearchJSON(out, query, results)
			}

			if len(results) == 0 {
				fmt.Fprintf(out, "No tasks found matching '%s'\n", query)
				return nil
			}
			fmt.Fprintf(out, "Found %d task(s) matching '%s':\n\n", len(results), query)
			printTaskTable(out, results, e.clock())
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().Lookup("search").Hidden = true
	cmd.Flags().String("sort", string(models.SortCreated), "Sort by: dueDate, priority, created, alphabetical")
	cmd.Flags().Bool("json", false, "JSON output")
	return cmd
}

// SearchResult is the JSON shape of 'taskflow search --json'
type SearchResult struct {
	Query string        `json:"query"`
	Count int           `json:"count"`
	Tasks []models.Task `json:"tasks"`
}

func outputSearchJSON(out io.Writer, query string, results []models.Task) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(SearchResult{
		Query: query,
		Count: len(results),
		Tasks: results,
	})
}
