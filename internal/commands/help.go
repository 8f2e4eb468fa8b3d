package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "help [command]",
		Short:       "Show comprehensive help for taskflow",
		Long:        `Display detailed help for all taskflow commands and flags, or the help of one command.`,
		Annotations: map[string]string{skipAppAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				target, _, err := cmd.Root().Find(args)
				if err != nil || target == nil || target == cmd.Root() {
					return fmt.Errorf("unknown help topic %q", args)
				}
				return target.Help()
			}
			showCustomHelp(cmd.OutOrStdout())
			return nil
		},
	}
}

func showCustomHelp(out io.Writer) {
	fmt.Fprint(out, `
 _            _     __ _
| |_ __ _ ___| | __/ _| | _____      __
| __/ _' / __| |/ / |_| |/ _ \ \ /\ / /
| || (_| \__ \   <|  _| | (_) \ V  V /
 \__\__,_|___/_|\_\_| |_|\___/ \_/\_/

taskflow - personal task manager

ACCOUNT:

  register                Create an account and sign in
    -n, --name            Your name
    -e, --email           Email address
    -p, --password        Password (read from stdin if omitted)
  login                   Sign in (-e, -p)
  logout                  Sign out
  whoami                  Show the signed-in account
  avatar <url>            Change your avatar

TASKS:

  add <task>              Create a new task with smart parsing
    -c, --category        work|personal|shopping|health|learning|other
    -p, --priority        low|medium|high|urgent or 1-4
    -s, --status          todo|in-progress|completed
    --due                 Due date (dd/mm/yyyy, today, tomorrow, 3 days)
    -d, --description     Longer description

    Smart syntax:
      @category     Set category
      +priority     Set priority
      due:3days     Set due date

    Example:
      taskflow add "Finish report @work +urgent due:tomorrow"

  ls                      List tasks
    -c, -p, -s            Filter by category, priority, status
    -q, --search          Filter by text in title or description
    --due                 today|week|overdue
    --sort                dueDate|priority|created|alphabetical
    -g, --group           Group by status
    --json                JSON output
    -i, --interactive     Open the dashboard

    Dashboard keys:
      ↑/↓           Navigate tasks
      /             Search
      n             New task (smart syntax)
      f             Cycle sort
      s             Cycle status filter
      1-6           Category filter (work..other)
      p             High priority filter
      t/w/o         Due today, this week, overdue
      c             Clear filters
      space/d       Toggle done
      x             Delete task
      esc/q         Quit

  search <query>          Search tasks by title or description
  edit <id>               Edit fields of a task (--title, --due, --clear-due, ...)
  toggle <id>             Toggle done (alias: done)
  rm <id>                 Delete a task
  stats                   Show task counters

Task ids can be shortened to any unique prefix.

GLOBAL FLAGS:

  --config-dir            Configuration directory
  --backend               sqlite|redis|memory

`)
}
