package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var adminTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the background tasks of the provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		status, err := cli.ListTasks(cmd.Context())
		if err != nil {
			return logError(err, "failed to list tasks")
		}

		fmtTime := func(t time.Time) string {
			if t.IsZero() {
				return faint("never")
			}
			return t.Local().Format(time.RFC3339)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "Interval", "Running", "Runs", "Last Run", "Result", "Next Run"})
		for _, s := range status {
			interval := s.Interval
			if interval == "" {
				interval = faint("manual")
			}
			t.AppendRow(table.Row{
				s.Name,
				interval,
				s.Running,
				s.Runs,
				fmtTime(s.LastRun),
				s.LastResult,
				fmtTime(s.NextRun),
			})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

var adminTasksTriggerCmd = &cobra.Command{
	Use:     "trigger NAME",
	Short:   "Run a background task now",
	Example: `  vertrag admin tasks trigger catalog-reload`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		if err := cli.TriggerTask(cmd.Context(), args[0]); err != nil {
			return logError(err, "failed to trigger task")
		}
		log.Info().Msgf("Task '%s' triggered", args[0])
		return nil
	},
}

var adminTasksLogsCmd = &cobra.Command{
	Use:   "logs NAME",
	Short: "Show the log of the last run of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		logs, err := cli.TaskLogs(cmd.Context(), args[0])
		if err != nil {
			return logError(err, "failed to get task logs")
		}
		for _, entry := range logs {
			level := entry.Level
			switch level {
			case "error":
				level = red(level)
			case "warn":
				level = yellow(level)
			default:
				level = cyan(level)
			}
			fmt.Printf("%s %-5s %s\n", faint(entry.Time.Local().Format(time.TimeOnly)), level, entry.Message)
		}
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminTasksCmd)
	adminTasksCmd.AddCommand(adminTasksTriggerCmd, adminTasksLogsCmd)
}
