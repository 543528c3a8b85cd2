package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattheweller/vibesana/internal/config"
	"github.com/mattheweller/vibesana/internal/domain"
	"github.com/mattheweller/vibesana/internal/store"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks in the local database",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tasks",
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksAdd,
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDone,
}

var tasksRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksRemove,
}

var (
	tasksListJSON       bool
	tasksAddDescription string
	tasksAddPriority    string
)

func init() {
	tasksListCmd.Flags().BoolVar(&tasksListJSON, "json", false, "output tasks as JSON")
	tasksAddCmd.Flags().StringVarP(&tasksAddDescription, "description", "d", "", "task description")
	tasksAddCmd.Flags().StringVarP(&tasksAddPriority, "priority", "p", "medium", "task priority (low, medium, high)")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
	tasksCmd.AddCommand(tasksRemoveCmd)
	rootCmd.AddCommand(tasksCmd)
}

func openStore() (*store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return store.New(cfg.DBPath)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	taskStore, err := openStore()
	if err != nil {
		return err
	}
	defer taskStore.Close()

	tasks, err := taskStore.List(cmd.Context())
	if err != nil {
		return err
	}

	if tasksListJSON {
		out, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, t.Title)
	}
	return w.Flush()
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	priority, err := domain.NewPriority(tasksAddPriority)
	if err != nil {
		return err
	}

	taskStore, err := openStore()
	if err != nil {
		return err
	}
	defer taskStore.Close()

	task, err := taskStore.Create(cmd.Context(), domain.Task{
		Title:       args[0],
		Description: tasksAddDescription,
		Priority:    priority,
		Status:      domain.StatusTodo,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", task.ID)
	return nil
}

func runTasksDone(cmd *cobra.Command, args []string) error {
	taskStore, err := openStore()
	if err != nil {
		return err
	}
	defer taskStore.Close()

	status := domain.StatusDone
	if _, err := taskStore.ApplyUpdate(cmd.Context(), args[0], store.Update{Status: &status}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as done\n", args[0])
	return nil
}

func runTasksRemove(cmd *cobra.Command, args []string) error {
	taskStore, err := openStore()
	if err != nil {
		return err
	}
	defer taskStore.Close()

	if err := taskStore.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}
