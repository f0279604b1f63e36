package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"taskdeck/cmd/taskctl/config"
	"taskdeck/cmd/taskctl/output"
	"taskdeck/domain/task"
	"taskdeck/internal/taskapi"

	"github.com/urfave/cli/v3"
)

// TaskCommand returns the task command with subcommands
func TaskCommand() *cli.Command {
	return &cli.Command{
		Name:  "task",
		Usage: "Manage tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output format: json or table",
				Value: "json",
			},
		},
		Commands: []*cli.Command{
			listTaskCommand(),
			findTaskCommand(),
			createTaskCommand(),
			deleteTaskCommand(),
			runTaskCommand(),
		},
	}
}

func listTaskCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "List tasks",
		Action: listTaskAction,
	}
}

func listTaskAction(ctx context.Context, c *cli.Command) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	tasks, err := client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	return printFormatted(c, tasks)
}

func findTaskCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Find tasks whose name contains the text",
		ArgsUsage: "<name>",
		Action:    findTaskAction,
	}
}

// findTaskAction prints an empty list when the backend finds nothing.
func findTaskAction(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("name is required")
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}

	tasks, err := client.FindByName(ctx, c.Args().Get(0))
	if taskapi.IsNotFound(err) {
		tasks, err = []task.Task{}, nil
	}
	if err != nil {
		return fmt.Errorf("failed to find tasks: %w", err)
	}
	return printFormatted(c, tasks)
}

func createTaskCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new task",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Task name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "owner",
				Usage:    "Task owner",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "command",
				Usage:    "Shell command the task runs",
				Required: true,
			},
		},
		Action: createTaskAction,
	}
}

func createTaskAction(ctx context.Context, c *cli.Command) error {
	nt, err := buildNewTask(c)
	if err != nil {
		return err
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}

	created, err := client.Create(ctx, nt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return printFormatted(c, created)
}

// buildNewTask trims the flags and rejects blank values.
func buildNewTask(c *cli.Command) (task.NewTask, error) {
	nt := task.NewTask{
		Name:    strings.TrimSpace(c.String("name")),
		Owner:   strings.TrimSpace(c.String("owner")),
		Command: strings.TrimSpace(c.String("command")),
	}
	fields := []struct{ flag, value string }{
		{"name", nt.Name}, {"owner", nt.Owner}, {"command", nt.Command},
	}
	for _, f := range fields {
		if f.value == "" {
			return task.NewTask{}, fmt.Errorf("--%s must not be blank", f.flag)
		}
	}
	return nt, nil
}

func deleteTaskCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a task",
		ArgsUsage: "<task-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: deleteTaskAction,
	}
}

func deleteTaskAction(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("task ID is required")
	}
	taskID := c.Args().Get(0)

	if !c.Bool("yes") {
		ok, err := confirm(c.Root().Reader, c.Root().Writer, fmt.Sprintf("Delete task %s? This cannot be undone. [y/N] ", taskID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.Root().Writer, "Aborted.")
			return nil
		}
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}

	if err := client.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	fmt.Fprintf(c.Root().Writer, "Task %s deleted.\n", taskID)
	return nil
}

func runTaskCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute a task and print its output",
		ArgsUsage: "<task-id>",
		Action:    runTaskAction,
	}
}

// runTaskAction prints the raw output text, not JSON.
func runTaskAction(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("task ID is required")
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}

	out, err := client.Execute(ctx, c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("failed to execute task: %w", err)
	}

	fmt.Fprint(c.Root().Writer, out)
	if out != "" && !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(c.Root().Writer)
	}
	return nil
}

// resolveServerURL applies flag > env > config file > default.
func resolveServerURL(c *cli.Command) (string, error) {
	if c.IsSet("server") {
		return c.String("server"), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.GetServerURL(), nil
}

func newClient(c *cli.Command) (*taskapi.Client, error) {
	serverURL, err := resolveServerURL(c)
	if err != nil {
		return nil, err
	}
	return taskapi.NewClient(taskapi.Config{
		BaseURL: serverURL,
		Name:    "taskctl",
	})
}

func printFormatted(c *cli.Command, data any) error {
	formatter, err := output.New(c.String("output"))
	if err != nil {
		return err
	}

	out, err := formatter.Format(data)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Fprintln(c.Root().Writer, out)
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
