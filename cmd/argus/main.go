// Command argus is the CLI front end for the Argus assistant core.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/argus-ai/argus/internal/assistant"
	"github.com/argus-ai/argus/internal/config"
	"github.com/argus-ai/argus/internal/logging"
	"github.com/argus-ai/argus/pkg/models"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

var (
	configPath string
	core       *assistant.Core
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "argus",
	Short:         "Argus - local-first conversational assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		core, err = assistant.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("init assistant: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if core != nil {
			_ = core.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the assistant, interactively or one-shot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return handleOnce(cmd, strings.Join(args, " "))
		}

		fmt.Println(headerStyle.Render("argus") + dimStyle.Render("  (ctrl-d to exit)"))
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := handleOnce(cmd, line); err != nil {
				fmt.Println(errStyle.Render("error: " + err.Error()))
			}
		}
	},
}

func handleOnce(cmd *cobra.Command, text string) error {
	reply, err := core.HandleMessage(cmd.Context(), text)
	if err != nil {
		return err
	}

	fmt.Println(dimStyle.Render(fmt.Sprintf("[%s %.2f]", reply.Intent, reply.Confidence)))
	fmt.Println(reply.Text)
	for _, res := range reply.Results {
		renderResult(res)
	}
	return nil
}

func renderResult(res models.ToolResult) {
	if !res.Success {
		fmt.Println(errStyle.Render(fmt.Sprintf("  ✗ %s: %s", res.Tool, res.Error)))
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("  ✓ %s (%dms)", res.Tool, res.DurationMs)))
}

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "Inspect and run protocols",
}

var protocolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered protocols",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, def := range core.Protocols().List() {
			fmt.Printf("%s  %s\n", headerStyle.Render(def.ID),
				dimStyle.Render(fmt.Sprintf("%d steps, triggers: %s",
					len(def.Steps), strings.Join(def.Triggers, ", "))))
		}
		return nil
	},
}

var protocolsStartCmd = &cobra.Command{
	Use:   "start [protocol-id]",
	Short: "Start a protocol by ID in the background",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := core.ProtocolExecutor().Start(cmd.Context(), args[0], true)
		if err != nil {
			return err
		}
		core.Collector().RecordProtocolRun()
		fmt.Println(okStyle.Render("started execution " + id))
		return nil
	},
}

var protocolsStatusCmd = &cobra.Command{
	Use:   "status [execution-id]",
	Short: "Show a protocol execution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := core.ProtocolExecutor().Status(args[0])
		if err != nil {
			return err
		}
		return printJSON(view)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [execution-id]",
	Short: "Inspect recorded tool executions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			view, available := core.History().Get(args[0])
			if view == nil {
				fmt.Println(errStyle.Render("not found: " + args[0]))
				fmt.Println(dimStyle.Render("available: " + strings.Join(available, ", ")))
				return nil
			}
			return printJSON(view)
		}

		for _, row := range core.History().Recent(20) {
			mark := okStyle.Render("✓")
			if !row.Success {
				mark = errStyle.Render("✗")
			}
			fmt.Printf("%s %s %-20s %s\n", mark, row.ID, row.Tool, dimStyle.Render(row.Reasoning))
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show assistant health and counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := core.HandleMessage(cmd.Context(), "show me your status")
		if err != nil {
			return err
		}
		for _, res := range reply.Results {
			if res.Success {
				return printJSON(res.Data)
			}
		}
		return fmt.Errorf("status unavailable")
	},
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml")
	rootCmd.AddCommand(chatCmd, protocolsCmd, historyCmd, statusCmd)
	protocolsCmd.AddCommand(protocolsListCmd, protocolsStartCmd, protocolsStatusCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("fatal: "+err.Error()))
		os.Exit(1)
	}
}
