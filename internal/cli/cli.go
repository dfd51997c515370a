// Package cli implements the artemis command line: listing tools, invoking
// them with JSON arguments, and validating BPMN models offline.
package cli

import (
	"fmt"
	"os"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/impl/config"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/camunda/bpmn"
	"github.com/solstice-ai/artemis-connectors/internal/impl/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "artemis",
		Short: "SaaS connector tools for agent frameworks",
		Long: "artemis exposes HubSpot, Jira, Salesforce, ServiceNow, and Camunda\n" +
			"operations as named tools with function-calling schemas.",
		SilenceUsage: true,
	}
	root.AddCommand(newToolsCommand())
	root.AddCommand(newSchemasCommand())
	root.AddCommand(newInvokeCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newConnectorsCommand())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// buildRegistry constructs the full tool registry from the connectors file
// when configured, or with unconfigured connectors otherwise.
func buildRegistry(logger *zap.Logger) (*registry.ToolRegistry, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, err
	}

	configurations := map[string]map[string]string{}
	if cfg.ConnectorsFile != "" {
		profiles, err := config.LoadConnectorsFile(cfg.ConnectorsFile)
		if err != nil {
			return nil, err
		}
		for _, profile := range profiles {
			resolved, err := cfg.ResolveConfiguration(profile.Configuration)
			if err != nil {
				return nil, fmt.Errorf("profile %s: %w", profile.Name, err)
			}
			configurations[profile.Connector] = resolved
		}
	}

	reg := registry.NewToolRegistry(logger)
	if err := connectors.RegisterAll(reg, configurations, logger); err != nil {
		return nil, err
	}
	return reg, nil
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, _ := cfg.Build()
	return logger
}

func newToolsCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List all registered tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)
			defer logger.Sync()

			reg, err := buildRegistry(logger)
			if err != nil {
				return err
			}
			for _, entry := range reg.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", entry.Name, entry.Schema.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func newSchemasCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "Print all tool schemas as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)
			defer logger.Sync()

			reg, err := buildRegistry(logger)
			if err != nil {
				return err
			}
			out, err := entities.MarshalSchemas(reg.Schemas())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func newInvokeCommand() *cobra.Command {
	var (
		arguments string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "invoke NAME",
		Short: "Invoke a tool by name with JSON arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)
			defer logger.Sync()

			reg, err := buildRegistry(logger)
			if err != nil {
				return err
			}
			result, err := reg.Invoke(args[0], arguments)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&arguments, "args", "a", "", "JSON arguments for the tool")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a BPMN model's structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			defs, err := bpmn.Parse(data)
			if err != nil {
				return err
			}
			issues := bpmn.Validate(defs)
			fmt.Fprintln(cmd.OutOrStdout(), bpmn.Report(defs, issues))
			if len(issues) > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
	return cmd
}

func newConnectorsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connectors",
		Short: "List available connectors and their configuration keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, entry := range connectors.ListFactories() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", entry.Name, entry.Description)
				fmt.Fprintf(cmd.OutOrStdout(), "             config keys: %v\n", entry.ConfigKeys)
			}
			return nil
		},
	}
	return cmd
}
