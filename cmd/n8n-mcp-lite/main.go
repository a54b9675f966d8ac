package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/approval"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/console"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/engineclient"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/fileutil"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/knowledge"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/logger"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/mcpserver"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/snapshot"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/stringutil"
)

var mainLog = logger.New("n8n-mcp-lite")

// version is set by the release build, as the teacher's binaries do.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "n8n-mcp-lite",
	Short:   "MCP mediator between an AI assistant and a remote n8n workflow engine",
	Version: version,
	Long: `n8n-mcp-lite runs an MCP server that mediates between an AI assistant and a
remote n8n-compatible workflow engine: a compact lite codec, a focus/scan
engine for oversized workflows, a surgical edit engine, auto-layout, a
preflight validation pipeline, snapshot/rollback, and an approval gate.

Common Tasks:
  n8n-mcp-lite serve                      # Run the MCP server on stdio
  n8n-mcp-lite rollback <id> <snapshot>   # Roll a workflow back outside an assistant session
  n8n-mcp-lite snapshot-gc                # Re-apply the per-workflow snapshot cap across the whole root`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func buildDeps() (Config, *mcpserver.Deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Config{}, nil, err
	}

	engine, err := engineclient.New(cfg.EngineHostURL, cfg.EngineAPIKey, cfg.Timeout)
	if err != nil {
		return Config{}, nil, fmt.Errorf("construct engine client: %w", err)
	}

	idx, err := knowledge.Get()
	if err != nil {
		return Config{}, nil, fmt.Errorf("load knowledge index: %w", err)
	}

	mode := approval.ModeAutoApprove
	if cfg.RequireApproval {
		mode = approval.ModeRequireApproval
	}

	deps := &mcpserver.Deps{
		Engine:    engine,
		Snapshots: snapshot.New(cfg.SnapshotRoot),
		Gate:      approval.NewGate(mode),
		Audit:     approval.NewAuditLog(cfg.SnapshotRoot + "/audit.log"),
		Knowledge: idx,
	}
	return cfg, deps, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio, exposing the full n8n tool catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, deps, err := buildDeps()
		if err != nil {
			return err
		}

		server := mcpserver.New("n8n-mcp-lite", version)
		mcpserver.RegisterCatalogue(server, deps)

		mainLog.Print("MCP server ready on stdio")
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage("n8n-mcp-lite ready on stdio"))
		return server.Inner().Run(context.Background(), &mcp.StdioTransport{})
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <workflow-id> <snapshot-id>",
	Short: "Restore a workflow to a previously saved snapshot outside of an assistant session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, deps, err := buildDeps()
		if err != nil {
			return err
		}

		workflowID, snapshotID := args[0], args[1]
		current, err := deps.Engine.GetWorkflow(cmd.Context(), workflowID)
		if err != nil {
			return fmt.Errorf("fetch current workflow: %w", err)
		}
		result, err := deps.Snapshots.PrepareRollback(current, snapshotID)
		if err != nil {
			return fmt.Errorf("prepare rollback: %w", err)
		}
		if _, err := deps.Engine.UpdateWorkflow(cmd.Context(), workflowID, result.Workflow); err != nil {
			return fmt.Errorf("apply rollback: %w", err)
		}
		deps.Audit.Record(approval.Entry{
			WorkflowID:  workflowID,
			Operation:   "rollback_workflow",
			Description: fmt.Sprintf("CLI rollback to snapshot %q", snapshotID),
			Outcome:     approval.OutcomeAuto,
		})

		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(
			fmt.Sprintf("restored %d node(s) from snapshot %s", result.RestoredNodes, snapshotID)))
		return nil
	},
}

var snapshotGCCmd = &cobra.Command{
	Use:   "snapshot-gc",
	Short: "Re-apply the twenty-newest-per-workflow prune across every workflow directory under the snapshot root",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		before := fileutil.CalculateDirectorySize(cfg.SnapshotRoot)
		store := snapshot.New(cfg.SnapshotRoot)
		removed, err := store.GC()
		if err != nil {
			return fmt.Errorf("snapshot gc: %w", err)
		}
		after := fileutil.CalculateDirectorySize(cfg.SnapshotRoot)
		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(
			fmt.Sprintf("pruned %d snapshot file(s), reclaimed %d bytes", removed, before-after)))
		return nil
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, rollbackCmd, snapshotGCCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(stringutil.SanitizeErrorMessage(err.Error())))
		os.Exit(1)
	}
}
