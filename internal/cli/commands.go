// internal/cli/commands.go

package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ledger/internal/audit"
	"ledger/internal/bank"
	"ledger/internal/storage"
)

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(auditCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing config")
	runCmd.Flags().Bool("metrics", false, "Print counters after the script finishes")
	addLoginFlags(accountsCmd)
	accountsCmd.Flags().String("sort", "number", "Sort order: number, name or balance")
	addLoginFlags(auditCmd)
	auditCmd.Flags().String("actor", "", "Only show entries for this username")
}

// ─── init ───────────────────────────────────────────────────────────────────

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample config",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := storage.SaveConfig(path, storage.DefaultConfig()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sample config written to %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "   Replay it with: ledger run -c %s\n", path)
	return nil
}

// ─── run ────────────────────────────────────────────────────────────────────

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay the config's [[steps]] script",
	Long: `Bootstrap the ledger from the config and replay its [[steps]] in order.
A failing step is reported and the script continues; EXIT stops it.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	tl, cfg, err := openLedger(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(cfg.Steps) == 0 {
		fmt.Fprintln(out, "No [[steps]] in config.")
		return nil
	}
	failed := tl.Run(cfg.Steps, out)
	fmt.Fprintf(out, "\n%d steps, %d failed, %d audit entries\n", len(cfg.Steps), failed, tl.Trail.Len())

	if show, _ := cmd.Flags().GetBool("metrics"); show {
		samples, err := tl.Metrics.Snapshot()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Metric", "Labels", "Value"})
		for _, s := range samples {
			table.Append([]string{s.Name, s.Labels, strconv.FormatFloat(s.Value, 'f', -1, 64)})
		}
		table.Render()
	}
	return nil
}

// ─── accounts ───────────────────────────────────────────────────────────────

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts (ADMIN)",
	RunE:  runAccounts,
}

func runAccounts(cmd *cobra.Command, args []string) error {
	tl, cfg, err := openLedger(cmd)
	if err != nil {
		return err
	}
	if err := loginFromFlags(cmd, tl, cfg); err != nil {
		return err
	}

	var accts []bank.AccountView
	switch order, _ := cmd.Flags().GetString("sort"); order {
	case "number":
		accts, err = tl.ListAccounts()
	case "name":
		accts, err = tl.SortAccountsByName()
	case "balance":
		accts, err = tl.SortAccountsByBalance()
	default:
		return fmt.Errorf("unknown sort order %q (want number, name or balance)", order)
	}
	if err != nil {
		return err
	}
	renderAccounts(cmd, tl.Directory, accts)
	return nil
}

func renderAccounts(cmd *cobra.Command, dir *bank.Directory, accts []bank.AccountView) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Account", "Kind", "Owner", "Name", "Balance", "Floor"})
	for _, a := range accts {
		name := ""
		if c, ok := dir.FindCustomer(a.OwnerID); ok {
			name = c.Name
		}
		table.Append([]string{
			a.Number, string(a.Kind), a.OwnerID, name,
			a.Balance.StringFixed(2), a.Floor.StringFixed(2),
		})
	}
	table.Render()
}

// ─── audit ──────────────────────────────────────────────────────────────────

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the audit trail after replaying the script (ADMIN)",
	RunE:  runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	tl, cfg, err := openLedger(cmd)
	if err != nil {
		return err
	}
	if err := loginFromFlags(cmd, tl, cfg); err != nil {
		return err
	}
	var entries []audit.Entry
	if actor, _ := cmd.Flags().GetString("actor"); actor != "" {
		entries, err = tl.AuditReplayFor(actor)
	} else {
		entries, err = tl.AuditReplay()
	}
	if err != nil {
		return err
	}
	renderAudit(cmd, entries)
	return nil
}

func renderAudit(cmd *cobra.Command, entries []audit.Entry) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Seq", "Time", "Actor", "Role", "Action", "Details"})
	for _, e := range entries {
		table.Append([]string{
			strconv.FormatInt(e.Seq, 10), e.Time.Format("15:04:05.000"),
			e.Actor, string(e.Role), e.Action, e.Details,
		})
	}
	table.Render()
}
