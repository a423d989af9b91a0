// internal/cli/root.go

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/storage"
	"ledger/internal/teller"
)

const defaultConfigPath = "ledger.toml"

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Role-gated account ledger with an audit trail",
	Long: `ledger keeps savings and checking accounts for a set of customers.
Every operation runs under a logged-in identity, passes the role and ownership
gates, and is recorded in an append-only audit trail.

State lives in memory. The TOML config seeds identities, customers and
accounts, and may carry a [[steps]] script that "ledger run" replays.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "Path to the ledger TOML config")
}

// Execute 執行根指令。
func Execute() error {
	return rootCmd.Execute()
}

// ─── shared helpers ─────────────────────────────────────────────────────────

// openLedger 讀取設定檔並建立帳本。
func openLedger(cmd *cobra.Command) (*teller.Teller, storage.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := storage.LoadConfig(path)
	if err != nil {
		return nil, cfg, fmt.Errorf("%w\nUse 'ledger init -c %s' to write a sample config", err, path)
	}
	tl, err := storage.Bootstrap(cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("bootstrap ledger: %w", err)
	}
	return tl, cfg, nil
}

// addLoginFlags 為需要管理員身分的指令加入帳密旗標。
func addLoginFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "Username to log in with")
	cmd.Flags().StringP("password", "p", "", "Password for --user")
	cmd.Flags().Bool("replay", true, "Replay the config's [[steps]] before logging in")
}

// loginFromFlags 視需要重播腳本，再以 --user/--password 登入。
func loginFromFlags(cmd *cobra.Command, tl *teller.Teller, cfg storage.Config) error {
	if replay, _ := cmd.Flags().GetBool("replay"); replay && len(cfg.Steps) > 0 {
		tl.Run(cfg.Steps, cmd.ErrOrStderr())
		if _, ok := tl.Principal(); ok {
			if err := tl.Logout(); err != nil {
				return err
			}
		}
	}
	user, _ := cmd.Flags().GetString("user")
	password, _ := cmd.Flags().GetString("password")
	if user == "" {
		return fmt.Errorf("--user is required")
	}
	if _, err := tl.LoginWith(user, password); err != nil {
		return fmt.Errorf("login %s: %w", user, err)
	}
	return nil
}
