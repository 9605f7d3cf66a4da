package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jagodin/financify-public/internal/core/api"
	"github.com/jagodin/financify-public/internal/core/db"
	"github.com/jagodin/financify-public/internal/core/store"
	"github.com/spf13/cobra"
)

var (
	applyUserID  int64
	applyTxIDs   []int64
	applyRuleIDs []int64
	applyCommit  bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run transaction rules over stored transactions",
	Long: `Evaluates the user's enabled rules against the selected transactions and
prints the resulting partition. Previews by default; pass --commit to
persist the updates and deletes.

Empty --transactions selects all of the user's transactions; empty --rules
selects all of the user's enabled rules.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().Int64Var(&applyUserID, "user", 0, "user id (required)")
	applyCmd.Flags().Int64SliceVar(&applyTxIDs, "transactions", nil, "transaction ids (empty = all)")
	applyCmd.Flags().Int64SliceVar(&applyRuleIDs, "rules", nil, "rule ids (empty = all enabled)")
	applyCmd.Flags().BoolVar(&applyCommit, "commit", false, "persist the outcome instead of previewing")
	applyCmd.MarkFlagRequired("user")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var migrationID string
	checkQuery := `SELECT migration_id FROM migrations WHERE migration_id = '001_initial_schema.sql'`
	err = database.Get(&migrationID, database.Rebind(checkQuery))
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("migration 001_initial_schema not applied - run 'financify migrate' first")
		}
		return fmt.Errorf("failed to check migrations: %w", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	service, err := api.NewService(store.NewTransactionStore(queries), store.NewRuleStore(queries), cfg)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	req := api.ApplyRulesRequest{
		UserID:             applyUserID,
		TransactionIDs:     applyTxIDs,
		TransactionRuleIDs: applyRuleIDs,
	}

	var resp *api.ApplyRulesResponse
	if applyCommit {
		resp, err = service.ApplyRules(ctx, req)
	} else {
		resp, err = service.PreviewRules(ctx, req)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}

	mode := "preview"
	if applyCommit {
		mode = "apply"
	}
	fmt.Fprintf(os.Stderr, "%s: %d updated, %d deleted, %d untouched (run %s)\n",
		mode, resp.UpdatedCount, resp.DeletedCount, len(resp.UntouchedTransactions), resp.RunID)
	return nil
}
