package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/dogebot/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and maintain the trade ledger",
	Long: `Query and maintain the CSV trade ledger and its SQLite mirror.

Subcommands:
  balance - Show the balance that would be recovered on startup
  archive - Compress past-day CSV files with xz
  export  - Bundle the ledger directory into a zip archive
  import  - Restore ledger files from a zip archive
  trade   - Get details of a specific trade by ID (SQLite mirror)
  today   - List trades closed today (SQLite mirror)
  day     - List trades closed on a specific day (SQLite mirror)

Examples:
  dogebot ledger balance --dir logs
  dogebot ledger archive --dir logs
  dogebot ledger export --dir logs --out ledger.zip
  dogebot ledger day 2025-06-01 --db trades.db`,
}

var ledgerBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the balance recovered from the ledger files",
	RunE:  runLedgerBalance,
}

var ledgerArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Compress past-day ledger CSVs with xz",
	RunE:  runLedgerArchive,
}

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Bundle the ledger directory into a zip archive",
	RunE:  runLedgerExport,
}

var ledgerImportCmd = &cobra.Command{
	Use:   "import <bundle.zip>",
	Short: "Restore ledger files from a zip archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerImport,
}

var ledgerTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerTrade,
}

var ledgerTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades closed today",
	Args:  cobra.NoArgs,
	RunE:  runLedgerToday,
}

var ledgerDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerDay,
}

var (
	ledgerDir     string
	ledgerSymbol  string
	ledgerDefault float64
	ledgerDBPath  string
	ledgerOutPath string
)

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerBalanceCmd)
	ledgerCmd.AddCommand(ledgerArchiveCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)
	ledgerCmd.AddCommand(ledgerImportCmd)
	ledgerCmd.AddCommand(ledgerTradeCmd)
	ledgerCmd.AddCommand(ledgerTodayCmd)
	ledgerCmd.AddCommand(ledgerDayCmd)

	ledgerCmd.PersistentFlags().StringVarP(&ledgerDir, "dir", "d", "logs", "ledger directory")
	ledgerCmd.PersistentFlags().StringVar(&ledgerDBPath, "db", "./dogebot.sqlite", "path to SQLite mirror DB")

	ledgerBalanceCmd.Flags().StringVar(&ledgerSymbol, "symbol", "DOGEUSDT", "trading symbol")
	ledgerBalanceCmd.Flags().Float64Var(&ledgerDefault, "default", 100, "default balance when no ledger rows exist")
	ledgerExportCmd.Flags().StringVarP(&ledgerOutPath, "out", "o", "ledger.zip", "output zip path")
}

func runLedgerBalance(cmd *cobra.Command, args []string) error {
	l, err := ledger.New(ledger.Options{
		Dir:             ledgerDir,
		Symbol:          ledgerSymbol,
		StartingBalance: ledgerDefault,
	})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	fmt.Printf("Recovered balance: %.6f\n", l.Balance())
	fmt.Printf("  Aggregated file: %s\n", l.AggPath())
	fmt.Printf("  Raw file: %s\n", l.RawPath())
	return nil
}

func runLedgerArchive(cmd *cobra.Command, args []string) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	archived, err := ledger.ArchiveOld(ledgerDir, today)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	if len(archived) == 0 {
		fmt.Println("Nothing to archive.")
		return nil
	}
	for _, f := range archived {
		fmt.Printf("Archived %s\n", f)
	}
	return nil
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	if err := ledger.ExportBundle(ledgerDir, ledgerOutPath); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("Exported ledger bundle: %s\n", ledgerOutPath)
	return nil
}

func runLedgerImport(cmd *cobra.Command, args []string) error {
	if err := ledger.ImportBundle(args[0], ledgerDir); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Printf("Imported ledger bundle into %s\n", ledgerDir)
	return nil
}

func runLedgerTrade(cmd *cobra.Command, args []string) error {
	db, err := ledger.NewSQLite(ledgerDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	rec, err := db.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	printTrades([]ledger.TradeRecord{rec})
	return nil
}

func runLedgerToday(cmd *cobra.Command, args []string) error {
	return listTradesForDay(time.Now().UTC().Format("2006-01-02"))
}

func runLedgerDay(cmd *cobra.Command, args []string) error {
	return listTradesForDay(args[0])
}

func listTradesForDay(day string) error {
	start, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	end := start.Add(24 * time.Hour)

	db, err := ledger.NewSQLite(ledgerDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	recs, err := db.ListTradesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(recs) == 0 {
		fmt.Printf("No trades on %s.\n", day)
		return nil
	}
	printTrades(recs)
	return nil
}

func printTrades(recs []ledger.TradeRecord) {
	for _, r := range recs {
		fmt.Printf("%s  %s %-4s qty=%-10g entry=%-10g exit=%-10g fee=%-10.6f pnl=%-+10.6f balance=%.6f\n",
			r.TS.UTC().Format(time.RFC3339), r.Symbol, r.Side.String(),
			r.Qty, r.Entry, r.Exit, r.Fee, r.Pnl, r.Balance)
		if r.Note != "" {
			fmt.Printf("    id=%s  %s\n", r.ID, r.Note)
		}
	}
}
