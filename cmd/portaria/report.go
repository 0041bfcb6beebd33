package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/portaria/internal/app"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore/xlsx"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print or export the attendance log",
	Long: `List attendance log rows as a table, optionally only one day, or export
them to a new spreadsheet.

Example:
  portaria report --date 04-03-2024
  portaria report --export march.xlsx`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("date", "", "Only rows of this day (DD-MM-YYYY)")
	reportCmd.Flags().String("export", "", "Write the rows to this xlsx file instead of printing")
}

func runReport(cmd *cobra.Command, args []string) error {
	date, _ := cmd.Flags().GetString("date")
	export, _ := cmd.Flags().GetString("export")

	if date != "" {
		if _, err := time.Parse(logstore.DateLayout, date); err != nil {
			return fmt.Errorf("--date must be DD-MM-YYYY: %w", err)
		}
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, _, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Records(ctx)
	if err != nil {
		return err
	}
	records = logstore.OnDate(records, date)

	if export != "" {
		if err := xlsx.Export(export, records); err != nil {
			return err
		}
		fmt.Printf("✓ %d rows written to %s\n", len(records), export)
		return nil
	}

	printRecords(records)
	return nil
}

func printRecords(records []logstore.Record) {
	if len(records) == 0 {
		fmt.Println("No attendance rows.")
		return
	}

	const rowFormat = "%-10s  %-8s  %-8s  %-16s  %-24s  %-8s\n"

	bold := color.New(color.Bold)
	open := color.New(color.FgYellow)

	bold.Printf(rowFormat, "DATE", "ENTRY", "EXIT", "PERSON", "NAME", "DURATION")

	inside := 0
	for _, r := range records {
		row := logstore.Row(r)
		if r.Open() {
			inside++
			row[2] = "-"
			open.Printf(rowFormat, row[0], row[1], row[2], row[3], row[4], "")
			continue
		}
		fmt.Printf(rowFormat, row[0], row[1], row[2], row[3], row[4], row[5])
	}

	fmt.Printf("\n%d rows, %s\n", len(records), open.Sprintf("%d still inside", inside))
}
