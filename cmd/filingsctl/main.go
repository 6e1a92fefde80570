// filingsctl — diagnostic CLI for the SEC filing retrieval library.
//
// The library itself is consumed in-process by the tool-calling layer;
// this binary exists so operators can exercise resolution, location, and
// conversion against live EDGAR endpoints.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finsight/filings/internal/logger"
	"github.com/finsight/filings/pkg/config"
	"github.com/finsight/filings/pkg/edgar"
	"github.com/finsight/filings/pkg/models"
)

var (
	version = "dev"

	cfg    *config.Config
	client *edgar.Client
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "filingsctl",
	Short: "Inspect SEC EDGAR filing retrieval",
	Long: `filingsctl exercises the filings library against live EDGAR endpoints:
company resolution, recent-filings and date-range location, and
markup-to-text conversion.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		client = edgar.NewClient(cfg.EDGAR, logger.New(cfg.Logging.Level))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(convertCmd)

	recentCmd.Flags().String("form", "10-K", "form type code")
	recentCmd.Flags().Int("limit", 1, "number of filings")
	rangeCmd.Flags().String("form", "10-K", "form type code")
	rangeCmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	rangeCmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	feedCmd.Flags().String("form", "", "form type filter")
	feedCmd.Flags().Int("limit", 10, "number of entries")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("filingsctl %s\n", version)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [identifier]",
	Short: "Resolve a company name or ticker to CIK candidates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		companies, err := client.ResolveCompany(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(companies)
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent [cik]",
	Short: "Fetch a company's most recent filings of a form type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, _ := cmd.Flags().GetString("form")
		limit, _ := cmd.Flags().GetInt("limit")
		filings, err := client.RecentFilings(cmd.Context(), args[0], form, limit)
		if err != nil {
			return err
		}
		return printFilings(filings)
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range [cik]",
	Short: "Fetch a company's filings within a date range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, _ := cmd.Flags().GetString("form")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		if start == "" || end == "" {
			return fmt.Errorf("both --start and --end are required")
		}
		filings, err := client.FilingsInRange(cmd.Context(), args[0], form, start, end)
		if err != nil {
			return err
		}
		return printFilings(filings)
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed [cik]",
	Short: "Show a company's Atom filing feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, _ := cmd.Flags().GetString("form")
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := client.FilingFeed(cmd.Context(), args[0], form, limit)
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [url]",
	Short: "Fetch a filing document and print its converted text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(client.FetchContent(context.Background(), args[0]))
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

// printFilings prints filing metadata plus a content summary; full text is
// usually hundreds of KB, so only its size is shown.
func printFilings(filings []models.Filing) error {
	type summary struct {
		AccessionNumber string `json:"accession_number"`
		FilingDate      string `json:"filing_date"`
		ReportDate      string `json:"report_date"`
		Form            string `json:"form"`
		URL             string `json:"url"`
		ContentBytes    int    `json:"content_bytes"`
	}
	out := make([]summary, 0, len(filings))
	for _, f := range filings {
		out = append(out, summary{
			AccessionNumber: f.AccessionNumber,
			FilingDate:      f.FilingDate,
			ReportDate:      f.ReportDate,
			Form:            f.Form,
			URL:             f.URL,
			ContentBytes:    len(f.FullText),
		})
	}
	return printJSON(out)
}
