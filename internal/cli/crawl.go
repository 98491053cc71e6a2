package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"irscout/internal/ircrawl"
)

func newCrawlCmd() *cobra.Command {
	var (
		req    ircrawl.Request
		output string
	)
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl and print the reports found",
		Example: `  irscout crawl --website apple.com --ticker AAPL
  irscout crawl --ir-url https://investor.example.com/financials --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(output)
			if format != "text" && format != "json" && format != "yaml" {
				return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
			}

			cfg, logger := loadRuntime(cmd)
			a := newApp(cfg, logger)

			result, err := a.crawler.Crawl(cmd.Context(), req)
			if err != nil && result.Reports == nil {
				return err
			}
			if perr := printResult(cmd.OutOrStdout(), result, format); perr != nil {
				return perr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&req.Website, "website", "", "company website, e.g. example.com")
	cmd.Flags().StringVar(&req.Ticker, "ticker", "", "ticker symbol, used as the cache key")
	cmd.Flags().StringVar(&req.IRPageURL, "ir-url", "", "known investor-relations page URL")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|yaml")
	return cmd
}

func printResult(w io.Writer, result ircrawl.CrawlResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return printText(w, result)
	}
}

var (
	headerColor    = color.New(color.FgCyan, color.Bold)
	errorColor     = color.New(color.FgRed, color.Bold)
	annualColor    = color.New(color.FgGreen)
	quarterlyColor = color.New(color.FgYellow)
	otherColor     = color.New(color.Faint)
)

func printText(w io.Writer, result ircrawl.CrawlResult) error {
	if result.Error != "" {
		_, err := errorColor.Fprintf(w, "error: %s\n", result.Error)
		return err
	}

	headerColor.Fprintf(w, "IR page: %s\n", result.IRPageURL)
	if len(result.Reports) == 0 {
		fmt.Fprintln(w, "no reports found")
		return nil
	}
	fmt.Fprintf(w, "%d reports\n", len(result.Reports))

	for _, r := range result.Reports {
		c := otherColor
		switch r.Type {
		case ircrawl.ReportAnnual:
			c = annualColor
		case ircrawl.ReportQuarterly:
			c = quarterlyColor
		}
		c.Fprintf(w, "  %-9s", r.Type)
		fmt.Fprintf(w, " %-8s %s\n  %10s %s\n", period(r), r.Title, "", r.URL)
	}
	return nil
}

// period renders the year and quarter of a report, "-" when undated.
func period(r ircrawl.ClassifiedReport) string {
	switch {
	case r.Year == 0:
		return "-"
	case r.Quarter > 0:
		return fmt.Sprintf("%d Q%d", r.Year, r.Quarter)
	default:
		return fmt.Sprintf("%d", r.Year)
	}
}
