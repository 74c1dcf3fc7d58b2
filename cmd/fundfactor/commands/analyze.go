package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wonny/fundfactor/internal/fund"
	"github.com/wonny/fundfactor/internal/fundconfig"
	"github.com/wonny/fundfactor/internal/report"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [spreadsheet]",
	Short: "Run the factor regression for one fund",
	Long: `Loads a fund by Yahoo ticker or from a one-column NAV spreadsheet,
converts it to USD, and regresses its monthly excess return on the
regional Fama-French five factors plus momentum.

Missing currency, region or window values are asked for interactively.

Outputs:
- regression summary on stdout (or JSON with --json)
- PDF report in REPORT_DIR named after the fund

Example:
  go run ./cmd/fundfactor analyze --ticker VTI --currency USD --region "United States"
  go run ./cmd/fundfactor analyze msci_europe.xls --currency EUR --region Europe --window 24
  go run ./cmd/fundfactor analyze --definition funds/world.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeTicker     string
	analyzeFile       string
	analyzeName       string
	analyzeCurrency   string
	analyzeRegion     string
	analyzeWindow     string
	analyzeDefinition string
	analyzePDF        bool
	analyzeJSON       bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeTicker, "ticker", "", "Yahoo ticker of the fund")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "NAV spreadsheet (.xls, .xlsx, .xlsm)")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "display name override")
	analyzeCmd.Flags().StringVar(&analyzeCurrency, "currency", "", "fund currency (EUR, USD)")
	analyzeCmd.Flags().StringVar(&analyzeRegion, "region", "", "investment region (United States, Developed, Europe, Emerging)")
	analyzeCmd.Flags().StringVar(&analyzeWindow, "window", "", "rolling regression window in months (default 36)")
	analyzeCmd.Flags().StringVar(&analyzeDefinition, "definition", "", "YAML or TOML fund definition")
	analyzeCmd.Flags().BoolVar(&analyzePDF, "pdf", true, "write the PDF report")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the analysis as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	spec, err := resolveSpec(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	analysis, err := a.service.Analyze(ctx, spec)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			return fmt.Errorf("encode analysis: %w", err)
		}
	} else if err := report.WriteSummary(out, analysis); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if analyzePDF {
		path := report.FileName(cfg.ReportDir, analysis.Name)
		if err := report.WritePDFFile(path, analysis); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		a.log.WithField("path", path).Info("PDF report written")
		if !analyzeJSON {
			PrintSuccess("Report written to " + path)
		}
	}
	return nil
}

// resolveSpec merges the definition file, flags and interactive answers
func resolveSpec(cmd *cobra.Command, args []string) (fund.Spec, error) {
	if analyzeDefinition != "" {
		def, _, err := fundconfig.Load(analyzeDefinition)
		if err != nil {
			return fund.Spec{}, err
		}
		return def.Spec(), nil
	}

	file := analyzeFile
	if len(args) == 1 {
		if file != "" && file != args[0] {
			return fund.Spec{}, errors.New("give the spreadsheet either as argument or with --file, not both")
		}
		file = args[0]
	}

	spec := fund.Spec{
		Name:     analyzeName,
		Ticker:   analyzeTicker,
		File:     file,
		Currency: analyzeCurrency,
		Region:   analyzeRegion,
	}

	p := newPrompter(os.Stdin, cmd.ErrOrStderr())
	return p.complete(spec, analyzeWindow, cmd.Flags().Changed("window"))
}

// prompter asks for the values missing from the command line
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed answer
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// complete fills every unset field of spec by asking
// A window left blank selects the default
func (p *prompter) complete(spec fund.Spec, window string, windowSet bool) (fund.Spec, error) {
	var err error

	if spec.Ticker == "" && spec.File == "" {
		if spec.Ticker, err = p.ask("Yahoo ticker of fund: "); err != nil {
			return spec, err
		}
	}
	if spec.Currency == "" {
		if spec.Currency, err = p.ask("Currency denomination of the fund (supported: EUR, USD): "); err != nil {
			return spec, err
		}
	}
	spec.Currency = strings.ToUpper(spec.Currency)

	if spec.Region == "" {
		if spec.Region, err = p.ask("Region in which fund invests (supported: United States, Developed, Europe, Emerging): "); err != nil {
			return spec, err
		}
	}
	spec.Region = cases.Title(language.English).String(strings.ToLower(spec.Region))

	if !windowSet {
		if window, err = p.ask("Window for rolling regression (in months, defaults to 36): "); err != nil {
			return spec, err
		}
	}
	if spec.Window, err = fund.ParseWindow(window); err != nil {
		return spec, err
	}

	return spec, spec.Validate()
}
