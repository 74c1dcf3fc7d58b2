package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/factors"
)

// datasetsCmd represents the datasets command
var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the factor library catalogue",
	Long: `Lists the datasets published by the Kenneth R. French data library
and the datasets each supported region is regressed against.

Example:
  go run ./cmd/fundfactor datasets
  go run ./cmd/fundfactor datasets --filter Europe`,
	RunE: runDatasets,
}

var datasetsFilter string

func init() {
	rootCmd.AddCommand(datasetsCmd)

	datasetsCmd.Flags().StringVar(&datasetsFilter, "filter", "", "only show datasets whose name contains this text")
}

func runDatasets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintDoubleSeparator()
	fmt.Println("  Regions")
	PrintSeparator()
	widths := []int{16, 40, 24}
	PrintTableHeader([]string{"Region", "Five factors", "Momentum"}, widths)
	for _, region := range contracts.Regions {
		ds, err := factors.DatasetsFor(region)
		if err != nil {
			return err
		}
		PrintTableRow([]string{string(region), ds.FiveFactor, ds.Momentum}, widths)
	}

	datasets, err := a.french.ListDatasets(ctx)
	if err != nil {
		PrintWarning("Factor library catalogue unavailable: " + err.Error())
		return err
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  Factor library")
	PrintSeparator()
	var names []string
	for _, d := range datasets {
		if datasetsFilter != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(datasetsFilter)) {
			continue
		}
		names = append(names, d.Name)
	}
	PrintList(names)
	fmt.Println()
	PrintInfo(fmt.Sprintf("%d of %d datasets", len(names), len(datasets)))
	return nil
}
