package cli

import (
	"sort"
	"time"

	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List targets with certificate status",
	Long: `List all registered targets and the expiry status of their certificates.

Examples:
  anchorctl list
  anchorctl ls --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type targetListItem struct {
	Name     string `json:"name"`
	Issuer   string `json:"issuer"`
	Subject  string `json:"subject"`
	NotAfter string `json:"not_after,omitempty"`
	Status   string `json:"status"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	items := make([]targetListItem, 0, len(cfg.Targets))
	for _, target := range cfg.ListTargets() {
		status, notAfter := certStatus(target, cfg.RenewWindow)
		item := targetListItem{
			Name:    target.Name,
			Issuer:  target.Issuer,
			Subject: target.CommonName,
			Status:  status,
		}
		if notAfter != nil {
			item.NotAfter = notAfter.Format(time.RFC3339)
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	if len(items) == 0 {
		if jsonOutput {
			return output.JSON([]targetListItem{})
		}
		output.Info("No targets registered")
		return nil
	}

	if jsonOutput {
		return output.JSON(items)
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		notAfter := item.NotAfter
		if notAfter == "" {
			notAfter = "-"
		}
		rows = append(rows, []string{item.Name, item.Issuer, item.Subject, notAfter, item.Status})
	}
	output.Table([]string{"NAME", "ISSUER", "SUBJECT", "NOT AFTER", "STATUS"}, rows)
	return nil
}
