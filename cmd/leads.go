package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List, qualify, convert, enrich, and export leads",
}

var (
	leadsCampaignID string
	leadsStatus     string
	leadsMinScore   float64
)

func leadFilter() store.LeadFilter {
	return store.LeadFilter{
		CampaignID: leadsCampaignID,
		Status:     model.LeadStatus(leadsStatus),
		MinScore:   leadsMinScore,
	}
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(ctx, leadFilter())
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tPOSTCODE\tSCORE\tSTATUS")
		for _, l := range leads {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%s\n",
				l.ID, l.CompanyName, l.Postcode, l.LeadScore, l.Status)
		}
		return w.Flush()
	},
}

var leadsQualifyCmd = &cobra.Command{
	Use:   "qualify <lead-id>",
	Short: "Mark a lead qualified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		return env.Leads.Qualify(ctx, args[0])
	},
}

var rejectReason string

var leadsRejectCmd = &cobra.Command{
	Use:   "reject <lead-id>",
	Short: "Mark a lead rejected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		return env.Leads.Reject(ctx, args[0], rejectReason)
	},
}

var leadsConvertCmd = &cobra.Command{
	Use:   "convert <lead-id> <customer-id>",
	Short: "Convert a lead to a customer record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		l, err := env.Leads.Convert(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("lead %s converted to customer %s\n", l.ID, l.CustomerID)
		return nil
	},
}

var leadsEnrichCmd = &cobra.Command{
	Use:   "enrich <lead-id>",
	Short: "Attach Companies House registry data to a lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		profile, err := env.Leads.Enrich(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

var exportPath string

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Leads.ExportXLSX(ctx, leadFilter(), exportPath)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %d lead(s) to %s\n", n, exportPath)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{leadsListCmd, leadsExportCmd} {
		c.Flags().StringVar(&leadsCampaignID, "campaign", "", "filter by campaign id")
		c.Flags().StringVar(&leadsStatus, "status", "", "filter by status")
		c.Flags().Float64Var(&leadsMinScore, "min-score", 0, "minimum lead score")
	}
	leadsRejectCmd.Flags().StringVar(&rejectReason, "reason", "", "rejection reason")
	leadsExportCmd.Flags().StringVar(&exportPath, "out", "leads.xlsx", "output file path")

	leadsCmd.AddCommand(leadsListCmd, leadsQualifyCmd, leadsRejectCmd, leadsConvertCmd, leadsEnrichCmd, leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}
