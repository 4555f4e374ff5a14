package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccs-group/leadgen-cli/internal/campaign"
	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/internal/store"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Create, run, and inspect discovery campaigns",
}

var (
	createName             string
	createPromptType       string
	createCriteria         string
	createPostcode         string
	createRadius           int
	createMax              int
	createInclude          []string
	createExclude          []string
	createIncludeCustomers bool
	createMode             string
	createFile             string
	createAndRun           bool
)

var campaignCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign from flags or a YAML definition file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := campaignFromFlags()
		if err != nil {
			return err
		}

		if err := env.Store.CreateCampaign(ctx, c); err != nil {
			return eris.Wrap(err, "create campaign")
		}
		zap.L().Info("campaign created",
			zap.String("campaign_id", c.ID),
			zap.String("name", c.Name))
		fmt.Println(c.ID)

		if createAndRun {
			status, err := env.Runner.Run(ctx, c.ID)
			if err != nil {
				return err
			}
			fmt.Println(status)
		}
		return nil
	},
}

func campaignFromFlags() (*model.Campaign, error) {
	defaults := campaign.Defaults{
		RadiusMiles: cfg.Campaign.DefaultRadiusMiles,
		MaxResults:  cfg.Campaign.DefaultMaxResults,
	}

	if createFile != "" {
		return campaign.LoadSpecFile(createFile, defaults)
	}

	c := &model.Campaign{
		Name:                     createName,
		PromptType:               createPromptType,
		CustomCriteria:           createCriteria,
		Postcode:                 createPostcode,
		RadiusMiles:              createRadius,
		MaxResults:               createMax,
		IncludeSectors:           createInclude,
		ExcludeSectors:           createExclude,
		IncludeExistingCustomers: createIncludeCustomers,
		ModePreference:           model.DiscoveryMode(createMode),
	}
	if c.RadiusMiles == 0 {
		c.RadiusMiles = defaults.RadiusMiles
	}
	if c.MaxResults == 0 {
		c.MaxResults = defaults.MaxResults
	}
	if c.Name == "" {
		return nil, eris.New("--name is required (or use --file)")
	}
	if _, err := campaign.Compose(*c); err != nil {
		return nil, err
	}
	return c, nil
}

var campaignRunCmd = &cobra.Command{
	Use:   "run <campaign-id>",
	Short: "Run a created campaign to completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		status, err := env.Runner.Run(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(status)
		return nil
	},
}

var listStatus string

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		campaigns, err := env.Store.ListCampaigns(ctx, store.CampaignFilter{
			Status: model.CampaignStatus(listStatus),
		})
		if err != nil {
			return eris.Wrap(err, "list campaigns")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tLEADS\tCREATED")
		for _, c := range campaigns {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				c.ID, c.Name, c.PromptType, c.Status,
				c.Counters.LeadsCreated, c.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var campaignStatusCmd = &cobra.Command{
	Use:   "status <campaign-id>",
	Short: "Show a campaign's full state as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := env.Store.GetCampaign(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "get campaign")
		}
		if c == nil {
			return eris.Errorf("campaign %s not found", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

var campaignRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Fail campaigns stuck in running state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		repaired, err := env.Runner.RepairStuck(ctx, stuckCutoff(cfg.Campaign))
		if err != nil {
			return err
		}
		fmt.Printf("repaired %d stuck campaign(s)\n", len(repaired))
		return nil
	},
}

func init() {
	campaignCreateCmd.Flags().StringVar(&createName, "name", "", "campaign name")
	campaignCreateCmd.Flags().StringVar(&createPromptType, "type", "custom",
		"prompt type: "+strings.Join(campaign.PromptTypes(), ", "))
	campaignCreateCmd.Flags().StringVar(&createCriteria, "criteria", "", "custom search criteria")
	campaignCreateCmd.Flags().StringVar(&createPostcode, "postcode", "", "search center postcode")
	campaignCreateCmd.Flags().IntVar(&createRadius, "radius", 0, "search radius in miles (default from config)")
	campaignCreateCmd.Flags().IntVar(&createMax, "max-results", 0, "maximum results (default from config)")
	campaignCreateCmd.Flags().StringSliceVar(&createInclude, "include-sector", nil, "sector to include (repeatable)")
	campaignCreateCmd.Flags().StringSliceVar(&createExclude, "exclude-sector", nil, "sector to exclude (repeatable)")
	campaignCreateCmd.Flags().BoolVar(&createIncludeCustomers, "include-existing-customers", false,
		"allow rediscovering existing customers")
	campaignCreateCmd.Flags().StringVar(&createMode, "mode", "",
		"pin discovery to one mode: search_augmented or knowledge_only")
	campaignCreateCmd.Flags().StringVar(&createFile, "file", "", "YAML campaign definition file")
	campaignCreateCmd.Flags().BoolVar(&createAndRun, "run", false, "run the campaign immediately after creating it")

	campaignListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")

	campaignCmd.AddCommand(campaignCreateCmd, campaignRunCmd, campaignListCmd, campaignStatusCmd, campaignRepairCmd)
	rootCmd.AddCommand(campaignCmd)
}
