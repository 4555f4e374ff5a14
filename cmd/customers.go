package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ccs-group/leadgen-cli/internal/model"
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Manage the customer population used for deduplication",
}

var (
	customerName     string
	customerPostcode string
	customerDomain   string
	customerRegNum   string
)

var customersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a customer record",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if customerName == "" {
			return eris.New("--name is required")
		}

		c := &model.CustomerRef{
			CompanyName:        customerName,
			Postcode:           customerPostcode,
			WebsiteDomain:      customerDomain,
			RegistrationNumber: customerRegNum,
		}
		if err := env.Store.CreateCustomer(ctx, c); err != nil {
			return eris.Wrap(err, "create customer")
		}
		fmt.Println(c.ID)
		return nil
	},
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customer records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		customers, err := env.Store.ListCustomers(ctx)
		if err != nil {
			return eris.Wrap(err, "list customers")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tPOSTCODE\tDOMAIN\tREG")
		for _, c := range customers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				c.ID, c.CompanyName, c.Postcode, c.WebsiteDomain, c.RegistrationNumber)
		}
		return w.Flush()
	},
}

func init() {
	customersAddCmd.Flags().StringVar(&customerName, "name", "", "company name")
	customersAddCmd.Flags().StringVar(&customerPostcode, "postcode", "", "postcode")
	customersAddCmd.Flags().StringVar(&customerDomain, "domain", "", "website domain")
	customersAddCmd.Flags().StringVar(&customerRegNum, "reg", "", "registration number")

	customersCmd.AddCommand(customersAddCmd, customersListCmd)
	rootCmd.AddCommand(customersCmd)
}
