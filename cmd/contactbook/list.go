package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/contactbook/internal/models"
)

var (
	listActive   bool
	listInactive bool
	listQuery    string
	listCategory string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listActive, "active", false, "Only active contacts")
	listCmd.Flags().BoolVar(&listInactive, "inactive", false, "Only inactive contacts")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Match name, email or phone")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Only contacts in the named category")
	listCmd.MarkFlagsMutuallyExclusive("active", "inactive")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := commandContext()
	defer cancel()
	svc := newServices(store)

	categories, err := svc.catalog.ListCategories(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(categories))
	filter := models.ContactFilter{Query: listQuery}
	for _, c := range categories {
		names[c.ID] = c.Name
		if listCategory != "" && strings.EqualFold(c.Name, listCategory) {
			filter.CategoryID = c.ID
		}
	}
	if listCategory != "" && filter.CategoryID == "" {
		return fmt.Errorf("unknown category %q", listCategory)
	}
	if listActive || listInactive {
		active := listActive
		filter.IsActive = &active
	}

	contacts, err := svc.contacts.List(ctx, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPHONE\tEMAIL\tBIRTHDAY\tACTIVE\tCATEGORIES")
	for _, c := range contacts {
		var cats []string
		for _, id := range c.CategoryIDs {
			cats = append(cats, names[id])
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n", c.Name, c.Phone, c.Email, c.Birthday, c.IsActive, strings.Join(cats, ", "))
	}
	return tw.Flush()
}
