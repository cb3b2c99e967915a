package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

var flagRefresh bool

var childrenCmd = &cobra.Command{
	Use:   "children",
	Short: "List children of the account",
	RunE:  runChildren,
}

func init() {
	childrenCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Fetch the list again instead of using the session cache")
	rootCmd.AddCommand(childrenCmd)
}

func runChildren(cmd *cobra.Command, args []string) error {
	instance, err := newApp()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var children []child.Child
	if flagRefresh {
		children, err = instance.RestClient.GetChildren(ctx)
	} else {
		children, err = instance.RestClient.EnsureChildren(ctx)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UID\tNAME\tBIRTHDAY\tGENDER")
	for _, c := range children {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.UID, c.Name, c.Birthday, c.Gender)
	}

	return w.Flush()
}
