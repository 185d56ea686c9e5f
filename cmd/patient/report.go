package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReportCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Download your final medical report",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			data, name, err := sess.DownloadReport(context.Background())
			if err != nil {
				return err
			}
			if output == "" {
				output = name
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to the server-suggested name)")
	return cmd
}
