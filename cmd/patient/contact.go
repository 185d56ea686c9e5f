package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newContactCmd(flags *rootFlags) *cobra.Command {
	var name, phone, email string

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Save your contact details (required before uploads and chat)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			if err := sess.SaveContact(context.Background(), name, phone, email); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Contact saved for %s. You can now upload your reports.\n", sess.PatientID())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "your full name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&email, "email", "", "email address (optional)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("phone")
	return cmd
}
