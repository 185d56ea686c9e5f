package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant about your recovery",
		Long: "Interactive intake dialogue. Type your answers; an empty line asks the " +
			"assistant for its next question. Type /quit to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			if !sess.ContactSaved() {
				return fmt.Errorf("save your contact details first: patient contact --name ... --phone ...")
			}

			out := os.Stdout
			seen := printNewItems(out, sess, 0)

			fmt.Fprintln(out, "Describe your symptoms (empty line for the next question, /quit to exit).")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(out, "\nyou> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "/quit" {
					return nil
				}
				sess.SubmitTurn(context.Background(), line)
				seen = printNewItems(out, sess, seen)
			}
		},
	}
	return cmd
}
