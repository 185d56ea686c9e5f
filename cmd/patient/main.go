// Command patient is a terminal client for the recovery assistant: save
// contact details, upload reports, chat through the intake dialogue and
// download the final report.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	server    string
	patientID string
	dataDir   string
	language  string
	introAt   int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Talk to the recovery assistant",
		Long: "Patient-side client for the post-surgery recovery assistant. " +
			"Save your contact details once, upload your medical reports, then chat.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.server, "server", "http://localhost:8080", "assistant server base URL")
	cmd.PersistentFlags().StringVar(&flags.patientID, "patient-id", "", "patient id (generated and remembered when empty)")
	cmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", defaultDataDir(), "directory for local session state")
	cmd.PersistentFlags().StringVar(&flags.language, "language", "en", "chat language (en or ta)")
	cmd.PersistentFlags().IntVar(&flags.introAt, "intro-uploads", 2, "uploads required before the greeting")

	cmd.AddCommand(
		newContactCmd(flags),
		newUploadCmd(flags),
		newChatCmd(flags),
		newReportCmd(flags),
	)
	return cmd
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recovery-assistant"
	}
	return home + "/.recovery-assistant"
}
