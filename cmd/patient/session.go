package main

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"recovery-assistant/internal/protocol"
)

// openSession builds a protocol session against the configured server,
// reusing the patient id remembered in the data dir so separate command
// invocations stay one patient.
func openSession(flags *rootFlags) (*protocol.Session, error) {
	patientID := flags.patientID
	idFile := filepath.Join(flags.dataDir, "patient_id")
	if patientID == "" {
		if data, err := os.ReadFile(idFile); err == nil {
			patientID = strings.TrimSpace(string(data))
		}
	}

	sess := protocol.NewSession(
		patientID,
		protocol.NewHTTPBackend(flags.server),
		&protocol.FileFlagStore{Dir: flags.dataDir},
		protocol.Config{Language: flags.language, IntroUploadThreshold: flags.introAt},
		zerolog.Nop(),
	)

	if patientID == "" {
		if err := os.MkdirAll(flags.dataDir, 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(idFile, []byte(sess.PatientID()), 0o644); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// terminalText converts a transcript item's HTML-safe text back to plain
// terminal output.
func terminalText(it protocol.Item) string {
	return html.UnescapeString(strings.ReplaceAll(it.Text, "<br>", "\n"))
}

// printNewItems writes every transcript item past seen and returns the new
// high-water mark.
func printNewItems(out *os.File, sess *protocol.Session, seen int) int {
	items := sess.Transcript()
	for _, it := range items[seen:] {
		switch it.Kind {
		case protocol.ItemAssistant:
			fmt.Fprintf(out, "\nassistant> %s\n", terminalText(it))
		case protocol.ItemBanner:
			fmt.Fprintf(out, "\n!! %s\n", terminalText(it))
			if it.Score != nil {
				fmt.Fprintf(out, "!! risk score: %.0f\n", *it.Score)
			}
		case protocol.ItemError:
			fmt.Fprintf(out, "\nerror: %s\n", terminalText(it))
		case protocol.ItemNotice:
			fmt.Fprintf(out, "\n-- %s --\n", terminalText(it))
		}
	}
	return len(items)
}
