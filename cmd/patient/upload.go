package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
)

func newUploadCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload medical reports or scans for analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(flags)
			if err != nil {
				return err
			}

			// files upload concurrently; results are recorded as they finish
			var wg sync.WaitGroup
			errs := make([]error, len(args))
			for i, path := range args {
				wg.Add(1)
				go func(i int, path string) {
					defer wg.Done()
					f, err := os.Open(path)
					if err != nil {
						errs[i] = err
						return
					}
					defer f.Close()
					errs[i] = sess.Upload(context.Background(), filepath.Base(path), f)
				}(i, path)
			}
			wg.Wait()

			out := cmd.OutOrStdout()
			for _, u := range sess.Uploads() {
				fmt.Fprintf(out, "uploaded %s\n  %s\n", u.Filename, u.Analysis)
			}
			printNewItems(os.Stdout, sess, 0)

			for _, err := range errs {
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}
