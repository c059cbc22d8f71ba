package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var outPath string

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write synthetic indications to a JSONL file",
	RunE: func(cmd *cobra.Command, args []string) error {
		selection, err := selectedProfiles()
		if err != nil {
			return err
		}

		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()

		w := bufio.NewWriter(out)
		enc := json.NewEncoder(w)

		f := buildFleet(selection)
		written := 0
		at := time.Now()
		for i := 0; i < reportCount; i++ {
			for _, a := range f.agents {
				if err := enc.Encode(indicationAt(a, at)); err != nil {
					return fmt.Errorf("encode indication: %w", err)
				}
				written++
			}
			at = at.Add(interval)
		}

		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush output: %w", err)
		}
		log.Printf("Wrote %d indications to %s", written, outPath)
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVar(&outPath, "out", "kpm_indications.jsonl", "output JSONL path")
	rootCmd.AddCommand(writeCmd)
}
