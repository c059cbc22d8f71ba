// Package cmd implements the kpm-seeder command tree.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"github.com/ranwatch-systems/ranwatch/tools/kpm-seeder/profiles"
)

var (
	profilesPath string
	agentCount   int
	uesPerAgent  int
	reportCount  int
	interval     time.Duration
	seed         int64
	profileNames []string

	pack  []profiles.Profile
	faker *gofakeit.Faker
)

var rootCmd = &cobra.Command{
	Use:   "kpm-seeder",
	Short: "Synthetic KPM telemetry generator",
	Long: `kpm-seeder generates synthetic per-UE KPM indications shaped like the
reports an E2 termination publishes, drawn from benign service-class and
flood-attack traffic profiles.

Use it to drive a detector in a test rig (publish) or to produce capture
files for offline work (write).`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initSeeder)

	rootCmd.PersistentFlags().StringVar(&profilesPath, "profiles", "", "YAML profile pack (default: built-in profiles)")
	rootCmd.PersistentFlags().IntVar(&agentCount, "agents", 1, "number of simulated E2 agents")
	rootCmd.PersistentFlags().IntVar(&uesPerAgent, "ues", 4, "number of UEs per agent")
	rootCmd.PersistentFlags().IntVar(&reportCount, "count", 120, "number of indications per agent")
	rootCmd.PersistentFlags().DurationVar(&interval, "interval", time.Second, "interval between indications")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 for time-based)")
	rootCmd.PersistentFlags().StringSliceVar(&profileNames, "profile", nil, "traffic profiles to cycle UEs through (default: all)")
}

func initSeeder() {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker = gofakeit.New(seed)

	if profilesPath == "" {
		pack = profiles.Defaults()
		return
	}
	loaded, err := profiles.Load(profilesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	pack = loaded
}

// selectedProfiles resolves --profile against the pack, defaulting to the
// whole pack.
func selectedProfiles() ([]profiles.Profile, error) {
	if len(profileNames) == 0 {
		return pack, nil
	}
	out := make([]profiles.Profile, 0, len(profileNames))
	for _, name := range profileNames {
		p, ok := profiles.ByName(pack, name)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q (have: %v)", name, profiles.Names(pack))
		}
		out = append(out, p)
	}
	return out, nil
}
