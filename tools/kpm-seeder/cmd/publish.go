package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/ranwatch-systems/ranwatch/common/messaging"
	natsclient "github.com/ranwatch-systems/ranwatch/common/messaging/nats"
)

var natsURL string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish synthetic indications to the message bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		selection, err := selectedProfiles()
		if err != nil {
			return err
		}

		cfg := natsclient.DefaultConfig()
		cfg.URL = natsURL
		cfg.Name = "kpm-seeder"
		bus, err := natsclient.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer bus.Close()

		f := buildFleet(selection)
		log.Printf("Seeding %d agents x %d UEs, %d indications each, every %v",
			agentCount, uesPerAgent, reportCount, interval)

		ctx := cmd.Context()
		sent := 0
		for i := 0; i < reportCount; i++ {
			at := time.Now()
			for _, a := range f.agents {
				subject := messaging.AgentIndicationSubject(a.id)
				if err := bus.PublishJSON(ctx, subject, indicationAt(a, at)); err != nil {
					return fmt.Errorf("publish indication: %w", err)
				}
				sent++
			}
			if interval > 0 && i < reportCount-1 {
				select {
				case <-time.After(interval):
				case <-ctx.Done():
					log.Printf("interrupted after %d indications", sent)
					return context.Cause(ctx)
				}
			}
		}

		log.Printf("Seeding complete: %d indications published", sent)
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&natsURL, "nats-url", "nats://localhost:4222", "NATS server URL")
	rootCmd.AddCommand(publishCmd)
}
