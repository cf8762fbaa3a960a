package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dimitrije/capsule-api/internal/events"
	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var natsURL string

var dissolveCmd = &cobra.Command{
	Use:   "dissolve <capsule-id>",
	Short: "Dissolve a capsule regardless of who asks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capsuleID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid capsule id %q: %w", args[0], err)
		}

		var publisher events.Publisher = &events.NoopPublisher{}
		if natsURL != "" {
			natsPublisher, err := events.NewNATSPublisher(natsURL)
			if err != nil {
				return err
			}
			defer func() {
				_ = natsPublisher.Flush()
				_ = natsPublisher.Close()
			}()
			publisher = natsPublisher
		}

		svc := services.NewCapsuleService(db, 0, publisher, adminLogger())
		capsule, err := svc.ForceDissolve(context.Background(), capsuleID)
		if err != nil {
			return fmt.Errorf("dissolving capsule: %w", err)
		}

		if jsonOutput {
			data, err := json.MarshalIndent(capsule, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Capsule %s dissolved\n", capsule.ID)
		return nil
	},
}

func init() {
	dissolveCmd.Flags().StringVar(&natsURL, "nats-url", "", "publish the dissolved event to this NATS server")
}
