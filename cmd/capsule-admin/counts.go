package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var countsCmd = &cobra.Command{
	Use:   "counts <capsule-id>",
	Short: "Show item and vault counts by status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capsuleID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid capsule id %q: %w", args[0], err)
		}

		counts, err := services.NewCountsService(db, nil).ForCapsule(context.Background(), capsuleID)
		if err != nil {
			return fmt.Errorf("counting items: %w", err)
		}

		if jsonOutput {
			data, err := json.MarshalIndent(counts, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Capsule %s\n", capsuleID)
		fmt.Println("Items:")
		for _, status := range models.ItemStatuses {
			fmt.Printf("  %-17s %d\n", status, counts.Items[status])
		}
		fmt.Println("Vault:")
		for _, status := range models.VaultStatuses {
			fmt.Printf("  %-17s %d\n", status, counts.Vault[status])
		}
		return nil
	},
}
