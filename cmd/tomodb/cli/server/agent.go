package server

import (
	"context"
	"fmt"

	"github.com/mwantia/tomodb/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/tomodb/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the tomodb catalog agent",
		Long:  `Start the tomodb catalog agent`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			return agent.NewAgent(cfg).Serve(context.Background())
		},
	}

	return cmd
}
