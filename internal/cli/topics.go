package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"quizless-service/internal/app"
	"quizless-service/internal/config"
	"quizless-service/internal/infra/memory"
)

// NewTopicsCmd prints the configured catalog.
func NewTopicsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List the quizzes in the configured catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopics(cmd.Context(), *configPath, cmd.OutOrStdout())
		},
	}
}

func runTopics(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := zap.NewNop()

	catalog, closeCatalog, err := newCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCatalog()

	service := app.NewQuizService(memory.NewSessionStore(), catalog)
	topics, err := service.ListTopics(ctx)
	if err != nil {
		return err
	}
	for _, topic := range topics {
		fmt.Fprintf(out, "%s\t%s\n", topic.ID, topic.Name)
	}
	return nil
}
