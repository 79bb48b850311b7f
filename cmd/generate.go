package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"promptreel/internal/app"
	"promptreel/pkg/config"
)

var generateTopic string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a narrated video from a topic prompt",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "Topic for video generation")
	_ = generateCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	service, err := app.BuildService(cfg)
	if err != nil {
		return err
	}

	pipeline := app.NewPipeline(service)

	slog.Info("Generating video...", "topic", generateTopic)
	result, err := pipeline.Generate(ctx, generateTopic)
	if err != nil {
		return err
	}

	slog.Info("Video generated",
		"title", result.Title,
		"path", result.VideoPath,
		"duration", result.Duration,
		"clips", len(result.Directives),
	)
	return nil
}
