package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"promptreel/internal/app"
	"promptreel/internal/chat"
	"promptreel/pkg/config"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	audioStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with narrated replies",
	Long: `Chat keeps one in-memory session: every reply is generated by the
language model and narrated to an audio file with a fixed voice.
Type an empty message or "exit" to quit.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	service, err := app.BuildService(cfg)
	if err != nil {
		return err
	}

	session := service.NewChatSession()
	fmt.Println(audioStyle.Render("Session " + session.ID() + " started. Empty message or \"exit\" quits."))

	for {
		if ctx.Err() != nil {
			return nil
		}

		var message string
		if err := huh.NewInput().
			Title("You").
			Value(&message).
			Run(); err != nil {
			return err
		}

		message = strings.TrimSpace(message)
		if message == "" || message == "exit" {
			return nil
		}

		var turn *chat.Turn
		var submitErr error
		_ = spinner.New().
			Title("Thinking...").
			Action(func() { turn, submitErr = session.Submit(ctx, message) }).
			Run()

		if submitErr != nil {
			if errors.Is(submitErr, chat.ErrTurnInFlight) {
				fmt.Println(audioStyle.Render("Previous turn still running, try again."))
				continue
			}
			return submitErr
		}

		fmt.Println(questionStyle.Render("You: ") + turn.Question)
		fmt.Println(answerStyle.Render("Reel: ") + turn.Answer)
		fmt.Println(audioStyle.Render("audio: " + turn.AudioPath))
	}
}
