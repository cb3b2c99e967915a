package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gitlab.com/adam.stanek/huckleberry/pkg/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridge (default command)",
	RunE:  runBridge,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	instance, err := newApp()
	if err != nil {
		return err
	}

	log.Info().Str("version", version).Msg("Application started")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	runner := utils.RunWithGracefulCancel(instance.Run)

	finished := make(chan error, 1)
	go func() {
		finished <- runner.Wait()
	}()

	select {
	case err := <-finished:
		return err
	case <-interrupt:
		log.Warn().Msg("Received interrupt signal, terminating")
	}

	waitForCleanup := make(chan struct{}, 1)

	go func() {
		runner.Cancel()
		close(waitForCleanup)
	}()

	select {
	case <-interrupt:
		log.Fatal().Msg("Received another interrupt signal, forcing termination without clean up")
	case <-waitForCleanup:
		log.Info().Msg("Clean exit")
	}

	return nil
}
