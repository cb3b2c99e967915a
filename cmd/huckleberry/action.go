package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gitlab.com/adam.stanek/huckleberry/pkg/action"
)

const callTimeout = 30 * time.Second

var actionCmd = &cobra.Command{
	Use:   "action <child_uid> <type>",
	Short: "Trigger a device action of the child",
	Long:  fmt.Sprintf(`Trigger a device action of the child.

Available types: %s`, actionTypes()),
	Args: cobra.ExactArgs(2),
	RunE: runAction,
}

var serviceCmd = &cobra.Command{
	Use:   "service <name> [json data]",
	Short: "Call a service, data are passed as JSON",
	Long:  fmt.Sprintf(`Call a service, data are passed as JSON, e.g.

  huckleberry service start_feeding '{"child_uid": "...", "side": "left"}'
  huckleberry service log_growth '{"child_uid": "...", "weight": 4.2}'

Available services: %s`, serviceNames()),
	Args: cobra.RangeArgs(1, 2),
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(serviceCmd)
}

func actionTypes() string {
	types := make([]string, len(action.Types))
	for i, t := range action.Types {
		types[i] = string(t)
	}

	return strings.Join(types, ", ")
}

func serviceNames() string {
	services := action.Services()
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = string(s)
	}

	sort.Strings(names)
	return strings.Join(names, ", ")
}

func runAction(cmd *cobra.Command, args []string) error {
	instance, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := instance.Setup(ctx); err != nil {
		return err
	}

	deviceID := action.DeviceID(args[0])
	if err := instance.Dispatcher.CallAction(ctx, deviceID, action.Type(args[1])); err != nil {
		return err
	}

	log.Info().Str("device_id", deviceID).Str("type", args[1]).Msg("Action executed")
	return nil
}

func runService(cmd *cobra.Command, args []string) error {
	data := action.ServiceData{}
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &data); err != nil {
			return fmt.Errorf("invalid service data: %w", err)
		}
	}

	instance, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := instance.Setup(ctx); err != nil {
		return err
	}

	if err := instance.Dispatcher.CallService(ctx, action.Service(args[0]), data); err != nil {
		return err
	}

	log.Info().Str("service", args[0]).Str("child_uid", data.ChildUID).Msg("Service executed")
	return nil
}
