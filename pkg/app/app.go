package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gitlab.com/adam.stanek/huckleberry/pkg/action"
	"gitlab.com/adam.stanek/huckleberry/pkg/client"
	"gitlab.com/adam.stanek/huckleberry/pkg/coordinator"
	"gitlab.com/adam.stanek/huckleberry/pkg/entity"
	"gitlab.com/adam.stanek/huckleberry/pkg/mqtt"
	"gitlab.com/adam.stanek/huckleberry/pkg/session"
	"gitlab.com/adam.stanek/huckleberry/pkg/utils"
)

// App - application container
type App struct {
	Opts           Opts
	SessionStore   *session.Store
	RestClient     *client.HuckleberryClient
	Coordinator    *coordinator.Coordinator
	Dispatcher     *action.Dispatcher
	Entities       []entity.Entity
	MQTTConnection *mqtt.Connection
}

// NewApp - constructor
func NewApp(opts Opts) (*App, error) {
	sessionStore, err := session.InitSessionStore(opts.SessionFile)
	if err != nil {
		return nil, err
	}

	return &App{
		Opts:         opts,
		SessionStore: sessionStore,
		RestClient: &client.HuckleberryClient{
			Email:        opts.Credentials.Email,
			Password:     opts.Credentials.Password,
			APIKey:       opts.APIKey,
			ProjectID:    opts.ProjectID,
			SessionStore: sessionStore,
			Endpoints:    opts.Endpoints,
		},
	}, nil
}

// Setup - signs in, resolves children and builds the coordinator, dispatcher and entities
func (app *App) Setup(ctx context.Context) error {
	// Reauthorize if we don't have a token or we assume it is invalid
	if err := app.RestClient.MaybeAuthorize(ctx, false); err != nil {
		return fmt.Errorf("unable to authorize: %w", err)
	}

	// Refresh children on every start, session cache is only a fallback
	children, err := app.RestClient.GetChildren(ctx)
	if err != nil {
		cached := app.SessionStore.Session.Children
		if len(cached) == 0 {
			return fmt.Errorf("unable to fetch children: %w", err)
		}

		log.Warn().Err(err).Int("children", len(cached)).Msg("Unable to fetch children, using cached list")
		children = cached
	}

	log.Info().Int("children", len(children)).Msg("Children resolved")

	app.Coordinator = coordinator.New(app.RestClient, children)
	app.Dispatcher = action.NewDispatcher(app.RestClient, app.Coordinator, children)
	app.Entities = entity.NewSet(children, app.Dispatcher, entity.Opts{
		Location: app.Opts.Location,
		Buttons:  app.Opts.Buttons,
	})

	if app.Opts.MQTT != nil {
		app.MQTTConnection = mqtt.NewConnection(*app.Opts.MQTT, app.Entities, app.Coordinator, app.Dispatcher)
	}

	return nil
}

// Run - application main loop
func (app *App) Run(ctx utils.GracefulContext) {
	if err := app.Setup(ctx); err != nil {
		log.Error().Err(err).Msg("Unable to start")
		ctx.Fail(err)
		return
	}

	ctx.RunAsChild(func(childCtx utils.GracefulContext) {
		app.Coordinator.Run(childCtx, app.Opts.PollInterval)
	})

	if app.MQTTConnection != nil {
		ctx.RunAsChild(func(childCtx utils.GracefulContext) {
			app.MQTTConnection.Run(childCtx)
		})
	} else {
		log.Warn().Msg("MQTT is disabled, data are only polled")
	}

	<-ctx.Done()
}
