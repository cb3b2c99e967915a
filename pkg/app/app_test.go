package app_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/adam.stanek/huckleberry/pkg/app"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
	"gitlab.com/adam.stanek/huckleberry/pkg/client"
	"gitlab.com/adam.stanek/huckleberry/pkg/config"
	"gitlab.com/adam.stanek/huckleberry/pkg/mqtt"
	"gitlab.com/adam.stanek/huckleberry/pkg/session"
	"gitlab.com/adam.stanek/huckleberry/pkg/utils"
)

const documentsPath = "/projects/simpleintervals/databases/(default)/documents/"

func firebaseServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "accounts:signInWithPassword"):
			fmt.Fprint(w, `{"idToken": "id-token", "refreshToken": "refresh", "expiresIn": "3600", "localId": "user_1"}`)

		case r.URL.Path == documentsPath+"users/user_1":
			fmt.Fprint(w, `{"name": "users/user_1", "fields": {"childList": {"arrayValue": {"values": [
				{"mapValue": {"fields": {"cid": {"stringValue": "child_1"}}}}
			]}}}}`)

		case r.URL.Path == documentsPath+"childs/child_1":
			fmt.Fprint(w, `{"name": "childs/child_1", "fields": {"childsName": {"stringValue": "Emma"}}}`)

		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"code": 404, "message": "not found"}}`)
		}
	}))

	t.Cleanup(server.Close)
	return server
}

func baseOpts(t *testing.T) app.Opts {
	return app.Opts{
		Credentials:  app.Credentials{Email: "parent@example.com", Password: "secret"},
		APIKey:       "api-key",
		ProjectID:    "simpleintervals",
		SessionFile:  filepath.Join(t.TempDir(), "session.json"),
		PollInterval: time.Minute,
		Location:     time.UTC,
	}
}

func TestSetupSignsInAndFetchesChildren(t *testing.T) {
	server := firebaseServer(t)

	opts := baseOpts(t)
	opts.Endpoints = &client.Endpoints{Identity: server.URL, SecureToken: server.URL, Firestore: server.URL}

	instance, err := app.NewApp(opts)
	require.NoError(t, err)
	require.NoError(t, instance.Setup(context.Background()))

	assert.Equal(t, "user_1", instance.SessionStore.Session.UserID)
	require.Len(t, instance.Coordinator.Children(), 1)
	assert.Equal(t, "Emma", instance.Coordinator.Children()[0].Name)
	assert.Len(t, instance.Entities, 9)
	assert.Nil(t, instance.MQTTConnection)

	// Children are cached in the session file
	store, err := session.InitSessionStore(opts.SessionFile)
	require.NoError(t, err)
	assert.Equal(t, "child_1", store.Session.Children[0].UID)
}

func TestSetupRefreshesCachedChildren(t *testing.T) {
	server := firebaseServer(t)

	opts := baseOpts(t)
	opts.Endpoints = &client.Endpoints{Identity: server.URL, SecureToken: server.URL, Firestore: server.URL}

	store, err := session.InitSessionStore(opts.SessionFile)
	require.NoError(t, err)
	store.Session.IDToken = "id-token"
	store.Session.UserID = "user_1"
	store.Session.ExpiresAt = time.Now().Add(time.Hour)
	store.Session.Children = []child.Child{{UID: "child_1", Name: "Old name"}}
	require.NoError(t, store.Save())

	instance, err := app.NewApp(opts)
	require.NoError(t, err)
	require.NoError(t, instance.Setup(context.Background()))

	require.Len(t, instance.Coordinator.Children(), 1)
	assert.Equal(t, "Emma", instance.Coordinator.Children()[0].Name)
	assert.Equal(t, "Emma", instance.SessionStore.Session.Children[0].Name)
}

func TestSetupUsesCachedSession(t *testing.T) {
	opts := baseOpts(t)
	opts.Buttons = true
	opts.MQTT = &mqtt.Opts{BrokerURL: "tcp://127.0.0.1:1", TopicPrefix: "huckleberry"}

	store, err := session.InitSessionStore(opts.SessionFile)
	require.NoError(t, err)
	store.Session.IDToken = "id-token"
	store.Session.UserID = "user_1"
	store.Session.ExpiresAt = time.Now().Add(time.Hour)
	store.Session.Children = []child.Child{{UID: "child_1", Name: "Emma"}, {UID: "child_2", Name: "Noah"}}
	require.NoError(t, store.Save())

	// Unreachable endpoints, cached children are used
	opts.Endpoints = &client.Endpoints{Identity: "http://127.0.0.1:1", SecureToken: "http://127.0.0.1:1", Firestore: "http://127.0.0.1:1"}

	instance, err := app.NewApp(opts)
	require.NoError(t, err)
	require.NoError(t, instance.Setup(context.Background()))

	assert.Len(t, instance.Coordinator.Children(), 2)
	assert.NotEmpty(t, instance.Entities)
	require.NotNil(t, instance.MQTTConnection)
	assert.False(t, instance.MQTTConnection.IsConnected())
}

func TestRunFailsWithoutCredentials(t *testing.T) {
	opts := baseOpts(t)
	opts.Credentials = app.Credentials{}

	instance, err := app.NewApp(opts)
	require.NoError(t, err)

	runner := utils.RunWithGracefulCancel(instance.Run)
	err = runner.Wait()
	assert.ErrorIs(t, err, client.ErrMissingCredentials)
}

func TestOptsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Account.APIKey = "api-key"
	cfg.Account.Email = "parent@example.com"
	cfg.TimeZone = "Europe/Prague"

	opts, err := app.OptsFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "api-key", opts.APIKey)
	assert.Equal(t, "parent@example.com", opts.Credentials.Email)
	assert.Equal(t, "Europe/Prague", opts.Location.String())
	assert.True(t, opts.Buttons)
	require.NotNil(t, opts.MQTT)
	assert.Equal(t, "tcp://localhost:1883", opts.MQTT.BrokerURL)
	assert.Equal(t, "homeassistant", opts.MQTT.DiscoveryPrefix)

	cfg.MQTT.Enabled = false
	opts, err = app.OptsFromConfig(cfg)
	require.NoError(t, err)
	assert.Nil(t, opts.MQTT)

	cfg.Account.APIKey = ""
	_, err = app.OptsFromConfig(cfg)
	assert.Error(t, err)
}
