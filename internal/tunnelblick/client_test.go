package tunnelblick

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records scripts and plays back canned results.
type fakeRunner struct {
	scripts []string
	out     string
	err     error
}

func (r *fakeRunner) Run(_ context.Context, script string) (string, error) {
	r.scripts = append(r.scripts, script)
	return r.out, r.err
}

func TestClient_Configurations(t *testing.T) {
	runner := &fakeRunner{out: "home-vpn2, office"}
	client := NewClient(runner)

	configs, err := client.Configurations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"home-vpn2", "office"}, configs)

	require.Len(t, runner.scripts, 1)
	assert.Contains(t, runner.scripts[0], `tell application "Tunnelblick"`)
	assert.Contains(t, runner.scripts[0], "get name of configurations")
}

func TestClient_Configurations_BridgeError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("osascript not found")}
	client := NewClient(runner)

	_, err := client.Configurations(context.Background())
	require.Error(t, err)
}

func TestClient_State(t *testing.T) {
	runner := &fakeRunner{out: sampleBlob}
	client := NewClient(runner)

	assert.Equal(t, StateConnected, client.State(context.Background(), "office"))
	assert.Equal(t, StateNotFound, client.State(context.Background(), "nope"))
}

func TestClient_State_BridgeFailureIsUnknown(t *testing.T) {
	runner := &fakeRunner{err: errors.New("execution error")}
	client := NewClient(runner)

	assert.Equal(t, StateUnknown, client.State(context.Background(), "office"))
}

func TestClient_State_EmptyOutputIsUnknown(t *testing.T) {
	runner := &fakeRunner{out: ""}
	client := NewClient(runner)

	assert.Equal(t, StateUnknown, client.State(context.Background(), "office"))
}

func TestClient_Connect(t *testing.T) {
	runner := &fakeRunner{}
	client := NewClient(runner)

	err := client.Connect(context.Background(), "home-vpn2")
	require.NoError(t, err)

	require.Len(t, runner.scripts, 1)
	assert.Contains(t, runner.scripts[0], `connect "home-vpn2"`)
}

func TestClient_Connect_EscapesName(t *testing.T) {
	runner := &fakeRunner{}
	client := NewClient(runner)

	err := client.Connect(context.Background(), `evil" -- name`)
	require.NoError(t, err)

	require.Len(t, runner.scripts, 1)
	assert.Contains(t, runner.scripts[0], `connect "evil\" -- name"`)
}

func TestClient_Disconnect(t *testing.T) {
	runner := &fakeRunner{}
	client := NewClient(runner)

	err := client.Disconnect(context.Background(), "office")
	require.NoError(t, err)

	require.Len(t, runner.scripts, 1)
	assert.Contains(t, runner.scripts[0], `disconnect "office"`)
}

func TestClient_Transfer(t *testing.T) {
	runner := &fakeRunner{out: sampleBlob}
	client := NewClient(runner)

	transfer, ok := client.Transfer(context.Background(), "office")
	require.True(t, ok)
	assert.Equal(t, uint64(1048576), transfer.BytesIn)
}

func TestClient_CustomAppName(t *testing.T) {
	runner := &fakeRunner{}
	client := NewClientWithApp(runner, "Tunnelblick Beta")

	_ = client.Connect(context.Background(), "office")

	require.Len(t, runner.scripts, 1)
	assert.Contains(t, runner.scripts[0], `tell application "Tunnelblick Beta"`)
}

func TestClient_EmptyAppNameFallsBack(t *testing.T) {
	client := NewClientWithApp(&fakeRunner{}, "")
	assert.Equal(t, DefaultApp, client.app)
}
