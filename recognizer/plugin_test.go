package recognizer

import (
	"context"
	"net"
	"net/rpc"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amoghasbhardwaj/botlang/ast"
)

// wiredRPC stands up an in-process net/rpc server/client pair over a
// loopback TCP connection,
// exercising the same rpcServer/rpcClient wire path DialPlugin uses,
// without needing an actual plugin subprocess.
func wiredRPC(t *testing.T, impl IntentRecognizer) *rpcClient {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("Plugin", &rpcServer{impl: impl}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go server.Accept(ln)

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &rpcClient{client: rpc.NewClient(conn)}
}

func TestPluginRPCRoundTrip(t *testing.T) {
	client := wiredRPC(t, &MockIntentRecognizer{})
	intents := []*ast.IntentDef{{Name: "Greeting", Patterns: []string{"hi"}}}

	res, err := client.Recognize(context.Background(), "hi there", intents, Context{StateName: "S"})
	require.NoError(t, err)
	require.Equal(t, "Greeting", res.Intent)
	require.Equal(t, 1.0, res.Confidence)
}

func TestPluginRPCRoundTripUnknown(t *testing.T) {
	client := wiredRPC(t, &MockIntentRecognizer{})
	intents := []*ast.IntentDef{{Name: "Greeting", Patterns: []string{"hi"}}}

	res, err := client.Recognize(context.Background(), "what time is it", intents, Context{})
	require.NoError(t, err)
	require.Equal(t, "unknown", res.Intent)
}

func TestToDTOPreservesFields(t *testing.T) {
	intents := []*ast.IntentDef{
		{Name: "Order", Patterns: []string{"order pizza"}, Description: "food order", Examples: []string{"I'd like a pizza"}},
	}
	dto := toDTO(intents)
	require.Len(t, dto, 1)
	require.Equal(t, "Order", dto[0].Name)
	require.Equal(t, []string{"order pizza"}, dto[0].Patterns)
	require.Equal(t, "food order", dto[0].Description)
	require.Equal(t, []string{"I'd like a pizza"}, dto[0].Examples)
}
