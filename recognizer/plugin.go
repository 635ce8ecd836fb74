package recognizer

import (
	"context"
	"net/rpc"
	"os/exec"
	"time"

	hcplugin "github.com/hashicorp/go-plugin"
	"github.com/sethvargo/go-retry"

	"github.com/amoghasbhardwaj/botlang/ast"
)

// Handshake is shared between host and plugin process so a mismatched
// build never gets treated as a valid recognizer.
var Handshake = hcplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "BOTLANG_RECOGNIZER_PLUGIN",
	MagicCookieValue: "intent-recognizer",
}

// PluginMap is the name a plugin process must register under.
var PluginMap = map[string]hcplugin.Plugin{
	"recognizer": &RecognizerPlugin{},
}

// intentDTO and RPCArgs/RPCResult are gob-friendly wire shapes (net/rpc
// only registers methods whose argument and reply types are exported); ast.IntentDef
// itself is safe to encode directly (plain fields, no interfaces), but a
// dedicated DTO keeps the wire format stable if the AST ever grows one.
type intentDTO struct {
	Name        string
	Patterns    []string
	Description string
	Examples    []string
}

func toDTO(intents []*ast.IntentDef) []intentDTO {
	out := make([]intentDTO, len(intents))
	for i, it := range intents {
		out[i] = intentDTO{Name: it.Name, Patterns: it.Patterns, Description: it.Description, Examples: it.Examples}
	}
	return out
}

type RPCArgs struct {
	Utterance string
	Intents   []intentDTO
	StateName string
	Globals   map[string]string
}

type RPCResult struct {
	Intent     string
	Confidence float64
	Entities   map[string]string
}

// RecognizerPlugin adapts an IntentRecognizer to go-plugin's net/rpc
// transport — no codegen required, unlike the gRPC transport.
type RecognizerPlugin struct {
	Impl IntentRecognizer
}

func (p *RecognizerPlugin) Server(*hcplugin.MuxBroker) (interface{}, error) {
	return &rpcServer{impl: p.Impl}, nil
}

func (p *RecognizerPlugin) Client(b *hcplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &rpcClient{client: c}, nil
}

type rpcServer struct {
	impl IntentRecognizer
}

func (s *rpcServer) Recognize(args RPCArgs, resp *RPCResult) error {
	intents := make([]*ast.IntentDef, len(args.Intents))
	for i, it := range args.Intents {
		intents[i] = &ast.IntentDef{Name: it.Name, Patterns: it.Patterns, Description: it.Description, Examples: it.Examples}
	}
	result, err := s.impl.Recognize(context.Background(), args.Utterance, intents, Context{StateName: args.StateName, Globals: args.Globals})
	if err != nil {
		return err
	}
	resp.Intent = result.Intent
	resp.Confidence = result.Confidence
	resp.Entities = result.Entities
	return nil
}

type rpcClient struct {
	client *rpc.Client
}

func (c *rpcClient) Recognize(_ context.Context, utterance string, intents []*ast.IntentDef, dctx Context) (Result, error) {
	var resp RPCResult
	args := RPCArgs{Utterance: utterance, Intents: toDTO(intents), StateName: dctx.StateName, Globals: dctx.Globals}
	if err := c.client.Call("Plugin.Recognize", args, &resp); err != nil {
		return Result{}, err
	}
	return Result{Intent: resp.Intent, Confidence: resp.Confidence, Entities: resp.Entities}, nil
}

// PluginRecognizer launches and talks to an out-of-process recognizer
// binary, retrying transient RPC failures before surfacing an error.
type PluginRecognizer struct {
	client *hcplugin.Client
	inner  IntentRecognizer
}

// DialPlugin starts the plugin binary at path and dispenses its
// recognizer implementation.
func DialPlugin(path string) (*PluginRecognizer, error) {
	client := hcplugin.NewClient(&hcplugin.ClientConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap,
		Cmd:             exec.Command(path),
		AllowedProtocols: []hcplugin.Protocol{
			hcplugin.ProtocolNetRPC,
		},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, err
	}
	raw, err := rpcClient.Dispense("recognizer")
	if err != nil {
		client.Kill()
		return nil, err
	}
	inner, ok := raw.(IntentRecognizer)
	if !ok {
		client.Kill()
		return nil, errNotRecognizer
	}
	return &PluginRecognizer{client: client, inner: inner}, nil
}

var errNotRecognizer = recognizerTypeError{}

type recognizerTypeError struct{}

func (recognizerTypeError) Error() string { return "dispensed plugin does not implement IntentRecognizer" }

// Recognize retries the underlying RPC call up to three times with
// exponential backoff (starting at 50ms) before giving up — a plugin process restarting mid-turn should
// not immediately fail the dialogue.
func (p *PluginRecognizer) Recognize(ctx context.Context, utterance string, intents []*ast.IntentDef, dctx Context) (Result, error) {
	var result Result
	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := p.inner.Recognize(ctx, utterance, intents, dctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		result = r
		return nil
	})
	return result, err
}

// Close terminates the plugin subprocess.
func (p *PluginRecognizer) Close() {
	p.client.Kill()
}
