// Package tools provides the gateway's built-in reference tools: echo (used
// by spec.md §8 scenario 1's round-trip test) and fetch (a multi-stage
// fallback content fetcher per spec.md §4.3).
package tools

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost"
)

// EchoParams is the echo tool's single parameter.
type EchoParams struct {
	Message string `json:"message" jsonschema:"required,description=text to echo back"`
}

// Echo returns its input message unchanged, the minimal round-trip tool
// spec.md's end-to-end scenarios exercise.
type Echo struct {
	schema map[string]any
}

// NewEcho builds the echo tool, generating its JSON Schema once via
// invopop/jsonschema reflection over EchoParams.
func NewEcho() *Echo {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	raw, _ := json.Marshal(reflector.Reflect(&EchoParams{}))
	var schema map[string]any
	_ = json.Unmarshal(raw, &schema)
	return &Echo{schema: schema}
}

func (e *Echo) Description() pluginhost.ToolDescription {
	return pluginhost.ToolDescription{
		Name:        "echo",
		Description: "Echoes back the provided message.",
		InputSchema: e.schema,
	}
}

func (e *Echo) Call(_ context.Context, args json.RawMessage) (*pluginhost.Result, error) {
	var params EchoParams
	if err := json.Unmarshal(args, &params); err != nil {
		return pluginhost.ErrorResult("invalid arguments: " + err.Error()), nil
	}
	return pluginhost.TextResult(params.Message), nil
}
