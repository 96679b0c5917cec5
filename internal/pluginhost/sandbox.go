package pluginhost

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/telemetry"
)

// Sandbox bounds a tool call's wall-clock execution time, converting a
// timeout or panic into a typed gatewayerr rather than letting either take
// down the dispatching goroutine, matching the teacher's gin.Recovery()
// convention at the HTTP layer extended to the plugin dispatch layer.
type Sandbox struct {
	WallTime time.Duration
}

// NewSandbox builds a Sandbox with the given wall-clock limit.
func NewSandbox(wallTime time.Duration) *Sandbox {
	if wallTime <= 0 {
		wallTime = 5 * time.Second
	}
	return &Sandbox{WallTime: wallTime}
}

// Run executes a tool call under the sandbox's wall-time limit, recovering
// any panic raised by the tool implementation.
func (s *Sandbox) Run(ctx context.Context, tool Tool, args json.RawMessage) (result *Result, err error) {
	name := tool.Description().Name
	timer := telemetry.ToolDuration.WithLabelValues(name)
	start := time.Now()
	defer func() { timer.Observe(time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(ctx, s.WallTime)
	defer cancel()

	type outcome struct {
		result *Result
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				telemetry.SandboxTraps.WithLabelValues(name, "panic").Inc()
				done <- outcome{err: gatewayerr.Sandbox(fmt.Sprintf("tool panicked: %v", r), name)}
			}
		}()
		res, callErr := tool.Call(ctx, args)
		done <- outcome{result: res, err: callErr}
	}()

	select {
	case o := <-done:
		status := "ok"
		if o.err != nil {
			status = "error"
		}
		telemetry.ToolCallsTotal.WithLabelValues(name, status).Inc()
		return o.result, o.err
	case <-ctx.Done():
		telemetry.SandboxTraps.WithLabelValues(name, "wall_time").Inc()
		telemetry.ToolCallsTotal.WithLabelValues(name, "timeout").Inc()
		return nil, gatewayerr.Timeout("tool exceeded wall-time limit", name)
	}
}
