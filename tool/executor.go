package tool

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentdirector/core"
	"github.com/hupe1980/agentdirector/logging"
	"github.com/hupe1980/agentdirector/schema"
)

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// MaxParallel caps sibling tool calls executed concurrently within one
	// batch. 0 or less means no explicit limit.
	MaxParallel int
	// Logger for tool activity. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Executor dispatches tool calls against a registry with tenant-scoped
// permission enforcement. Every failure mode is converted into a typed
// core.ToolError on the result; nothing raised by a tool handler escapes to
// the caller.
type Executor struct {
	registry    *Registry
	maxParallel int
	logger      logging.Logger
}

// NewExecutor constructs an Executor over the given registry.
func NewExecutor(registry *Registry, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{
		registry:    registry,
		maxParallel: opts.MaxParallel,
		logger:      opts.Logger,
	}
}

// Execute runs a single tool call. Check order:
//  1. missing tenant context
//  2. tool name outside the tenant's allowed set
//  3. tool not registered
//  4. argument validation against the tool's schema
//  5. handler invocation, with panics recovered
func (e *Executor) Execute(ctx context.Context, tenant *core.TenantContext, call core.ToolCall) core.ToolResult {
	res := core.ToolResult{CallID: call.ID, Name: call.Name}

	if tenant == nil {
		res.Err = &core.NoTenantContext{}
		return res
	}
	if !tenant.Allows(call.Name) {
		res.Err = &core.InsufficientPermissions{Missing: []string{call.Name}}
		e.logger.Warn("tool.call.denied", "tool", call.Name, "tenant", tenant.TenantID)
		return res
	}

	impl, ok := e.registry.Lookup(call.Name)
	if !ok {
		res.Err = &core.ExecutionFailed{Reason: fmt.Sprintf("tool not found: %s", call.Name)}
		return res
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	params, failures := impl.Schema().Validate(args)
	if len(failures) > 0 {
		res.Err = &core.ExecutionFailed{Reason: "parameter validation failed: " + joinFailures(failures)}
		e.logger.Warn("tool.call.validation_failed", "tool", call.Name, "error", res.Err.Error())
		return res
	}

	e.logger.Debug("tool.call.start", "tool", call.Name, "call_id", call.ID)
	start := time.Now()

	result, err := e.invoke(ctx, impl, params)
	if err != nil {
		res.Err = &core.ExecutionFailed{Reason: fmt.Sprintf("tool %s failed", call.Name), Cause: err}
		e.logger.Error("tool.call.error", "tool", call.Name, "error", err.Error())
		return res
	}

	res.Response = result
	e.logger.Info("tool.call.success", "tool", call.Name, "duration_ms", time.Since(start).Milliseconds())
	return res
}

// invoke runs the handler with panic recovery.
func (e *Executor) invoke(ctx context.Context, impl Tool, params *schema.Params) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			e.logger.Error("tool.call.panic", "tool", impl.Name(), "recover", r, "stack", string(debug.Stack()))
		}
	}()
	return impl.Execute(ctx, params)
}

// ExecuteBatch runs sibling tool calls concurrently (no ordering dependency
// between calls in the same decision) and hands each result to emit as it
// completes. Results from different calls may arrive in any order; the
// caller emits each call before starting the batch so every call/response
// pair stays internally ordered. emit is invoked from multiple goroutines
// serialized by an internal mutex.
func (e *Executor) ExecuteBatch(
	ctx context.Context,
	tenant *core.TenantContext,
	calls []core.ToolCall,
	emit func(core.ToolResult),
) {
	n := len(calls)
	if n == 0 {
		return
	}
	// Fast path: single call, execute inline.
	if n == 1 {
		emit(e.Execute(ctx, tenant, calls[0]))
		return
	}

	maxPar := e.maxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, maxPar)
	)

	batchStart := time.Now()
	for i := range calls {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(call core.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			res := e.Execute(ctx, tenant, call)
			mu.Lock()
			emit(res)
			mu.Unlock()
		}(calls[i])
	}
	wg.Wait()

	e.logger.Debug(
		"tool.batch.complete",
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
}

func joinFailures(failures []schema.ValidationError) string {
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = f.Error()
	}
	return strings.Join(parts, "; ")
}
