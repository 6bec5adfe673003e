// Package tracing observes a processor through hooks and reports what it does
// to the terminal or to a recording database.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/tally/hooking"
	"github.com/sarchlab/tally/processor"
)

// A Tracer is notified about every line, record and top query that a
// processor handles.
type Tracer interface {
	StartLine(line string, number int)
	Record(detail processor.RecordDetail)
	Top(detail processor.TopDetail)
}

// CollectTrace lets the tracer collect traces from a domain.
func CollectTrace(domain hooking.Hookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain already has tracer %s", reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

// A traceHook is a hook that forwards processor events to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case processor.HookPosLine:
		h.t.StartLine(ctx.Item.(string), ctx.Detail.(processor.LineDetail).Number)
	case processor.HookPosRecord:
		h.t.Record(ctx.Detail.(processor.RecordDetail))
	case processor.HookPosTop:
		h.t.Top(ctx.Detail.(processor.TopDetail))
	}
}
