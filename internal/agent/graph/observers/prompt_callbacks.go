package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/prompt"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// newPromptHandler logs prompt variables and the rendered final message.
func newPromptHandler() *callbackHelper.PromptCallbackHandler {
	log := logx.Component("prompt")
	return &callbackHelper.PromptCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *prompt.CallbackInput) context.Context {
			typ, name := runName(info)
			ev := log.Debug().Str("type", typ).Str("name", name)
			if input != nil {
				ev = ev.Interface("variables", input.Variables)
			}
			ev.Msg("prompt start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *prompt.CallbackOutput) context.Context {
			typ, name := runName(info)
			ev := log.Debug().Str("type", typ).Str("name", name)
			if output != nil && len(output.Result) > 0 {
				if last := output.Result[len(output.Result)-1]; last != nil {
					ev = ev.Str("rendered", last.Content)
				}
			}
			ev.Msg("prompt end")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			typ, name := runName(info)
			log.Error().Err(err).Str("type", typ).Str("name", name).Msg("prompt error")
			return ctx
		},
	}
}
