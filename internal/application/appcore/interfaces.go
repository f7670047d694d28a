package appcore

import "context"

// UseCase is implemented by every use case.
type UseCase[TCommand any, TResult any] interface {
	Execute(ctx context.Context, cmd TCommand) (TResult, error)
}
