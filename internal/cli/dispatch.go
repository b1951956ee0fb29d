package cli

import (
	"context"

	"github.com/defm/console/internal/infrastructure/queue"
	"github.com/defm/console/pkg/logger"
)

const dispatchWorkers = 4

// dispatch runs tasks concurrently and waits for all of them to settle.
func (a *app) dispatch(ctx context.Context, tasks ...queue.Task) []queue.Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d := queue.NewDispatcher(dispatchWorkers, logger.For("dispatcher"))
	d.Start(ctx)
	return d.Submit(ctx, tasks...)
}
