package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/econet2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"
)

const REPUBLISH_DISCOVERY_JOB = "republish_discovery"

// RepublishDiscoveryJob asks the master actor to send every discovery
// document again.
type RepublishDiscoveryJob struct {
	rootContext *actor.RootContext
	masterActor *actor.PID
	logger      *zap.Logger
}

func NewRepublishDiscoveryJob(rootContext *actor.RootContext, masterActor *actor.PID, logger *zap.Logger) *RepublishDiscoveryJob {
	return &RepublishDiscoveryJob{
		rootContext: rootContext,
		masterActor: masterActor,
		logger:      logger,
	}
}

func (j *RepublishDiscoveryJob) Execute(_ context.Context) error {
	j.logger.Debug("job: republish discovery")
	j.rootContext.Send(j.masterActor, domain.RepublishDiscoveryRequest{})
	return nil
}

func (j *RepublishDiscoveryJob) Description() string {
	return fmt.Sprintf("%s@%s", REPUBLISH_DISCOVERY_JOB, j.masterActor.Id)
}

// StartScheduler starts a scheduler running the republish job every
// interval. A zero interval starts nothing.
func StartScheduler(ctx context.Context, interval time.Duration, job quartz.Job) (quartz.Scheduler, error) {
	if interval <= 0 {
		return nil, nil
	}
	sched := quartz.NewStdScheduler()
	sched.Start(ctx)
	err := sched.ScheduleJob(
		quartz.NewJobDetail(job, quartz.NewJobKey(REPUBLISH_DISCOVERY_JOB)),
		quartz.NewSimpleTrigger(interval),
	)
	if err != nil {
		sched.Stop()
		return nil, err
	}
	return sched, nil
}
