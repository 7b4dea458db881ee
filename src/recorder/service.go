package recorder

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// PohService runs the goroutine that drives the chain forward: it hashes in
// batches of NumHashesPerBatch and ticks every HashesPerTick hashes, until
// the exit flag is set.
type PohService struct {
	recorder *Recorder
	config   PohConfig
	exit     *atomic.Bool

	err    error
	doneCh chan struct{}

	logger *logrus.Entry
}

// NewPohService starts the tick producer. exit is shared with the rest of the
// node: the service stops when it is set, and sets it when it stops.
func NewPohService(recorder *Recorder,
	config PohConfig,
	exit *atomic.Bool,
	logger *logrus.Entry) *PohService {

	s := &PohService{
		recorder: recorder,
		config:   config,
		exit:     exit,
		doneCh:   make(chan struct{}),
		logger:   logger,
	}

	go s.run()

	return s
}

func (s *PohService) run() {
	defer close(s.doneCh)
	defer s.exit.Store(true)
	defer func() {
		if r := recover(); r != nil {
			s.err = fmt.Errorf("tick producer panicked: %v", r)
			s.logger.WithError(s.err).Error("PohService stopped")
		}
	}()

	s.logger.WithFields(logrus.Fields{
		"hashes_per_tick":      s.config.HashesPerTick,
		"target_tick_duration": s.config.TargetTickDuration,
	}).Debug("Tick producer started")

	s.tickProducer()

	s.logger.Debug("Tick producer stopped")
}

func (s *PohService) tickProducer() {
	for !s.exit.Load() {
		tickStart := time.Now()

		if s.config.HashesPerTick == 0 {
			time.Sleep(s.config.TargetTickDuration)
		} else {
			numHashes := s.config.HashesPerTick - 1
			for numHashes != 0 {
				batch := numHashes
				if batch > NumHashesPerBatch {
					batch = NumHashesPerBatch
				}
				s.recorder.Hash(batch)
				numHashes -= batch
			}
		}

		s.recorder.Tick(tickStart)
	}
}

// Join waits for the tick producer to stop and returns the error that stopped
// it, if any.
func (s *PohService) Join() error {
	<-s.doneCh
	return s.err
}

// Done returns a channel that is closed when the tick producer stops.
func (s *PohService) Done() <-chan struct{} {
	return s.doneCh
}
