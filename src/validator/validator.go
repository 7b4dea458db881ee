// Package validator assembles a PoH node: the Recorder and its tick producer,
// the slot driver, the ledger Writer and Store, and the HTTP service.
package validator

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/config"
	"github.com/mosaicnetworks/poh/src/crypto"
	"github.com/mosaicnetworks/poh/src/crypto/keys"
	"github.com/mosaicnetworks/poh/src/entry"
	"github.com/mosaicnetworks/poh/src/ledger"
	"github.com/mosaicnetworks/poh/src/recorder"
	"github.com/mosaicnetworks/poh/src/service"
	"github.com/mosaicnetworks/poh/src/telemetry"
)

// GenesisHash is the first value of the chain.
var GenesisHash = crypto.ZeroHash

// Validator is the engine of a PoH node.
type Validator struct {
	Config     *config.Config
	Store      ledger.Store
	Recorder   *recorder.Recorder
	PohService *recorder.PohService
	Writer     *ledger.Writer
	Service    *service.Service
	Telemetry  *telemetry.Telemetry

	// startHeight and startHash are where the chain resumes.
	startHeight uint64
	startHash   crypto.Hash

	// nextSlot is the lowest slot the slot driver may still install.
	nextSlot uint64

	submitted atomic.Uint64

	// runLock protects PohService, which is created by Run.
	runLock sync.Mutex

	exit         atomic.Bool
	wg           sync.WaitGroup
	shutdownOnce sync.Once
	sigintCh     chan os.Signal

	logger *logrus.Entry
}

// NewValidator ...
func NewValidator(conf *config.Config) *Validator {
	v := &Validator{
		Config:    conf,
		startHash: GenesisHash,
	}

	return v
}

// Init creates all the components. The chain starts at GenesisHash, or where
// the database left it when Bootstrap is set.
func (v *Validator) Init() error {
	v.logger = v.Config.Logger()

	if v.Config.TicksPerSlot == 0 {
		return fmt.Errorf("ticks-per-slot must be positive")
	}

	if err := v.initKey(); err != nil {
		return err
	}

	if err := v.initTelemetry(); err != nil {
		return err
	}

	if err := v.initStore(); err != nil {
		return err
	}

	if v.Config.Bootstrap {
		if err := v.bootstrap(); err != nil {
			v.Store.Close()
			return err
		}
	}

	v.initRecorder()

	v.initService()

	return nil
}

func (v *Validator) initKey() error {
	if v.Config.Key != nil {
		return nil
	}

	keyfile := v.Config.Keyfile()

	privKey, err := keys.ReadKeyfile(keyfile)
	if err != nil {
		v.logger.WithError(err).Warn("Cannot read private key from file")

		privKey, err = keys.GenerateECDSAKey()
		if err != nil {
			v.logger.WithError(err).Error("Cannot generate a new private key")
			return err
		}

		if v.Config.Store || v.Config.Bootstrap {
			if err := keys.WriteKeyfile(keyfile, privKey); err != nil {
				v.logger.WithError(err).Error("Cannot save private key")
				return err
			}
		}

		v.logger.WithField("pub", keys.PublicKeyHex(&privKey.PublicKey)).Info("Created a new key")
	}

	v.Config.Key = privKey

	return nil
}

func (v *Validator) initTelemetry() error {
	tel, err := telemetry.NewInmem("poh", telemetry.DefaultInterval, telemetry.DefaultRetain)
	if err != nil {
		return err
	}

	v.Telemetry = tel

	return nil
}

func (v *Validator) initStore() error {
	if !v.Config.Store && !v.Config.Bootstrap {
		v.Store = ledger.NewInmemStore()

		v.logger.Debug("created new in-mem store")

		return nil
	}

	v.logger.WithField("path", v.Config.DatabaseDir).Debug("Attempting to load or create database")

	store, err := ledger.NewBadgerStore(v.Config.DatabaseDir, v.logger.WithField("prefix", "badger"))
	if err != nil {
		return err
	}

	v.Store = store

	return nil
}

func (v *Validator) initRecorder() {
	v.Recorder = recorder.NewRecorder(
		v.startHeight,
		v.startHash,
		v.Config.RecorderConfig(),
		v.Telemetry.Metrics,
		v.logger.WithField("prefix", "recorder"),
	)

	v.Writer = ledger.NewWriter(
		v.Store,
		v.Recorder.EntryCh(),
		v.Telemetry.Metrics,
		v.logger.WithField("prefix", "writer"),
	)
}

func (v *Validator) initService() {
	if !v.Config.NoService {
		v.Service = service.NewService(
			v.Config.ServiceAddr,
			v,
			v.Telemetry.Sink(),
			v.logger.WithField("prefix", "service"),
		)
	}
}

// Run starts the node and blocks until the tick producer stops, because of
// Shutdown, an interrupt signal, or a failure which is returned.
func (v *Validator) Run() error {
	v.sigintCh = make(chan os.Signal, 1)
	signal.Notify(v.sigintCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(v.sigintCh)

	v.start()

	select {
	case <-v.PohService.Done():
	case <-v.sigintCh:
		v.logger.Debug("Received signal")
		v.Shutdown()
	}

	v.wg.Wait()

	return v.PohService.Join()
}

func (v *Validator) start() {
	if v.Service != nil {
		go v.Service.Serve()
	}

	v.runLock.Lock()
	defer v.runLock.Unlock()

	v.Writer.Start()

	v.PohService = recorder.NewPohService(
		v.Recorder,
		v.Config.PohConfig(),
		&v.exit,
		v.logger.WithField("prefix", "poh-service"),
	)

	done := v.PohService.Done()

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.driveSlots(done)
	}()

	if v.Config.SubmitInterval > 0 {
		v.wg.Add(1)
		go func() {
			defer v.wg.Done()
			v.submitTransactions(done)
		}()
	}
}

// Shutdown stops the tick producer and the goroutines that depend on it,
// writes the remaining entries and closes the Store.
func (v *Validator) Shutdown() {
	v.shutdownOnce.Do(func() {
		v.logger.Debug("Shutdown")

		v.exit.Store(true)

		v.runLock.Lock()
		pohService := v.PohService
		v.runLock.Unlock()

		if pohService != nil {
			if err := pohService.Join(); err != nil {
				v.logger.WithError(err).Error("PohService")
			}

			v.wg.Wait()

			v.Writer.Shutdown()
		}

		if v.Service != nil {
			if err := v.Service.Close(); err != nil {
				v.logger.WithError(err).Error("Closing service")
			}
		}

		if err := v.Store.Close(); err != nil {
			v.logger.WithError(err).Error("Closing store")
		}
	})
}

// GetStats returns the Recorder's stats along with the node's.
func (v *Validator) GetStats() map[string]string {
	stats := v.Recorder.GetStats()

	stats["moniker"] = v.Config.Moniker
	stats["ticks_per_slot"] = strconv.FormatUint(v.Config.TicksPerSlot, 10)
	stats["current_slot"] = strconv.FormatUint(v.Recorder.TickHeight()/v.Config.TicksPerSlot, 10)
	stats["submitted_transactions"] = strconv.FormatUint(v.submitted.Load(), 10)

	lastComplete := "nil"
	if s, err := v.Store.LastCompleteSlot(); err == nil {
		lastComplete = strconv.FormatUint(s, 10)
	} else if !common.IsStore(err, common.Empty) {
		v.logger.WithError(err).Error("Reading last complete slot")
	}
	stats["last_complete_slot"] = lastComplete

	return stats
}

// GetSlot returns the entries stored for a slot.
func (v *Validator) GetSlot(slot uint64) (entry.Entries, uint64, error) {
	return ledger.ReadSlot(v.Store, slot)
}
