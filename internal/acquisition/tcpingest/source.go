// Package tcpingest receives sample batches over a raw TCP socket using an
// event-loop listener. Frames are length-prefixed MessagePack payloads,
// cheap enough to emit from microcontroller firmware.
package tcpingest

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/EduLodi/trab-final-instrmed/internal/acquisition"
	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"github.com/EduLodi/trab-final-instrmed/internal/types"
	"github.com/EduLodi/trab-final-instrmed/pkg/config"
	"github.com/panjf2000/gnet/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// frame header is a 4-byte big-endian payload length
const headerLen = 4

// maxFrameLen caps a single frame; anything larger is a corrupt stream
const maxFrameLen = 4 << 20

// sampleFrame is the wire payload of one frame.
type sampleFrame struct {
	Samples []float64 `msgpack:"samples"`
}

// Source is a gnet-based TCP listener for framed sample batches.
type Source struct {
	gnet.BuiltinEventEngine

	ctx         context.Context
	wg          *sync.WaitGroup
	cfg         config.SourceData
	signalType  types.SignalType
	distributor chan types.SampleBatch
	logger      *zap.SugaredLogger
	eng         gnet.Engine
}

func NewSource(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sourceName string, distributor chan types.SampleBatch, logger *zap.SugaredLogger) (acquisition.SampleSource, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("TCP ingest [%s] failed to load config: %w", sourceName, err)
	}

	srcCfg, err := acquisition.FindSource(cfgData, sourceName)
	if err != nil {
		return nil, err
	}
	if srcCfg.Port == 0 {
		return nil, fmt.Errorf("TCP ingest [%s] must define a port", sourceName)
	}

	st, _ := types.ParseSignalType(srcCfg.SignalType)

	return &Source{
		ctx:         ctx,
		wg:          wg,
		cfg:         *srcCfg,
		signalType:  st,
		distributor: distributor,
		logger:      logger,
	}, nil
}

func (s *Source) SourceName() string {
	return s.cfg.Name
}

// StartSource launches the event loop and a shutdown watcher.
func (s *Source) StartSource() error {
	addr := fmt.Sprintf("tcp://%s:%d", s.cfg.ListenAddr, s.cfg.Port)
	log.Infof("Starting TCP ingest source [%v] on %s...", s.cfg.Name, addr)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := gnet.Run(s, addr, gnet.WithReuseAddr(true))
		if err != nil {
			log.Errorf("TCP ingest [%s] event loop terminated: %v", s.cfg.Name, err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-s.ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.eng.Stop(stopCtx)
	}()

	return nil
}

func (s *Source) OnBoot(eng gnet.Engine) gnet.Action {
	s.eng = eng
	return gnet.None
}

// OnTraffic drains all complete frames buffered on the connection.
func (s *Source) OnTraffic(c gnet.Conn) gnet.Action {
	for {
		header, err := c.Peek(headerLen)
		if err != nil || len(header) < headerLen {
			return gnet.None
		}

		payloadLen := int(binary.BigEndian.Uint32(header))
		if payloadLen <= 0 || payloadLen > maxFrameLen {
			log.Errorf("TCP ingest [%s] bad frame length %d from %s, closing",
				s.cfg.Name, payloadLen, c.RemoteAddr())
			return gnet.Close
		}
		if c.InboundBuffered() < headerLen+payloadLen {
			return gnet.None
		}

		c.Discard(headerLen)
		payload, err := c.Next(payloadLen)
		if err != nil {
			return gnet.Close
		}

		var frame sampleFrame
		if err := msgpack.Unmarshal(payload, &frame); err != nil {
			log.Errorf("TCP ingest [%s] undecodable frame from %s: %v",
				s.cfg.Name, c.RemoteAddr(), err)
			return gnet.Close
		}
		if len(frame.Samples) == 0 {
			continue
		}

		samples := frame.Samples

		batch := types.SampleBatch{
			SourceName:   s.cfg.Name,
			SignalType:   s.signalType,
			SampleRateHz: s.cfg.SampleRateHz,
			Samples:      samples,
			ReceivedAt:   time.Now(),
		}

		select {
		case s.distributor <- batch:
			log.Debugf("TCP ingest [%s] accepted frame of %d samples", s.cfg.Name, len(samples))
		case <-s.ctx.Done():
			return gnet.Close
		}
	}
}
