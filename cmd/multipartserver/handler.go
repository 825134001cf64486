package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/panjf2000/ants/v2"
	gnet "github.com/panjf2000/gnet/v2"
	"go.uber.org/zap"

	"github.com/floordiv/streammime/disposition"
	"github.com/floordiv/streammime/multipart"
)

// partJob is handed to the ants pool for each body chunk a part yields;
// final marks the chunk that ends the part. Grounded on J1407B-K/buff's use
// of a worker pool to keep OnTraffic itself non-blocking.
type partJob struct {
	logger    *zap.Logger
	msgID     string
	partIndex int
	disp      disposition.ContentDisposition
	hasDisp   bool
	chunk     []byte
	final     bool
}

func (j partJob) run() {
	fields := []zap.Field{
		zap.String("msg_id", j.msgID),
		zap.Int("part", j.partIndex),
		zap.Int("chunk_bytes", len(j.chunk)),
		zap.Bool("final", j.final),
	}
	if j.hasDisp {
		fields = append(fields, zap.String("disposition_type", j.disp.Type))
		if name, ok := j.disp.Get("name"); ok {
			fields = append(fields, zap.String("field_name", name))
		}
		if filename, ok := j.disp.Get("filename"); ok {
			fields = append(fields, zap.String("filename", filename))
		}
	}
	j.logger.Info("part chunk", fields...)
}

// multipartHandler is a gnet.EventHandler that treats every accepted
// connection as a single multipart message using a fixed boundary,
// streaming each part's headers and body through the multipart package as
// bytes arrive. Grounded on buff/gnet_handler.go's gnetHTTPHandler.
type multipartHandler struct {
	gnet.BuiltinEventEngine

	cfg      serverConfig
	settings multipart.Settings
	logger   *zap.Logger
	pool     *ants.Pool
	ids      *messageIDs

	engine gnet.Engine
}

func newMultipartHandler(cfg serverConfig, logger *zap.Logger, pool *ants.Pool) *multipartHandler {
	return &multipartHandler{
		cfg:      cfg,
		settings: multipart.PrepareSettings(multipart.Settings{MaxPartBodyLength: cfg.maxPartBody}),
		logger:   logger,
		pool:     pool,
		ids:      newMessageIDs(),
	}
}

func (h *multipartHandler) OnBoot(engine gnet.Engine) gnet.Action {
	h.engine = engine
	if len(h.cfg.shutdownSignals) > 0 {
		go h.watchSignals()
	}
	return gnet.None
}

func (h *multipartHandler) watchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.cfg.shutdownSignals...)
	sig := <-sigCh

	h.logger.Info("shutting down", zap.String("signal", sig.String()))

	timeout := h.cfg.shutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := h.engine.Stop(ctx); err != nil {
		h.logger.Error("engine stop", zap.Error(err))
	}
}

func (h *multipartHandler) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	state := newConnState(h.cfg.boundary, h.settings, h.ids.next())
	c.SetContext(state)
	h.logger.Info("connection opened", zap.String("msg_id", state.msgID.String()), zap.String("remote", c.RemoteAddr().String()))
	return nil, gnet.None
}

func (h *multipartHandler) OnClose(c gnet.Conn, err error) gnet.Action {
	if state, ok := c.Context().(*connState); ok {
		state.release()
	}
	return gnet.None
}

func (h *multipartHandler) OnTraffic(c gnet.Conn) gnet.Action {
	state, ok := c.Context().(*connState)
	if !ok {
		return gnet.Close
	}

	if n := c.InboundBuffered(); n > 0 {
		data, err := c.Next(n)
		if err != nil {
			h.logger.Error("read error", zap.String("msg_id", state.msgID.String()), zap.Error(err))
			return gnet.Close
		}
		state.append(data)
	}

	for state.stage != stageDone && len(state.buf) > 0 {
		switch state.stage {

		case stageHeaders:
			result, err := state.hp.Feed(state.buf)
			if err != nil {
				h.logger.Warn("header parse failed", zap.String("msg_id", state.msgID.String()), zap.Error(err))
				return gnet.Close
			}
			if result.NeedMore {
				state.buf = nil
				return gnet.None
			}

			state.buf = result.Remaining

			if result.Terminal {
				state.stage = stageDone
				h.logger.Info("message complete", zap.String("msg_id", state.msgID.String()), zap.Int("parts", state.partIndex))
				continue
			}

			state.partIndex++

			if raw, found := headerLookup(result.Headers, "content-disposition"); found {
				if d, derr := disposition.Parse(raw); derr == nil {
					state.disp, state.hasDisp = d, true
				} else {
					h.logger.Warn("content-disposition parse failed", zap.String("msg_id", state.msgID.String()), zap.Error(derr))
				}
			} else {
				state.hasDisp = false
			}

			state.bp = multipart.NewBodyParser(h.cfg.boundary, h.settings)
			state.stage = stageBody

		case stageBody:
			result, err := state.bp.Feed(state.buf)
			if err != nil {
				h.logger.Warn("body parse failed", zap.String("msg_id", state.msgID.String()), zap.Error(err))
				return gnet.Close
			}

			if len(result.Chunk) > 0 || result.Done || !result.NeedMore {
				job := partJob{
					logger:    h.logger,
					msgID:     state.msgID.String(),
					partIndex: state.partIndex,
					disp:      state.disp,
					hasDisp:   state.hasDisp,
					chunk:     result.Chunk,
					final:     !result.NeedMore,
				}
				if err := h.pool.Submit(job.run); err != nil {
					job.run()
				}
			}

			if result.NeedMore {
				state.buf = nil
				return gnet.None
			}

			if result.Done {
				state.stage = stageDone
				h.logger.Info("message complete", zap.String("msg_id", state.msgID.String()), zap.Int("parts", state.partIndex))
				continue
			}

			state.buf = result.Remaining
			state.hp.Reset()
			state.stage = stageHeaders
		}
	}

	if state.stage == stageDone {
		return gnet.Close
	}
	return gnet.None
}
