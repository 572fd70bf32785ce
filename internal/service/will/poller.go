package will

import (
	"context"
	"errors"
	"time"

	"digitalwill-backend/internal/workflow"
	"digitalwill-backend/pkg/blockchain"
	"digitalwill-backend/pkg/logger"
)

// poll 固定间隔查询 get_will, 立即执行一次
func (s *service) poll(ctx context.Context, ws *willSession) {
	defer close(ws.done)

	s.pollOnce(ctx, ws)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.pollOnce(ctx, ws)
		case <-ctx.Done():
			return
		}
	}
}

// pollOnce 查询链上记录并覆盖本地标志, 错误时状态不变
func (s *service) pollOnce(ctx context.Context, ws *willSession) {
	owner := ws.sess.Address
	w, err := s.contract.GetWill(ctx, owner)
	switch {
	case errors.Is(err, blockchain.ErrMalformedWill):
		logger.Warn("Malformed will record treated as absent", "owner", owner, "error", err)
		s.observePoll("malformed")
		w = nil
	case err != nil:
		if ctx.Err() == nil {
			logger.Error("PollWill Error: ", err, "owner", owner)
			s.observePoll("error")
		}
		return
	case w == nil:
		s.observePoll("absent")
	default:
		s.observePoll("present")
	}

	ev := workflow.ChainObserved(w)
	ev.At = s.now()
	ws.apply(ev)
	s.cacheRecord(ctx, owner, w, ev.At)
}

func (s *service) observePoll(result string) {
	if s.recorder != nil {
		s.recorder.ObservePoll(result)
	}
}
