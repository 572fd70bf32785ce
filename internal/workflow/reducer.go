package workflow

import (
	"time"
)

// Reduce 纯函数: 将单个事件应用到状态
func Reduce(s State, ev Event) State {
	s.Version++

	switch ev.Kind {
	case EventInputChanged:
		if s.InputLocked(ev.Field) {
			return s
		}
		switch ev.Field {
		case InputRecipient:
			s.Recipient = ev.Value
		case InputAmount:
			s.Amount = ev.Value
			s.AmountOctas, _ = ToOctas(ev.Value)
		}

	case EventActionStarted:
		s.Loading = true
		s.InFlight = ev.Action
		s.Error = ""
		s.ErrorDetail = ""
		s.Success = ""

	case EventActionSucceeded:
		s.Loading = false
		s.InFlight = ""
		s.LastTxHash = ev.TxHash
		s.Success = SuccessMessage(ev.Action)
		if !Expects(s.Variant, s.Step, ev.Action) {
			return s
		}
		s.Step = next(s.Step, ev.Action)
		if ev.Action == ActionPing {
			s.PingCount++
			at := ev.At
			s.LastPingAt = &at
		}

	case EventActionFailed:
		s.Loading = false
		s.InFlight = ""
		s.Error = ev.Message
		s.ErrorDetail = ev.Detail

	case EventChainObserved:
		at := ev.At
		s.ObservedAt = &at
		s.ObservedWill = ev.Will
		s = observe(s, ev.Will != nil)
	}

	return s
}

// observe 轮询结果直接覆盖本地标志, 后到的事件生效
func observe(s State, exists bool) State {
	chain := s.Variant.chainStep()
	if exists {
		if s.Variant.index(s.Step) < s.Variant.index(chain) {
			s.Step = chain
		}
		return s
	}
	s.Step = s.Variant.FirstStep()
	s.PingCount = 0
	s.LastPingAt = nil
	return s
}

// Replay 从事件日志重建状态
func Replay(v Variant, events []Event) State {
	s := NewState(v)
	for _, ev := range events {
		s = Reduce(s, ev)
	}
	return s
}

// Log 会话事件日志
type Log struct {
	events []Event
	state  State
	now    func() time.Time
}

// NewLog 创建事件日志
func NewLog(v Variant, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{state: NewState(v), now: now}
}

// Append 追加事件并返回新状态, 调用方负责加锁
func (l *Log) Append(ev Event) State {
	ev.Seq = int64(len(l.events)) + 1
	if ev.At.IsZero() {
		ev.At = l.now()
	}
	l.events = append(l.events, ev)
	l.state = Reduce(l.state, ev)
	return l.state
}

// State 当前状态
func (l *Log) State() State {
	return l.state
}

// Events 事件副本
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}
