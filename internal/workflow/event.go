package workflow

import (
	"time"

	"digitalwill-backend/internal/types"
)

// EventKind 事件类型
type EventKind string

const (
	EventInputChanged    EventKind = "input_changed"
	EventActionStarted   EventKind = "action_started"
	EventActionSucceeded EventKind = "action_succeeded"
	EventActionFailed    EventKind = "action_failed"
	EventChainObserved   EventKind = "chain_observed"
)

// Input 表单输入字段
type Input string

const (
	InputRecipient Input = "recipient"
	InputAmount    Input = "amount"
)

// Event 会话事件, 只追加不修改
type Event struct {
	Seq    int64     `json:"seq"`
	Kind   EventKind `json:"kind"`
	At     time.Time `json:"at"`
	Action Action    `json:"action,omitempty"`

	Field Input  `json:"field,omitempty"`
	Value string `json:"value,omitempty"`

	TxHash  string `json:"tx_hash,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`

	// ChainObserved: Will 为空表示链上无记录或记录格式错误
	Will *types.WillRecord `json:"will,omitempty"`
}

func InputChanged(field Input, value string) Event {
	return Event{Kind: EventInputChanged, Field: field, Value: value}
}

func ActionStarted(a Action) Event {
	return Event{Kind: EventActionStarted, Action: a}
}

func ActionSucceeded(a Action, txHash string) Event {
	return Event{Kind: EventActionSucceeded, Action: a, TxHash: txHash}
}

func ActionFailed(a Action, message, detail string) Event {
	return Event{Kind: EventActionFailed, Action: a, Message: message, Detail: detail}
}

func ChainObserved(w *types.WillRecord) Event {
	return Event{Kind: EventChainObserved, Will: w}
}
