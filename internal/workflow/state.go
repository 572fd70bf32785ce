package workflow

import (
	"time"

	"digitalwill-backend/internal/types"
)

// State 会话流程状态, 由事件日志归约得出
type State struct {
	Variant     Variant `json:"variant"`
	Step        Step    `json:"step"`
	Recipient   string  `json:"recipient"`
	Amount      string  `json:"amount"`
	AmountOctas uint64  `json:"amount_octas"`

	Loading     bool   `json:"loading"`
	InFlight    Action `json:"in_flight,omitempty"`
	Error       string `json:"error"`
	ErrorDetail string `json:"error_detail,omitempty"`
	Success     string `json:"success"`
	LastTxHash  string `json:"last_tx_hash,omitempty"`

	PingCount  int        `json:"ping_count"`
	LastPingAt *time.Time `json:"last_ping_at,omitempty"`

	ObservedWill *types.WillRecord `json:"observed_will,omitempty"`
	ObservedAt   *time.Time        `json:"observed_at,omitempty"`

	Version int64 `json:"version"`
}

// Flags 兼容旧版布尔标志的派生视图
type Flags struct {
	// create 变体
	WillInitialized bool `json:"will_initialized"`
	WillCreated     bool `json:"will_created"`
	Pinged          bool `json:"pinged"`
	Claimed         bool `json:"claimed"`
	// deposit 变体
	RecipientSet   bool `json:"recipient_set"`
	FundsDeposited bool `json:"funds_deposited"`
}

// NewState 初始状态
func NewState(v Variant) State {
	return State{Variant: v, Step: v.FirstStep()}
}

// Reached 是否已到达(或越过)某步骤
func (s State) Reached(step Step) bool {
	want := s.Variant.index(step)
	return want >= 0 && s.Variant.index(s.Step) >= want
}

// Flags 派生标志
func (s State) Flags() Flags {
	f := Flags{}
	switch s.Variant {
	case VariantCreate:
		f.WillInitialized = s.Reached(StepCreateWill)
		f.WillCreated = s.Reached(StepActive)
		f.Pinged = s.PingCount > 0
		f.Claimed = s.Step == StepClaimed
	case VariantDeposit:
		f.RecipientSet = s.Reached(StepDeposit)
		f.FundsDeposited = s.Reached(StepInitializeWill)
		f.WillInitialized = s.Step == StepDone
	}
	return f
}

// InputLocked 操作进行中或其消费步骤完成后输入不可修改;
// deposit 变体的金额在收款人设置前也不可修改
func (s State) InputLocked(field Input) bool {
	if s.Loading {
		return true
	}
	switch s.Variant {
	case VariantCreate:
		return s.Reached(StepActive)
	case VariantDeposit:
		if field == InputRecipient {
			return s.Reached(StepDeposit)
		}
		return s.Step == StepSetRecipient || s.Reached(StepInitializeWill)
	}
	return false
}
