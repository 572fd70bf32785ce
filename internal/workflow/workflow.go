// Package workflow 遗嘱创建流程状态机
package workflow

import "fmt"

// Variant 流程变体
type Variant string

const (
	VariantCreate  Variant = "create"  // initialize -> create_will -> ping | claim
	VariantDeposit Variant = "deposit" // set_recipient -> deposit -> initialize_will
)

// Action 用户操作, 每个操作对应一个合约入口函数
type Action string

const (
	ActionInitialize     Action = "initialize"
	ActionCreateWill     Action = "create_will"
	ActionSetRecipient   Action = "set_recipient"
	ActionDeposit        Action = "deposit"
	ActionInitializeWill Action = "initialize_will"
	ActionPing           Action = "ping"
	ActionClaim          Action = "claim"
)

// Step 流程步骤
type Step string

const (
	StepInitialize     Step = "initialize"
	StepCreateWill     Step = "create_will"
	StepActive         Step = "active"
	StepClaimed        Step = "claimed"
	StepSetRecipient   Step = "set_recipient"
	StepDeposit        Step = "deposit"
	StepInitializeWill Step = "initialize_will"
	StepDone           Step = "done"
)

var (
	createSteps  = []Step{StepInitialize, StepCreateWill, StepActive, StepClaimed}
	depositSteps = []Step{StepSetRecipient, StepDeposit, StepInitializeWill, StepDone}
)

// ParseVariant 解析流程变体
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantCreate, VariantDeposit:
		return Variant(s), nil
	}
	return "", fmt.Errorf("unknown workflow variant %q", s)
}

// ParseAction 解析操作名
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionInitialize, ActionCreateWill, ActionSetRecipient, ActionDeposit,
		ActionInitializeWill, ActionPing, ActionClaim:
		return a, nil
	}
	return "", ErrUnknownAction
}

// Steps 返回变体的步骤顺序
func (v Variant) Steps() []Step {
	if v == VariantDeposit {
		return depositSteps
	}
	return createSteps
}

// FirstStep 初始步骤
func (v Variant) FirstStep() Step {
	return v.Steps()[0]
}

// Actions 返回变体支持的全部操作
func (v Variant) Actions() []Action {
	if v == VariantDeposit {
		return []Action{ActionSetRecipient, ActionDeposit, ActionInitializeWill}
	}
	return []Action{ActionInitialize, ActionCreateWill, ActionPing, ActionClaim}
}

// chainStep 链上存在遗嘱记录时对应的步骤
func (v Variant) chainStep() Step {
	if v == VariantDeposit {
		return StepInitializeWill
	}
	return StepActive
}

// index 步骤在变体中的序号, 不属于该变体时返回 -1
func (v Variant) index(s Step) int {
	for i, step := range v.Steps() {
		if step == s {
			return i
		}
	}
	return -1
}

// Expects 当前步骤是否接受该操作
func Expects(v Variant, s Step, a Action) bool {
	switch v {
	case VariantCreate:
		switch s {
		case StepInitialize:
			return a == ActionInitialize
		case StepCreateWill:
			return a == ActionCreateWill
		case StepActive:
			return a == ActionPing || a == ActionClaim
		}
	case VariantDeposit:
		switch s {
		case StepSetRecipient:
			return a == ActionSetRecipient
		case StepDeposit:
			return a == ActionDeposit
		case StepInitializeWill:
			return a == ActionInitializeWill
		}
	}
	return false
}

// next 操作成功后的下一步骤
func next(s Step, a Action) Step {
	switch a {
	case ActionInitialize:
		return StepCreateWill
	case ActionCreateWill:
		return StepActive
	case ActionPing:
		return StepActive
	case ActionClaim:
		return StepClaimed
	case ActionSetRecipient:
		return StepDeposit
	case ActionDeposit:
		return StepInitializeWill
	case ActionInitializeWill:
		return StepDone
	}
	return s
}

// needsRecipient 操作是否需要收款人地址
func needsRecipient(a Action) bool {
	return a == ActionCreateWill || a == ActionSetRecipient || a == ActionClaim
}

// needsAmount 操作是否需要金额
func needsAmount(a Action) bool {
	return a == ActionCreateWill || a == ActionDeposit
}
