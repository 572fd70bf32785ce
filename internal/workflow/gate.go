package workflow

// Session 门控所需的钱包会话信息
type Session interface {
	Connected() bool
	CanSign() bool
}

// CheckGate 判断操作按钮是否可用, 可用时返回 nil
func CheckGate(s State, a Action, sess Session) error {
	if sess == nil || !sess.Connected() {
		return ErrNotConnected
	}
	if !sess.CanSign() {
		return ErrReadOnly
	}
	if s.Loading {
		return ErrBusy
	}
	if !Expects(s.Variant, s.Step, a) {
		return ErrStepLocked
	}
	if needsRecipient(a) && !IsValidAddress(s.Recipient) {
		return ErrInvalidRecipient
	}
	if needsAmount(a) && !IsValidAmount(s.Amount) {
		return ErrInvalidAmount
	}
	return nil
}
