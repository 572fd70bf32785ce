package will

import (
	"context"
	"fmt"
	"time"

	"digitalwill-backend/internal/types"
	"digitalwill-backend/internal/workflow"
	"digitalwill-backend/pkg/blockchain"
	"digitalwill-backend/pkg/logger"

	"github.com/aptos-labs/aptos-go-sdk"
)

// Invoke 执行一次合约操作
// 1. 门控检查并标记开始
// 2. 调用合约
// 3. 记录成功或失败, 无论结果如何都清除 loading
func (s *service) Invoke(ctx context.Context, sessionID, name string) (*StateView, error) {
	action, err := workflow.ParseAction(name)
	if err != nil {
		return nil, err
	}
	ws, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	// 1. 门控检查并标记开始
	st, err := ws.begin(action)
	if err != nil {
		logger.Warn("Invoke rejected", "session_id", sessionID, "action", action, "reason", err.Error())
		return nil, err
	}

	// 2-3. 调用合约并记录结果
	st = s.dispatch(ctx, ws, action, st)
	return s.view(ws, st), nil
}

// dispatch 调用合约, 默认结果为失败, 保证 loading 被清除
func (s *service) dispatch(ctx context.Context, ws *willSession, action workflow.Action, st workflow.State) (final workflow.State) {
	start := time.Now()
	outcome := workflow.ActionFailed(action, workflow.FailureMessage(action), "")

	defer func() {
		final = ws.apply(outcome)
		status := types.ActivityStatusCompleted
		if outcome.Kind == workflow.EventActionFailed {
			status = types.ActivityStatusFailed
		}
		s.observeAction(action, status, time.Since(start))
		s.recordActivity(ctx, ws, action, st, outcome, status)
	}()

	txHash, err := s.call(ctx, ws.sess.Signer(), action, st)
	if err != nil {
		outcome = workflow.ActionFailed(action, failureMessage(action, err), fmt.Sprintf("%+v", err))
		outcome.TxHash = txHash
		logger.Error("Invoke Error: ", err, "session_id", ws.sess.ID, "action", action, "tx_hash", txHash)
		return
	}

	outcome = workflow.ActionSucceeded(action, txHash)
	logger.Info("Invoke: ", "session_id", ws.sess.ID, "action", action, "tx_hash", txHash)
	return
}

// call 每个操作对应一个合约入口函数
func (s *service) call(ctx context.Context, signer aptos.TransactionSigner, action workflow.Action, st workflow.State) (string, error) {
	switch action {
	case workflow.ActionInitialize:
		return s.contract.Initialize(ctx, signer)
	case workflow.ActionCreateWill:
		return s.contract.CreateWill(ctx, signer, st.Recipient, st.AmountOctas)
	case workflow.ActionSetRecipient:
		return s.contract.SetRecipient(ctx, signer, st.Recipient)
	case workflow.ActionDeposit:
		return s.contract.Deposit(ctx, signer, st.AmountOctas)
	case workflow.ActionInitializeWill:
		return s.contract.InitializeWill(ctx, signer)
	case workflow.ActionPing:
		return s.contract.Ping(ctx, signer)
	case workflow.ActionClaim:
		return s.contract.Claim(ctx, signer, st.Recipient)
	}
	return "", workflow.ErrUnknownAction
}

// failureMessage 错误文本, 为空时使用默认提示, 包含 Move abort 时追加 abort 码
func failureMessage(action workflow.Action, err error) string {
	msg := err.Error()
	if msg == "" {
		msg = workflow.FailureMessage(action)
	}
	if code, ok := blockchain.AbortCode(msg); ok {
		msg = fmt.Sprintf("%s (abort code: %s)", msg, code)
	}
	return msg
}

func (s *service) observeAction(action workflow.Action, status string, d time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveAction(string(action), status, d)
	}
}

// recordActivity 写入操作记录, 失败只记录日志
func (s *service) recordActivity(ctx context.Context, ws *willSession, action workflow.Action, st workflow.State, outcome workflow.Event, status string) {
	if s.activityRepo == nil {
		return
	}
	a := &types.WillActivity{
		OwnerAddress: ws.sess.Address,
		Action:       string(action),
		Variant:      string(st.Variant),
		TxHash:       outcome.TxHash,
		Status:       status,
	}
	if status == types.ActivityStatusFailed {
		a.ErrorMessage = outcome.Message
	}
	switch action {
	case workflow.ActionCreateWill, workflow.ActionDeposit:
		a.AmountOctas = st.AmountOctas
	}
	switch action {
	case workflow.ActionCreateWill, workflow.ActionSetRecipient, workflow.ActionClaim:
		a.Recipient = st.Recipient
	}

	if err := s.activityRepo.Create(context.WithoutCancel(ctx), a); err != nil {
		logger.Error("RecordActivity Error: ", err, "owner", a.OwnerAddress, "action", a.Action)
	}
}
