package workflow

import (
	"testing"
	"time"

	"digitalwill-backend/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRecipient = "0x00000000000000000000000000000000000000000000000000000000000000b0"

func apply(s State, events ...Event) State {
	for _, ev := range events {
		s = Reduce(s, ev)
	}
	return s
}

func TestReduce_CreateWillSuccess(t *testing.T) {
	t.Parallel()

	s := apply(NewState(VariantCreate),
		ActionStarted(ActionInitialize),
		ActionSucceeded(ActionInitialize, "0xaa"),
		InputChanged(InputRecipient, testRecipient),
		InputChanged(InputAmount, "0.01"),
		ActionStarted(ActionCreateWill),
	)
	require.True(t, s.Loading)
	assert.False(t, s.Flags().WillCreated)

	s = Reduce(s, ActionSucceeded(ActionCreateWill, "0xbb"))
	assert.False(t, s.Loading)
	assert.True(t, s.Flags().WillCreated)
	assert.True(t, s.Flags().WillInitialized)
	assert.Equal(t, StepActive, s.Step)
	assert.Equal(t, uint64(1_000_000), s.AmountOctas)
	assert.Equal(t, "0xbb", s.LastTxHash)
	assert.Equal(t, SuccessMessage(ActionCreateWill), s.Success)
}

func TestReduce_CreateWillFailure(t *testing.T) {
	t.Parallel()

	s := apply(NewState(VariantCreate),
		ActionSucceeded(ActionInitialize, "0xaa"),
		ActionStarted(ActionCreateWill),
		ActionFailed(ActionCreateWill, "Failed to create will", "detail"),
	)
	assert.False(t, s.Loading)
	assert.False(t, s.Flags().WillCreated)
	assert.True(t, s.Flags().WillInitialized)
	assert.Equal(t, "Failed to create will", s.Error)
	assert.Equal(t, "detail", s.ErrorDetail)
	assert.Empty(t, s.Success)
}

func TestReduce_StartedClearsMessages(t *testing.T) {
	t.Parallel()

	s := apply(NewState(VariantCreate),
		ActionFailed(ActionInitialize, "boom", ""),
		ActionStarted(ActionInitialize),
	)
	assert.Empty(t, s.Error)
	assert.Empty(t, s.Success)
	assert.Equal(t, ActionInitialize, s.InFlight)
}

func TestReduce_UnexpectedSuccessDoesNotAdvance(t *testing.T) {
	t.Parallel()

	s := Reduce(NewState(VariantCreate), ActionSucceeded(ActionClaim, "0x1"))
	assert.Equal(t, StepInitialize, s.Step)
	assert.False(t, s.Flags().Claimed)
}

func TestReduce_PingAndClaim(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ping := ActionSucceeded(ActionPing, "0xcc")
	ping.At = at

	s := apply(NewState(VariantCreate),
		ActionSucceeded(ActionInitialize, ""),
		InputChanged(InputRecipient, testRecipient),
		InputChanged(InputAmount, "1"),
		ActionSucceeded(ActionCreateWill, ""),
		ping,
		ping,
	)
	assert.Equal(t, 2, s.PingCount)
	require.NotNil(t, s.LastPingAt)
	assert.Equal(t, at, *s.LastPingAt)
	assert.True(t, s.Flags().Pinged)

	s = Reduce(s, ActionSucceeded(ActionClaim, "0xdd"))
	assert.Equal(t, StepClaimed, s.Step)
	assert.True(t, s.Flags().Claimed)
}

func TestReduce_DepositVariant(t *testing.T) {
	t.Parallel()

	s := apply(NewState(VariantDeposit),
		InputChanged(InputRecipient, testRecipient),
		ActionSucceeded(ActionSetRecipient, ""),
		InputChanged(InputRecipient, "0xchanged00"),
		InputChanged(InputAmount, "2"),
	)
	assert.Equal(t, testRecipient, s.Recipient, "recipient is locked after set_recipient")
	assert.Equal(t, "2", s.Amount, "amount stays editable until deposit")
	assert.True(t, s.Flags().RecipientSet)

	s = apply(s,
		ActionSucceeded(ActionDeposit, ""),
		InputChanged(InputAmount, "5"),
		ActionSucceeded(ActionInitializeWill, ""),
	)
	assert.Equal(t, "2", s.Amount)
	assert.Equal(t, StepDone, s.Step)
	f := s.Flags()
	assert.True(t, f.RecipientSet)
	assert.True(t, f.FundsDeposited)
	assert.True(t, f.WillInitialized)
}

func TestReduce_InputsLockedAfterCreate(t *testing.T) {
	t.Parallel()

	s := apply(NewState(VariantCreate),
		ActionSucceeded(ActionInitialize, ""),
		InputChanged(InputRecipient, testRecipient),
		InputChanged(InputAmount, "1"),
		ActionSucceeded(ActionCreateWill, ""),
		InputChanged(InputRecipient, "0x9999999999"),
		InputChanged(InputAmount, "3"),
	)
	assert.Equal(t, testRecipient, s.Recipient)
	assert.Equal(t, "1", s.Amount)
	assert.True(t, s.InputLocked(InputAmount))
}

func TestReduce_InputsLockedWhileLoading(t *testing.T) {
	t.Parallel()

	s := apply(NewState(VariantCreate),
		ActionSucceeded(ActionInitialize, ""),
		InputChanged(InputRecipient, testRecipient),
		InputChanged(InputAmount, "1"),
		ActionStarted(ActionCreateWill),
	)
	require.True(t, s.Loading)
	assert.True(t, s.InputLocked(InputRecipient))
	assert.True(t, s.InputLocked(InputAmount))

	s = apply(s,
		InputChanged(InputRecipient, "0x9999999999"),
		InputChanged(InputAmount, "3"),
		ActionSucceeded(ActionCreateWill, "0xcc"),
	)
	assert.Equal(t, testRecipient, s.Recipient)
	assert.Equal(t, "1", s.Amount)
	assert.Equal(t, StepActive, s.Step)

	// 失败后恢复可编辑
	s = apply(NewState(VariantCreate),
		ActionSucceeded(ActionInitialize, ""),
		InputChanged(InputAmount, "1"),
		ActionStarted(ActionCreateWill),
		ActionFailed(ActionCreateWill, "Failed to create will", ""),
		InputChanged(InputAmount, "2"),
	)
	assert.False(t, s.InputLocked(InputAmount))
	assert.Equal(t, "2", s.Amount)
}

func TestReduce_DepositAmountLockedBeforeRecipient(t *testing.T) {
	t.Parallel()

	s := apply(NewState(VariantDeposit),
		InputChanged(InputAmount, "2"),
		InputChanged(InputRecipient, testRecipient),
	)
	assert.Equal(t, StepSetRecipient, s.Step)
	assert.True(t, s.InputLocked(InputAmount))
	assert.False(t, s.InputLocked(InputRecipient))
	assert.Empty(t, s.Amount)
	assert.Equal(t, testRecipient, s.Recipient)

	s = apply(s,
		ActionSucceeded(ActionSetRecipient, ""),
		InputChanged(InputAmount, "2"),
	)
	assert.False(t, s.InputLocked(InputAmount))
	assert.Equal(t, "2", s.Amount)
}

func TestReduce_ChainObserved(t *testing.T) {
	t.Parallel()

	will := &types.WillRecord{Owner: "0x1", Recipient: testRecipient, Amount: 1, TimeoutSecs: 60}

	t.Run("none clears both flags", func(t *testing.T) {
		t.Parallel()
		s := apply(NewState(VariantCreate),
			ActionSucceeded(ActionInitialize, ""),
			ChainObserved(nil),
		)
		f := s.Flags()
		assert.False(t, f.WillInitialized)
		assert.False(t, f.WillCreated)
		assert.Nil(t, s.ObservedWill)
		assert.NotNil(t, s.ObservedAt)
	})

	t.Run("record sets both flags", func(t *testing.T) {
		t.Parallel()
		s := Reduce(NewState(VariantCreate), ChainObserved(will))
		f := s.Flags()
		assert.True(t, f.WillInitialized)
		assert.True(t, f.WillCreated)
		assert.Equal(t, will, s.ObservedWill)
	})

	t.Run("record keeps claimed", func(t *testing.T) {
		t.Parallel()
		s := NewState(VariantCreate)
		s.Step = StepClaimed
		s = Reduce(s, ChainObserved(will))
		assert.Equal(t, StepClaimed, s.Step)
	})

	t.Run("deposit variant", func(t *testing.T) {
		t.Parallel()
		s := Reduce(NewState(VariantDeposit), ChainObserved(will))
		f := s.Flags()
		assert.True(t, f.RecipientSet)
		assert.True(t, f.FundsDeposited)
		assert.False(t, f.WillInitialized)

		s = Reduce(s, ChainObserved(nil))
		assert.Equal(t, StepSetRecipient, s.Step)
	})

	t.Run("later event wins over local flag", func(t *testing.T) {
		t.Parallel()
		s := apply(NewState(VariantCreate),
			ChainObserved(will),
			ActionSucceeded(ActionPing, ""),
			ChainObserved(nil),
		)
		assert.Equal(t, StepInitialize, s.Step)
		assert.Zero(t, s.PingCount)
	})
}

func TestReplay_ReproducesState(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	log := NewLog(VariantCreate, func() time.Time { return clock })
	log.Append(ActionStarted(ActionInitialize))
	log.Append(ActionSucceeded(ActionInitialize, "0x1"))
	log.Append(InputChanged(InputRecipient, testRecipient))
	log.Append(InputChanged(InputAmount, "0.5"))
	log.Append(ActionStarted(ActionCreateWill))
	log.Append(ActionFailed(ActionCreateWill, "Failed to create will", ""))
	log.Append(ActionSucceeded(ActionCreateWill, "0x2"))
	log.Append(ActionSucceeded(ActionPing, "0x3"))

	events := log.Events()
	require.Len(t, events, 8)
	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev.Seq)
		assert.Equal(t, clock, ev.At)
	}
	assert.Equal(t, log.State(), Replay(VariantCreate, events))
	assert.Equal(t, int64(8), log.State().Version)
}
