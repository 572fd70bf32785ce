package blockchain

import (
	"context"
	"errors"
	"testing"

	"digitalwill-backend/internal/config"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/api"
	"github.com/aptos-labs/aptos-go-sdk/bcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testModule    = "0x937faeae1a19e86a0b35bf99ce606e02b9d223a37fb1189e33bee708324345e9"
	testRecipient = "0xb0"
)

type fakeNode struct {
	submitted []*aptos.EntryFunction
	views     []*aptos.ViewPayload

	submitErr error
	success   bool
	vmStatus  string
	viewData  []any
	balance   uint64
}

func (f *fakeNode) View(payload *aptos.ViewPayload, _ ...uint64) ([]any, error) {
	f.views = append(f.views, payload)
	return f.viewData, nil
}

func (f *fakeNode) BuildSignAndSubmitTransaction(_ aptos.TransactionSigner, payload aptos.TransactionPayload, _ ...any) (*api.SubmitTransactionResponse, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, payload.Payload.(*aptos.EntryFunction))
	return &api.SubmitTransactionResponse{Hash: "0xhash"}, nil
}

func (f *fakeNode) WaitForTransaction(_ string, _ ...any) (*api.UserTransaction, error) {
	return &api.UserTransaction{Success: f.success, VmStatus: f.vmStatus}, nil
}

func (f *fakeNode) AccountAPTBalance(_ aptos.AccountAddress, _ ...uint64) (uint64, error) {
	return f.balance, nil
}

func newTestContract(t *testing.T, node *fakeNode) *willContract {
	t.Helper()
	c, err := newWillContract(node, &config.AptosConfig{ModuleAddress: testModule, ModuleName: "will"})
	require.NoError(t, err)
	return c
}

func newSigner(t *testing.T) *aptos.Account {
	t.Helper()
	account, err := aptos.NewEd25519Account()
	require.NoError(t, err)
	return account
}

func TestWillContract_CreateWillEncodesArgs(t *testing.T) {
	t.Parallel()

	node := &fakeNode{success: true}
	c := newTestContract(t, node)

	hash, err := c.CreateWill(context.Background(), newSigner(t), testRecipient, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, "0xhash", hash)

	require.Len(t, node.submitted, 1)
	ef := node.submitted[0]
	assert.Equal(t, "create_will", ef.Function)
	assert.Equal(t, "will", ef.Module.Name)
	require.Len(t, ef.Args, 2)

	addr, err := ParseAddress(testRecipient)
	require.NoError(t, err)
	wantAddr, err := bcs.Serialize(&addr)
	require.NoError(t, err)
	assert.Equal(t, wantAddr, ef.Args[0])
	assert.Len(t, ef.Args[0], 32)

	wantAmount, err := bcs.SerializeU64(1_000_000)
	require.NoError(t, err)
	assert.Equal(t, wantAmount, ef.Args[1])
}

func TestWillContract_EntryFunctionNames(t *testing.T) {
	t.Parallel()

	node := &fakeNode{success: true}
	c := newTestContract(t, node)
	signer := newSigner(t)
	ctx := context.Background()

	_, err := c.Initialize(ctx, signer)
	require.NoError(t, err)
	_, err = c.SetRecipient(ctx, signer, testRecipient)
	require.NoError(t, err)
	_, err = c.Deposit(ctx, signer, 5)
	require.NoError(t, err)
	_, err = c.InitializeWill(ctx, signer)
	require.NoError(t, err)
	_, err = c.Ping(ctx, signer)
	require.NoError(t, err)
	_, err = c.Claim(ctx, signer, testRecipient)
	require.NoError(t, err)

	var names []string
	for _, ef := range node.submitted {
		names = append(names, ef.Function)
	}
	assert.Equal(t, []string{"initialize", "set_recipient", "deposit", "initialize_will", "ping", "claim"}, names)
	assert.Empty(t, node.submitted[0].Args)
}

func TestWillContract_VMFailure(t *testing.T) {
	t.Parallel()

	node := &fakeNode{success: false, vmStatus: "Move abort in 0x937f::will: E_WILL_EXISTS(0x80001): will already exists"}
	c := newTestContract(t, node)

	hash, err := c.Initialize(context.Background(), newSigner(t))
	require.Error(t, err)
	assert.Equal(t, "0xhash", hash)

	var vmErr *VMError
	require.ErrorAs(t, err, &vmErr)
	assert.Equal(t, "initialize", vmErr.Function)

	code, ok := AbortCode(err.Error())
	require.True(t, ok)
	assert.Equal(t, "E_WILL_EXISTS(0x80001)", code)
}

func TestWillContract_SubmitErrors(t *testing.T) {
	t.Parallel()

	node := &fakeNode{submitErr: errors.New("insufficient balance")}
	c := newTestContract(t, node)

	_, err := c.Ping(context.Background(), newSigner(t))
	require.ErrorContains(t, err, "insufficient balance")

	_, err = c.Ping(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoSigner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Ping(ctx, newSigner(t))
	require.ErrorIs(t, err, context.Canceled)

	_, err = c.CreateWill(context.Background(), newSigner(t), "not-an-address", 1)
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestWillContract_GetWillAndBalance(t *testing.T) {
	t.Parallel()

	node := &fakeNode{
		viewData: []any{map[string]any{"vec": []any{}}},
		balance:  123,
	}
	c := newTestContract(t, node)

	w, err := c.GetWill(context.Background(), testRecipient)
	require.NoError(t, err)
	assert.Nil(t, w)
	require.Len(t, node.views, 1)
	assert.Equal(t, "get_will", node.views[0].Function)

	balance, err := c.Balance(context.Background(), testRecipient)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), balance)
}
