package blockchain

import (
	"context"
	"errors"
	"fmt"

	"digitalwill-backend/internal/config"
	"digitalwill-backend/internal/types"
	"digitalwill-backend/pkg/logger"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/api"
	"github.com/aptos-labs/aptos-go-sdk/bcs"
)

// WillContract will 合约客户端接口, 写操作返回交易哈希
type WillContract interface {
	Initialize(ctx context.Context, signer aptos.TransactionSigner) (string, error)
	CreateWill(ctx context.Context, signer aptos.TransactionSigner, recipient string, amountOctas uint64) (string, error)
	SetRecipient(ctx context.Context, signer aptos.TransactionSigner, recipient string) (string, error)
	Deposit(ctx context.Context, signer aptos.TransactionSigner, amountOctas uint64) (string, error)
	InitializeWill(ctx context.Context, signer aptos.TransactionSigner) (string, error)
	Ping(ctx context.Context, signer aptos.TransactionSigner) (string, error)
	Claim(ctx context.Context, signer aptos.TransactionSigner, recipient string) (string, error)
	GetWill(ctx context.Context, owner string) (*types.WillRecord, error)
	Balance(ctx context.Context, owner string) (uint64, error)
}

// nodeClient 所用到的 aptos 节点接口
type nodeClient interface {
	View(payload *aptos.ViewPayload, ledgerVersion ...uint64) ([]any, error)
	BuildSignAndSubmitTransaction(sender aptos.TransactionSigner, payload aptos.TransactionPayload, options ...any) (*api.SubmitTransactionResponse, error)
	WaitForTransaction(txnHash string, options ...any) (*api.UserTransaction, error)
	AccountAPTBalance(address aptos.AccountAddress, ledgerVersion ...uint64) (uint64, error)
}

type willContract struct {
	client nodeClient
	module aptos.ModuleId
	cfg    *config.AptosConfig
}

// NewWillContract 创建 will 合约客户端
func NewWillContract(cfg *config.AptosConfig) (WillContract, error) {
	client, err := aptos.NewNodeClient(cfg.NodeURL, cfg.ChainID)
	if err != nil {
		logger.Error("NewWillContract Error: ", errors.New("failed to create aptos node client"), "error: ", err, "node_url", cfg.NodeURL)
		return nil, fmt.Errorf("failed to create aptos node client: %w", err)
	}
	return newWillContract(client, cfg)
}

func newWillContract(client nodeClient, cfg *config.AptosConfig) (*willContract, error) {
	moduleAddr, err := ParseAddress(cfg.ModuleAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid module address: %w", err)
	}

	logger.Info("NewWillContract: ", "node_url", cfg.NodeURL, "module", moduleAddr.StringLong()+"::"+cfg.ModuleName)
	return &willContract{
		client: client,
		module: aptos.ModuleId{Address: moduleAddr, Name: cfg.ModuleName},
		cfg:    cfg,
	}, nil
}

// ParseAddress 解析 Aptos 地址为 32 字节账户地址
func ParseAddress(s string) (aptos.AccountAddress, error) {
	var addr aptos.AccountAddress
	if err := addr.ParseStringRelaxed(s); err != nil {
		return aptos.AccountAddress{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}
	return addr, nil
}

func (c *willContract) Initialize(ctx context.Context, signer aptos.TransactionSigner) (string, error) {
	return c.submit(ctx, signer, "initialize")
}

func (c *willContract) CreateWill(ctx context.Context, signer aptos.TransactionSigner, recipient string, amountOctas uint64) (string, error) {
	addrArg, err := addressArg(recipient)
	if err != nil {
		return "", err
	}
	amountArg, err := bcs.SerializeU64(amountOctas)
	if err != nil {
		return "", fmt.Errorf("failed to encode amount: %w", err)
	}
	return c.submit(ctx, signer, "create_will", addrArg, amountArg)
}

func (c *willContract) SetRecipient(ctx context.Context, signer aptos.TransactionSigner, recipient string) (string, error) {
	addrArg, err := addressArg(recipient)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, signer, "set_recipient", addrArg)
}

func (c *willContract) Deposit(ctx context.Context, signer aptos.TransactionSigner, amountOctas uint64) (string, error) {
	amountArg, err := bcs.SerializeU64(amountOctas)
	if err != nil {
		return "", fmt.Errorf("failed to encode amount: %w", err)
	}
	return c.submit(ctx, signer, "deposit", amountArg)
}

func (c *willContract) InitializeWill(ctx context.Context, signer aptos.TransactionSigner) (string, error) {
	return c.submit(ctx, signer, "initialize_will")
}

func (c *willContract) Ping(ctx context.Context, signer aptos.TransactionSigner) (string, error) {
	return c.submit(ctx, signer, "ping")
}

func (c *willContract) Claim(ctx context.Context, signer aptos.TransactionSigner, recipient string) (string, error) {
	addrArg, err := addressArg(recipient)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, signer, "claim", addrArg)
}

// GetWill 查询链上遗嘱, 无记录时返回 nil
func (c *willContract) GetWill(ctx context.Context, owner string) (*types.WillRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addrArg, err := addressArg(owner)
	if err != nil {
		return nil, err
	}

	data, err := c.client.View(&aptos.ViewPayload{
		Module:   c.module,
		Function: "get_will",
		ArgTypes: []aptos.TypeTag{},
		Args:     [][]byte{addrArg},
	})
	if err != nil {
		logger.Error("GetWill Error: ", err, "owner", owner)
		return nil, fmt.Errorf("failed to call get_will: %w", err)
	}
	return DecodeWillOption(data)
}

// Balance 查询账户 APT 余额(octas)
func (c *willContract) Balance(ctx context.Context, owner string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	addr, err := ParseAddress(owner)
	if err != nil {
		return 0, err
	}
	balance, err := c.client.AccountAPTBalance(addr)
	if err != nil {
		logger.Error("Balance Error: ", err, "owner", owner)
		return 0, fmt.Errorf("failed to get APT balance: %w", err)
	}
	return balance, nil
}

// submit 构造, 签名并提交入口函数调用, 等待交易确认
func (c *willContract) submit(ctx context.Context, signer aptos.TransactionSigner, function string, args ...[]byte) (string, error) {
	if signer == nil {
		return "", ErrNoSigner
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if args == nil {
		args = [][]byte{}
	}

	payload := aptos.TransactionPayload{
		Payload: &aptos.EntryFunction{
			Module:   c.module,
			Function: function,
			ArgTypes: []aptos.TypeTag{},
			Args:     args,
		},
	}

	resp, err := c.client.BuildSignAndSubmitTransaction(signer, payload)
	if err != nil {
		logger.Error("SubmitTransaction Error: ", err, "function", function)
		return "", fmt.Errorf("failed to submit %s: %w", function, err)
	}

	var opts []any
	if c.cfg.TxTimeout > 0 {
		opts = append(opts, aptos.PollTimeout(c.cfg.TxTimeout))
	}
	tx, err := c.client.WaitForTransaction(resp.Hash, opts...)
	if err != nil {
		logger.Error("WaitForTransaction Error: ", err, "function", function, "tx_hash", resp.Hash)
		return resp.Hash, fmt.Errorf("failed to confirm %s: %w", function, err)
	}
	if !tx.Success {
		vmErr := &VMError{Function: function, TxHash: resp.Hash, Status: tx.VmStatus}
		logger.Error("Transaction Failed: ", vmErr, "function", function, "tx_hash", resp.Hash)
		return resp.Hash, vmErr
	}

	logger.Info("Transaction Confirmed: ", "function", function, "tx_hash", resp.Hash)
	return resp.Hash, nil
}

func addressArg(s string) ([]byte, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return nil, err
	}
	b, err := bcs.Serialize(&addr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode address: %w", err)
	}
	return b, nil
}
