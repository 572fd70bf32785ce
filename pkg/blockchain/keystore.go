package blockchain

import (
	"fmt"
	"sort"

	"digitalwill-backend/internal/config"
	"digitalwill-backend/pkg/logger"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/crypto"
)

// Keystore 本地钱包, 按名称保存可签名账户
type Keystore struct {
	accounts map[string]*aptos.Account
}

// NewKeystore 从配置加载 ed25519 私钥
func NewKeystore(accounts []config.WalletAccount) (*Keystore, error) {
	ks := &Keystore{accounts: make(map[string]*aptos.Account, len(accounts))}
	for _, acc := range accounts {
		privateKey := &crypto.Ed25519PrivateKey{}
		if err := privateKey.FromHex(acc.PrivateKey); err != nil {
			return nil, fmt.Errorf("failed to parse private key for account %s: %w", acc.Name, err)
		}
		account, err := aptos.NewAccountFromSigner(privateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create account %s: %w", acc.Name, err)
		}
		ks.accounts[acc.Name] = account
		logger.Info("NewKeystore: ", "account", acc.Name, "address", account.Address.StringLong())
	}
	return ks, nil
}

// Add 添加账户
func (k *Keystore) Add(name string, account *aptos.Account) {
	k.accounts[name] = account
}

// Get 按名称获取账户
func (k *Keystore) Get(name string) (*aptos.Account, error) {
	account, ok := k.accounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, name)
	}
	return account, nil
}

// Names 账户名列表
func (k *Keystore) Names() []string {
	names := make([]string, 0, len(k.accounts))
	for name := range k.accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
