package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"digitalwill-backend/internal/repository/user"
	"digitalwill-backend/internal/service/price"
	"digitalwill-backend/internal/types"
	"digitalwill-backend/internal/workflow"
	"digitalwill-backend/pkg/blockchain"
	"digitalwill-backend/pkg/logger"
	"digitalwill-backend/pkg/utils"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidRequest  = errors.New("either account or address is required")
	ErrUnknownAccount  = errors.New("unknown wallet account")
	ErrInvalidAddress  = errors.New("invalid wallet address")
	ErrInvalidVariant  = errors.New("invalid workflow variant")
	ErrSessionNotFound = errors.New("session not found")
)

// SessionListener 会话生命周期回调（避免循环依赖）
type SessionListener interface {
	SessionOpened(s *Session)
	SessionClosed(s *Session)
}

// BalanceReader 账户余额查询
type BalanceReader interface {
	Balance(ctx context.Context, owner string) (uint64, error)
}

// PriceReader 行情快照
type PriceReader interface {
	GetSnapshot(ctx context.Context) (*types.PriceSnapshot, error)
}

// SessionGauge 会话数指标
type SessionGauge interface {
	SessionOpened()
	SessionClosed()
}

// AccountSource 本地钱包账户
type AccountSource interface {
	Get(name string) (*aptos.Account, error)
}

// Service 钱包服务接口
type Service interface {
	Connect(ctx context.Context, req *types.WalletConnectRequest) (*types.WalletConnectResponse, error)
	Disconnect(ctx context.Context, sessionID string) error
	GetSession(sessionID string) (*Session, error)
	Summary(ctx context.Context, sessionID string) (*types.WalletSummary, error)
	VerifyToken(tokenString string) (*types.JWTClaims, error)
	SetSessionListener(listener SessionListener)
	CloseAll()
}

type service struct {
	keystore       AccountSource
	userRepo       user.Repository
	jwtManager     *utils.JWTManager
	balances       BalanceReader
	prices         PriceReader
	gauge          SessionGauge
	defaultVariant workflow.Variant

	mu       sync.RWMutex
	sessions map[string]*Session
	listener SessionListener
}

// NewService 创建钱包服务
func NewService(
	keystore AccountSource,
	userRepo user.Repository,
	jwtManager *utils.JWTManager,
	balances BalanceReader,
	prices PriceReader,
	gauge SessionGauge,
	defaultVariant workflow.Variant,
) Service {
	return &service{
		keystore:       keystore,
		userRepo:       userRepo,
		jwtManager:     jwtManager,
		balances:       balances,
		prices:         prices,
		gauge:          gauge,
		defaultVariant: defaultVariant,
		sessions:       make(map[string]*Session),
	}
}

// SetSessionListener 设置会话监听（避免循环依赖）
func (s *service) SetSessionListener(listener SessionListener) {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
}

// Connect 连接钱包
// 1. 解析账户或观察地址
// 2. 查找或创建用户
// 3. 创建会话并签发令牌
// 4. 通知会话监听者
func (s *service) Connect(ctx context.Context, req *types.WalletConnectRequest) (*types.WalletConnectResponse, error) {
	variant := s.defaultVariant
	if req.Variant != "" {
		v, err := workflow.ParseVariant(req.Variant)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidVariant, req.Variant)
		}
		variant = v
	}

	// 1. 解析账户或观察地址
	var (
		account *aptos.Account
		address string
	)
	switch {
	case req.Account != "":
		acc, err := s.keystore.Get(req.Account)
		if err != nil {
			logger.Error("Connect Error: ", ErrUnknownAccount, "account", req.Account)
			return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, req.Account)
		}
		account = acc
		address = acc.Address.StringLong()
	case req.Address != "":
		addr, err := blockchain.ParseAddress(req.Address)
		if err != nil {
			logger.Error("Connect Error: ", ErrInvalidAddress, "address", req.Address)
			return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, req.Address)
		}
		address = addr.StringLong()
	default:
		return nil, ErrInvalidRequest
	}

	// 2. 查找或创建用户
	u, err := s.ensureUser(ctx, address)
	if err != nil {
		return nil, err
	}

	// 3. 创建会话并签发令牌
	sess := NewSession(uuid.NewString(), address, variant, account)
	sess.UserID = u.ID

	token, expiresAt, err := s.jwtManager.GenerateToken(sess.ID, u.ID, address)
	if err != nil {
		logger.Error("Connect Error: ", errors.New("failed to generate token"), "error: ", err)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	listener := s.listener
	s.mu.Unlock()

	// 4. 通知会话监听者
	if s.gauge != nil {
		s.gauge.SessionOpened()
	}
	if listener != nil {
		listener.SessionOpened(sess)
	}

	logger.Info("Connect: ", "session_id", sess.ID, "address", address, "can_sign", sess.CanSign(), "variant", variant)
	return &types.WalletConnectResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		SessionID:   sess.ID,
		Address:     address,
		CanSign:     sess.CanSign(),
		Variant:     string(variant),
		User:        *u,
	}, nil
}

func (s *service) ensureUser(ctx context.Context, address string) (*types.User, error) {
	existing, err := s.userRepo.GetUserByWallet(ctx, address)
	if err == nil {
		if err := s.userRepo.UpdateLastLogin(ctx, address); err != nil {
			logger.Error("Connect Error: ", errors.New("failed to update last login"), "error: ", err)
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Connect Error: ", errors.New("database error"), "error: ", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	newUser := &types.User{WalletAddress: address, Status: 1}
	if err := s.userRepo.CreateUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return newUser, nil
}

// Disconnect 断开会话
func (s *service) Disconnect(_ context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	listener := s.listener
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.closeSession(sess, listener)
	logger.Info("Disconnect: ", "session_id", sessionID, "address", sess.Address)
	return nil
}

func (s *service) closeSession(sess *Session, listener SessionListener) {
	sess.close()
	if listener != nil {
		listener.SessionClosed(sess)
	}
	if s.gauge != nil {
		s.gauge.SessionClosed()
	}
}

// CloseAll 关闭全部会话
func (s *service) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	listener := s.listener
	s.mu.Unlock()

	for _, sess := range sessions {
		s.closeSession(sess, listener)
	}
	logger.Info("CloseAll: ", "sessions", len(sessions))
}

// GetSession 获取会话
func (s *service) GetSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// VerifyToken 校验令牌并确认会话仍然存在
func (s *service) VerifyToken(tokenString string) (*types.JWTClaims, error) {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetSession(claims.SessionID); err != nil {
		return nil, err
	}
	return claims, nil
}

// Summary 钱包卡片: 余额, 美元估值, 截断地址
func (s *service) Summary(ctx context.Context, sessionID string) (*types.WalletSummary, error) {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	balance, err := s.balances.Balance(ctx, sess.Address)
	if err != nil {
		logger.Error("Summary Error: ", err, "address", sess.Address)
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	summary := &types.WalletSummary{
		Address:          sess.Address,
		TruncatedAddress: workflow.TruncateAddress(sess.Address),
		BalanceOctas:     balance,
		Balance:          workflow.FormatAPT(balance, 4) + " APT",
		CanSign:          sess.CanSign(),
	}

	snapshot, err := s.prices.GetSnapshot(ctx)
	if err != nil {
		if !errors.Is(err, price.ErrPriceUnavailable) {
			logger.Error("Summary Error: ", err, "address", sess.Address)
		}
		return summary, nil
	}
	usd := float64(balance) / workflow.OctasPerAPT * snapshot.CurrentPriceUSD
	summary.BalanceUSD = &usd
	summary.BalanceUSDText = price.FormatUSD(usd)
	summary.Change24h = price.FormatPercent(snapshot.PriceChangePercentage24h)
	return summary, nil
}
