package will

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"digitalwill-backend/internal/config"
	"digitalwill-backend/internal/repository/activity"
	"digitalwill-backend/internal/service/wallet"
	"digitalwill-backend/internal/types"
	"digitalwill-backend/internal/workflow"
	"digitalwill-backend/pkg/blockchain"
	"digitalwill-backend/pkg/database"
	"digitalwill-backend/pkg/logger"
)

// Recorder 遗嘱操作与轮询指标
type Recorder interface {
	ObserveAction(action, status string, d time.Duration)
	ObservePoll(result string)
}

// Service 遗嘱流程服务接口
type Service interface {
	wallet.SessionListener
	GetState(sessionID string) (*StateView, error)
	UpdateInputs(sessionID string, req *types.UpdateInputsRequest) (*StateView, error)
	Invoke(ctx context.Context, sessionID, action string) (*StateView, error)
	GetRecord(ctx context.Context, sessionID string) (*types.WillRecordResponse, error)
	GetEvents(sessionID string) ([]workflow.Event, error)
	ListActivities(ctx context.Context, sessionID string, req *types.ActivityListRequest) (*types.ActivityListResponse, error)
	Stop()
}

// StateView 流程状态响应
type StateView struct {
	SessionID string             `json:"session_id"`
	Address   string             `json:"address"`
	CanSign   bool               `json:"can_sign"`
	State     workflow.State     `json:"state"`
	Flags     workflow.Flags     `json:"flags"`
	Gates     []types.GateResult `json:"gates"`
}

// willSession 单个钱包会话的流程状态
type willSession struct {
	sess *wallet.Session

	mu  sync.Mutex
	log *workflow.Log

	cancel context.CancelFunc
	done   chan struct{}
}

// apply 追加事件, 每个事件原子地归约
func (ws *willSession) apply(ev workflow.Event) workflow.State {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.log.Append(ev)
}

// begin 门控检查通过后标记操作开始
func (ws *willSession) begin(action workflow.Action) (workflow.State, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := workflow.CheckGate(ws.log.State(), action, ws.sess); err != nil {
		return workflow.State{}, err
	}
	return ws.log.Append(workflow.ActionStarted(action)), nil
}

func (ws *willSession) state() workflow.State {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.log.State()
}

type service struct {
	cfg          *config.WillConfig
	contract     blockchain.WillContract
	activityRepo activity.Repository
	cache        database.Cache
	recorder     Recorder
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*willSession
	wg       sync.WaitGroup
}

// NewService 创建遗嘱流程服务
func NewService(cfg *config.WillConfig, contract blockchain.WillContract, activityRepo activity.Repository, cache database.Cache, recorder Recorder) Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &service{
		cfg:          cfg,
		contract:     contract,
		activityRepo: activityRepo,
		cache:        cache,
		recorder:     recorder,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		sessions:     make(map[string]*willSession),
	}
}

// SessionOpened 钱包连接后创建流程状态并启动轮询
func (s *service) SessionOpened(sess *wallet.Session) {
	ws := &willSession{
		sess: sess,
		log:  workflow.NewLog(sess.Variant, s.now),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = ws
	s.mu.Unlock()
	logger.Info("Will session opened", "session_id", sess.ID, "owner", sess.Address, "variant", sess.Variant)

	if s.cfg.PollInterval <= 0 {
		close(ws.done)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	ws.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.poll(ctx, ws)
	}()
}

// SessionClosed 断开后停止轮询并丢弃状态
func (s *service) SessionClosed(sess *wallet.Session) {
	s.mu.Lock()
	ws, ok := s.sessions[sess.ID]
	delete(s.sessions, sess.ID)
	s.mu.Unlock()

	if !ok {
		return
	}
	if ws.cancel != nil {
		ws.cancel()
	}
	<-ws.done
	logger.Info("Will session closed", "session_id", sess.ID, "owner", sess.Address)
}

// Stop 停止全部轮询
func (s *service) Stop() {
	s.cancel()
	s.wg.Wait()
	logger.Info("Will service stopped")
}

func (s *service) session(sessionID string) (*willSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ws, nil
}

func (s *service) view(ws *willSession, st workflow.State) *StateView {
	actions := st.Variant.Actions()
	gates := make([]types.GateResult, 0, len(actions))
	for _, a := range actions {
		g := types.GateResult{Action: string(a), Enabled: true}
		if err := workflow.CheckGate(st, a, ws.sess); err != nil {
			g.Enabled = false
			g.Reason = err.Error()
		}
		gates = append(gates, g)
	}
	return &StateView{
		SessionID: ws.sess.ID,
		Address:   ws.sess.Address,
		CanSign:   ws.sess.CanSign(),
		State:     st,
		Flags:     st.Flags(),
		Gates:     gates,
	}
}

// GetState 当前流程状态
func (s *service) GetState(sessionID string) (*StateView, error) {
	ws, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ws, ws.state()), nil
}

// UpdateInputs 更新收款人与金额, 已锁定的输入返回 ErrInputLocked
func (s *service) UpdateInputs(sessionID string, req *types.UpdateInputsRequest) (*StateView, error) {
	ws, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if req.Recipient == nil && req.Amount == nil {
		return nil, fmt.Errorf("%w: recipient or amount is required", ErrInvalidInput)
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	st := ws.log.State()
	if (req.Recipient != nil && st.InputLocked(workflow.InputRecipient)) ||
		(req.Amount != nil && st.InputLocked(workflow.InputAmount)) {
		return nil, workflow.ErrInputLocked
	}
	if req.Recipient != nil {
		st = ws.log.Append(workflow.InputChanged(workflow.InputRecipient, *req.Recipient))
	}
	if req.Amount != nil {
		st = ws.log.Append(workflow.InputChanged(workflow.InputAmount, *req.Amount))
	}
	return s.view(ws, st), nil
}

// GetEvents 会话事件日志
func (s *service) GetEvents(sessionID string) ([]workflow.Event, error) {
	ws, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.log.Events(), nil
}

// cachedRecord 缓存的链上记录
type cachedRecord struct {
	Will      *types.WillRecord `json:"will"`
	FetchedAt time.Time         `json:"fetched_at"`
}

func (s *service) recordKey(owner string) string {
	return s.cfg.CachePrefix + owner
}

func (s *service) recordTTL() time.Duration {
	if s.cfg.PollInterval <= 0 {
		return time.Minute
	}
	return s.cfg.PollInterval * 2
}

func (s *service) cacheRecord(ctx context.Context, owner string, w *types.WillRecord, at time.Time) {
	data, err := json.Marshal(cachedRecord{Will: w, FetchedAt: at})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.recordKey(owner), data, s.recordTTL()); err != nil {
		logger.Error("Failed to cache will record", err, "owner", owner)
	}
}

// GetRecord 最近一次轮询的链上记录, 缓存缺失时实时查询
func (s *service) GetRecord(ctx context.Context, sessionID string) (*types.WillRecordResponse, error) {
	ws, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	owner := ws.sess.Address

	data, err := s.cache.Get(ctx, s.recordKey(owner))
	if err == nil {
		var cached cachedRecord
		if err := json.Unmarshal(data, &cached); err == nil {
			return &types.WillRecordResponse{
				Owner:     owner,
				Exists:    cached.Will != nil,
				Will:      cached.Will,
				FromCache: true,
				FetchedAt: cached.FetchedAt,
			}, nil
		}
	} else if !errors.Is(err, database.ErrCacheMiss) {
		logger.Error("GetRecord Error: ", err, "owner", owner)
	}

	w, err := s.contract.GetWill(ctx, owner)
	if err != nil && !errors.Is(err, blockchain.ErrMalformedWill) {
		return nil, err
	}
	now := s.now()
	if err != nil {
		w = nil
	}
	s.cacheRecord(ctx, owner, w, now)
	return &types.WillRecordResponse{
		Owner:     owner,
		Exists:    w != nil,
		Will:      w,
		FetchedAt: now,
	}, nil
}
