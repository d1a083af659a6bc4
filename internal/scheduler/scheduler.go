package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/LJTian/NewsBrief/internal/logger"
)

// Runner 执行一轮采集入库，返回入库条数
type Runner interface {
	Run(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    *zap.Logger

	// 首轮采集的延迟，避免与服务启动后首批请求争抢资源；0 表示不触发首轮
	StartupDelay time.Duration

	mu      sync.Mutex
	timerMu sync.Mutex
	startup *time.Timer
}

func New(spec string, runner Runner, log *zap.Logger) (*Scheduler, error) {
	log = logger.OrNop(log)
	cl := cronLogger{s: log.Sugar()}
	// 上一轮未结束时跳过本轮，保证同一时刻只有一个写者
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	s := &Scheduler{
		cron:         c,
		runner:       runner,
		log:          log,
		StartupDelay: 15 * time.Second,
	}

	if _, err := c.AddFunc(spec, s.runJob); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	if s.StartupDelay > 0 {
		s.timerMu.Lock()
		s.startup = time.AfterFunc(s.StartupDelay, s.runJob)
		s.timerMu.Unlock()
	}
}

// Stop 停止调度与尚未触发的首轮采集，返回在等待中的任务完成信号
func (s *Scheduler) Stop() context.Context {
	s.timerMu.Lock()
	if s.startup != nil {
		s.startup.Stop()
		s.startup = nil
	}
	s.timerMu.Unlock()
	return s.cron.Stop()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发采集
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runner.Run(ctx)
}

func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

func (s *Scheduler) runJob() {
	saved, err := s.RunOnce(context.Background())
	if err != nil {
		s.log.Error("scheduled collect failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled collect done", zap.Int("saved", saved))
}

// cronLogger 把 cron 内部日志转给 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
