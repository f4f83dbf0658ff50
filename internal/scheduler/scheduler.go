package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Options 排课引擎配置
type Options struct {
	Catalog     Catalog
	Weekday     time.Weekday
	Occurrences int
	Location    *time.Location
	// Now 为 nil 时使用 time.Now
	Now      func() time.Time
	Cache    SnapshotCache
	CacheKey string
	Notifier Notifier
}

// Scheduler 学生周课表引擎的聚合入口
type Scheduler struct {
	Grid       *Grid
	Store      *Store
	Session    *Session
	Reconciler *Reconciler
	Panel      *Panel
	Controller *Controller
}

// New 按依赖顺序组装：Grid → Store/Session → Reconciler/Panel → Controller
func New(api API, opts Options, logger *zap.Logger) *Scheduler {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Occurrences <= 0 {
		opts.Occurrences = DefaultOccurrences
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Notifier == nil {
		opts.Notifier = NewLogNotifier(logger)
	}

	now := opts.Now().In(opts.Location)
	grid := NewGrid(opts.Catalog, GenerateOccurrences(now, opts.Occurrences, opts.Weekday, now))

	store := NewStore(api, opts.Cache, opts.CacheKey, logger)
	session := NewSession()
	reconciler := NewReconciler(api, store, opts.Catalog, opts.Notifier, logger)
	panel := NewPanel(api, store, opts.Notifier, logger)

	return &Scheduler{
		Grid:       grid,
		Store:      store,
		Session:    session,
		Reconciler: reconciler,
		Panel:      panel,
		Controller: NewController(ControllerDeps{
			API:        api,
			Grid:       grid,
			Store:      store,
			Session:    session,
			Reconciler: reconciler,
			Panel:      panel,
			Notifier:   opts.Notifier,
			Logger:     logger,
		}),
	}
}

// Start 先用快照缓存填充，再从后端加载权威数据
func (s *Scheduler) Start(ctx context.Context) error {
	s.Store.Restore(ctx)
	return s.Store.Reload(ctx)
}
