package envelopeservice

import (
	"log/slog"
	"time"

	httpadapter "redpacket/contexts/gifting/envelope-service/adapters/http"
	"redpacket/contexts/gifting/envelope-service/adapters/memory"
	"redpacket/contexts/gifting/envelope-service/adapters/timer"
	application "redpacket/contexts/gifting/envelope-service/application"
	"redpacket/contexts/gifting/envelope-service/application/commands"
	"redpacket/contexts/gifting/envelope-service/application/queries"
	"redpacket/contexts/gifting/envelope-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Settler application.Settler
	Store   *memory.Store
	Ledger  *memory.Ledger
}

type Dependencies struct {
	Registry  ports.GroupRegistry
	Festive   ports.FestiveRegistry
	Ledger    ports.LedgerGateway
	Archive   ports.SettlementArchive
	Outbox    ports.AnnouncementOutbox
	Scheduler ports.TimeoutScheduler
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Timeout   time.Duration
	Interval  time.Duration
	RoundTTL  time.Duration
	RankCount int
	Currency  string
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	announcer := application.Announcer{
		Outbox: deps.Outbox,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	settler := application.Settler{
		Registry:  deps.Registry,
		Festive:   deps.Festive,
		Ledger:    deps.Ledger,
		Archive:   deps.Archive,
		Scheduler: deps.Scheduler,
		Announcer: announcer,
		Clock:     deps.Clock,
		RankCount: deps.RankCount,
		Currency:  deps.Currency,
		Logger:    deps.Logger,
	}
	seedUseCase := commands.SeedPoolUseCase{
		Registry:  deps.Registry,
		Ledger:    deps.Ledger,
		Scheduler: deps.Scheduler,
		Settler:   settler,
		Announcer: announcer,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Timeout:   deps.Timeout,
		Interval:  deps.Interval,
		Currency:  deps.Currency,
		Logger:    deps.Logger,
	}
	claimUseCase := commands.ClaimUseCase{
		Registry:  deps.Registry,
		Festive:   deps.Festive,
		Settler:   settler,
		Announcer: announcer,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	returnUseCase := commands.ReturnPoolUseCase{
		Registry: deps.Registry,
		Settler:  settler,
		Clock:    deps.Clock,
		Interval: deps.Interval,
		Logger:   deps.Logger,
	}
	festiveUseCase := commands.FestiveBroadcastUseCase{
		Registry:  deps.Registry,
		Festive:   deps.Festive,
		Scheduler: deps.Scheduler,
		Settler:   settler,
		Announcer: announcer,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		RoundTTL:  deps.RoundTTL,
		Logger:    deps.Logger,
	}
	activePoolUseCase := queries.GetActivePoolUseCase{
		Registry:  deps.Registry,
		RankCount: deps.RankCount,
		Logger:    deps.Logger,
	}
	settlementsUseCase := queries.ListSettlementsUseCase{
		Archive: deps.Archive,
		Logger:  deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Seed:        seedUseCase,
			Claims:      claimUseCase,
			Returns:     returnUseCase,
			Festive:     festiveUseCase,
			ActivePool:  activePoolUseCase,
			Settlements: settlementsUseCase,
			Logger:      deps.Logger,
		},
		Settler: settler,
	}
}

// NewInMemoryModule wires the module entirely on the in-memory adapters.
// Used by tests and local runs without postgres.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	ledger := memory.NewLedger()
	module := NewModule(Dependencies{
		Registry:  store,
		Festive:   store,
		Ledger:    ledger,
		Archive:   store,
		Outbox:    store,
		Scheduler: timer.NewScheduler(logger),
		Clock:     store,
		IDGen:     store,
		Timeout:   10 * time.Minute,
		Interval:  time.Minute,
		RoundTTL:  24 * time.Hour,
		RankCount: 10,
		Currency:  "gold",
		Logger:    logger,
	})
	module.Store = store
	module.Ledger = ledger
	return module
}
