package complianceengine

import (
	"log/slog"

	httpadapter "sitecompliance/contexts/site-compliance/compliance-engine/adapters/http"
	"sitecompliance/contexts/site-compliance/compliance-engine/adapters/memory"
	application "sitecompliance/contexts/site-compliance/compliance-engine/application"
	"sitecompliance/contexts/site-compliance/compliance-engine/application/commands"
	"sitecompliance/contexts/site-compliance/compliance-engine/application/queries"
	"sitecompliance/contexts/site-compliance/compliance-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Municipalities ports.MunicipalityDirectory
	Sites          ports.SiteRegistry
	Adjacency      ports.AdjacencyGraph
	Offsets        ports.OffsetLedger
	Events         ports.EventLedger
	Reallocations  ports.ReallocationLedger
	Snapshots      ports.SnapshotStore
	Locker         ports.Locker
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	state := application.StateReader{
		Municipalities: deps.Municipalities,
		Sites:          deps.Sites,
		Offsets:        deps.Offsets,
		Events:         deps.Events,
		Reallocations:  deps.Reallocations,
	}

	return Module{
		Handler: httpadapter.Handler{
			ComputeRequirement: queries.ComputeRequirementUseCase{Clock: deps.Clock},
			Evaluate: queries.EvaluateUseCase{
				State:  state,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			EvaluateAll: queries.EvaluateAllUseCase{
				State:  state,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			ListMunicipalities: queries.ListMunicipalitiesUseCase{Municipalities: deps.Municipalities},
			ListOffsets: queries.ListOffsetsUseCase{
				Municipalities: deps.Municipalities,
				Offsets:        deps.Offsets,
				Clock:          deps.Clock,
			},
			ListEvents: queries.ListEventsUseCase{
				Municipalities: deps.Municipalities,
				Events:         deps.Events,
				Clock:          deps.Clock,
			},
			ListReallocations: queries.ListReallocationsUseCase{
				Municipalities: deps.Municipalities,
				Reallocations:  deps.Reallocations,
			},
			GetReallocation: queries.GetReallocationUseCase{Reallocations: deps.Reallocations},
			ListSnapshots: queries.ListSnapshotsUseCase{
				Municipalities: deps.Municipalities,
				Snapshots:      deps.Snapshots,
			},
			ApplyOffset: commands.ApplyOffsetUseCase{
				Municipalities: deps.Municipalities,
				Offsets:        deps.Offsets,
				Locker:         deps.Locker,
				Clock:          deps.Clock,
				IDGenerator:    deps.IDGenerator,
				Logger:         deps.Logger,
			},
			SupersedeOffset: commands.SupersedeOffsetUseCase{
				Offsets:     deps.Offsets,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			ApplyEvent: commands.ApplyEventUseCase{
				Municipalities: deps.Municipalities,
				Events:         deps.Events,
				Locker:         deps.Locker,
				Clock:          deps.Clock,
				IDGenerator:    deps.IDGenerator,
				Logger:         deps.Logger,
			},
			ProposeReallocation: commands.ProposeReallocationUseCase{
				State:         state,
				Adjacency:     deps.Adjacency,
				Reallocations: deps.Reallocations,
				Locker:        deps.Locker,
				Clock:         deps.Clock,
				IDGenerator:   deps.IDGenerator,
				Logger:        deps.Logger,
			},
			CommitReallocation: commands.CommitReallocationUseCase{
				State:         state,
				Reallocations: deps.Reallocations,
				Locker:        deps.Locker,
				Clock:         deps.Clock,
				IDGenerator:   deps.IDGenerator,
				Logger:        deps.Logger,
			},
			ReverseReallocation: commands.ReverseReallocationUseCase{
				Reallocations: deps.Reallocations,
				Locker:        deps.Locker,
				Clock:         deps.Clock,
				IDGenerator:   deps.IDGenerator,
				Logger:        deps.Logger,
			},
			RefreshCensus: commands.RefreshCensusUseCase{
				Municipalities: deps.Municipalities,
				Locker:         deps.Locker,
				Clock:          deps.Clock,
				IDGenerator:    deps.IDGenerator,
				Logger:         deps.Logger,
			},
			CaptureSnapshot: commands.CaptureSnapshotUseCase{
				State:       state,
				Snapshots:   deps.Snapshots,
				Locker:      deps.Locker,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGenerator,
				Logger:      deps.Logger,
			},
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule backs every port with a single memory store. Callers seed it
// through Store before serving traffic.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Municipalities: store,
		Sites:          store,
		Adjacency:      store,
		Offsets:        store,
		Events:         store,
		Reallocations:  store,
		Snapshots:      store,
		Locker:         store,
		Clock:          store,
		IDGenerator:    store,
		Logger:         logger,
	})
	module.Store = store
	return module
}
