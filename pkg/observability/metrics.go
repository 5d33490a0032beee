package observability

import (
	"strconv"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the editor counters.
type Metrics struct {
	Patches   *prometheus.CounterVec
	Rejects   *prometheus.CounterVec
	Mutations *prometheus.CounterVec
	Warnings  *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Patches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blox_block_patches_total",
				Help: "Accepted block patches.",
			},
			[]string{"type"},
		),
		Rejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blox_block_patch_rejections_total",
				Help: "Block patches refused by validation.",
			},
			[]string{"type"},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blox_mutations_total",
				Help: "Structural edits by operation and whether they changed the document.",
			},
			[]string{"op", "applied"},
		),
		Warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blox_skipped_blocks_total",
				Help: "Blocks skipped while rendering or exporting.",
			},
			[]string{"source"},
		),
	}

	for _, c := range []prometheus.Collector{m.Patches, m.Rejects, m.Mutations, m.Warnings} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPatch: func(_ domain.BlockID, blockType string) {
			m.Patches.WithLabelValues(blockType).Inc()
		},
		OnReject: func(_ domain.BlockID, blockType string, _ error) {
			m.Rejects.WithLabelValues(blockType).Inc()
		},
		OnMutation: func(op domain.MutationOp, _ domain.BlockID, applied bool) {
			m.Mutations.WithLabelValues(string(op), strconv.FormatBool(applied)).Inc()
		},
		OnWarning: func(w domain.Warning) {
			m.Warnings.WithLabelValues(w.Source).Inc()
		},
	}
}
