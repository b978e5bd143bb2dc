package internaltelemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TreeMetrics holds the metric instruments for one tree and satisfies
// the index's structural hooks interface, so a tree built with it
// reports node churn straight to OpenTelemetry.
type TreeMetrics struct {
	NodesAllocatedCounter  metric.Int64Counter
	NodesFreedCounter      metric.Int64Counter
	SplitsCounter          metric.Int64Counter
	MergesCounter          metric.Int64Counter
	RedistributionsCounter metric.Int64Counter
	LiveNodesUpDownCounter metric.Int64UpDownCounter
}

// NewTreeMetrics creates and registers all the metrics for a tree.
func NewTreeMetrics(meter metric.Meter) (*TreeMetrics, error) {
	nodesAllocated, err := meter.Int64Counter(
		"gojotree.index.nodes_allocated_total",
		metric.WithDescription("Total number of tree nodes allocated."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	nodesFreed, err := meter.Int64Counter(
		"gojotree.index.nodes_freed_total",
		metric.WithDescription("Total number of tree nodes released."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	splits, err := meter.Int64Counter(
		"gojotree.index.splits_total",
		metric.WithDescription("Total number of node splits."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	merges, err := meter.Int64Counter(
		"gojotree.index.merges_total",
		metric.WithDescription("Total number of node merges."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	redistributions, err := meter.Int64Counter(
		"gojotree.index.redistributions_total",
		metric.WithDescription("Total number of key redistributions between siblings."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	liveNodes, err := meter.Int64UpDownCounter(
		"gojotree.index.live_nodes",
		metric.WithDescription("Number of live tree nodes."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return &TreeMetrics{
		NodesAllocatedCounter:  nodesAllocated,
		NodesFreedCounter:      nodesFreed,
		SplitsCounter:          splits,
		MergesCounter:          merges,
		RedistributionsCounter: redistributions,
		LiveNodesUpDownCounter: liveNodes,
	}, nil
}

func kindAttr(leaf bool) metric.MeasurementOption {
	kind := "internal"
	if leaf {
		kind = "leaf"
	}
	return metric.WithAttributes(attribute.String("node.kind", kind))
}

// The hook methods run inside tree mutations, which have no request
// context of their own.

func (m *TreeMetrics) NodeAllocated(leaf bool) {
	m.NodesAllocatedCounter.Add(context.Background(), 1, kindAttr(leaf))
	m.LiveNodesUpDownCounter.Add(context.Background(), 1, kindAttr(leaf))
}

func (m *TreeMetrics) NodeFreed(leaf bool) {
	m.NodesFreedCounter.Add(context.Background(), 1, kindAttr(leaf))
	m.LiveNodesUpDownCounter.Add(context.Background(), -1, kindAttr(leaf))
}

func (m *TreeMetrics) SplitOccurred(leaf bool) {
	m.SplitsCounter.Add(context.Background(), 1, kindAttr(leaf))
}

func (m *TreeMetrics) MergeOccurred(leaf bool) {
	m.MergesCounter.Add(context.Background(), 1, kindAttr(leaf))
}

func (m *TreeMetrics) RedistributeOccurred() {
	m.RedistributionsCounter.Add(context.Background(), 1)
}
