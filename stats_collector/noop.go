package stats_collector

import "github.com/gin-gonic/gin"

var _ StatsCollector = (*noopCollector)(nil)

type noopCollector struct {
}

func (col *noopCollector) Name() string                     { return "no-op" }
func (col *noopCollector) RegisterGinEngine(*gin.Engine)    {}
func (col *noopCollector) AddFeaturesProcessed(num uint64)  {}
func (col *noopCollector) AddGroupsProcessed(num uint64)    {}
func (col *noopCollector) AddDegenerateFeatures(num uint64) {}
func (col *noopCollector) AddLabelPointsEmitted(num uint64) {}
func (col *noopCollector) AddRejectedRequest()              {}

func NewNoopStatsCollector() StatsCollector {
	return &noopCollector{}
}
