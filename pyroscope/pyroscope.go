package pyroscope

import (
	"os"
	"runtime"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Chatot/version"
)

func profileTypes(withLocks bool) []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocObjects,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}
	if withLocks {
		types = append(types,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		)
	}
	return types
}

// Run starts continuous profiling. The returned profiler should be stopped
// on shutdown.
func Run(config Config, logger *logrus.Logger) (*pyroscope.Profiler, error) {
	runtime.SetMutexProfileFraction(config.MutexProfileFraction)
	runtime.SetBlockProfileRate(config.BlockProfileRate)

	pyroscopeConfig := pyroscope.Config{
		ApplicationName: config.ApplicationName,
		ServerAddress:   config.ServerAddress,
		Logger:          logger,
		Tags: map[string]string{
			"hostname": os.Getenv("HOSTNAME"),
			"version":  version.APP_VERSION,
		},
		ProfileTypes: profileTypes(config.MutexProfileFraction > 0 || config.BlockProfileRate > 0),
	}

	if config.UploadRateSeconds > 0 {
		pyroscopeConfig.UploadRate = time.Duration(config.UploadRateSeconds) * time.Second
	}

	if config.ApiKey != "" {
		pyroscopeConfig.AuthToken = config.ApiKey
	}

	return pyroscope.Start(pyroscopeConfig)
}
