package conf

import "github.com/artidentifier/artid/internal/cpuspec"

// defaultWorkerCount sizes the processing worker pool from the host CPU
func defaultWorkerCount() int {
	return cpuspec.GetCPUSpec().GetOptimalWorkerCount()
}
