// Package cpuspec reports host CPU characteristics used to size worker pools.
package cpuspec

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// CPUSpec contains information about CPU specifications
type CPUSpec struct {
	BrandName     string
	PhysicalCores int
	LogicalCores  int
	Available     int // CPUs visible to this process, may be lower inside VMs and containers
}

// GetCPUSpec returns the specification of the host CPU
func GetCPUSpec() CPUSpec {
	return CPUSpec{
		BrandName:     cpuid.CPU.BrandName,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		Available:     runtime.NumCPU(),
	}
}

// GetOptimalWorkerCount returns the recommended number of image processing workers.
// Physical cores are preferred since preprocessing is compute bound and gains little
// from SMT siblings. The result never exceeds the CPUs available to the process and
// is at least one.
func (c CPUSpec) GetOptimalWorkerCount() int {
	workers := c.PhysicalCores
	if workers <= 0 {
		workers = c.LogicalCores
	}
	if c.Available > 0 && (workers <= 0 || workers > c.Available) {
		workers = c.Available
	}
	return max(workers, 1)
}
