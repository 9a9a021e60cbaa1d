package renderer

import (
	"fmt"

	"github.com/spaghettifunk/rosella/engine/core"
)

// Result mirrors VkResult for the calls whose outcome drives control flow.
type Result int32

const (
	ResultSuccess           Result = 0
	ResultNotReady          Result = 1
	ResultTimeout           Result = 2
	ResultSuboptimal        Result = 1000001003
	ResultOutOfHostMemory   Result = -1
	ResultOutOfDeviceMemory Result = -2
	ResultInitFailed        Result = -3
	ResultDeviceLost        Result = -4
	ResultSurfaceLost       Result = -1000000000
	ResultErrorOutOfDate    Result = -1000001004
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "VK_SUCCESS"
	case ResultNotReady:
		return "VK_NOT_READY"
	case ResultTimeout:
		return "VK_TIMEOUT"
	case ResultSuboptimal:
		return "VK_SUBOPTIMAL_KHR"
	case ResultOutOfHostMemory:
		return "VK_ERROR_OUT_OF_HOST_MEMORY"
	case ResultOutOfDeviceMemory:
		return "VK_ERROR_OUT_OF_DEVICE_MEMORY"
	case ResultInitFailed:
		return "VK_ERROR_INITIALIZATION_FAILED"
	case ResultDeviceLost:
		return "VK_ERROR_DEVICE_LOST"
	case ResultSurfaceLost:
		return "VK_ERROR_SURFACE_LOST_KHR"
	case ResultErrorOutOfDate:
		return "VK_ERROR_OUT_OF_DATE_KHR"
	}
	return fmt.Sprintf("VkResult(%d)", int32(r))
}

// IsSuccess is true for VK_SUCCESS and VK_SUBOPTIMAL_KHR. The caller decides
// what a suboptimal chain means.
func (r Result) IsSuccess() bool {
	return r == ResultSuccess || r == ResultSuboptimal
}

// needsRecreate reports the presentation results that are control flow, not
// failures.
func (r Result) needsRecreate() bool {
	return r == ResultErrorOutOfDate || r == ResultSuboptimal
}

// apiError logs and returns the fatal error for a failed device call.
func apiError(op string, r Result) error {
	var err error
	if r == ResultTimeout {
		err = core.NewWaitTimeoutError(op, int32(r), r.String())
	} else {
		err = core.NewGraphicsAPIError(op, int32(r), r.String())
	}
	core.LogError(err.Error())
	return err
}
